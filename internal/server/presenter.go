package server

import (
	"sync"
	"time"

	"github.com/dchamindu826/Rider-App/internal/alert"
	"github.com/dchamindu826/Rider-App/internal/model"
	"go.uber.org/zap"
)

type AlertEvent struct {
	Kind    string              `json:"kind"`
	OrderID string              `json:"order_id"`
	Reason  alert.DismissReason `json:"reason,omitempty"`
	Error   string              `json:"error,omitempty"`
	At      time.Time           `json:"at"`
}

// alertPresenter keeps the latest pipeline event for the UI shell, which
// polls GET /api/alert.
type alertPresenter struct {
	riderID string
	logger  *zap.SugaredLogger

	mu   sync.Mutex
	last *AlertEvent
}

func newAlertPresenter(riderID string, logger *zap.SugaredLogger) *alertPresenter {
	return &alertPresenter{riderID: riderID, logger: logger}
}

func (p *alertPresenter) AlertShown(a alert.Alert) {
	p.logger.Infow("new order alert",
		"rider", p.riderID,
		"order", a.Order.ID,
		"earning", a.EarningText,
		"pickup", a.Order.Pickup.Name,
	)
	p.record(AlertEvent{Kind: "shown", OrderID: a.Order.ID})
}

func (p *alertPresenter) CountdownTicked(a alert.Alert) {
	p.logger.Debugw("alert countdown", "order", a.Order.ID, "remaining", a.Remaining)
}

func (p *alertPresenter) AlertDismissed(a alert.Alert, reason alert.DismissReason) {
	p.record(AlertEvent{Kind: "dismissed", OrderID: a.Order.ID, Reason: reason})
}

func (p *alertPresenter) ClaimResolved(order model.Order, err error) {
	if err != nil {
		p.record(AlertEvent{Kind: "claim_failed", OrderID: order.ID, Error: err.Error()})
		return
	}
	p.record(AlertEvent{Kind: "claimed", OrderID: order.ID})
}

func (p *alertPresenter) record(ev AlertEvent) {
	ev.At = time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = &ev
}

func (p *alertPresenter) Last() *AlertEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.last == nil {
		return nil
	}
	ev := *p.last
	return &ev
}
