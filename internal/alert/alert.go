package alert

import (
	"time"

	"github.com/dchamindu826/Rider-App/internal/model"
	"github.com/dchamindu826/Rider-App/internal/utils"
	"github.com/shopspring/decimal"
)

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePolling   Phase = "polling"
	PhaseVisible   Phase = "alert_visible"
	PhaseResolving Phase = "resolving"
)

type DismissReason string

const (
	Accepted    DismissReason = "accepted"
	Ignored     DismissReason = "ignored"
	Expired     DismissReason = "expired"
	WentOffline DismissReason = "offline"
	Busy        DismissReason = "busy"
	Shutdown    DismissReason = "shutdown"
)

// Alert is a new-order offer on screen.
type Alert struct {
	Order       model.Order     `json:"order"`
	Earning     decimal.Decimal `json:"earning"`
	EarningText string          `json:"earning_text"`
	FoodTotal   string          `json:"food_total_text"`
	Steps       int             `json:"steps"`
	Remaining   int             `json:"remaining"`
	ShownAt     time.Time       `json:"shown_at"`
}

func newAlert(order model.Order, steps int, now time.Time) Alert {
	earning := order.Earning()
	return Alert{
		Order:       order,
		Earning:     earning,
		EarningText: utils.FormatLKR(earning),
		FoodTotal:   utils.FormatLKR(order.FoodTotal),
		Steps:       steps,
		Remaining:   steps,
		ShownAt:     now,
	}
}

// Progress is the share of the countdown left, from 1 down to 0.
func (a Alert) Progress() float64 {
	if a.Steps == 0 {
		return 0
	}
	return float64(a.Remaining) / float64(a.Steps)
}

// Presenter receives everything the rider should see. Calls come from the
// engine loop one at a time and must not block.
type Presenter interface {
	AlertShown(a Alert)
	CountdownTicked(a Alert)
	AlertDismissed(a Alert, reason DismissReason)
	ClaimResolved(order model.Order, err error)
}

type NopPresenter struct{}

func (NopPresenter) AlertShown(Alert)                    {}
func (NopPresenter) CountdownTicked(Alert)               {}
func (NopPresenter) AlertDismissed(Alert, DismissReason) {}
func (NopPresenter) ClaimResolved(model.Order, error)    {}

// State is a point-in-time copy of the engine for readers outside the loop.
type State struct {
	Phase          Phase    `json:"phase"`
	Online         bool     `json:"online"`
	HasActiveOrder bool     `json:"has_active_order"`
	Alert          *Alert   `json:"alert,omitempty"`
	Seen           []string `json:"seen"`
}
