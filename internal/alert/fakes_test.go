package alert

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dchamindu826/Rider-App/internal/errs"
	"github.com/dchamindu826/Rider-App/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func availableOrder(id string, minute int, fee int64) model.Order {
	return model.Order{
		ID:          id,
		Status:      model.Available,
		FoodTotal:   decimal.NewFromInt(2500),
		DeliveryFee: decimal.NewFromInt(fee),
		Pickup:      model.Pickup{Name: "Pizza Hut", Address: "Galle Road"},
		Dropoff:     model.Dropoff{ReceiverName: "Nimal", Address: "Flower Road"},
		CreatedAt:   baseTime.Add(time.Duration(minute) * time.Minute),
	}
}

// fakeOrders is an in-memory backend with the same conditional claim rules
// as the Postgres store.
type fakeOrders struct {
	mu          sync.Mutex
	orders      map[string]*model.Order
	wallets     map[string]decimal.Decimal
	fetches     int
	mutations   int
	failFetches int
	block       chan struct{}
}

func newFakeOrders(orders ...model.Order) *fakeOrders {
	f := &fakeOrders{orders: make(map[string]*model.Order), wallets: make(map[string]decimal.Decimal)}
	for _, o := range orders {
		f.add(o)
	}
	return f
}

func (f *fakeOrders) add(o model.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = &o
}

func (f *fakeOrders) get(id string) model.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.orders[id]
}

func (f *fakeOrders) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func (f *fakeOrders) mutationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mutations
}

func (f *fakeOrders) wallet(riderID string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wallets[riderID]
}

func (f *fakeOrders) NextAvailableOrder(ctx context.Context, exclude []string) (*model.Order, error) {
	f.mu.Lock()
	f.fetches++
	block := f.block
	if f.failFetches > 0 {
		f.failFetches--
		f.mu.Unlock()
		return nil, errors.New("backend unavailable")
	}
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	var best *model.Order
	for _, o := range f.orders {
		if o.Status != model.Available || skip[o.ID] {
			continue
		}
		if best == nil || o.CreatedAt.Before(best.CreatedAt) ||
			(o.CreatedAt.Equal(best.CreatedAt) && o.ID < best.ID) {
			best = o
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (f *fakeOrders) ClaimOrder(ctx context.Context, orderID, riderID string) (model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations++

	o, ok := f.orders[orderID]
	if !ok {
		return model.Order{}, errs.ErrOrderNotFound
	}
	for _, other := range f.orders {
		if other.IsAssignedTo(riderID) && other.Status.IsActive() {
			return model.Order{}, errs.ErrActiveOrderExists
		}
	}
	if o.Status != model.Available {
		return model.Order{}, errs.ErrClaimConflict
	}

	rider := riderID
	o.Status = model.Assigned
	o.AssignedRider = &rider
	return *o, nil
}

func (f *fakeOrders) move(orderID, riderID string, to model.OrderStatus) (*model.Order, error) {
	f.mutations++

	o, ok := f.orders[orderID]
	if !ok {
		return nil, errs.ErrOrderNotFound
	}
	if !o.IsAssignedTo(riderID) {
		return nil, errs.ErrNotAssignedRider
	}
	if !model.CanTransition(o.Status, to) {
		return nil, errs.ErrInvalidTransition
	}
	o.Status = to
	return o, nil
}

func (f *fakeOrders) StartDelivery(ctx context.Context, orderID, riderID string) (model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, err := f.move(orderID, riderID, model.EnRoute)
	if err != nil {
		return model.Order{}, err
	}
	return *o, nil
}

func (f *fakeOrders) CancelOrder(ctx context.Context, orderID, riderID, reason string) (model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, err := f.move(orderID, riderID, model.Cancelled)
	if err != nil {
		return model.Order{}, err
	}
	by := riderID
	o.CancellationReason = reason
	o.CancelledBy = &by
	return *o, nil
}

func (f *fakeOrders) CompleteOrder(ctx context.Context, orderID, riderID string) (model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, err := f.move(orderID, riderID, model.Completed)
	if err != nil {
		return model.Order{}, err
	}
	f.wallets[riderID] = f.wallets[riderID].Add(o.Earning())
	return *o, nil
}

type fakeFeed struct {
	mu      sync.Mutex
	handler func(model.OrderEvent)
	listens int
	stops   int
}

func (f *fakeFeed) Listen(ctx context.Context, handler func(model.OrderEvent)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.handler = handler
	f.listens++
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.stops++
		f.handler = nil
	}, nil
}

func (f *fakeFeed) emit(ev model.OrderEvent) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()

	if h != nil {
		h(ev)
	}
}

func (f *fakeFeed) counts() (listens, stops int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listens, f.stops
}

type fakePlayer struct {
	mu       sync.Mutex
	starts   int
	stops    int
	startErr error
}

func (p *fakePlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.starts++
	return p.startErr
}

func (p *fakePlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
	return nil
}

func (p *fakePlayer) counts() (starts, stops int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.starts, p.stops
}

type recorder struct {
	mu         sync.Mutex
	shown      []Alert
	reasons    []DismissReason
	ticks      int
	claims     []error
	visible    int
	maxVisible int
}

func (r *recorder) AlertShown(a Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, a)
	r.visible++
	if r.visible > r.maxVisible {
		r.maxVisible = r.visible
	}
}

func (r *recorder) CountdownTicked(Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks++
}

func (r *recorder) AlertDismissed(_ Alert, reason DismissReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
	r.visible--
}

func (r *recorder) ClaimResolved(_ model.Order, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims = append(r.claims, err)
}

func (r *recorder) shownAlerts() []Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Alert(nil), r.shown...)
}

func (r *recorder) shownCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shown)
}

func (r *recorder) dismissals() []DismissReason {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DismissReason(nil), r.reasons...)
}

func (r *recorder) tickCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

func (r *recorder) mostVisible() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxVisible
}

type harness struct {
	engine *Engine
	orders *fakeOrders
	feed   *fakeFeed
	player *fakePlayer
	rec    *recorder
	cancel context.CancelFunc
}

func testConfig() Config {
	return Config{
		PollInterval:   20 * time.Millisecond,
		AlertTimeout:   time.Minute,
		CountdownStep:  time.Second,
		RequestTimeout: time.Second,
	}
}

func newHarness(t *testing.T, orders *fakeOrders, riderID string, cfg Config) *harness {
	t.Helper()

	h := &harness{
		orders: orders,
		feed:   &fakeFeed{},
		player: &fakePlayer{},
		rec:    &recorder{},
	}
	resolver := NewResolver(orders, riderID, cfg.RequestTimeout)
	h.engine = NewEngine(orders, h.feed, resolver, h.player, h.rec, zaptest.NewLogger(t).Sugar(), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go h.engine.Run(ctx)

	t.Cleanup(h.stop)
	return h
}

func (h *harness) stop() {
	h.cancel()
	<-h.engine.Done()
}
