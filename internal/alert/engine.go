// Package alert runs the new-order pipeline for one rider: it decides when
// to look for work, offers the oldest unseen available order with a timed,
// audible alert, and resolves the rider's decision against the backend.
//
// All pipeline state lives in a single goroutine (Engine.Run). Ticks, feed
// wake-ups, fetch results and rider decisions reach it as messages, so at
// most one fetch is in flight and at most one alert is visible.
package alert

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dchamindu826/Rider-App/internal/errs"
	"github.com/dchamindu826/Rider-App/internal/model"
	"github.com/dchamindu826/Rider-App/internal/sound"
	"go.uber.org/zap"
)

// OrderSource returns the oldest available order whose id is not excluded,
// or nil when there is none.
type OrderSource interface {
	NextAvailableOrder(ctx context.Context, exclude []string) (*model.Order, error)
}

// Feed delivers change events for available orders. Listen must not block
// on the network; the returned stop func ends the subscription.
type Feed interface {
	Listen(ctx context.Context, handler func(model.OrderEvent)) (stop func(), err error)
}

type Config struct {
	PollInterval   time.Duration
	AlertTimeout   time.Duration
	CountdownStep  time.Duration
	RequestTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval:   5 * time.Second,
		AlertTimeout:   30 * time.Second,
		CountdownStep:  time.Second,
		RequestTimeout: 10 * time.Second,
	}
}

func (c Config) steps() int {
	step := c.CountdownStep
	if step <= 0 {
		step = time.Second
	}
	n := int(c.AlertTimeout / step)
	if n < 1 {
		n = 1
	}
	return n
}

type Engine struct {
	source    OrderSource
	feed      Feed
	resolver  *Resolver
	player    sound.Player
	presenter Presenter
	logger    *zap.SugaredLogger
	cfg       Config
	now       func() time.Time

	msgs chan any
	done chan struct{}

	mu    sync.RWMutex
	state State
}

// NewEngine wires an engine. feed may be nil, in which case only the
// interval poll runs. Zero durations fall back to DefaultConfig.
func NewEngine(source OrderSource, feed Feed, resolver *Resolver, player sound.Player, presenter Presenter, logger *zap.SugaredLogger, cfg Config) *Engine {
	if player == nil {
		player = sound.Nop{}
	}
	if presenter == nil {
		presenter = NopPresenter{}
	}
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.AlertTimeout <= 0 {
		cfg.AlertTimeout = def.AlertTimeout
	}
	if cfg.CountdownStep <= 0 {
		cfg.CountdownStep = def.CountdownStep
	}

	return &Engine{
		source:    source,
		feed:      feed,
		resolver:  resolver,
		player:    player,
		presenter: presenter,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		msgs:      make(chan any, 32),
		done:      make(chan struct{}),
		state:     State{Phase: PhaseIdle, Seen: []string{}},
	}
}

type setOnlineMsg struct {
	online bool
	reply  chan struct{}
}

type setActiveMsg struct {
	active bool
	reply  chan struct{}
}

type wakeMsg struct {
	event model.OrderEvent
}

type pollResultMsg struct {
	seq   uint64
	order *model.Order
	err   error
}

type acceptMsg struct {
	reply chan claimReply
}

type ignoreMsg struct {
	reply chan error
}

type claimResultMsg struct {
	order model.Order
	err   error
}

type claimReply struct {
	order model.Order
	err   error
}

// loop is the state owned by Run.
type loop struct {
	gate    *Gate
	phase   Phase
	current *Alert
	pollSeq uint64

	pollTicker *time.Ticker
	countdown  *time.Ticker

	cancelFeed context.CancelFunc
	stopFeed   func()

	pendingAccept chan claimReply
}

// Run drives the engine until ctx is cancelled. It must be called once.
// State is republished before any caller waiting on a reply is released.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)

	l := &loop{gate: NewGate(), phase: PhaseIdle}
	e.publish(l)

	for {
		select {
		case <-ctx.Done():
			e.shutdown(l)
			e.publish(l)
			return nil
		case m := <-e.msgs:
			e.handle(ctx, l, m)
		case <-tickerC(l.pollTicker):
			e.requestPoll(ctx, l, "tick")
		case <-tickerC(l.countdown):
			e.countdownTick(l)
		}
		e.publish(l)
	}
}

// Done is closed once Run has returned.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// SetOnline opens or closes the gate. Coming online from offline clears the
// seen-set; going offline dismisses any visible alert.
func (e *Engine) SetOnline(ctx context.Context, online bool) error {
	reply := make(chan struct{})
	if err := e.send(ctx, setOnlineMsg{online: online, reply: reply}); err != nil {
		return err
	}
	return e.await(ctx, reply)
}

// SetActiveOrder tells the engine whether the rider holds an order.
func (e *Engine) SetActiveOrder(ctx context.Context, active bool) error {
	reply := make(chan struct{})
	if err := e.send(ctx, setActiveMsg{active: active, reply: reply}); err != nil {
		return err
	}
	return e.await(ctx, reply)
}

// Accept claims the visible order and waits for the backend's answer.
func (e *Engine) Accept(ctx context.Context) (model.Order, error) {
	reply := make(chan claimReply, 1)
	if err := e.send(ctx, acceptMsg{reply: reply}); err != nil {
		return model.Order{}, err
	}

	select {
	case r := <-reply:
		return r.order, r.err
	case <-e.done:
		return model.Order{}, errs.ErrNoSession
	case <-ctx.Done():
		return model.Order{}, ctx.Err()
	}
}

func (e *Engine) Ignore(ctx context.Context) error {
	reply := make(chan error, 1)
	if err := e.send(ctx, ignoreMsg{reply: reply}); err != nil {
		return err
	}

	select {
	case err := <-reply:
		return err
	case <-e.done:
		return errs.ErrNoSession
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) send(ctx context.Context, m any) error {
	select {
	case e.msgs <- m:
		return nil
	case <-e.done:
		return errs.ErrNoSession
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) await(ctx context.Context, reply <-chan struct{}) error {
	select {
	case <-reply:
		return nil
	case <-e.done:
		return errs.ErrNoSession
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post is used by goroutines started from the loop.
func (e *Engine) post(m any) {
	select {
	case e.msgs <- m:
	case <-e.done:
	}
}

func (e *Engine) handle(ctx context.Context, l *loop, m any) {
	switch m := m.(type) {
	case setOnlineMsg:
		if l.gate.SetOnline(m.online) {
			if !m.online {
				e.dismiss(l, WentOffline)
				e.abandonPoll(l)
			}
			e.logger.Infof("rider is now online=%v", m.online)
		}
		e.syncGate(ctx, l)
		e.publish(l)
		close(m.reply)

	case setActiveMsg:
		if l.gate.SetActiveOrder(m.active) && m.active {
			e.dismiss(l, Busy)
			e.abandonPoll(l)
		}
		e.syncGate(ctx, l)
		e.publish(l)
		close(m.reply)

	case wakeMsg:
		if m.event.Transition != model.Appear || l.gate.Seen(m.event.OrderID) {
			return
		}
		e.requestPoll(ctx, l, "feed")

	case pollResultMsg:
		e.pollResult(l, m)

	case acceptMsg:
		e.accept(ctx, l, m)

	case ignoreMsg:
		if !e.dismiss(l, Ignored) {
			m.reply <- errs.ErrNoAlert
			return
		}
		e.publish(l)
		m.reply <- nil

	case claimResultMsg:
		e.claimResult(ctx, l, m)
	}
}

// requestPoll is the only way a fetch starts. It is dropped unless the gate
// is open and nothing is in flight or on screen.
func (e *Engine) requestPoll(ctx context.Context, l *loop, trigger string) {
	if !l.gate.CanPoll() {
		return
	}
	if l.phase != PhaseIdle {
		e.logger.Debugf("poll from %s dropped in phase %s", trigger, l.phase)
		return
	}

	l.phase = PhasePolling
	l.pollSeq++
	seq := l.pollSeq
	exclude := l.gate.SeenIDs()

	go func() {
		fetchCtx, cancel := e.withTimeout(ctx)
		defer cancel()

		order, err := e.source.NextAvailableOrder(fetchCtx, exclude)
		e.post(pollResultMsg{seq: seq, order: order, err: err})
	}()
}

func (e *Engine) pollResult(l *loop, m pollResultMsg) {
	if m.seq != l.pollSeq || l.phase != PhasePolling {
		return
	}
	l.phase = PhaseIdle

	if m.err != nil {
		e.logger.Warnf("poll available orders: %v", m.err)
		return
	}
	if m.order == nil || !l.gate.CanPoll() {
		return
	}
	if !l.gate.MarkSeen(m.order.ID) {
		return
	}

	e.present(l, *m.order)
}

func (e *Engine) present(l *loop, order model.Order) {
	a := newAlert(order, e.cfg.steps(), e.now())
	l.current = &a
	l.phase = PhaseVisible
	l.countdown = time.NewTicker(e.cfg.CountdownStep)

	if err := e.player.Start(); err != nil {
		e.logger.Debugf("alert sound: %v", err)
	}

	e.logger.Infof("offering order %s, earning %s", order.ID, a.EarningText)
	e.presenter.AlertShown(a)
}

func (e *Engine) countdownTick(l *loop) {
	if l.current == nil {
		return
	}

	l.current.Remaining--
	if l.current.Remaining <= 0 {
		l.current.Remaining = 0
		e.dismiss(l, Expired)
		return
	}
	e.presenter.CountdownTicked(*l.current)
}

// dismiss takes the alert down and silences it. It returns false when no
// alert was visible, which makes repeated dismissal harmless.
func (e *Engine) dismiss(l *loop, reason DismissReason) bool {
	if l.current == nil {
		return false
	}

	a := *l.current
	l.current = nil
	if l.countdown != nil {
		l.countdown.Stop()
		l.countdown = nil
	}
	if err := e.player.Stop(); err != nil {
		e.logger.Debugf("stop alert sound: %v", err)
	}
	if l.phase == PhaseVisible {
		l.phase = PhaseIdle
	}

	e.logger.Infof("order %s alert dismissed: %s", a.Order.ID, reason)
	e.presenter.AlertDismissed(a, reason)
	return true
}

func (e *Engine) accept(ctx context.Context, l *loop, m acceptMsg) {
	if l.current == nil {
		m.reply <- claimReply{err: errs.ErrNoAlert}
		return
	}

	order := l.current.Order
	e.dismiss(l, Accepted)
	l.phase = PhaseResolving
	l.pendingAccept = m.reply

	go func() {
		claimed, err := e.resolver.Claim(ctx, order.ID)
		if err != nil {
			claimed = order
		}
		e.post(claimResultMsg{order: claimed, err: err})
	}()
}

func (e *Engine) claimResult(ctx context.Context, l *loop, m claimResultMsg) {
	if l.phase == PhaseResolving {
		l.phase = PhaseIdle
	}

	switch {
	case m.err == nil:
		e.logger.Infof("order %s claimed", m.order.ID)
		l.gate.SetActiveOrder(true)
	case errors.Is(m.err, errs.ErrActiveOrderExists):
		e.logger.Warnf("claim order %s: %v", m.order.ID, m.err)
		l.gate.SetActiveOrder(true)
	default:
		e.logger.Warnf("claim order %s: %v", m.order.ID, m.err)
	}

	e.syncGate(ctx, l)
	e.publish(l)

	e.presenter.ClaimResolved(m.order, m.err)
	if l.pendingAccept != nil {
		l.pendingAccept <- claimReply{order: m.order, err: m.err}
		l.pendingAccept = nil
	}
}

func (e *Engine) abandonPoll(l *loop) {
	if l.phase == PhasePolling {
		l.phase = PhaseIdle
		l.pollSeq++
	}
}

// syncGate starts the ticker and feed when the gate opens and stops both when
// it closes.
func (e *Engine) syncGate(ctx context.Context, l *loop) {
	open := l.gate.CanPoll()

	switch {
	case open && l.pollTicker == nil:
		l.pollTicker = time.NewTicker(e.cfg.PollInterval)
		e.subscribe(ctx, l)
		e.requestPoll(ctx, l, "gate")
	case !open && l.pollTicker != nil:
		l.pollTicker.Stop()
		l.pollTicker = nil
		e.unsubscribe(l)
	}
}

func (e *Engine) subscribe(ctx context.Context, l *loop) {
	if e.feed == nil {
		return
	}

	subCtx, cancel := context.WithCancel(ctx)
	// Wake-ups only hint that a poll is worth doing; when the loop is
	// backed up the next tick covers a dropped one.
	stop, err := e.feed.Listen(subCtx, func(ev model.OrderEvent) {
		select {
		case e.msgs <- wakeMsg{event: ev}:
		case <-subCtx.Done():
		default:
		}
	})
	if err != nil {
		cancel()
		e.logger.Warnf("subscribe to order feed: %v", err)
		return
	}

	l.cancelFeed = cancel
	l.stopFeed = stop
}

func (e *Engine) unsubscribe(l *loop) {
	if l.cancelFeed == nil {
		return
	}
	l.cancelFeed()
	if l.stopFeed != nil {
		l.stopFeed()
	}
	l.cancelFeed, l.stopFeed = nil, nil
}

func (e *Engine) shutdown(l *loop) {
	e.dismiss(l, Shutdown)
	if l.pollTicker != nil {
		l.pollTicker.Stop()
		l.pollTicker = nil
	}
	e.unsubscribe(l)
	if l.pendingAccept != nil {
		l.pendingAccept <- claimReply{err: errs.ErrNoSession}
		l.pendingAccept = nil
	}
	l.phase = PhaseIdle
}

func (e *Engine) publish(l *loop) {
	st := State{
		Phase:          l.phase,
		Online:         l.gate.Online(),
		HasActiveOrder: l.gate.HasActiveOrder(),
		Seen:           l.gate.SeenIDs(),
	}
	if l.current != nil {
		a := *l.current
		st.Alert = &a
	}

	e.mu.Lock()
	e.state = st
	e.mu.Unlock()
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.RequestTimeout)
}

func tickerC(t *time.Ticker) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}
