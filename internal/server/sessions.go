package server

import (
	"context"
	"sync"
	"time"

	"github.com/dchamindu826/Rider-App/internal/alert"
	"github.com/dchamindu826/Rider-App/internal/location"
	"github.com/dchamindu826/Rider-App/internal/model"
	"github.com/dchamindu826/Rider-App/internal/sound"
	"go.uber.org/zap"
)

type riderSession struct {
	riderID   string
	engine    *alert.Engine
	resolver  *alert.Resolver
	tracker   *location.Tracker
	presenter *alertPresenter
	player    sound.Player
	cancel    context.CancelFunc
}

// Sessions owns one alert engine per signed-in rider.
type Sessions struct {
	storage   Storage
	feed      alert.Feed
	newPlayer func() sound.Player
	cfg       alert.Config
	logger    *zap.SugaredLogger

	baseCtx context.Context
	stopAll context.CancelFunc

	mu     sync.Mutex
	active map[string]*riderSession
}

func NewSessions(storage Storage, feed alert.Feed, newPlayer func() sound.Player, cfg alert.Config, logger *zap.SugaredLogger) *Sessions {
	if newPlayer == nil {
		newPlayer = func() sound.Player { return sound.Nop{} }
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Sessions{
		storage:   storage,
		feed:      feed,
		newPlayer: newPlayer,
		cfg:       cfg,
		logger:    logger,
		baseCtx:   ctx,
		stopAll:   cancel,
		active:    make(map[string]*riderSession),
	}
}

// Start returns the rider's session, starting one if needed, with its gate
// matching the rider's availability and active order on the backend.
func (s *Sessions) Start(ctx context.Context, rider model.Rider) (*riderSession, error) {
	s.mu.Lock()
	if sess, ok := s.active[rider.ID]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	sess := s.newSession(rider.ID)
	s.active[rider.ID] = sess
	s.mu.Unlock()

	if err := s.sync(ctx, sess, rider); err != nil {
		s.Stop(rider.ID)
		return nil, err
	}

	s.logger.Infof("alert session started for rider %s", rider.ID)
	return sess, nil
}

func (s *Sessions) newSession(riderID string) *riderSession {
	ctx, cancel := context.WithCancel(s.baseCtx)

	presenter := newAlertPresenter(riderID, s.logger)
	player := s.newPlayer()
	resolver := alert.NewResolver(s.storage, riderID, s.cfg.RequestTimeout)
	engine := alert.NewEngine(s.storage, s.feed, resolver, player, presenter, s.logger.With("rider", riderID), s.cfg)

	go func() {
		if err := engine.Run(ctx); err != nil {
			s.logger.Errorf("alert engine for rider %s: %v", riderID, err)
		}
	}()

	return &riderSession{
		riderID:   riderID,
		engine:    engine,
		resolver:  resolver,
		tracker:   location.NewTracker(s.storage, riderID, s.cfg.RequestTimeout, s.logger),
		presenter: presenter,
		player:    player,
		cancel:    cancel,
	}
}

func (s *Sessions) sync(ctx context.Context, sess *riderSession, rider model.Rider) error {
	if err := s.syncActive(ctx, sess); err != nil {
		return err
	}
	if err := sess.engine.SetOnline(ctx, rider.IsOnline()); err != nil {
		return err
	}
	sess.tracker.SetOnline(rider.IsOnline())
	return nil
}

// syncActive reads the rider's active order from the backend. Orders can be
// cancelled or reassigned without going through this process, so the gate
// follows the backend rather than local accept and complete calls alone.
func (s *Sessions) syncActive(ctx context.Context, sess *riderSession) error {
	fetchCtx := ctx
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	active, err := s.storage.GetActiveOrder(fetchCtx, sess.riderID)
	if err != nil {
		return err
	}
	return sess.engine.SetActiveOrder(ctx, active != nil)
}

// SetActiveOrder updates a running session's gate from an active-order value
// the caller already fetched. It is a no-op for riders without a session.
func (s *Sessions) SetActiveOrder(ctx context.Context, riderID string, active bool) {
	sess, ok := s.Get(riderID)
	if !ok {
		return
	}
	if err := sess.engine.SetActiveOrder(ctx, active); err != nil {
		s.logger.Warnf("sync active order for rider %s: %v", riderID, err)
	}
}

// ResyncAll refreshes the active-order flag of every running session.
func (s *Sessions) ResyncAll(ctx context.Context) {
	s.mu.Lock()
	list := make([]*riderSession, 0, len(s.active))
	for _, sess := range s.active {
		list = append(list, sess)
	}
	s.mu.Unlock()

	for _, sess := range list {
		if err := s.syncActive(ctx, sess); err != nil && ctx.Err() == nil {
			s.logger.Warnf("sync active order for rider %s: %v", sess.riderID, err)
		}
	}
}

func (s *Sessions) RunResync(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ResyncAll(ctx)
		}
	}
}

func (s *Sessions) Get(riderID string) (*riderSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.active[riderID]
	return sess, ok
}

// Stop ends the rider's session and waits for its engine to exit.
func (s *Sessions) Stop(riderID string) {
	s.mu.Lock()
	sess, ok := s.active[riderID]
	delete(s.active, riderID)
	s.mu.Unlock()

	if !ok {
		return
	}
	sess.cancel()
	<-sess.engine.Done()
	if err := sess.player.Stop(); err != nil {
		s.logger.Debugf("stop alert sound for rider %s: %v", riderID, err)
	}
	s.logger.Infof("alert session stopped for rider %s", riderID)
}

func (s *Sessions) StopAll() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.active))
	for id := range s.active {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.Stop(id)
	}
	s.stopAll()
}
