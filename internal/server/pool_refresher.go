package server

import (
	"context"
	"sync"
	"time"

	"github.com/dchamindu826/Rider-App/internal/model"
	"go.uber.org/zap"
)

// PoolRefresher keeps the list of available orders shown on the order pool
// screen. The list is reloaded on a fixed interval and shared by all
// requests.
type PoolRefresher struct {
	storage  Storage
	interval time.Duration
	timeout  time.Duration
	logger   *zap.SugaredLogger

	mu       sync.RWMutex
	orders   []model.Order
	loadedAt time.Time
}

func NewPoolRefresher(storage Storage, interval, timeout time.Duration, logger *zap.SugaredLogger) *PoolRefresher {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &PoolRefresher{
		storage:  storage,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

func (p *PoolRefresher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.refresh(ctx); err != nil && ctx.Err() == nil {
			p.logger.Errorf("refresh order pool: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Orders returns the last loaded pool, loading it first if the refresher
// has not run yet.
func (p *PoolRefresher) Orders(ctx context.Context) ([]model.Order, error) {
	p.mu.RLock()
	loaded := !p.loadedAt.IsZero()
	orders := p.orders
	p.mu.RUnlock()

	if loaded {
		return orders, nil
	}

	if err := p.refresh(ctx); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.orders, nil
}

func (p *PoolRefresher) LoadedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loadedAt
}

func (p *PoolRefresher) refresh(ctx context.Context) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	orders, err := p.storage.ListAvailableOrders(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = orders
	p.loadedAt = time.Now()
	return nil
}
