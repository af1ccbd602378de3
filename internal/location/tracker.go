// Package location forwards the rider's position to the backend while the
// rider is online.
package location

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/dchamindu826/Rider-App/internal/model"
	"go.uber.org/zap"
)

const (
	MinInterval = 5 * time.Second
	// MinDistance is in metres.
	MinDistance = 10.0

	earthRadius = 6371000.0
)

// DefaultPosition is shown until the first fix arrives.
var DefaultPosition = model.GeoPoint{Lat: 6.9271, Lng: 79.8612}

type Patcher interface {
	UpdateLocation(ctx context.Context, riderID string, p model.GeoPoint) error
}

type Tracker struct {
	store   Patcher
	riderID string
	timeout time.Duration
	logger  *zap.SugaredLogger
	now     func() time.Time

	mu       sync.Mutex
	online   bool
	current  *model.GeoPoint
	lastSent *model.GeoPoint
	lastAt   time.Time
}

func NewTracker(store Patcher, riderID string, timeout time.Duration, logger *zap.SugaredLogger) *Tracker {
	return &Tracker{
		store:   store,
		riderID: riderID,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// SetOnline starts or stops forwarding. The first fix after coming online is
// always sent.
func (t *Tracker) SetOnline(online bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if online && !t.online {
		t.lastSent = nil
	}
	t.online = online
}

func (t *Tracker) Position() model.GeoPoint {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return DefaultPosition
	}
	return *t.current
}

// Update records a fix and patches the backend when the rider is online, at
// least MinInterval has passed and the rider moved MinDistance since the
// last patch. It reports whether a patch was sent.
func (t *Tracker) Update(ctx context.Context, p model.GeoPoint) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current = &p
	if !t.online {
		return false, nil
	}

	now := t.now()
	if t.lastSent != nil {
		if now.Sub(t.lastAt) < MinInterval || Distance(*t.lastSent, p) < MinDistance {
			return false, nil
		}
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	if err := t.store.UpdateLocation(ctx, t.riderID, p); err != nil {
		t.logger.Warnf("update location of rider %s: %v", t.riderID, err)
		return false, err
	}

	t.lastSent = &p
	t.lastAt = now
	return true, nil
}

// Distance is the great-circle distance between a and b in metres.
func Distance(a, b model.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadius * math.Asin(math.Sqrt(h))
}
