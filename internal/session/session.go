// Package session keeps the small amount of state the rider client persists
// between runs: the record of every signed-in rider and the last
// announcement each rider has read.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/dchamindu826/Rider-App/internal/model"
)

const (
	RiderDataKey            = "riderData"
	SignedInKey             = "signedInRiders"
	LastReadAnnouncementKey = "lastReadAnnouncementId"
)

// Store is a string key-value store. Get returns "" for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// indexMu serialises updates of the signed-in index within the process.
var indexMu sync.Mutex

func riderKey(riderID string) string {
	return RiderDataKey + ":" + riderID
}

// SaveRider stores the rider record under its own key and adds the rider to
// the signed-in index.
func SaveRider(ctx context.Context, store Store, rider model.Rider) error {
	data, err := json.Marshal(rider)
	if err != nil {
		return fmt.Errorf("encode rider: %w", err)
	}
	if err := store.Set(ctx, riderKey(rider.ID), string(data)); err != nil {
		return err
	}

	return updateIndex(ctx, store, func(ids []string) []string {
		if slices.Contains(ids, rider.ID) {
			return ids
		}
		return append(ids, rider.ID)
	})
}

// LoadRider returns false when no record is stored for the rider.
func LoadRider(ctx context.Context, store Store, riderID string) (model.Rider, bool, error) {
	data, err := store.Get(ctx, riderKey(riderID))
	if err != nil {
		return model.Rider{}, false, err
	}
	if data == "" {
		return model.Rider{}, false, nil
	}

	var rider model.Rider
	if err := json.Unmarshal([]byte(data), &rider); err != nil {
		return model.Rider{}, false, fmt.Errorf("decode rider %s: %w", riderID, err)
	}
	return rider, true, nil
}

// SignedInRiders returns the saved record of every rider in the index, in
// sign-in order. Index entries without a record are skipped.
func SignedInRiders(ctx context.Context, store Store) ([]model.Rider, error) {
	ids, err := readIndex(ctx, store)
	if err != nil {
		return nil, err
	}

	riders := make([]model.Rider, 0, len(ids))
	for _, id := range ids {
		rider, ok, err := LoadRider(ctx, store, id)
		if err != nil {
			return nil, err
		}
		if ok {
			riders = append(riders, rider)
		}
	}
	return riders, nil
}

// ForgetRider removes one rider's record. Other riders are untouched.
func ForgetRider(ctx context.Context, store Store, riderID string) error {
	if err := store.Delete(ctx, riderKey(riderID)); err != nil {
		return err
	}
	return updateIndex(ctx, store, func(ids []string) []string {
		return slices.DeleteFunc(ids, func(id string) bool { return id == riderID })
	})
}

func readIndex(ctx context.Context, store Store) ([]string, error) {
	data, err := store.Get(ctx, SignedInKey)
	if err != nil {
		return nil, err
	}
	if data == "" {
		return []string{}, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, fmt.Errorf("decode signed-in index: %w", err)
	}
	return ids, nil
}

func updateIndex(ctx context.Context, store Store, update func([]string) []string) error {
	indexMu.Lock()
	defer indexMu.Unlock()

	ids, err := readIndex(ctx, store)
	if err != nil {
		return err
	}

	data, err := json.Marshal(update(ids))
	if err != nil {
		return fmt.Errorf("encode signed-in index: %w", err)
	}
	return store.Set(ctx, SignedInKey, string(data))
}

func LastReadAnnouncement(ctx context.Context, store Store, riderID string) (string, error) {
	return store.Get(ctx, LastReadAnnouncementKey+":"+riderID)
}

func MarkAnnouncementRead(ctx context.Context, store Store, riderID, announcementID string) error {
	return store.Set(ctx, LastReadAnnouncementKey+":"+riderID, announcementID)
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key], nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
