package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// memoryStore keeps seen markers in process memory; they are lost on restart.
// Expired markers are invisible to SeenItem immediately and are purged every
// CleanupInterval until Close.
type memoryStore struct {
	items *cache.Cache

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newMemoryStore(opts Options) *memoryStore {
	m := &memoryStore{
		// No built-in janitor: it only stops when the cache is collected.
		items: cache.New(opts.ItemTTL, cache.NoExpiration),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go m.sweep(opts.CleanupInterval)
	return m
}

func (m *memoryStore) sweep(interval time.Duration) {
	defer close(m.done)
	if interval <= 0 {
		interval = defaultCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.items.DeleteExpired()
		}
	}
}

func memoryKey(endpointID string, id uuid.UUID) string {
	return endpointID + "/" + id.String()
}

// Close stops the sweeper and drops every marker. It is safe to call twice.
func (m *memoryStore) Close() error {
	m.closeOnce.Do(func() {
		close(m.stop)
		<-m.done
		m.items.Flush()
	})
	return nil
}

func (m *memoryStore) SeenItem(endpointID string, id uuid.UUID) (bool, error) {
	if endpointID == "" {
		return false, fmt.Errorf("endpoint id is required")
	}
	_, found := m.items.Get(memoryKey(endpointID, id))
	return found, nil
}

func (m *memoryStore) MarkItems(endpointID string, ids []uuid.UUID) error {
	if endpointID == "" {
		return fmt.Errorf("endpoint id is required")
	}
	for _, id := range ids {
		m.items.SetDefault(memoryKey(endpointID, id), struct{}{})
	}
	return nil
}
