// internal/store/store.go
//
// Package store holds wizard sessions between HTTP requests. A Record pairs
// the booking session with its active gateway attempt so both survive the
// round trip through the checkout widget.
package store

import (
	"context"
	"sync"

	"github.com/example/tour-booking-gateway/internal/gateway"
	"github.com/example/tour-booking-gateway/internal/session"
	errs "github.com/example/tour-booking-gateway/pkg/errors"
)

type Record struct {
	Session *session.Session `json:"session"`
	Attempt *gateway.Attempt `json:"attempt,omitempty"`
}

type Store interface {
	Get(ctx context.Context, id string) (*Record, error)
	Put(ctx context.Context, id string, rec *Record) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is the single-process default when Redis is disabled.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, errs.New(errs.CodeNotFound, "session not found")
	}
	return rec, nil
}

func (s *MemoryStore) Put(_ context.Context, id string, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = rec
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}
