package site

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/starford/presswork/internal/logger"
)

// Service holds the current snapshot for long-running consumers and swaps it
// on rebuild. Readers never observe a partially built snapshot.
type Service struct {
	builder *Builder
	logger  logger.Logger

	mu      sync.Mutex // serialises rebuilds
	current atomic.Pointer[Snapshot]

	onBuilt  []func(*Snapshot)
	onFailed []func(error)
}

// NewService creates a Service around builder.
func NewService(builder *Builder, log logger.Logger) *Service {
	return &Service{builder: builder, logger: log}
}

// OnBuilt registers a callback run after every successful rebuild.
func (s *Service) OnBuilt(fn func(*Snapshot)) { s.onBuilt = append(s.onBuilt, fn) }

// OnFailed registers a callback run after every failed rebuild.
func (s *Service) OnFailed(fn func(error)) { s.onFailed = append(s.onFailed, fn) }

// Snapshot returns the current snapshot, or nil before the first build.
func (s *Service) Snapshot() *Snapshot { return s.current.Load() }

// Ready reports whether a snapshot is available.
func (s *Service) Ready() bool { return s.current.Load() != nil }

// Rebuild runs a build and publishes the result. On failure the previous
// snapshot stays current.
func (s *Service) Rebuild(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.builder.Build(ctx)
	if err != nil {
		s.logger.Error("site: rebuild failed", logger.Error(err))
		for _, fn := range s.onFailed {
			fn(err)
		}
		return nil, err
	}
	s.current.Store(snap)
	for _, fn := range s.onBuilt {
		fn(snap)
	}
	return snap, nil
}
