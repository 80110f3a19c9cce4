package session

import (
	"context"
	"errors"
	"time"

	"github.com/imrishuroy/go-chat-orderflow/internal/observability"
	"go.uber.org/zap"
)

// Manager applies the session lifecycle on top of a Store: fresh sessions
// on first contact or after the idle timeout, and best-effort persistence.
type Manager struct {
	store   Store
	idle    time.Duration
	nowFunc func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.nowFunc = now }
}

// NewManager wraps store. Sessions idle for longer than idle are replaced.
func NewManager(store Store, idle time.Duration, opts ...Option) *Manager {
	m := &Manager{store: store, idle: idle, nowFunc: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire returns the customer's current session, or a fresh one when none
// is stored, the stored one expired, or the store failed. It never fails.
func (m *Manager) Acquire(ctx context.Context, identity string) *Session {
	now := m.nowFunc()
	logger := observability.FromContext(ctx)

	s, err := m.store.Load(ctx, identity)
	switch {
	case errors.Is(err, ErrNotFound):
		return New(identity, now)
	case err != nil:
		logger.Error("session load failed, using a throwaway session",
			zap.String("customer", identity), zap.Error(err))
		return New(identity, now)
	case s.Expired(now, m.idle):
		logger.Info("session expired", zap.String("customer", identity),
			zap.Time("last_activity", s.LastActivity))
		return New(identity, now)
	}
	s.LastActivity = now
	return s
}

// Persist normalizes and saves s. Store failures are logged, not returned.
func (m *Manager) Persist(ctx context.Context, s *Session) {
	s.Normalize()
	if err := m.store.Save(ctx, s); err != nil {
		observability.FromContext(ctx).Error("session save failed",
			zap.String("customer", s.Identity), zap.Error(err))
	}
}
