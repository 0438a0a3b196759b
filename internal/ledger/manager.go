package ledger

import (
	"context"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/remote"
)

// Manager owns the lifetime of exactly one remote subscription and feeds
// its deliveries into the cache. Owner changes tear the old subscription
// down before the new one is requested, so deliveries for a superseded
// owner can never reach the cache.
type Manager struct {
	source remote.Subscriber
	cache  *Cache
}

func NewManager(source remote.Subscriber, cache *Cache) *Manager {
	return &Manager{source: source, cache: cache}
}

// Run consumes owner changes until the context is cancelled or the owner
// channel closes. An empty owner id means signed out: no subscription and
// a cleared cache. Run is the only goroutine touching the subscription,
// so snapshot deliveries are applied one at a time.
func (m *Manager) Run(ctx context.Context, owners <-chan string) error {
	var (
		owner string
		sub   remote.Subscription
		snaps <-chan []core.Transaction
	)

	teardown := func() {
		if sub == nil {
			return
		}
		if err := sub.Close(); err != nil {
			slog.Error("Failed to close subscription", "owner_id", owner, "error", err)
		}
		sub = nil
		snaps = nil
	}
	defer teardown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case next, ok := <-owners:
			if !ok {
				return nil
			}
			if next == owner && sub != nil {
				continue
			}
			// The old subscription goes first; a late delivery on its
			// channel is simply never drained again.
			teardown()
			owner = next

			if owner == "" {
				m.cache.clear()
				slog.Info("Owner signed out, ledger cleared")
				continue
			}

			m.cache.reset()
			s, err := m.source.Subscribe(ctx, owner)
			if err != nil {
				m.cache.fail(err)
				slog.Error("Failed to establish subscription", "owner_id", owner, "error", err)
				continue
			}
			sub = s
			snaps = s.Snapshots()
			slog.Info("Subscription established", "owner_id", owner)

		case snapshot, ok := <-snaps:
			if !ok {
				snaps = nil
				continue
			}
			m.cache.replace(snapshot)
		}
	}
}
