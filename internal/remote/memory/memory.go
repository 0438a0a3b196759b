// Package memory is an in-process remote store. It backs tests and the
// default development backend with the same snapshot semantics as the
// SQLite store: every mutation re-delivers the full owner-scoped result
// set to each live subscription.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/remote"
)

type Store struct {
	mu   sync.Mutex
	recs map[string]core.Transaction
	subs map[*subscription]struct{}
}

func New() *Store {
	return &Store{
		recs: make(map[string]core.Transaction),
		subs: make(map[*subscription]struct{}),
	}
}

// Seed inserts records directly, bypassing validation. Test helper.
func (s *Store) Seed(txs ...core.Transaction) {
	s.mu.Lock()
	for _, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		s.recs[tx.ID] = tx
	}
	s.mu.Unlock()
}

func (s *Store) Insert(_ context.Context, ownerID string, fields core.TransactionFields) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	s.recs[id] = core.Transaction{ID: id, OwnerID: ownerID, TransactionFields: fields}
	s.notifyLocked(ownerID)
	s.mu.Unlock()
	return id, nil
}

func (s *Store) Replace(_ context.Context, id string, fields core.TransactionFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.recs[id]
	if !ok {
		return &core.NotFoundError{ID: id}
	}
	cur.TransactionFields = fields // id and owner stay as assigned
	s.recs[id] = cur
	s.notifyLocked(cur.OwnerID)
	return nil
}

func (s *Store) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.recs[id]
	if !ok {
		return &core.NotFoundError{ID: id}
	}
	delete(s.recs, id)
	s.notifyLocked(cur.OwnerID)
	return nil
}

func (s *Store) Subscribe(ctx context.Context, ownerID string) (remote.Subscription, error) {
	sub := &subscription{
		store: s,
		owner: ownerID,
		kick:  make(chan struct{}, 1),
		out:   make(chan []core.Transaction),
		done:  make(chan struct{}),
	}
	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	sub.kick <- struct{}{} // initial snapshot
	go sub.pump(ctx)
	return sub, nil
}

// notifyLocked kicks every live subscription of the owner. The send is
// non-blocking: a pending kick already guarantees a fresh re-query.
func (s *Store) notifyLocked(ownerID string) {
	for sub := range s.subs {
		if sub.owner != ownerID {
			continue
		}
		select {
		case sub.kick <- struct{}{}:
		default:
		}
	}
}

// snapshot returns the owner's records ordered by date descending, ties
// broken by id for deterministic deliveries.
func (s *Store) snapshot(ownerID string) []core.Transaction {
	s.mu.Lock()
	out := make([]core.Transaction, 0)
	for _, tx := range s.recs {
		if tx.OwnerID == ownerID {
			out = append(out, tx)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) drop(sub *subscription) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
}

type subscription struct {
	store *Store
	owner string
	kick  chan struct{}
	out   chan []core.Transaction
	done  chan struct{}
	once  sync.Once
}

func (sub *subscription) Snapshots() <-chan []core.Transaction {
	return sub.out
}

func (sub *subscription) Close() error {
	sub.once.Do(func() {
		sub.store.drop(sub)
		close(sub.done)
	})
	return nil
}

func (sub *subscription) pump(ctx context.Context) {
	defer close(sub.out)
	for {
		select {
		case <-ctx.Done():
			sub.store.drop(sub)
			return
		case <-sub.done:
			return
		case <-sub.kick:
			snap := sub.store.snapshot(sub.owner)
			select {
			case sub.out <- snap:
			case <-ctx.Done():
				sub.store.drop(sub)
				return
			case <-sub.done:
				return
			}
		}
	}
}
