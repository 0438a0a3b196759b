package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "fintrack.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func fields(title, date string, typ core.TxType, amount string) core.TransactionFields {
	a, _ := decimal.NewFromString(amount)
	return core.TransactionFields{Title: title, Amount: a, Category: "Misc", Date: date, Type: typ}
}

func recv(t *testing.T, ch <-chan []core.Transaction) []core.Transaction {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatalf("snapshot channel closed")
		}
		return snap
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for snapshot")
		return nil
	}
}

func TestInsertQueryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Insert(ctx, "alice", fields("Salary", "2024-01-05", core.Income, "1000.50"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	sub, err := s.Subscribe(ctx, "alice")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	snap := recv(t, sub.Snapshots())
	if len(snap) != 1 {
		t.Fatalf("expected 1 record, got %d", len(snap))
	}
	got := snap[0]
	if got.ID != id || got.OwnerID != "alice" || got.Title != "Salary" || got.Date != "2024-01-05" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.Amount.Equal(decimal.RequireFromString("1000.50")) {
		t.Fatalf("amount = %s", got.Amount)
	}
	if got.Type != core.Income {
		t.Fatalf("type = %s", got.Type)
	}
}

func TestSubscriptionOrderAndScope(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Insert(ctx, "bob", fields("Bob's rent", "2024-01-01", core.Expense, "700")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := s.Insert(ctx, "alice", fields("Groceries", "2024-02-10", core.Expense, "80")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := s.Insert(ctx, "alice", fields("Salary", "2024-03-01", core.Income, "1000")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	sub, err := s.Subscribe(ctx, "alice")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	snap := recv(t, sub.Snapshots())
	if len(snap) != 2 {
		t.Fatalf("expected only alice's records, got %d", len(snap))
	}
	if snap[0].Title != "Salary" || snap[1].Title != "Groceries" {
		t.Fatalf("expected date-descending order, got %s then %s", snap[0].Title, snap[1].Title)
	}
}

func TestReplaceRemoveAndNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.Insert(ctx, "alice", fields("Salary", "2024-01-05", core.Income, "1000"))

	if err := s.Replace(ctx, id, fields("Salary (fixed)", "2024-01-06", core.Income, "1100")); err != nil {
		t.Fatalf("replace: %v", err)
	}
	sub, _ := s.Subscribe(ctx, "alice")
	defer sub.Close()
	snap := recv(t, sub.Snapshots())
	if snap[0].Title != "Salary (fixed)" || snap[0].ID != id {
		t.Fatalf("replace result: %+v", snap[0])
	}

	if err := s.Remove(ctx, id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if snap := recv(t, sub.Snapshots()); len(snap) != 0 {
		t.Fatalf("expected empty snapshot after remove, got %d", len(snap))
	}

	var nf *core.NotFoundError
	if err := s.Replace(ctx, "missing", fields("x", "2024-01-01", core.Expense, "1")); !errors.As(err, &nf) {
		t.Fatalf("replace missing: %v", err)
	}
	if err := s.Remove(ctx, "missing"); !errors.As(err, &nf) {
		t.Fatalf("remove missing: %v", err)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	owners []string
}

func (p *recordingPublisher) PublishLedgerChanged(_ context.Context, ownerID string) error {
	p.mu.Lock()
	p.owners = append(p.owners, ownerID)
	p.mu.Unlock()
	return nil
}

func TestMutationsPublishChanges(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	s, err := NewStore(filepath.Join(t.TempDir(), "fintrack.db"), pub)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	id, _ := s.Insert(ctx, "alice", fields("Salary", "2024-01-05", core.Income, "1000"))
	_ = s.Replace(ctx, id, fields("Salary", "2024-01-05", core.Income, "1200"))
	_ = s.Remove(ctx, id)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.owners) != 3 {
		t.Fatalf("expected 3 change events, got %d", len(pub.owners))
	}
	for _, o := range pub.owners {
		if o != "alice" {
			t.Fatalf("change event for wrong owner: %s", o)
		}
	}
}

func TestRefreshRedelivers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sub, _ := s.Subscribe(ctx, "alice")
	defer sub.Close()
	recv(t, sub.Snapshots())

	s.Refresh("alice")
	if snap := recv(t, sub.Snapshots()); snap == nil {
		t.Fatalf("expected a re-delivered snapshot")
	}
}
