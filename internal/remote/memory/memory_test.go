package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func fields(title, date string, typ core.TxType, amount int64) core.TransactionFields {
	return core.TransactionFields{
		Title:  title,
		Amount: decimal.NewFromInt(amount),
		Date:   date,
		Type:   typ,
	}
}

func recv(t *testing.T, ch <-chan []core.Transaction) []core.Transaction {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatalf("snapshot channel closed")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for snapshot")
		return nil
	}
}

func TestSubscribeDeliversFullSnapshots(t *testing.T) {
	ctx := context.Background()
	s := New()

	sub, err := s.Subscribe(ctx, "alice")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	if snap := recv(t, sub.Snapshots()); len(snap) != 0 {
		t.Fatalf("initial snapshot should be empty, got %d", len(snap))
	}

	id, err := s.Insert(ctx, "alice", fields("Salary", "2024-01-05", core.Income, 1000))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	snap := recv(t, sub.Snapshots())
	if len(snap) != 1 || snap[0].ID != id || snap[0].OwnerID != "alice" {
		t.Fatalf("snapshot after insert = %+v", snap)
	}

	if _, err := s.Insert(ctx, "alice", fields("Rent", "2024-01-10", core.Expense, 300)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	snap = recv(t, sub.Snapshots())
	if len(snap) != 2 {
		t.Fatalf("expected full result set, got %d records", len(snap))
	}
	if snap[0].Title != "Rent" || snap[1].Title != "Salary" {
		t.Fatalf("expected date-descending order, got %s then %s", snap[0].Title, snap[1].Title)
	}
}

func TestSnapshotsAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.Insert(ctx, "bob", fields("Bob's salary", "2024-01-01", core.Income, 500)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	sub, err := s.Subscribe(ctx, "alice")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	if snap := recv(t, sub.Snapshots()); len(snap) != 0 {
		t.Fatalf("alice should not see bob's records, got %d", len(snap))
	}
}

func TestReplaceAndRemove(t *testing.T) {
	ctx := context.Background()
	s := New()
	id, _ := s.Insert(ctx, "alice", fields("Salary", "2024-01-05", core.Income, 1000))

	updated := fields("Salary (corrected)", "2024-01-06", core.Income, 1100)
	if err := s.Replace(ctx, id, updated); err != nil {
		t.Fatalf("replace: %v", err)
	}

	sub, _ := s.Subscribe(ctx, "alice")
	defer sub.Close()
	snap := recv(t, sub.Snapshots())
	if snap[0].Title != "Salary (corrected)" || snap[0].ID != id {
		t.Fatalf("replace did not keep id/fields: %+v", snap[0])
	}

	if err := s.Remove(ctx, id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if snap := recv(t, sub.Snapshots()); len(snap) != 0 {
		t.Fatalf("expected empty snapshot after remove, got %d", len(snap))
	}

	var nf *core.NotFoundError
	if err := s.Replace(ctx, "missing", updated); !errors.As(err, &nf) {
		t.Fatalf("replace missing: %v", err)
	}
	if err := s.Remove(ctx, "missing"); !errors.As(err, &nf) {
		t.Fatalf("remove missing: %v", err)
	}
}

func TestCloseStopsDeliveries(t *testing.T) {
	ctx := context.Background()
	s := New()
	sub, _ := s.Subscribe(ctx, "alice")
	recv(t, sub.Snapshots())

	if err := sub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Mutations after close must not hang on the dead subscription.
	if _, err := s.Insert(ctx, "alice", fields("Salary", "2024-01-05", core.Income, 1000)); err != nil {
		t.Fatalf("insert after close: %v", err)
	}

	select {
	case _, ok := <-sub.Snapshots():
		if ok {
			t.Fatalf("received delivery after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("snapshot channel not closed after Close")
	}
}
