package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type fakeMutator struct {
	inserts  int
	replaces int
	removes  int
	err      error
}

func (f *fakeMutator) Insert(_ context.Context, ownerID string, _ core.TransactionFields) (string, error) {
	f.inserts++
	return "id-1", f.err
}

func (f *fakeMutator) Replace(_ context.Context, id string, _ core.TransactionFields) error {
	f.replaces++
	return f.err
}

func (f *fakeMutator) Remove(_ context.Context, id string) error {
	f.removes++
	return f.err
}

func valid() core.TransactionFields {
	return core.TransactionFields{
		Title:  "Groceries",
		Amount: decimal.NewFromInt(80),
		Date:   "2024-02-01",
		Type:   core.Expense,
	}
}

func TestCreateRejectsBeforeRemoteCall(t *testing.T) {
	store := &fakeMutator{}
	g := New(store)

	bad := valid()
	bad.Amount = decimal.NewFromInt(-5)
	err := g.Create(context.Background(), "alice", bad)

	var ve *core.ValidationError
	if !errors.As(err, &ve) || ve.Field != "amount" {
		t.Fatalf("expected ValidationError on amount, got %v", err)
	}
	if store.inserts != 0 {
		t.Fatalf("remote store was called %d times for invalid input", store.inserts)
	}
}

func TestCreateForwardsAndWrapsFailures(t *testing.T) {
	store := &fakeMutator{}
	g := New(store)

	if err := g.Create(context.Background(), "alice", valid()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if store.inserts != 1 {
		t.Fatalf("expected 1 insert, got %d", store.inserts)
	}

	cause := errors.New("backend down")
	store.err = cause
	err := g.Create(context.Background(), "alice", valid())
	var re *core.RemoteError
	if !errors.As(err, &re) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped RemoteError, got %v", err)
	}
}

func TestUpdateValidationAndNotFound(t *testing.T) {
	store := &fakeMutator{}
	g := New(store)

	bad := valid()
	bad.Title = ""
	err := g.Update(context.Background(), "id-1", bad)
	var ve *core.ValidationError
	if !errors.As(err, &ve) || ve.Field != "title" {
		t.Fatalf("expected ValidationError on title, got %v", err)
	}
	if store.replaces != 0 {
		t.Fatalf("remote store called for invalid update")
	}

	store.err = &core.NotFoundError{ID: "id-1"}
	err = g.Update(context.Background(), "id-1", valid())
	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("NotFoundError should pass through, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := &fakeMutator{err: &core.NotFoundError{ID: "ghost"}}
	g := New(store)

	if err := g.Delete(context.Background(), "ghost"); err != nil {
		t.Fatalf("deleting a missing id should be a no-op, got %v", err)
	}

	store.err = errors.New("backend down")
	err := g.Delete(context.Background(), "id-1")
	var re *core.RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
}
