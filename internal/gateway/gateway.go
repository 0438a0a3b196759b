// Package gateway validates and forwards mutations to the remote store.
// It never touches the ledger cache: a mutation becomes visible only when
// the subscription delivers the next snapshot, so callers must treat every
// operation here as eventually, not immediately, consistent.
package gateway

import (
	"context"
	"errors"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/remote"
)

type Gateway struct {
	store remote.Mutator
}

func New(store remote.Mutator) *Gateway {
	return &Gateway{store: store}
}

// Create validates the fields and inserts a new record owned by ownerID.
// Validation failures are returned before any remote call is attempted.
func (g *Gateway) Create(ctx context.Context, ownerID string, fields core.TransactionFields) error {
	if err := fields.Validate(); err != nil {
		return err
	}
	id, err := g.store.Insert(ctx, ownerID, fields)
	if err != nil {
		return &core.RemoteError{Op: "insert", Err: err}
	}
	slog.InfoContext(ctx, "Transaction created", "id", id, "owner_id", ownerID)
	return nil
}

// Update validates the fields and replaces everything but id and owner on
// the target record. Ownership is enforced by the store, not re-checked
// here.
func (g *Gateway) Update(ctx context.Context, id string, fields core.TransactionFields) error {
	if err := fields.Validate(); err != nil {
		return err
	}
	if err := g.store.Replace(ctx, id, fields); err != nil {
		var nf *core.NotFoundError
		if errors.As(err, &nf) {
			return err
		}
		return &core.RemoteError{Op: "replace", Err: err}
	}
	slog.InfoContext(ctx, "Transaction updated", "id", id)
	return nil
}

// Delete removes the record. Deleting an id the store does not know is a
// no-op, so the operation is idempotent.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	if err := g.store.Remove(ctx, id); err != nil {
		var nf *core.NotFoundError
		if errors.As(err, &nf) {
			slog.DebugContext(ctx, "Delete of unknown transaction ignored", "id", id)
			return nil
		}
		return &core.RemoteError{Op: "remove", Err: err}
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}
