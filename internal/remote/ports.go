// Package remote defines the ports of the remote document store. The engine
// consumes the store only through these interfaces: a three-operation
// mutation sink and a subscription source delivering full result snapshots.
package remote

import (
	"context"

	"fintrack/internal/core"
)

type (
	// Mutator is the write side of the store. Insert assigns the record id;
	// Replace and Remove return *core.NotFoundError when the id is unknown.
	Mutator interface {
		Insert(ctx context.Context, ownerID string, fields core.TransactionFields) (id string, err error)
		Replace(ctx context.Context, id string, fields core.TransactionFields) error
		Remove(ctx context.Context, id string) error
	}

	// Subscriber opens a live query scoped to one owner, ordered by date
	// descending. Every change re-delivers the complete result set.
	Subscriber interface {
		Subscribe(ctx context.Context, ownerID string) (Subscription, error)
	}

	// Subscription is an active live query. Snapshots delivers full result
	// sets one at a time; the channel is closed after Close or when the
	// subscribing context is cancelled. Close must release the handle, or
	// stale data keeps arriving after logout.
	Subscription interface {
		Snapshots() <-chan []core.Transaction
		Close() error
	}

	// Store is a complete remote store backend.
	Store interface {
		Mutator
		Subscriber
	}
)
