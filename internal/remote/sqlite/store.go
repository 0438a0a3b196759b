// Package sqlite is the durable remote store backend. Mutations write to a
// SQLite database; live subscriptions re-query the owner's result set after
// every local mutation and, when a change publisher is configured, after
// change notifications from other processes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/remote"
)

// ChangePublisher fans a ledger-change event out to other processes.
// Implemented by the AMQP client; nil disables cross-process notification.
type ChangePublisher interface {
	PublishLedgerChanged(ctx context.Context, ownerID string) error
}

type Store struct {
	db  *sql.DB
	pub ChangePublisher

	mu   sync.Mutex
	subs map[*subscription]struct{}
}

func NewStore(dbPath string, pub ChangePublisher) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		db:   db,
		pub:  pub,
		subs: make(map[*subscription]struct{}),
	}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, ownerID string, fields core.TransactionFields) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, owner_id, title, amount, category, date, type)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, ownerID, fields.Title, fields.Amount.String(), fields.Category, fields.Date, string(fields.Type))
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved", "id", id, "owner_id", ownerID, "type", fields.Type)
	s.changed(ctx, ownerID)
	return id, nil
}

func (s *Store) Replace(ctx context.Context, id string, fields core.TransactionFields) error {
	ownerID, err := s.ownerOf(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE transactions SET title = ?, amount = ?, category = ?, date = ?, type = ? WHERE id = ?`,
		fields.Title, fields.Amount.String(), fields.Category, fields.Date, string(fields.Type), id)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	s.changed(ctx, ownerID)
	return nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	ownerID, err := s.ownerOf(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.changed(ctx, ownerID)
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

// Refresh re-delivers snapshots to the owner's live subscriptions. Called
// when a change notification from another process arrives.
func (s *Store) Refresh(ownerID string) {
	s.mu.Lock()
	s.notifyLocked(ownerID)
	s.mu.Unlock()
}

func (s *Store) ownerOf(ctx context.Context, id string) (string, error) {
	var ownerID string
	err := s.db.QueryRowContext(ctx, `SELECT owner_id FROM transactions WHERE id = ?`, id).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", &core.NotFoundError{ID: id}
	}
	if err != nil {
		return "", fmt.Errorf("look up transaction: %w", err)
	}
	return ownerID, nil
}

// changed notifies local subscriptions and, when configured, other
// processes. Publish failures are logged, not surfaced: the local write
// already succeeded.
func (s *Store) changed(ctx context.Context, ownerID string) {
	s.mu.Lock()
	s.notifyLocked(ownerID)
	s.mu.Unlock()

	if s.pub == nil {
		return
	}
	if err := s.pub.PublishLedgerChanged(ctx, ownerID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger change", "owner_id", ownerID, "error", err)
	}
}

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

func (s *Store) snapshot(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, title, amount, category, date, type
		 FROM transactions WHERE owner_id = ?`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		var tx core.Transaction
		var amount, typ string
		if err := rows.Scan(&tx.ID, &tx.OwnerID, &tx.Title, &amount, &tx.Category, &tx.Date, &typ); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", amount, err)
		}
		tx.Type = core.TxType(typ)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	// Date descending with id as tie-break, matching the memory backend.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
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
			snap, err := sub.store.snapshot(ctx, sub.owner)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to load snapshot", "owner_id", sub.owner, "error", err)
				continue
			}
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
