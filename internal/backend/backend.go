// Package backend builds a remote store from configuration.
package backend

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/remote"
	"fintrack/internal/remote/memory"
	"fintrack/internal/remote/sqlite"
)

// Type selects the remote store implementation.
type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Config holds what Open needs to build a store.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// AMQP change fan-out, optional, sqlite only
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Result is an opened store with its lifecycle hooks. Run consumes
// cross-process change notifications and blocks until the context is
// cancelled; it is nil when AMQP is not configured.
type Result struct {
	Store   remote.Store
	Cleanup func() error
	Run     func(ctx context.Context) error
}

// Open builds the remote store selected by config.
func Open(cfg Config, logger *log.Logger) (*Result, error) {
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	switch cfg.Type {
	case SQLiteBackend:
		return openSQLite(cfg, logger)
	default:
		logger.Info("Initialized memory backend")
		return &Result{Store: memory.New()}, nil
	}
}

func openSQLite(cfg Config, logger *log.Logger) (*Result, error) {
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change fan-out", "error", err)
			amqpClient = nil
		} else {
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	var pub sqlite.ChangePublisher
	if amqpClient != nil {
		pub = amqpClient
	}
	store, err := sqlite.NewStore(cfg.SQLiteDBPath, pub)
	if err != nil {
		if amqpClient != nil {
			amqpClient.Close()
		}
		return nil, fmt.Errorf("initialize sqlite store: %w", err)
	}

	logger.Info("Initialized SQLite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	result := &Result{
		Store: store,
		Cleanup: func() error {
			if amqpClient != nil {
				amqpClient.Close()
			}
			return store.Close()
		},
	}
	if amqpClient != nil {
		result.Run = func(ctx context.Context) error {
			return amqpClient.ConsumeLedgerChanged(ctx, func(msg *amqp.LedgerChangedMessage) error {
				store.Refresh(msg.OwnerID)
				return nil
			})
		}
	}
	return result, nil
}
