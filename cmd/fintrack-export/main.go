package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/query"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: "fintrack-export"})
	log.SetDefault(logger)

	cfg := config.Load()

	var (
		owner    = flag.String("owner", cfg.OwnerID, "owner id to export (defaults to OWNER_ID)")
		search   = flag.String("search", "", "case-insensitive title substring filter")
		txType   = flag.String("type", "", "filter by type: income or expense")
		category = flag.String("category", "", "filter by exact category")
		sortKey  = flag.String("sort", "", "sort: date-desc, date-asc, amount-desc, amount-asc")
		format   = flag.String("format", "csv", "output format: csv or json")
		out      = flag.String("out", "", "output file (defaults to a dated name in the working directory)")
	)
	flag.Parse()

	if err := run(cfg, logger, *owner, query.Criteria{
		Search:   *search,
		Type:     *txType,
		Category: *category,
		Sort:     *sortKey,
	}, *format, *out); err != nil {
		logger.Error("Export failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger, owner string, criteria query.Criteria, format, out string) error {
	if owner == "" {
		return fmt.Errorf("owner id is required: pass -owner or set OWNER_ID")
	}
	if format != "csv" && format != "json" {
		return fmt.Errorf("invalid format %q: must be csv or json", format)
	}

	result, err := backend.Open(backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	}, logger)
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}
	defer func() {
		if result.Cleanup != nil {
			_ = result.Cleanup()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snapshot, err := currentSnapshot(ctx, result, owner)
	if err != nil {
		return err
	}

	filtered := query.Apply(snapshot, criteria)

	var payload []byte
	switch format {
	case "csv":
		payload, err = export.ToCSV(filtered)
	case "json":
		payload, err = export.ToJSON(filtered)
	}
	if err != nil {
		return err
	}

	if out == "" {
		out = export.Filename(cfg.AppName, format, time.Now())
	}
	if err := os.WriteFile(out, payload, 0644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	logger.Info("Export written",
		"file", out,
		"format", format,
		"records", len(filtered),
		"owner_id", owner)
	return nil
}

// currentSnapshot subscribes to the owner's ledger and takes the first
// delivery, which is always the full current state.
func currentSnapshot(ctx context.Context, result *backend.Result, owner string) ([]core.Transaction, error) {
	sub, err := result.Store.Subscribe(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Close()

	select {
	case snapshot, ok := <-sub.Snapshots():
		if !ok {
			return nil, fmt.Errorf("subscription closed before first snapshot")
		}
		return snapshot, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
