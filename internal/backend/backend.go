// Package backend selects and builds the snapshot storage implementation
// from configuration. The accounting logic never knows which one it got.
package backend

import (
	"context"
	"fmt"

	"caixa/internal/config"
	"caixa/internal/log"
	"caixa/internal/storage"
	"caixa/internal/storage/file"
	"caixa/internal/storage/memory"
	"caixa/internal/storage/sheets"
	"caixa/internal/storage/sqlite"
)

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// Result bundles the chosen Snapshotter with its cleanup.
type Result struct {
	Snapshotter storage.Snapshotter
	Cleanup     CleanupFunc
}

type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	return &Factory{logger: logger.WithComponent(log.ComponentStorage)}
}

// Create builds the backend named by cfg.DataBackend.
func (f *Factory) Create(ctx context.Context, cfg *config.Config) (*Result, error) {
	switch cfg.DataBackend {
	case "file":
		f.logger.InfoContext(ctx, "using file snapshot backend", "path", cfg.SnapshotPath)
		return &Result{
			Snapshotter: file.New(cfg.SnapshotPath),
			Cleanup:     func() error { return nil },
		}, nil

	case "sqlite":
		store, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		f.logger.InfoContext(ctx, "using sqlite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Snapshotter: store, Cleanup: store.Close}, nil

	case "sheets":
		client, err := sheets.New(ctx, sheets.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize sheets backend: %w", err)
		}
		f.logger.InfoContext(ctx, "using sheets backend",
			"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
		return &Result{Snapshotter: client, Cleanup: func() error { return nil }}, nil

	case "memory":
		f.logger.InfoContext(ctx, "using memory backend, data is lost on restart")
		return &Result{
			Snapshotter: memory.New(),
			Cleanup:     func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.DataBackend)
	}
}
