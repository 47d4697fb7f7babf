// Package app builds the process-wide dependencies from Config. Each one is
// picked once at startup.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/mind-engage/corector/internal/config"
	"github.com/mind-engage/corector/internal/correction"
	"github.com/mind-engage/corector/internal/db"
	"github.com/mind-engage/corector/internal/llm"
	"github.com/mind-engage/corector/internal/records"
	"github.com/mind-engage/corector/internal/storage"
)

// OpenStore returns the session store for DB_DRIVER. The *sql.DB is nil for
// the memory driver.
func OpenStore(ctx context.Context, cfg config.Config) (correction.Store, *sql.DB, error) {
	switch cfg.DBDriver {
	case "memory":
		return correction.NewInMemoryStore(), nil, nil
	case string(db.DriverSQLite), string(db.DriverPostgres):
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("db open: %w", err)
		}
		return correction.NewSQLStore(dbh, cfg.DBDriver), dbh, nil
	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// OpenRecords returns a reader over the configured sheet. Without a sheet
// id the reader reports SourceUnavailableError on every call.
func OpenRecords(ctx context.Context, cfg config.Config) (*records.Reader, error) {
	if cfg.SheetsSpreadsheetID == "" {
		return records.NewReader(nil), nil
	}
	src, err := records.NewSheetsSource(ctx, cfg.SheetsSpreadsheetID, cfg.SheetsRange, cfg.SheetsAPIKey)
	if err != nil {
		return nil, err
	}
	return records.NewReader(src), nil
}

// OpenDocuments returns the document store for BLOB_DRIVER, or nil for none.
func OpenDocuments(cfg config.Config) (storage.DocumentStore, error) {
	switch cfg.BlobDriver {
	case "none", "":
		return nil, nil
	case "fs":
		fs, err := storage.NewFSStore(cfg.BlobBasePath)
		if err != nil {
			return nil, fmt.Errorf("blob store: %w", err)
		}
		return fs, nil
	case "drive":
		return storage.NewDriveStore(cfg.DriveFolderID), nil
	default:
		return nil, fmt.Errorf("unsupported BLOB_DRIVER %q", cfg.BlobDriver)
	}
}

// OpenAnalyzer returns nil without a Gemini key. The close func is always
// safe to call.
func OpenAnalyzer(ctx context.Context, cfg config.Config, logger *slog.Logger) (*llm.Analyzer, func() error, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, func() error { return nil }, nil
	}
	gen, err := llm.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, nil, err
	}
	return llm.NewAnalyzer(gen, logger), gen.Close, nil
}
