package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	api "github.com/mind-engage/corector/internal/api/http"
	"github.com/mind-engage/corector/internal/app"
	"github.com/mind-engage/corector/internal/auth"
	authmw "github.com/mind-engage/corector/internal/auth/middleware"
	"github.com/mind-engage/corector/internal/config"
	"github.com/mind-engage/corector/internal/correction"
	"github.com/mind-engage/corector/internal/rbac"
	"github.com/mind-engage/corector/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("env file: %v", err)
	}
	cfg := config.FromEnv()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// --- Store ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, dbh, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	if dbh != nil {
		defer dbh.Close()
	}

	// --- External services ---
	reader, err := app.OpenRecords(context.Background(), cfg)
	if err != nil {
		log.Fatalf("records: %v", err)
	}
	docs, err := app.OpenDocuments(cfg)
	if err != nil {
		log.Fatalf("documents: %v", err)
	}
	analyzer, closeAnalyzer, err := app.OpenAnalyzer(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("gemini: %v", err)
	}
	defer closeAnalyzer()

	deps := correction.Deps{Records: reader, Store: store, Documents: docs, Logger: logger}
	srv := api.Server{
		Store:        store,
		Records:      reader,
		GuestEnabled: cfg.EnableGuestAuth,
		CORSOrigins:  cfg.CORSOrigins(),
		Timeout:      cfg.RequestTimeout,
	}
	if rd, ok := docs.(storage.DocumentReader); ok {
		srv.Documents = rd
	}
	if analyzer != nil {
		deps.Analyzer = analyzer
		srv.Remedial = analyzer
	} else {
		log.Printf("GEMINI_API_KEY not set; analysis requests will fail until it is")
	}
	if dbh != nil {
		srv.Ready = func() error { return dbh.PingContext(context.Background()) }
	}

	// --- Auth ---
	accounts := authmw.ParseAccounts(cfg.TeacherAccounts, rbac.RoleTeacher)
	if cfg.AdminUser != "" && cfg.AdminPassHash != "" {
		accounts = append(accounts, authmw.Account{Username: cfg.AdminUser, PassHash: cfg.AdminPassHash, Role: rbac.RoleAdmin})
	}
	srv.Auth = authmw.NewAuthService(cfg.AuthSecret, accounts...)

	srv.Registry = api.NewRegistry(func(ac auth.Context) *correction.Workflow {
		return correction.New(ac, deps, correction.WithRequireOCRText(cfg.RequireOCRText))
	}, cfg.WorkflowTTL)

	log.Printf("listening on %s (mode=%s, db=%s, blob=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver, cfg.BlobDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, api.NewRouter(srv)))
}
