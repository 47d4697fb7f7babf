package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("MODE", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("REQUIRE_OCR_TEXT", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("WORKFLOW_TTL", "")
	cfg := FromEnv()
	if cfg.Mode != ModeOffline || cfg.DBDriver != "sqlite" || cfg.RequireOCRText {
		t.Fatalf("%+v", cfg)
	}
	if cfg.SheetsRange != "Sheet1!A:G" || cfg.RequestTimeout != 90*time.Second || cfg.WorkflowTTL != 2*time.Hour {
		t.Fatalf("%+v", cfg)
	}
	if len(cfg.CORSOrigins()) != 2 {
		t.Fatalf("origins = %v", cfg.CORSOrigins())
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("REQUIRE_OCR_TEXT", "yes")
	t.Setenv("TEACHER_ACCOUNTS", " ana:hash1 , ,ion:hash2")
	t.Setenv("CORS_ORIGINS_ONLINE", "https://corector.example")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("WORKFLOW_TTL", "30m")
	cfg := FromEnv()
	if cfg.DBDriver != "memory" || !cfg.RequireOCRText || cfg.RequestTimeout != 5*time.Second || cfg.WorkflowTTL != 30*time.Minute {
		t.Fatalf("%+v", cfg)
	}
	if len(cfg.TeacherAccounts) != 2 || cfg.TeacherAccounts[1] != "ion:hash2" {
		t.Fatalf("accounts = %v", cfg.TeacherAccounts)
	}
	if o := cfg.CORSOrigins(); len(o) != 1 || o[0] != "https://corector.example" {
		t.Fatalf("origins = %v", o)
	}
}
