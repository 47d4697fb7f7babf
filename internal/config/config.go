package config

import (
	"os"
	"strings"
	"time"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string // sqlite|postgres|memory
	DBDSN    string

	BlobDriver    string // fs|drive|none
	BlobBasePath  string // fs
	DriveFolderID string // drive

	AuthSecret      string
	EnableGuestAuth bool
	AdminUser       string
	AdminPassHash   string   // bcrypt
	TeacherAccounts []string // "username:bcrypt-hash"

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	GeminiAPIKey string
	GeminiModel  string

	SheetsAPIKey        string
	SheetsSpreadsheetID string
	SheetsRange         string

	// RequireOCRText ends a session as insufficient_input instead of grading
	// the placeholder text when the sheet has no OCR text.
	RequireOCRText bool

	RequestTimeout time.Duration
	// WorkflowTTL is how long an untouched in-progress correction is kept.
	WorkflowTTL time.Duration
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:     mode,
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		BlobDriver:    envOr("BLOB_DRIVER", "fs"),
		BlobBasePath:  envOr("BLOB_BASE_PATH", "./data"),
		DriveFolderID: os.Getenv("DRIVE_FOLDER_ID"),

		AuthSecret:      envOr("AUTH_SECRET", "dev-secret-change-me"),
		EnableGuestAuth: envBool("ENABLE_GUEST_AUTH", true),
		AdminUser:       envOr("ADMIN_USER", "admin"),
		AdminPassHash:   envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		TeacherAccounts: csvOr("TEACHER_ACCOUNTS", ""),

		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", ""),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  envOr("GEMINI_MODEL", "gemini-2.0-flash"),

		SheetsAPIKey:        os.Getenv("SHEETS_API_KEY"),
		SheetsSpreadsheetID: os.Getenv("SHEETS_SPREADSHEET_ID"),
		SheetsRange:         envOr("SHEETS_RANGE", "Sheet1!A:G"),

		RequireOCRText: envBool("REQUIRE_OCR_TEXT", false),

		RequestTimeout: envDuration("REQUEST_TIMEOUT", 90*time.Second),
		WorkflowTTL:    envDuration("WORKFLOW_TTL", 2*time.Hour),
	}
}

// CORSOrigins picks the origin list for the current mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
