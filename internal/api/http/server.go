package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mind-engage/corector/internal/auth"
	authmw "github.com/mind-engage/corector/internal/auth/middleware"
	"github.com/mind-engage/corector/internal/correction"
	"github.com/mind-engage/corector/internal/rbac"
	"github.com/mind-engage/corector/internal/storage"
)

// Server is everything the router needs. Remedial may be nil when no model
// is configured; the route then answers 503. Documents is nil unless the
// document store can read files back.
type Server struct {
	Auth         *authmw.AuthService
	Store        correction.Store
	Records      RecordReader
	Remedial     ExerciseGenerator
	Documents    storage.DocumentReader
	Registry     *Registry
	GuestEnabled bool
	CORSOrigins  []string
	Timeout      time.Duration
	Ready        func() error
}

func NewRouter(s Server) http.Handler {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", auth.GoogleTokenHeader},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", authmw.LoginHandler(s.Auth))
	r.Post("/auth/guest", auth.GuestLoginHandler(s.Auth, s.GuestEnabled))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(s.Auth))

		pr.Route("/corrections", func(cr chi.Router) {
			cr.Use(rbac.Require(rbac.PermCorrectionRun))
			cr.Post("/", CreateCorrectionHandler(s.Registry))
			cr.Get("/{id}", GetCorrectionHandler(s.Registry))
			cr.Delete("/{id}", DeleteCorrectionHandler(s.Registry))
			cr.Post("/{id}/mode", SelectModeHandler(s.Registry))
			cr.Post("/{id}/analyze", AnalyzeHandler(s.Registry, s.Store))
			cr.Post("/{id}/reset", ResetCorrectionHandler(s.Registry))
			cr.Get("/{id}/summary", SummaryHandler(s.Registry))
			cr.Get("/{id}/document", CorrectionDocumentHandler(s.Registry, s.Documents))
		})

		pr.Route("/sessions", func(sr chi.Router) {
			sr.Use(rbac.RequireAny(rbac.PermSessionViewOwn, rbac.PermSessionViewAll))
			sr.Get("/", ListSessionsHandler(s.Store))
			sr.Get("/{id}", GetSessionHandler(s.Store))
			sr.Get("/{id}/summary", GetSessionSummaryHandler(s.Store))
			sr.Get("/{id}/document", SessionDocumentHandler(s.Store, s.Documents))
			sr.With(rbac.Require(rbac.PermCorrectionRun)).
				Delete("/{id}", DeleteSessionHandler(s.Store))
		})

		pr.Route("/rubrics", func(rr chi.Router) {
			rr.Use(rbac.Require(rbac.PermRubricManage))
			rr.Get("/", ListRubricsHandler(s.Store))
			rr.Post("/", SaveRubricHandler(s.Store))
			rr.Get("/{id}", GetRubricHandler(s.Store))
			rr.Delete("/{id}", DeleteRubricHandler(s.Store))
		})

		pr.With(rbac.Require(rbac.PermRecordsView)).
			Get("/records", ListRecordsHandler(s.Records))
		pr.With(rbac.Require(rbac.PermRecordsView)).
			Get("/records/latest", LatestRecordHandler(s.Records))

		pr.Route("/stats", func(st chi.Router) {
			st.Use(rbac.Require(rbac.PermStatsView))
			MountStats(st, s.Records, s.Store)
		})

		remedial := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no language model configured", http.StatusServiceUnavailable)
		})
		if s.Remedial != nil {
			remedial = RemedialHandler(s.Remedial, s.Store)
		}
		pr.With(rbac.Require(rbac.PermRemedialGenerate)).
			Post("/remedial", remedial)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if s.Ready != nil {
			if err := s.Ready(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
	})
	return r
}
