package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/corector/internal/auth"
	"github.com/mind-engage/corector/internal/correction"
	"github.com/mind-engage/corector/internal/grading"
	"github.com/mind-engage/corector/internal/stats"
)

// MountStats wires the aggregate views under /stats. Every view accepts
// source=records|sessions (default records) and student=.
func MountStats(r chi.Router, rd RecordReader, store correction.Store) {
	r.Get("/students", statsHandler(rd, store, func(r *http.Request, es []stats.Entry) any {
		return stats.Students(es, parseIntDefault(r.URL.Query().Get("n"), stats.DefaultTopN))
	}))
	r.Get("/classes", statsHandler(rd, store, func(_ *http.Request, es []stats.Entry) any {
		return stats.ByClass(es)
	}))
	r.Get("/dates", statsHandler(rd, store, func(_ *http.Request, es []stats.Entry) any {
		return stats.ByDate(es)
	}))
	r.Get("/errors", statsHandler(rd, store, func(_ *http.Request, es []stats.Entry) any {
		return stats.ErrorsByCategory(es)
	}))
	r.Get("/mistakes", statsHandler(rd, store, func(r *http.Request, es []stats.Entry) any {
		return stats.TopMistakes(es, parseIntDefault(r.URL.Query().Get("n"), stats.DefaultTopN))
	}))
}

func statsHandler(rd RecordReader, store correction.Store, view func(*http.Request, []stats.Entry) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		student := q.Get("student")

		var entries []stats.Entry
		switch q.Get("source") {
		case "", "records":
			recs, err := rd.All(r.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			entries = stats.FromRecords(recs)
		case "sessions":
			list, err := store.ListSessions(r.Context(), correction.ListOpts{OwnerID: auth.FromRequest(r).OwnerID()})
			if err != nil {
				writeError(w, err)
				return
			}
			entries = stats.FromSessions(list)
		default:
			http.Error(w, "source must be records or sessions", http.StatusBadRequest)
			return
		}
		if student != "" {
			kept := make([]stats.Entry, 0, len(entries))
			for _, e := range entries {
				if grading.SameName(e.StudentName, student) {
					kept = append(kept, e)
				}
			}
			entries = kept
		}
		writeJSON(w, http.StatusOK, view(r, entries))
	}
}
