package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/corector/internal/auth"
	"github.com/mind-engage/corector/internal/correction"
	"github.com/mind-engage/corector/internal/rbac"
)

// GET /sessions?student=&limit=&offset=&all=1
// all=1 lists every owner and needs session:view-all.
func ListSessionsHandler(store correction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac := auth.FromRequest(r)
		q := r.URL.Query()
		opts := correction.ListOpts{
			OwnerID:     ac.OwnerID(),
			StudentName: q.Get("student"),
			Limit:       parseIntDefault(q.Get("limit"), 50),
			Offset:      parseIntDefault(q.Get("offset"), 0),
		}
		if q.Get("all") == "1" {
			if !rbac.Allowed(ac.Role, rbac.PermSessionViewAll) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			opts.OwnerID = ""
		}
		list, err := store.ListSessions(r.Context(), opts)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /sessions/{id}
func GetSessionHandler(store correction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := visibleSession(r, store, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

// GET /sessions/{id}/summary
func GetSessionSummaryHandler(store correction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := visibleSession(r, store, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Summary())
	}
}

// DELETE /sessions/{id}
func DeleteSessionHandler(store correction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac := auth.FromRequest(r)
		if err := store.DeleteSession(r.Context(), ac.OwnerID(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// visibleSession hides other owners' sessions behind ErrNotFound unless the
// caller may view all.
func visibleSession(r *http.Request, store correction.Store, id string) (correction.Session, error) {
	ac := auth.FromRequest(r)
	s, err := store.GetSession(r.Context(), id)
	if err != nil {
		return correction.Session{}, err
	}
	if s.OwnerID != ac.OwnerID() && !rbac.Allowed(ac.Role, rbac.PermSessionViewAll) {
		return correction.Session{}, errors.Join(correction.ErrNotFound, errors.New("session "+s.ID))
	}
	return s, nil
}
