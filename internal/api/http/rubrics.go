package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/corector/internal/auth"
	"github.com/mind-engage/corector/internal/correction"
	"github.com/mind-engage/corector/internal/grading"
)

// GET /rubrics
func ListRubricsHandler(store correction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListRubrics(r.Context(), auth.FromRequest(r).OwnerID())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /rubrics/{id}
func GetRubricHandler(store correction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rb, err := store.GetRubric(r.Context(), auth.FromRequest(r).OwnerID(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rb)
	}
}

// POST /rubrics  {"id"?, "name", "items":[{"expected_answer","point_value"}]}
// With an id the stored rubric is replaced.
func SaveRubricHandler(store correction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in grading.Rubric
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		rb, err := grading.NewRubric(in.Name, in.Items)
		if err != nil {
			writeError(w, err)
			return
		}
		owner := auth.FromRequest(r).OwnerID()
		status := http.StatusCreated
		if in.ID != "" {
			prev, err := store.GetRubric(r.Context(), owner, in.ID)
			if err != nil {
				writeError(w, err)
				return
			}
			rb.ID, rb.CreatedAt = prev.ID, prev.CreatedAt
			status = http.StatusOK
		}
		rb.Stamp(owner, time.Now())
		saved, err := store.PutRubric(r.Context(), rb)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, status, saved)
	}
}

// DELETE /rubrics/{id}
func DeleteRubricHandler(store correction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteRubric(r.Context(), auth.FromRequest(r).OwnerID(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
