package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mind-engage/corector/internal/correction"
	"github.com/mind-engage/corector/internal/grading"
	"github.com/mind-engage/corector/internal/llm"
)

// ExerciseGenerator produces remedial exercises for a list of mistakes.
type ExerciseGenerator interface {
	GenerateExercises(ctx context.Context, errs []grading.ErrorEntry) ([]llm.Exercise, error)
}

// POST /remedial  {"errors":[...]} or {"session_id":"..."}
func RemedialHandler(gen ExerciseGenerator, store correction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Errors    []grading.ErrorEntry `json:"errors"`
			SessionID string               `json:"session_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		errs := req.Errors
		if len(errs) == 0 && req.SessionID != "" {
			s, err := visibleSession(r, store, req.SessionID)
			if err != nil {
				writeError(w, err)
				return
			}
			errs = s.Mistakes()
		}
		ex, err := gen.GenerateExercises(r.Context(), errs)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"exercises": ex})
	}
}
