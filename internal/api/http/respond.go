package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mind-engage/corector/internal/correction"
	"github.com/mind-engage/corector/internal/grading"
	"github.com/mind-engage/corector/internal/llm"
	"github.com/mind-engage/corector/internal/records"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var (
		ve *grading.ValidationError
		re *correction.RetryableError
		se *llm.ServiceError
		su *records.SourceUnavailableError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
	case errors.Is(err, correction.ErrWrongStage):
		status = http.StatusConflict
	case errors.Is(err, correction.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &re), errors.As(err, &se), errors.As(err, &su):
		status = http.StatusBadGateway
	}
	body := map[string]any{"error": err.Error()}
	if status == http.StatusBadGateway {
		body["retryable"] = true
	}
	writeJSON(w, status, body)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
