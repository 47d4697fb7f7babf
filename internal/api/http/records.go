package http

import (
	"context"
	"net/http"

	"github.com/mind-engage/corector/internal/records"
)

// RecordReader is the read side of the OCR pipeline's sheet.
type RecordReader interface {
	All(ctx context.Context) ([]records.ExternalRecord, error)
	ForStudent(ctx context.Context, name string) ([]records.ExternalRecord, error)
	LatestFor(ctx context.Context, name string) (*records.ExternalRecord, error)
}

// GET /records?student=
func ListRecordsHandler(rd RecordReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			list []records.ExternalRecord
			err  error
		)
		if name := r.URL.Query().Get("student"); name != "" {
			list, err = rd.ForStudent(r.Context(), name)
		} else {
			list, err = rd.All(r.Context())
		}
		if err != nil {
			writeError(w, err)
			return
		}
		if list == nil {
			list = []records.ExternalRecord{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /records/latest?student=
func LatestRecordHandler(rd RecordReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := rd.LatestFor(r.Context(), r.URL.Query().Get("student"))
		if err != nil {
			writeError(w, err)
			return
		}
		if rec == nil {
			http.Error(w, "no records", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}
