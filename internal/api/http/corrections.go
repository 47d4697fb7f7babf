package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/corector/internal/auth"
	"github.com/mind-engage/corector/internal/correction"
	"github.com/mind-engage/corector/internal/grading"
)

const maxUpload = 20 << 20

type correctionView struct {
	ID          string             `json:"id"`
	Session     correction.Session `json:"session"`
	UploadError string             `json:"upload_error,omitempty"`
}

// POST /corrections  JSON {student_name, class_name} or multipart with "file"
func CreateCorrectionHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac := auth.FromRequest(r)
		var in correction.IngestInput

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			if err := r.ParseMultipartForm(maxUpload); err != nil {
				http.Error(w, "bad multipart: "+err.Error(), http.StatusBadRequest)
				return
			}
			in.StudentName = r.FormValue("student_name")
			in.ClassName = r.FormValue("class_name")
			if f, hdr, err := r.FormFile("file"); err == nil {
				defer f.Close()
				in.Document = &correction.Document{Name: hdr.Filename, Body: f}
			}
		} else if r.ContentLength != 0 {
			var req struct {
				StudentName string `json:"student_name"`
				ClassName   string `json:"class_name"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
				return
			}
			in.StudentName, in.ClassName = req.StudentName, req.ClassName
		}

		id := reg.Create(ac)
		var (
			view correctionView
			err  error
		)
		reg.With(id, ac.OwnerID(), func(wf *correction.Workflow) {
			var res correction.IngestResult
			res, err = wf.Ingest(r.Context(), in)
			view = correctionView{ID: id, Session: wf.Session()}
			if res.UploadErr != nil {
				view.UploadError = res.UploadErr.Error()
			}
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, view)
	}
}

// GET /corrections/{id}
func GetCorrectionHandler(reg *Registry) http.HandlerFunc {
	return withWorkflow(reg, func(w http.ResponseWriter, r *http.Request, id string, wf *correction.Workflow) {
		writeJSON(w, http.StatusOK, correctionView{ID: id, Session: wf.Session()})
	})
}

// POST /corrections/{id}/mode  {"mode":"rubric"|"freeform"}
func SelectModeHandler(reg *Registry) http.HandlerFunc {
	return withWorkflow(reg, func(w http.ResponseWriter, r *http.Request, id string, wf *correction.Workflow) {
		var req struct {
			Mode string `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		mode, err := correction.ParseMode(req.Mode)
		if err == nil {
			err = wf.SelectMode(mode)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, correctionView{ID: id, Session: wf.Session()})
	})
}

// POST /corrections/{id}/analyze  {"rubric": {...}} or {"rubric_id": "..."}
func AnalyzeHandler(reg *Registry, store correction.Store) http.HandlerFunc {
	return withWorkflow(reg, func(w http.ResponseWriter, r *http.Request, id string, wf *correction.Workflow) {
		var req struct {
			Rubric   *grading.Rubric `json:"rubric"`
			RubricID string          `json:"rubric_id"`
		}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
				return
			}
		}
		rb := req.Rubric
		if rb == nil && req.RubricID != "" {
			stored, err := store.GetRubric(r.Context(), wf.Auth().OwnerID(), req.RubricID)
			if err != nil {
				writeError(w, err)
				return
			}
			rb = &stored
		}
		if err := wf.Analyze(r.Context(), rb); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, correctionView{ID: id, Session: wf.Session()})
	})
}

// POST /corrections/{id}/reset
func ResetCorrectionHandler(reg *Registry) http.HandlerFunc {
	return withWorkflow(reg, func(w http.ResponseWriter, r *http.Request, id string, wf *correction.Workflow) {
		wf.Reset()
		writeJSON(w, http.StatusOK, correctionView{ID: id, Session: wf.Session()})
	})
}

// GET /corrections/{id}/summary
func SummaryHandler(reg *Registry) http.HandlerFunc {
	return withWorkflow(reg, func(w http.ResponseWriter, r *http.Request, id string, wf *correction.Workflow) {
		sum, err := wf.Summary()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	})
}

// DELETE /corrections/{id}
func DeleteCorrectionHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !reg.Delete(chi.URLParam(r, "id"), auth.FromRequest(r).OwnerID()) {
			writeError(w, correction.ErrNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func withWorkflow(reg *Registry, fn func(http.ResponseWriter, *http.Request, string, *correction.Workflow)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		found := reg.With(id, auth.FromRequest(r).OwnerID(), func(wf *correction.Workflow) {
			fn(w, r, id, wf)
		})
		if !found {
			writeError(w, errors.Join(correction.ErrNotFound, errors.New("no correction "+id)))
		}
	}
}
