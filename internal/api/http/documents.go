package http

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/corector/internal/correction"
	"github.com/mind-engage/corector/internal/storage"
)

// GET /corrections/{id}/document
func CorrectionDocumentHandler(reg *Registry, docs storage.DocumentReader) http.HandlerFunc {
	return withWorkflow(reg, func(w http.ResponseWriter, r *http.Request, id string, wf *correction.Workflow) {
		serveDocument(w, docs, wf.Session().DocumentRef)
	})
}

// GET /sessions/{id}/document
func SessionDocumentHandler(store correction.Store, docs storage.DocumentReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := visibleSession(r, store, strings.TrimSpace(chi.URLParam(r, "id")))
		if err != nil {
			writeError(w, err)
			return
		}
		serveDocument(w, docs, s.DocumentRef)
	}
}

func serveDocument(w http.ResponseWriter, docs storage.DocumentReader, ref string) {
	if docs == nil {
		http.Error(w, "document store cannot serve files", http.StatusNotImplemented)
		return
	}
	if ref == "" {
		writeError(w, errors.Join(correction.ErrNotFound, errors.New("no document uploaded")))
		return
	}
	rc, err := docs.Open(ref)
	if errors.Is(err, fs.ErrNotExist) {
		writeError(w, errors.Join(correction.ErrNotFound, err))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	defer rc.Close()

	ct := mime.TypeByExtension(filepath.Ext(ref))
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}
