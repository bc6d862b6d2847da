package web

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/asterfield/stocksnap/internal/core"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIngest accepts a multipart form with three named CSV files and runs
// one full snapshot replacement.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Ingest.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, 3*maxSize)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form or payload too large", Code: "bad_request"})
		return
	}

	files := core.IngestFiles{
		Entities:     formPayload(r, "entities"),
		Transactions: formPayload(r, "transactions"),
		Timeseries:   formPayload(r, "timeseries"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Ingest.Timeout)
	defer cancel()

	res, err := s.service.Ingest(ctx, files)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		IngestID:   res.IngestID,
		ArchiveMs:  res.ArchiveDuration.Milliseconds(),
		LoadMs:     res.LoadDuration.Milliseconds(),
		RowsLoaded: res.RowsLoaded,
	})
}

// formPayload reads one named file from the parsed form. An absent or
// unreadable file yields a zero payload, which the service rejects as
// missing input.
func formPayload(r *http.Request, field string) core.Payload {
	file, header, err := r.FormFile(field)
	if err != nil {
		return core.Payload{}
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return core.Payload{}
	}
	return core.Payload{Name: header.Filename, Data: data}
}

// handleSearch serves both route forms: GET with a "q" query parameter and
// POST with a "query" form field.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	results, err := s.service.Search(r.Context(), searchQuery(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func searchQuery(r *http.Request) string {
	if r.Method == http.MethodPost {
		return r.PostFormValue("query")
	}
	return r.URL.Query().Get("q")
}

func (s *Server) handleUpdateEntity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "entityID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid entity id", Code: "bad_request"})
		return
	}

	var fields core.EntityFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "bad_request"})
		return
	}

	if err := s.service.UpdateEntity(r.Context(), id, fields); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteEntity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "entityID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid entity id", Code: "bad_request"})
		return
	}

	if err := s.service.DeleteEntity(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListArchive(w http.ResponseWriter, r *http.Request) {
	names, err := s.service.ListArchive(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleDeleteArchived(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "objectName")
	if err := s.service.DeleteArchived(r.Context(), name); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ingestResponse is the wire form of a completed ingestion's metadata.
type ingestResponse struct {
	IngestID   string           `json:"ingest_id"`
	ArchiveMs  int64            `json:"archive_ms"`
	LoadMs     int64            `json:"load_ms"`
	RowsLoaded map[string]int64 `json:"rows_loaded"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
