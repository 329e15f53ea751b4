package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"github.com/itemdata/validator/internal/engine"
	"github.com/itemdata/validator/internal/logging"
	"github.com/itemdata/validator/internal/store"
	"github.com/itemdata/validator/internal/table"
)

const (
	csvContentType  = "text/csv"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// statsHeader carries the statistics JSON alongside spreadsheet response
	// bodies, where the file itself occupies the body.
	statsHeader = "X-Validation-Stats"
)

// reportResponse is the JSON body for persisted validations with statistics.
type reportResponse struct {
	FileURL    string             `json:"file_url"`
	Statistics *engine.Statistics `json:"statistics"`
}

// respondFailure reports a processing failure uniformly as {"error": msg}.
// The API contract keeps HTTP 200 for these: callers detect failure from the
// body shape, not the status code.
func (s *Server) respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context()).Error("processing failed",
		"path", r.URL.Path,
		"error", err,
	)
	writeJSON(w, map[string]string{"error": err.Error()})
}

// readUpload extracts the uploaded file bytes from the multipart form.
// The body is capped at the configured maximum file size.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		return nil, fmt.Errorf("file too large or invalid form: %w", err)
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("no file provided: %w", err)
	}
	defer file.Close()

	return io.ReadAll(file)
}

// processCSV runs one CSV validation pass and serializes the annotated table.
func processCSV(data []byte, mode engine.Mode) (*engine.Result, []byte, error) {
	t, err := table.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}

	res, err := engine.Validate(t, mode)
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	if err := table.WriteCSV(&buf, res.Table); err != nil {
		return nil, nil, err
	}
	return res, buf.Bytes(), nil
}

// processXLSX runs one spreadsheet validation pass and serializes the
// annotated table back to spreadsheet bytes.
func processXLSX(data []byte, mode engine.Mode) (*engine.Result, []byte, error) {
	t, err := table.ReadXLSX(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}

	res, err := engine.Validate(t, mode)
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	if err := table.WriteXLSX(&buf, res.Table); err != nil {
		return nil, nil, err
	}
	return res, buf.Bytes(), nil
}

// handleValidateCSV annotates a CSV with the legacy rule set, persists the
// output, and returns its download URL.
func (s *Server) handleValidateCSV(w http.ResponseWriter, r *http.Request) {
	data, err := s.readUpload(w, r)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	res, out, err := processCSV(data, engine.ModeLegacy)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	id, err := s.store.Put(out)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("csv processed",
		"mode", engine.ModeLegacy.String(),
		"rows", res.Stats.TotalRows,
		"duration_s", res.Stats.ProcessingTimeSeconds,
		"file_id", id,
	)
	writeJSON(w, map[string]string{"file_url": s.fileURL(r, id)})
}

// handleValidateCSVReport annotates a CSV with the full rule set, persists
// the output, and returns its download URL plus the statistics.
func (s *Server) handleValidateCSVReport(w http.ResponseWriter, r *http.Request) {
	data, err := s.readUpload(w, r)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	res, out, err := processCSV(data, engine.ModeFull)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	id, err := s.store.Put(out)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("csv processed",
		"mode", engine.ModeFull.String(),
		"rows", res.Stats.TotalRows,
		"rows_with_errors", res.Stats.RowsWithErrors,
		"duration_s", res.Stats.ProcessingTimeSeconds,
		"file_id", id,
	)
	writeJSON(w, reportResponse{FileURL: s.fileURL(r, id), Statistics: res.Stats})
}

// handleValidateCSVStream annotates a CSV with the legacy rule set and
// streams the result straight back without persisting it.
func (s *Server) handleValidateCSVStream(w http.ResponseWriter, r *http.Request) {
	data, err := s.readUpload(w, r)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	res, out, err := processCSV(data, engine.ModeLegacy)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("csv processed",
		"mode", engine.ModeLegacy.String(),
		"rows", res.Stats.TotalRows,
		"duration_s", res.Stats.ProcessingTimeSeconds,
	)
	writeAttachment(w, csvContentType, "processed.csv", out)
}

// handleValidateXLSX annotates a spreadsheet with the legacy rule set over
// all columns and streams the result back.
func (s *Server) handleValidateXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := s.readUpload(w, r)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	res, out, err := processXLSX(data, engine.ModeLegacyAll)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("xlsx processed",
		"mode", engine.ModeLegacyAll.String(),
		"rows", res.Stats.TotalRows,
		"duration_s", res.Stats.ProcessingTimeSeconds,
	)
	writeAttachment(w, xlsxContentType, "processed.xlsx", out)
}

// handleValidateXLSXReport annotates a spreadsheet with the full rule set
// and streams the result back with the statistics in a response header.
func (s *Server) handleValidateXLSXReport(w http.ResponseWriter, r *http.Request) {
	data, err := s.readUpload(w, r)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	res, out, err := processXLSX(data, engine.ModeFull)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	stats, err := json.Marshal(res.Stats)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("xlsx processed",
		"mode", engine.ModeFull.String(),
		"rows", res.Stats.TotalRows,
		"rows_with_errors", res.Stats.RowsWithErrors,
		"duration_s", res.Stats.ProcessingTimeSeconds,
	)
	w.Header().Set(statsHeader, string(stats))
	writeAttachment(w, xlsxContentType, "processed.xlsx", out)
}

// handleValidateXLSXCells annotates a workbook cell by cell, preserving
// formatting and extra sheets. Processing is capped at 100,000 data rows.
func (s *Server) handleValidateXLSXCells(w http.ResponseWriter, r *http.Request) {
	data, err := s.readUpload(w, r)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		s.respondFailure(w, r, &table.ParseError{Format: "xlsx", Err: err})
		return
	}
	defer f.Close()

	if err := engine.AnnotateWorkbook(f); err != nil {
		s.respondFailure(w, r, err)
		return
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	writeAttachment(w, xlsxContentType, "processed.xlsx", buf.Bytes())
}

// handleDownload serves a previously persisted CSV output by id.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "fileID")

	data, err := s.store.Get(id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, map[string]string{"error": "file not found"})
		return
	}
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	writeAttachment(w, csvContentType, "processed.csv", data)
}

// writeAttachment writes bytes as a file download.
func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(data)
}

// fileURL builds the absolute download URL for a stored file id.
func (s *Server) fileURL(r *http.Request, id string) string {
	scheme := "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/download/%s", scheme, r.Host, id)
}
