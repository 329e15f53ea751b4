package web

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/itemdata/validator/internal/config"
	"github.com/itemdata/validator/internal/engine"
	"github.com/itemdata/validator/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			RequestTimeout: 30 * time.Second,
		},
		Upload: config.UploadConfig{MaxFileSize: 10 << 20},
		Rate:   config.RateLimitConfig{Enabled: false},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func testServer() *Server {
	return NewServer(store.NewMemStore(), testConfig())
}

// postFile uploads content as a multipart "file" field to the given route.
func postFile(t *testing.T, s *Server, route, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, route, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

// testWorkbook builds xlsx bytes from string rows.
func testWorkbook(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func TestValidateCSV_PersistAndDownload(t *testing.T) {
	s := testServer()

	rec := postFile(t, s, "/api/validate/csv", "items.csv",
		[]byte("UPCCASE,Qty\n12A,5\n123,x\n"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	fileURL := resp["file_url"]
	if fileURL == "" {
		t.Fatalf("response = %v, want file_url", resp)
	}

	i := strings.Index(fileURL, "/download/")
	if i < 0 {
		t.Fatalf("file_url = %q, want a /download/ path", fileURL)
	}

	dl := get(s, fileURL[i:])
	if dl.Code != http.StatusOK {
		t.Fatalf("download status = %d, want 200", dl.Code)
	}
	if ct := dl.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("download Content-Type = %q, want text/csv", ct)
	}

	records, err := csv.NewReader(dl.Body).ReadAll()
	if err != nil {
		t.Fatalf("downloaded file not CSV: %v", err)
	}
	header := records[0]
	if header[len(header)-1] != engine.ErrorColumn {
		t.Errorf("last column = %q, want %q", header[len(header)-1], engine.ErrorColumn)
	}
	// Legacy mode sweeps every column, including UPCCASE
	if got := records[1][2]; got != "UPCCASE: contains alphabets" {
		t.Errorf("row 1 errors = %q, want UPCCASE flagged", got)
	}
	if got := records[2][2]; got != "Qty: contains alphabets" {
		t.Errorf("row 2 errors = %q, want Qty flagged", got)
	}
}

func TestValidateCSVReport_Statistics(t *testing.T) {
	s := testServer()

	rec := postFile(t, s, "/api/validate/csv/report", "items.csv",
		[]byte("UPCCASE,CICID\n123,45678\n"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		FileURL    string             `json:"file_url"`
		Statistics *engine.Statistics `json:"statistics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if resp.FileURL == "" || resp.Statistics == nil {
		t.Fatalf("response = %s, want file_url and statistics", rec.Body.String())
	}

	stats := resp.Statistics
	if stats.TotalRows != 1 {
		t.Errorf("total_rows = %d, want 1", stats.TotalRows)
	}
	if stats.RowsWithErrors != 1 {
		t.Errorf("rows_with_errors = %d, want 1", stats.RowsWithErrors)
	}
	if got := stats.ValidationSummary.ErrorCategories["must be exactly 11 digits"]; got != 1 {
		t.Errorf("category count = %d, want 1", got)
	}
	if got := stats.ValidationSummary.ErrorCategories["must be exactly 8 digits"]; got != 1 {
		t.Errorf("category count = %d, want 1", got)
	}
}

func TestValidateCSVStream(t *testing.T) {
	s := testServer()

	rec := postFile(t, s, "/api/validate/csv/stream", "items.csv",
		[]byte("SKU,Qty\nabc,5\n"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q, want attachment", cd)
	}

	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("body not CSV: %v", err)
	}
	if got := records[1][2]; got != "SKU: contains alphabets" {
		t.Errorf("annotation = %q, want %q", got, "SKU: contains alphabets")
	}
}

// Rows longer than the header are tolerated on ingestion; the annotation
// column must still line up under the ValidationErrors header.
func TestValidateCSVStream_LongRow(t *testing.T) {
	s := testServer()

	rec := postFile(t, s, "/api/validate/csv/stream", "items.csv",
		[]byte("SKU,Qty\nabc,5,extra\n"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("body not CSV: %v", err)
	}
	if got := records[0][2]; got != engine.ErrorColumn {
		t.Fatalf("header[2] = %q, want %q", got, engine.ErrorColumn)
	}
	if got := records[1][2]; got != "SKU: contains alphabets" {
		t.Errorf("annotation = %q, want %q", got, "SKU: contains alphabets")
	}
}

func TestValidateXLSXReport_StatsHeader(t *testing.T) {
	s := testServer()

	data := testWorkbook(t,
		[]interface{}{"UPCCASE", "Division"},
		[]interface{}{"123", ""},
	)

	rec := postFile(t, s, "/api/validate/xlsx/report", "items.xlsx", data)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var stats engine.Statistics
	if err := json.Unmarshal([]byte(rec.Header().Get(statsHeader)), &stats); err != nil {
		t.Fatalf("%s header not JSON: %v", statsHeader, err)
	}
	if stats.TotalRows != 1 || stats.RowsWithErrors != 1 {
		t.Errorf("stats = %+v, want 1 row with errors", stats)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("body not a workbook: %v", err)
	}
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	header := rows[0]
	if header[len(header)-1] != engine.ErrorColumn {
		t.Errorf("last column = %q, want %q", header[len(header)-1], engine.ErrorColumn)
	}
}

func TestValidateXLSXCells_SummaryAtFixedColumn(t *testing.T) {
	s := testServer()

	data := testWorkbook(t,
		[]interface{}{"SKU", "Qty"},
		[]interface{}{"abc", 5},
	)

	rec := postFile(t, s, "/api/validate/xlsx/cells", "items.xlsx", data)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("body not a workbook: %v", err)
	}
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	if got, _ := f.GetCellValue(sheet, "T1"); got != engine.ErrorColumn {
		t.Errorf("T1 = %q, want %q", got, engine.ErrorColumn)
	}
	if got, _ := f.GetCellValue(sheet, "T2"); got != "SKU: contains alphabets" {
		t.Errorf("T2 = %q, want %q", got, "SKU: contains alphabets")
	}
}

// Processing failures come back as {"error": ...} with HTTP 200: clients
// detect failure from the body shape.
func TestValidate_FailureShape(t *testing.T) {
	s := testServer()

	tests := []struct {
		name  string
		route string
		body  []byte
	}{
		{"garbage xlsx", "/api/validate/xlsx", []byte("not a workbook")},
		{"empty csv", "/api/validate/csv", nil},
		{"garbage xlsx cells", "/api/validate/xlsx/cells", []byte("still not a workbook")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postFile(t, s, tt.route, "bad.bin", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}

			var resp map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("response not JSON: %v", err)
			}
			if resp["error"] == "" {
				t.Errorf("response = %v, want an error field", resp)
			}
		})
	}
}

func TestValidate_MissingFileField(t *testing.T) {
	s := testServer()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/validate/csv", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if !strings.Contains(resp["error"], "no file provided") {
		t.Errorf("error = %q, want no-file message", resp["error"])
	}
}

func TestDownload_NotFound(t *testing.T) {
	s := testServer()

	rec := get(s, "/download/"+uuid.NewString())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if resp["error"] != "file not found" {
		t.Errorf("error = %q, want %q", resp["error"], "file not found")
	}
}
