package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/fmuoria/resume-screener/internal/ingestion"
	"github.com/fmuoria/resume-screener/internal/matching"
	"github.com/fmuoria/resume-screener/internal/parser"
)

// newTestServer builds a server without a database; only request-validation
// paths that never reach the store are exercised here.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	p, err := parser.NewParser(parser.DefaultConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	engine := matching.NewEngine(nil, zap.NewNop())
	fh := ingestion.NewFileHandler(filepath.Join(t.TempDir(), "uploads"))
	return NewServer(nil, p, engine, fh, false, zap.NewNop())
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	part.Write([]byte(content))
	writer.Close()
	return body, writer.FormDataContentType()
}

// TestHandleRoot tests the API information endpoint
func TestHandleRoot(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if payload["service"] != "Resume Screener" {
		t.Errorf("service = %v", payload["service"])
	}
}

// TestHandleRoot_UnknownPath tests that unknown paths return 404
func TestHandleRoot_UnknownPath(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/no-such-path", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", rec.Code)
	}
}

// TestUploadResume_Validation tests the request checks before any storage
func TestUploadResume_Validation(t *testing.T) {
	srv := newTestServer(t)

	t.Run("Missing file field", func(t *testing.T) {
		body, contentType := multipartUpload(t, "wrong_field", "cv.txt", "text")
		req := httptest.NewRequest(http.MethodPost, "/upload-resume", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400", rec.Code)
		}
	})

	t.Run("Unsupported extension", func(t *testing.T) {
		body, contentType := multipartUpload(t, "file", "cv.png", "binary")
		req := httptest.NewRequest(http.MethodPost, "/upload-resume", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400", rec.Code)
		}
	})

	t.Run("Duplicate filename", func(t *testing.T) {
		// Seed the uploads dir so the duplicate check fires.
		if _, err := srv.fileHandler.SaveUploadedFile("dup.txt", strings.NewReader("first")); err != nil {
			t.Fatalf("Failed to seed upload: %v", err)
		}

		body, contentType := multipartUpload(t, "file", "dup.txt", "second")
		req := httptest.NewRequest(http.MethodPost, "/upload-resume", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("Status = %d, want 409", rec.Code)
		}
	})
}

// TestCreateJob_Validation tests job description request checks
func TestCreateJob_Validation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "Invalid JSON",
			body: `{not json`,
			want: http.StatusBadRequest,
		},
		{
			name: "Missing title",
			body: `{"description": "no title", "required_skills": ["go"]}`,
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/job-descriptions", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("Status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// TestBulkMatch_Validation tests bulk-match request checks
func TestBulkMatch_Validation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{
			name: "Invalid JSON",
			body: `{{`,
		},
		{
			name: "Empty resume IDs",
			body: `{"resume_ids": [], "job_description_id": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/bulk-match", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("Status = %d, want 400", rec.Code)
			}
		})
	}
}

// TestMatchResults_MissingJobID tests the required query parameter
func TestMatchResults_MissingJobID(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/match-results", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

// TestLoggingMiddleware_RequestID tests that every response carries a request ID
func TestLoggingMiddleware_RequestID(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header on the response")
	}
}

// TestPagination tests offset/limit parsing defaults and bounds
func TestPagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantOffset int
		wantLimit  int
	}{
		{
			name:       "Defaults",
			query:      "",
			wantOffset: 0,
			wantLimit:  100,
		},
		{
			name:       "Explicit values",
			query:      "?offset=10&limit=25",
			wantOffset: 10,
			wantLimit:  25,
		},
		{
			name:       "Negative offset clamped",
			query:      "?offset=-5",
			wantOffset: 0,
			wantLimit:  100,
		},
		{
			name:       "Oversized limit reset",
			query:      "?limit=9999",
			wantOffset: 0,
			wantLimit:  100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/resumes"+tt.query, nil)
			offset, limit := pagination(req)
			if offset != tt.wantOffset || limit != tt.wantLimit {
				t.Errorf("pagination() = (%d, %d), want (%d, %d)", offset, limit, tt.wantOffset, tt.wantLimit)
			}
		})
	}
}
