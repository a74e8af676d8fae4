// Package api exposes the screening engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fmuoria/resume-screener/internal/ingestion"
	"github.com/fmuoria/resume-screener/internal/matching"
	"github.com/fmuoria/resume-screener/internal/models"
	"github.com/fmuoria/resume-screener/internal/parser"
	"github.com/fmuoria/resume-screener/internal/store"
)

// maxUploadBytes caps multipart resume uploads.
const maxUploadBytes = 32 << 20

// Server handles HTTP requests.
type Server struct {
	store       *store.Store
	parser      *parser.Parser
	engine      *matching.Engine
	fileHandler *ingestion.FileHandler
	logger      *zap.Logger
	aiAvailable bool
}

// NewServer creates an API server. aiAvailable reports whether the judgment
// provider passed its startup probe; it only affects the health payload.
func NewServer(st *store.Store, p *parser.Parser, engine *matching.Engine, fh *ingestion.FileHandler, aiAvailable bool, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:       st,
		parser:      p,
		engine:      engine,
		fileHandler: fh,
		logger:      logger,
		aiAvailable: aiAvailable,
	}
}

// Router returns the HTTP router.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /upload-resume", s.handleUploadResume)
	mux.HandleFunc("GET /resumes", s.handleListResumes)
	mux.HandleFunc("POST /job-descriptions", s.handleCreateJob)
	mux.HandleFunc("GET /job-descriptions", s.handleListJobs)
	mux.HandleFunc("POST /bulk-match", s.handleBulkMatch)
	mux.HandleFunc("GET /match-results", s.handleMatchResults)
	mux.HandleFunc("DELETE /reset-all-data", s.handleResetAllData)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /", s.handleRoot)

	return s.loggingMiddleware(mux)
}

// handleRoot provides API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.respondError(w, http.StatusNotFound, "not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "Resume Screener",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /upload-resume":    "Upload and parse a resume",
			"GET /resumes":           "List parsed resumes",
			"POST /job-descriptions": "Create a job description",
			"GET /job-descriptions":  "List job descriptions",
			"POST /bulk-match":       "Match stored resumes against a job",
			"GET /match-results":     "Stored match results for a job",
			"DELETE /reset-all-data": "Delete all stored data",
			"GET /health":            "Health check",
		},
	})
}

// handleHealth reports database and AI availability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	dbStatus := "connected"
	code := http.StatusOK
	if err := s.store.Ping(r.Context()); err != nil {
		status = "degraded"
		dbStatus = "unreachable"
		code = http.StatusServiceUnavailable
	}

	s.respondJSON(w, code, map[string]interface{}{
		"status":       status,
		"database":     dbStatus,
		"ai_available": s.aiAvailable,
	})
}

// handleUploadResume stores, extracts, and parses one uploaded resume.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if !ingestion.SupportedExtension(header.Filename) {
		s.respondError(w, http.StatusBadRequest, "unsupported file type; use .pdf, .docx, or .txt")
		return
	}

	if s.fileHandler.Exists(header.Filename) {
		s.respondError(w, http.StatusConflict, "a resume with this filename already exists")
		return
	}

	path, err := s.fileHandler.SaveUploadedFile(header.Filename, file)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save file: %v", err))
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to read stored file")
		return
	}

	text, err := ingestion.ExtractText(header.Filename, data)
	if err != nil {
		s.logger.Warn("text extraction failed",
			zap.String("filename", header.Filename),
			zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "could not process file: no text could be extracted")
		return
	}

	profile := s.parser.Parse(text, header.Filename)
	if profile.ParseFailed() {
		s.respondError(w, http.StatusInternalServerError, "could not process file: parsing failed")
		return
	}

	stored, err := s.store.CreateResume(r.Context(), profile)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateFilename) {
			s.respondError(w, http.StatusConflict, err.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store resume: %v", err))
		return
	}

	s.respondJSON(w, http.StatusOK, stored)
}

// handleListResumes lists stored resumes, newest first.
func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r)
	resumes, err := s.store.ListResumes(r.Context(), offset, limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resumes)
}

// handleCreateJob stores a new job description.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var job models.JobRequirement
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid job description: %v", err))
		return
	}
	if job.Title == "" {
		s.respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	stored, err := s.store.CreateJobDescription(r.Context(), job)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, stored)
}

// handleListJobs lists stored job descriptions, newest first.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r)
	jobs, err := s.store.ListJobDescriptions(r.Context(), offset, limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, jobs)
}

// handleBulkMatch matches stored resumes against a stored job and persists
// the ranked results.
func (s *Server) handleBulkMatch(w http.ResponseWriter, r *http.Request) {
	var req models.BulkMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if len(req.ResumeIDs) == 0 {
		s.respondError(w, http.StatusBadRequest, "resume_ids is required")
		return
	}

	job, err := s.store.GetJobDescription(r.Context(), req.JobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "job description not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	profiles, err := s.store.GetResumesByIDs(r.Context(), req.ResumeIDs)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(profiles) == 0 {
		s.respondError(w, http.StatusNotFound, "no matching resumes found")
		return
	}

	results := s.engine.BulkMatch(r.Context(), profiles, job)

	// Persistence is decoupled from the response path: the ranked results
	// go back to the caller immediately and are saved in the background.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.store.SaveMatchResults(ctx, job.ID, results); err != nil {
			s.logger.Error("failed to persist match results",
				zap.Int64("job_id", job.ID),
				zap.Error(err))
		}
	}()

	s.respondJSON(w, http.StatusOK, models.BulkMatchResponse{Results: results})
}

// handleMatchResults returns stored results for one job.
func (s *Server) handleMatchResults(w http.ResponseWriter, r *http.Request) {
	jobID, err := strconv.ParseInt(r.URL.Query().Get("job_id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "job_id query parameter is required")
		return
	}

	results, err := s.store.MatchResultsByJob(r.Context(), jobID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.BulkMatchResponse{Results: results})
}

// handleResetAllData wipes every table and the uploads directory.
func (s *Server) handleResetAllData(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ResetAll(r.Context()); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.fileHandler.ClearUploads(); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "all data deleted",
	})
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondError sends an error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// loggingMiddleware logs each request with a generated request ID.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		s.logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr))
		next.ServeHTTP(w, r)
	})
}

// pagination extracts offset/limit query parameters with defaults.
func pagination(r *http.Request) (int, int) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 100
	}
	return offset, limit
}
