// Package agent orchestrates a full screening run: ingest documents, parse
// them into candidate profiles, score them against a job, and hold the
// ranked results.
package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fmuoria/resume-screener/internal/export"
	"github.com/fmuoria/resume-screener/internal/ingestion"
	"github.com/fmuoria/resume-screener/internal/matching"
	"github.com/fmuoria/resume-screener/internal/models"
	"github.com/fmuoria/resume-screener/internal/parser"
)

// ProgressCallback is called to report progress during processing.
type ProgressCallback func(current, total int, message string)

// ReportResponse is the agent's ranked output for one screening run.
type ReportResponse struct {
	JobTitle  string               `json:"job_title"`
	Results   []models.MatchResult `json:"results"`
	Timestamp string               `json:"timestamp"`
}

// ScreeningAgent runs end-to-end resume screening.
type ScreeningAgent struct {
	FileHandler  *ingestion.FileHandler
	gmailHandler *ingestion.GmailHandler
	parser       *parser.Parser
	engine       *matching.Engine
	logger       *zap.Logger

	mu         sync.RWMutex
	job        models.JobRequirement
	results    []models.MatchResult
	profiles   map[int64]models.CandidateProfile
	progressCb ProgressCallback
}

// NewScreeningAgent creates an agent over the given parser and engine.
func NewScreeningAgent(fileHandler *ingestion.FileHandler, p *parser.Parser, engine *matching.Engine, logger *zap.Logger) *ScreeningAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScreeningAgent{
		FileHandler: fileHandler,
		parser:      p,
		engine:      engine,
		logger:      logger,
		profiles:    map[int64]models.CandidateProfile{},
	}
}

// SetProgressCallback sets the progress callback function.
func (a *ScreeningAgent) SetProgressCallback(cb ProgressCallback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.progressCb = cb
}

func (a *ScreeningAgent) reportProgress(current, total int, message string) {
	a.mu.RLock()
	cb := a.progressCb
	a.mu.RUnlock()

	if cb != nil {
		cb(current, total, message)
	}
}

// ScreenUploads runs a screening pass over the uploads directory.
func (a *ScreeningAgent) ScreenUploads(ctx context.Context, job models.JobRequirement) error {
	a.mu.Lock()
	a.job = job
	a.mu.Unlock()

	a.reportProgress(0, 100, "Loading documents...")

	documents, err := a.FileHandler.LoadDocuments()
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}
	if len(documents) == 0 {
		return fmt.Errorf("no documents found in uploads directory")
	}

	a.logger.Info("screening run started",
		zap.String("job_title", job.Title),
		zap.Int("documents", len(documents)))
	a.reportProgress(10, 100, fmt.Sprintf("Parsing %d documents...", len(documents)))

	return a.screen(ctx, documents)
}

// ScreenGmail fetches attachments matching the subject and screens them.
func (a *ScreeningAgent) ScreenGmail(ctx context.Context, subject string, job models.JobRequirement) error {
	a.mu.Lock()
	a.job = job
	a.mu.Unlock()

	a.reportProgress(0, 100, "Connecting to Gmail...")

	if a.gmailHandler == nil {
		handler, err := ingestion.NewGmailHandler(ctx, a.FileHandler.UploadsDir(), a.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Gmail handler: %w", err)
		}
		a.gmailHandler = handler
	}

	a.reportProgress(5, 100, "Clearing existing uploads...")
	if err := a.FileHandler.ClearUploads(); err != nil {
		return fmt.Errorf("failed to clear uploads: %w", err)
	}

	a.reportProgress(10, 100, "Fetching attachments from Gmail...")
	if _, err := a.gmailHandler.FetchAttachments(subject); err != nil {
		return fmt.Errorf("failed to fetch Gmail attachments: %w", err)
	}

	a.reportProgress(30, 100, "Loading documents...")
	documents, err := a.FileHandler.LoadDocuments()
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}
	if len(documents) == 0 {
		return fmt.Errorf("no documents found after Gmail fetch")
	}

	return a.screen(ctx, documents)
}

// screen parses every document and ranks the resulting profiles.
func (a *ScreeningAgent) screen(ctx context.Context, documents []ingestion.StoredDocument) error {
	profiles := make([]models.CandidateProfile, 0, len(documents))

	for i, doc := range documents {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		progress := 10 + 50*i/len(documents)
		a.reportProgress(progress, 100, fmt.Sprintf("Parsing %s (%d/%d)", doc.Filename, i+1, len(documents)))

		var profile models.CandidateProfile
		text, err := ingestion.ExtractText(doc.Filename, doc.Data)
		if err != nil {
			a.logger.Warn("extraction failed, recording failed profile",
				zap.String("filename", doc.Filename),
				zap.Error(err))
			profile = models.FailedProfile(doc.Filename)
		} else {
			profile = a.parser.Parse(text, doc.Filename)
		}
		profile.ID = int64(i + 1)
		profiles = append(profiles, profile)
	}

	a.reportProgress(60, 100, fmt.Sprintf("Matching %d candidates...", len(profiles)))

	a.mu.RLock()
	job := a.job
	a.mu.RUnlock()

	results := a.engine.BulkMatch(ctx, profiles, job)

	byID := make(map[int64]models.CandidateProfile, len(profiles))
	for _, profile := range profiles {
		byID[profile.ID] = profile
	}

	a.mu.Lock()
	a.results = results
	a.profiles = byID
	a.mu.Unlock()

	a.reportProgress(100, 100, "Screening complete!")
	a.logger.Info("screening run finished", zap.Int("candidates", len(results)))
	return nil
}

// GetReport returns the ranked report for the last screening run.
func (a *ScreeningAgent) GetReport() (ReportResponse, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.results) == 0 {
		return ReportResponse{}, fmt.Errorf("no results available, run a screening first")
	}

	return ReportResponse{
		JobTitle:  a.job.Title,
		Results:   a.results,
		Timestamp: time.Now().Format(time.RFC3339),
	}, nil
}

// GetResults returns a copy of the current ranked results.
func (a *ScreeningAgent) GetResults() []models.MatchResult {
	a.mu.RLock()
	defer a.mu.RUnlock()

	resultsCopy := make([]models.MatchResult, len(a.results))
	copy(resultsCopy, a.results)
	return resultsCopy
}

// GetJobRequirement returns the job of the last screening run.
func (a *ScreeningAgent) GetJobRequirement() models.JobRequirement {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.job
}

// ExportReport writes the last run's results as an Excel workbook.
func (a *ScreeningAgent) ExportReport(outputPath string) error {
	a.mu.RLock()
	results := a.results
	profiles := a.profiles
	job := a.job
	a.mu.RUnlock()

	if len(results) == 0 {
		return fmt.Errorf("no results available, run a screening first")
	}

	return export.ExportToExcel(results, profiles, job, outputPath)
}
