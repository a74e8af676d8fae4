// Package store persists parsed resumes, job descriptions, and match
// results in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fmuoria/resume-screener/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateFilename is returned when a resume with the same filename has
// already been ingested.
var ErrDuplicateFilename = errors.New("a resume with this filename already exists")

// Store wraps the database handle with typed accessors.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// New creates a store on top of an open database handle.
func New(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, databaseURL string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(db, logger), nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateTables creates the schema if it does not exist.
func (s *Store) CreateTables(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS resumes (
	id               SERIAL PRIMARY KEY,
	filename         TEXT NOT NULL UNIQUE,
	name             TEXT NOT NULL,
	email            TEXT NOT NULL DEFAULT '',
	phone            TEXT NOT NULL DEFAULT '',
	skills           JSONB NOT NULL DEFAULT '[]',
	experience_years DOUBLE PRECISION NOT NULL DEFAULT 0,
	education        JSONB NOT NULL DEFAULT '[]',
	raw_text         TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS job_descriptions (
	id                  SERIAL PRIMARY KEY,
	title               TEXT NOT NULL,
	description         TEXT NOT NULL DEFAULT '',
	required_skills     JSONB NOT NULL DEFAULT '[]',
	required_experience DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS match_results (
	id                 SERIAL PRIMARY KEY,
	resume_id          INTEGER NOT NULL REFERENCES resumes(id) ON DELETE CASCADE,
	job_description_id INTEGER NOT NULL REFERENCES job_descriptions(id) ON DELETE CASCADE,
	match_score        DOUBLE PRECISION NOT NULL,
	summary            TEXT NOT NULL DEFAULT '',
	strengths          JSONB NOT NULL DEFAULT '[]',
	gaps               JSONB NOT NULL DEFAULT '[]',
	is_student         BOOLEAN NOT NULL DEFAULT FALSE,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_match_results_job ON match_results (job_description_id, match_score DESC);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// CreateResume inserts a parsed profile and returns it with its assigned ID.
func (s *Store) CreateResume(ctx context.Context, profile models.CandidateProfile) (models.CandidateProfile, error) {
	skills, err := json.Marshal(profile.Skills)
	if err != nil {
		return profile, fmt.Errorf("failed to encode skills: %w", err)
	}
	education, err := json.Marshal(profile.Education)
	if err != nil {
		return profile, fmt.Errorf("failed to encode education: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO resumes (filename, name, email, phone, skills, experience_years, education, raw_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		profile.Filename, profile.Name, profile.Email, profile.Phone,
		skills, profile.ExperienceYears, education, profile.RawText,
	).Scan(&profile.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return profile, ErrDuplicateFilename
		}
		return profile, fmt.Errorf("failed to insert resume: %w", err)
	}

	s.logger.Info("resume stored",
		zap.Int64("id", profile.ID),
		zap.String("filename", profile.Filename))
	return profile, nil
}

// GetResume fetches one resume by ID.
func (s *Store) GetResume(ctx context.Context, id int64) (models.CandidateProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, name, email, phone, skills, experience_years, education, raw_text
		FROM resumes WHERE id = $1`, id)
	return scanResume(row)
}

// ListResumes returns resumes ordered newest first.
func (s *Store) ListResumes(ctx context.Context, offset, limit int) ([]models.CandidateProfile, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, name, email, phone, skills, experience_years, education, raw_text
		FROM resumes ORDER BY created_at DESC OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	profiles := []models.CandidateProfile{}
	for rows.Next() {
		profile, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

// GetResumesByIDs fetches the given resumes; missing IDs are skipped.
func (s *Store) GetResumesByIDs(ctx context.Context, ids []int64) ([]models.CandidateProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, name, email, phone, skills, experience_years, education, raw_text
		FROM resumes WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch resumes: %w", err)
	}
	defer rows.Close()

	profiles := []models.CandidateProfile{}
	for rows.Next() {
		profile, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

// CreateJobDescription inserts a job description and returns it with its ID.
func (s *Store) CreateJobDescription(ctx context.Context, job models.JobRequirement) (models.JobRequirement, error) {
	skills, err := json.Marshal(job.RequiredSkills)
	if err != nil {
		return job, fmt.Errorf("failed to encode required skills: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO job_descriptions (title, description, required_skills, required_experience)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		job.Title, job.Description, skills, job.RequiredExperience,
	).Scan(&job.ID)
	if err != nil {
		return job, fmt.Errorf("failed to insert job description: %w", err)
	}
	return job, nil
}

// GetJobDescription fetches one job description by ID.
func (s *Store) GetJobDescription(ctx context.Context, id int64) (models.JobRequirement, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, required_skills, required_experience
		FROM job_descriptions WHERE id = $1`, id)
	return scanJob(row)
}

// ListJobDescriptions returns job descriptions ordered newest first.
func (s *Store) ListJobDescriptions(ctx context.Context, offset, limit int) ([]models.JobRequirement, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, required_skills, required_experience
		FROM job_descriptions ORDER BY created_at DESC OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list job descriptions: %w", err)
	}
	defer rows.Close()

	jobs := []models.JobRequirement{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// SaveMatchResults replaces the stored results for a job with a fresh batch.
func (s *Store) SaveMatchResults(ctx context.Context, jobID int64, results []models.MatchResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM match_results WHERE job_description_id = $1`, jobID); err != nil {
		return fmt.Errorf("failed to clear previous results: %w", err)
	}

	for _, result := range results {
		strengths, err := json.Marshal(result.Strengths)
		if err != nil {
			return fmt.Errorf("failed to encode strengths: %w", err)
		}
		gaps, err := json.Marshal(result.Gaps)
		if err != nil {
			return fmt.Errorf("failed to encode gaps: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO match_results (resume_id, job_description_id, match_score, summary, strengths, gaps, is_student)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			result.ResumeID, jobID, result.FinalScore, result.Summary,
			strengths, gaps, result.IsStudent); err != nil {
			return fmt.Errorf("failed to insert match result: %w", err)
		}
	}

	return tx.Commit()
}

// MatchResultsByJob returns stored results for a job, best score first.
func (s *Store) MatchResultsByJob(ctx context.Context, jobID int64) ([]models.MatchResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT resume_id, job_description_id, match_score, summary, strengths, gaps, is_student
		FROM match_results WHERE job_description_id = $1
		ORDER BY match_score DESC, id ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query match results: %w", err)
	}
	defer rows.Close()

	results := []models.MatchResult{}
	for rows.Next() {
		var result models.MatchResult
		var strengths, gaps []byte
		if err := rows.Scan(&result.ResumeID, &result.JobID, &result.FinalScore,
			&result.Summary, &strengths, &gaps, &result.IsStudent); err != nil {
			return nil, fmt.Errorf("failed to scan match result: %w", err)
		}
		if err := json.Unmarshal(strengths, &result.Strengths); err != nil {
			return nil, fmt.Errorf("failed to decode strengths: %w", err)
		}
		if err := json.Unmarshal(gaps, &result.Gaps); err != nil {
			return nil, fmt.Errorf("failed to decode gaps: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// ResetAll truncates every table. Intended for development environments.
func (s *Store) ResetAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`TRUNCATE match_results, resumes, job_descriptions RESTART IDENTITY CASCADE`); err != nil {
		return fmt.Errorf("failed to reset tables: %w", err)
	}
	s.logger.Warn("all stored data reset")
	return nil
}

// Ping verifies the database connection for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (models.CandidateProfile, error) {
	var profile models.CandidateProfile
	var skills, education []byte
	err := row.Scan(&profile.ID, &profile.Filename, &profile.Name, &profile.Email,
		&profile.Phone, &skills, &profile.ExperienceYears, &education, &profile.RawText)
	if errors.Is(err, sql.ErrNoRows) {
		return profile, ErrNotFound
	}
	if err != nil {
		return profile, fmt.Errorf("failed to scan resume: %w", err)
	}
	if err := json.Unmarshal(skills, &profile.Skills); err != nil {
		return profile, fmt.Errorf("failed to decode skills: %w", err)
	}
	if err := json.Unmarshal(education, &profile.Education); err != nil {
		return profile, fmt.Errorf("failed to decode education: %w", err)
	}
	return profile, nil
}

func scanJob(row rowScanner) (models.JobRequirement, error) {
	var job models.JobRequirement
	var skills []byte
	err := row.Scan(&job.ID, &job.Title, &job.Description, &skills, &job.RequiredExperience)
	if errors.Is(err, sql.ErrNoRows) {
		return job, ErrNotFound
	}
	if err != nil {
		return job, fmt.Errorf("failed to scan job description: %w", err)
	}
	if err := json.Unmarshal(skills, &job.RequiredSkills); err != nil {
		return job, fmt.Errorf("failed to decode required skills: %w", err)
	}
	return job, nil
}
