package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fmuoria/resume-screener/internal/models"
)

func sampleData() ([]models.MatchResult, map[int64]models.CandidateProfile, models.JobRequirement) {
	results := []models.MatchResult{
		{
			ResumeID:   1,
			JobID:      3,
			FinalScore: 8.4,
			Summary:    "Strong match.",
			Strengths:  []string{"Python depth"},
			Gaps:       []string{"No Kubernetes"},
		},
		{
			ResumeID:   2,
			JobID:      3,
			FinalScore: 4.1,
			Summary:    "Partial match.",
			Strengths:  []string{},
			Gaps:       []string{"Missing core skills"},
			IsStudent:  true,
		},
	}
	profiles := map[int64]models.CandidateProfile{
		1: {ID: 1, Name: "Jane Doe", Filename: "jane.pdf"},
		2: {ID: 2, Name: "John Smith", Filename: "john.docx"},
	}
	job := models.JobRequirement{
		ID:                 3,
		Title:              "Backend Engineer",
		RequiredSkills:     []string{"python", "postgresql"},
		RequiredExperience: 4.0,
	}
	return results, profiles, job
}

// TestExportToExcel_EnsuresXlsxExtension tests that .xlsx extension is added if missing
func TestExportToExcel_EnsuresXlsxExtension(t *testing.T) {
	tmpDir := t.TempDir()
	results, profiles, job := sampleData()

	outputPath := filepath.Join(tmpDir, "screening_report")
	if err := ExportToExcel(results, profiles, job, outputPath); err != nil {
		t.Fatalf("ExportToExcel() failed: %v", err)
	}

	expectedPath := outputPath + ".xlsx"
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Errorf("Expected file at %s but it doesn't exist", expectedPath)
	}
}

// TestExportToExcel_HandlesExistingXlsxExtension tests that existing .xlsx extension is preserved
func TestExportToExcel_HandlesExistingXlsxExtension(t *testing.T) {
	tmpDir := t.TempDir()
	results, profiles, job := sampleData()

	outputPath := filepath.Join(tmpDir, "screening_report.xlsx")
	if err := ExportToExcel(results, profiles, job, outputPath); err != nil {
		t.Fatalf("ExportToExcel() failed: %v", err)
	}

	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		t.Errorf("Expected file at %s but it doesn't exist", outputPath)
	}
	if strings.HasSuffix(outputPath, ".xlsx.xlsx") {
		t.Error("Should not have double .xlsx extension")
	}
}

// TestExportToExcel_EmptyResults tests export with no candidates
func TestExportToExcel_EmptyResults(t *testing.T) {
	tmpDir := t.TempDir()
	_, _, job := sampleData()

	outputPath := filepath.Join(tmpDir, "empty_report.xlsx")
	err := ExportToExcel([]models.MatchResult{}, map[int64]models.CandidateProfile{}, job, outputPath)
	if err != nil {
		t.Fatalf("ExportToExcel() should handle empty results: %v", err)
	}

	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		t.Errorf("Expected file at %s but it doesn't exist", outputPath)
	}
}

// TestExportToExcel_UnknownProfile tests that a missing profile entry does not fail the export
func TestExportToExcel_UnknownProfile(t *testing.T) {
	tmpDir := t.TempDir()
	results, _, job := sampleData()

	outputPath := filepath.Join(tmpDir, "orphan_report.xlsx")
	err := ExportToExcel(results, map[int64]models.CandidateProfile{}, job, outputPath)
	if err != nil {
		t.Fatalf("ExportToExcel() should tolerate missing profiles: %v", err)
	}
}
