// Package export renders ranked match results as an Excel workbook.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fmuoria/resume-screener/internal/models"
)

// Score bands for the color-coded candidate sheet, on the 0-10 scale.
const (
	bandExcellent = 8.0
	bandGood      = 6.0
	bandFair      = 4.0
)

// ExportToExcel writes a screening report for one job. Results are expected
// in ranked order; profiles supplies candidate names keyed by resume ID.
func ExportToExcel(results []models.MatchResult, profiles map[int64]models.CandidateProfile, job models.JobRequirement, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	summarySheet := "Summary"
	candidatesSheet := "Ranked Candidates"
	detailsSheet := "Detailed Analysis"

	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(candidatesSheet)
	f.NewSheet(detailsSheet)

	if err := createSummarySheet(f, summarySheet, results, job); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := createRankedCandidatesSheet(f, candidatesSheet, results, profiles); err != nil {
		return fmt.Errorf("failed to create ranked candidates sheet: %w", err)
	}
	if err := createDetailedAnalysisSheet(f, detailsSheet, results, profiles); err != nil {
		return fmt.Errorf("failed to create detailed analysis sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		// Direct save can fail on some filesystems; fall back to a buffered write.
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return fmt.Errorf("failed to save Excel file: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}
		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0644); fileErr != nil {
			return fmt.Errorf("failed to save Excel file: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}

	return nil
}

// createSummarySheet writes job details and score statistics.
func createSummarySheet(f *excelize.File, sheetName string, results []models.MatchResult, job models.JobRequirement) error {
	f.SetColWidth(sheetName, "A", "A", 28)
	f.SetColWidth(sheetName, "B", "B", 60)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	row := 1

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Resume Screening Report")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	f.MergeCell(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	row += 2

	setLabelled := func(label string, value any) {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), label)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), value)
		row++
	}

	setLabelled("Job Title:", job.Title)
	setLabelled("Required Experience (Years):", job.RequiredExperience)
	setLabelled("Required Skills:", strings.Join(job.RequiredSkills, ", "))
	setLabelled("Generated:", time.Now().Format("2006-01-02 15:04:05"))
	setLabelled("Total Candidates Scored:", len(results))
	row++

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Statistics:")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	f.MergeCell(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	row++

	if len(results) == 0 {
		return nil
	}

	excellent, good, fair, poor := 0, 0, 0, 0
	students := 0
	total := 0.0
	minScore, maxScore := results[0].FinalScore, results[0].FinalScore
	for _, r := range results {
		total += r.FinalScore
		if r.FinalScore < minScore {
			minScore = r.FinalScore
		}
		if r.FinalScore > maxScore {
			maxScore = r.FinalScore
		}
		if r.IsStudent {
			students++
		}
		switch {
		case r.FinalScore >= bandExcellent:
			excellent++
		case r.FinalScore >= bandGood:
			good++
		case r.FinalScore >= bandFair:
			fair++
		default:
			poor++
		}
	}

	setLabelled("Excellent (8.0-10.0):", excellent)
	setLabelled("Good (6.0-7.9):", good)
	setLabelled("Fair (4.0-5.9):", fair)
	setLabelled("Poor (<4.0):", poor)
	setLabelled("Average Score:", fmt.Sprintf("%.2f", total/float64(len(results))))
	setLabelled("Highest Score:", fmt.Sprintf("%.2f", maxScore))
	setLabelled("Lowest Score:", fmt.Sprintf("%.2f", minScore))
	setLabelled("Student/Entry-Level Candidates:", students)

	return nil
}

// createRankedCandidatesSheet writes the color-coded ranking table.
func createRankedCandidatesSheet(f *excelize.File, sheetName string, results []models.MatchResult, profiles map[int64]models.CandidateProfile) error {
	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 25)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 30)
	f.SetColWidth(sheetName, "F", "F", 60)

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return err
	}

	bandStyle := func(color string) int {
		style, _ := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: border,
		})
		return style
	}
	excellentStyle := bandStyle("C6EFCE")
	goodStyle := bandStyle("FFEB9C")
	fairStyle := bandStyle("FFC7CE")
	poorStyle := bandStyle("FF9999")

	headers := []string{"Rank", "Candidate", "Score", "Student", "Filename", "Summary"}
	for col, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+col)))
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, result := range results {
		row := i + 2
		profile := profiles[result.ResumeID]

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), profile.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), fmt.Sprintf("%.1f", result.FinalScore))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), result.IsStudent)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), profile.Filename)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), result.Summary)

		var style int
		switch {
		case result.FinalScore >= bandExcellent:
			style = excellentStyle
		case result.FinalScore >= bandGood:
			style = goodStyle
		case result.FinalScore >= bandFair:
			style = fairStyle
		default:
			style = poorStyle
		}
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("F%d", row), style)
	}

	if len(results) > 0 {
		f.AutoFilter(sheetName, fmt.Sprintf("A1:F%d", len(results)+1), []excelize.AutoFilterOptions{})
	}

	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}

// createDetailedAnalysisSheet writes one row per strength and gap.
func createDetailedAnalysisSheet(f *excelize.File, sheetName string, results []models.MatchResult, profiles map[int64]models.CandidateProfile) error {
	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 25)
	f.SetColWidth(sheetName, "C", "C", 14)
	f.SetColWidth(sheetName, "D", "D", 80)

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return err
	}

	wrapStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    border,
	})

	headers := []string{"Rank", "Candidate", "Category", "Detail"}
	for col, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+col)))
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	row := 2
	writeDetail := func(rank int, name, category, detail string) {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), rank)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), name)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), category)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), detail)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), wrapStyle)
		row++
	}

	for i, result := range results {
		rank := i + 1
		name := profiles[result.ResumeID].Name

		writeDetail(rank, name, "Summary", result.Summary)
		for _, strength := range result.Strengths {
			writeDetail(rank, name, "Strength", strength)
		}
		for _, gap := range result.Gaps {
			writeDetail(rank, name, "Gap", gap)
		}
	}

	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}
