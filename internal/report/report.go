// Package report accumulates per-subject screening outcomes and writes the
// consolidated Excel report. One row per subject, in input order, regardless
// of how evidence capture went for that subject.
package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"namescreen/internal/match"
)

// Match status values for the MatchStatus column.
const (
	StatusMatch = "MATCH"
	StatusClear = "CLEAR"
)

// TruncationMarker is appended whenever the Matches cell is cut off, so a
// truncated row never reads as complete.
const TruncationMarker = " …[truncated]"

// DefaultMaxMatchesLen bounds the Matches cell. Excel renders very long
// cells poorly and reviewers only need enough to identify the hit.
const DefaultMaxMatchesLen = 1000

const sheetName = "Screening"

var headers = []string{"Publisher", "MatchStatus", "MatchCount", "Matches", "Screenshot"}

// Row is one report line for a screened subject.
type Row struct {
	Publisher      string
	MatchStatus    string
	MatchCount     int
	Matches        string
	ScreenshotPath string // relative to the run directory; empty when capture failed
}

// Builder collects rows and writes the final workbook.
type Builder struct {
	maxMatchesLen int
	rows          []Row
}

// NewBuilder creates a report builder. maxMatchesLen bounds the Matches
// cell; zero or negative selects the default.
func NewBuilder(maxMatchesLen int) *Builder {
	if maxMatchesLen <= 0 {
		maxMatchesLen = DefaultMaxMatchesLen
	}
	return &Builder{maxMatchesLen: maxMatchesLen}
}

// Append records the outcome for one subject. screenshotPath is the
// run-relative artifact path, or empty when no evidence exists.
func (b *Builder) Append(displayName string, results []match.Result, screenshotPath string) {
	status := StatusClear
	if len(results) > 0 {
		status = StatusMatch
	}
	b.rows = append(b.rows, Row{
		Publisher:      displayName,
		MatchStatus:    status,
		MatchCount:     len(results),
		Matches:        b.formatMatches(results),
		ScreenshotPath: screenshotPath,
	})
}

// Rows returns the accumulated rows in append order.
func (b *Builder) Rows() []Row {
	return b.rows
}

// formatMatches joins the qualifying names, truncating with a visible marker
// when the joined string exceeds the configured maximum.
func (b *Builder) formatMatches(results []match.Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("%s (score: %.2f)", r.Name, r.Score))
	}
	joined := strings.Join(parts, "; ")
	if len(joined) > b.maxMatchesLen {
		// Back off to a rune boundary so the cut never leaves invalid UTF-8
		// ahead of the marker; names keep non-ASCII letters.
		cut := b.maxMatchesLen
		for cut > 0 && !utf8.RuneStart(joined[cut]) {
			cut--
		}
		joined = joined[:cut] + TruncationMarker
	}
	return joined
}

// Write emits the single-sheet workbook at path. Screenshot cells carry real
// hyperlink metadata so they stay clickable in Excel, not just a path string.
func (b *Builder) Write(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	hdr := headers
	if err := f.SetSheetRow(sheetName, "A1", &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	linkStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0563C1", Underline: "single"},
	})
	if err != nil {
		return fmt.Errorf("create link style: %w", err)
	}

	for i, row := range b.rows {
		rowNum := i + 2
		values := []interface{}{row.Publisher, row.MatchStatus, row.MatchCount, row.Matches}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", rowNum, err)
		}

		if row.ScreenshotPath == "" {
			continue
		}
		linkCell, err := excelize.CoordinatesToCellName(len(headers), rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, linkCell, "View evidence"); err != nil {
			return fmt.Errorf("write screenshot cell %d: %w", rowNum, err)
		}
		if err := f.SetCellHyperLink(sheetName, linkCell, row.ScreenshotPath, "External"); err != nil {
			return fmt.Errorf("link screenshot cell %d: %w", rowNum, err)
		}
		if err := f.SetCellStyle(sheetName, linkCell, linkCell, linkStyle); err != nil {
			return fmt.Errorf("style screenshot cell %d: %w", rowNum, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}
