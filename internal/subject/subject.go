// Package subject loads the list of names to be screened from an Excel
// workbook. Only the first sheet is read; the name column is located by
// header alias so operators can hand over spreadsheets from different teams
// without reshaping them.
package subject

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"namescreen/internal/normalize"
)

// headerAliases is the priority order used to locate the name column.
var headerAliases = []string{"name", "full name"}

// Subject is one candidate name submitted for screening.
type Subject struct {
	DisplayName string
	Tokens      []string
}

// Load reads the first sheet of the workbook at path and produces one
// Subject per data row, in row order. Rows without a resolvable name still
// produce a Subject with an empty display name; dropping rows here would
// desynchronize the report from the input.
func Load(path string) ([]Subject, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open subject workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("subject workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	nameCol := resolveNameColumn(rows[0])

	subjects := make([]Subject, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := ""
		if nameCol >= 0 && nameCol < len(row) {
			name = strings.TrimSpace(row[nameCol])
		}
		subjects = append(subjects, Subject{
			DisplayName: name,
			Tokens:      normalize.Tokens(name),
		})
	}
	return subjects, nil
}

// resolveNameColumn returns the index of the first header matching an alias,
// checked in alias priority order. Returns -1 when no alias is present.
func resolveNameColumn(header []string) int {
	for _, alias := range headerAliases {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), alias) {
				return i
			}
		}
	}
	return -1
}
