package report

import (
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"namescreen/internal/match"
)

func results(names ...string) []match.Result {
	out := make([]match.Result, 0, len(names))
	for i, n := range names {
		out = append(out, match.Result{ReferenceID: i, Name: n, Score: 1.0})
	}
	return out
}

func TestAppendStatusInvariant(t *testing.T) {
	b := NewBuilder(0)
	b.Append("John Smith", results("JOHN SMITH"), "screenshots/john_smith_1.png")
	b.Append("Jane Doe", nil, "screenshots/jane_doe_2.png")

	rows := b.Rows()
	require.Len(t, rows, 2)

	assert.Equal(t, StatusMatch, rows[0].MatchStatus)
	assert.Equal(t, 1, rows[0].MatchCount)
	assert.Equal(t, "JOHN SMITH (score: 1.00)", rows[0].Matches)

	assert.Equal(t, StatusClear, rows[1].MatchStatus)
	assert.Equal(t, 0, rows[1].MatchCount)
	assert.Equal(t, "", rows[1].Matches)
}

func TestMatchesTruncation(t *testing.T) {
	maxLen := 40
	b := NewBuilder(maxLen)
	b.Append("Subject", results("AAAAAAAAAA BBBBBBBBBB", "CCCCCCCCCC DDDDDDDDDD"), "")

	got := b.Rows()[0].Matches
	assert.True(t, strings.HasSuffix(got, TruncationMarker))
	assert.Equal(t, maxLen+len(TruncationMarker), len(got))
}

func TestMatchesTruncationRuneSafe(t *testing.T) {
	// Force the byte cut to land inside a multi-byte rune; the cut must back
	// off to the rune boundary instead of emitting invalid UTF-8.
	name := "ÉLYSÉE ÉMIGRÉ ÉLITE ÉCOLE ÉTAPE"
	maxLen := 19 // lands on the continuation byte of the third É
	b := NewBuilder(maxLen)
	b.Append("Subject", results(name), "")

	got := b.Rows()[0].Matches
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, TruncationMarker))
	assert.LessOrEqual(t, len(got), maxLen+len(TruncationMarker))
}

func TestMatchesNoTruncationUnderLimit(t *testing.T) {
	b := NewBuilder(200)
	b.Append("Subject", results("JOHN SMITH", "JOHN SMITHSON"), "")

	got := b.Rows()[0].Matches
	assert.Equal(t, "JOHN SMITH (score: 1.00); JOHN SMITHSON (score: 1.00)", got)
	assert.False(t, strings.Contains(got, TruncationMarker))
}

func TestWriteWorkbook(t *testing.T) {
	b := NewBuilder(0)
	b.Append("John Smith", results("JOHN SMITH"), "screenshots/john_smith_1.png")
	b.Append("Jane Doe", nil, "")

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, b.Write(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 subjects

	assert.Equal(t, headers, rows[0])
	assert.Equal(t, "John Smith", rows[1][0])
	assert.Equal(t, StatusMatch, rows[1][1])
	assert.Equal(t, "1", rows[1][2])

	// Screenshot cell carries hyperlink metadata, not just display text.
	hasLink, target, err := f.GetCellHyperLink(sheetName, "E2")
	require.NoError(t, err)
	assert.True(t, hasLink)
	assert.Equal(t, "screenshots/john_smith_1.png", target)

	display, err := f.GetCellValue(sheetName, "E2")
	require.NoError(t, err)
	assert.Equal(t, "View evidence", display)

	// Failed capture leaves the cell empty and unlinked.
	hasLink, _, err = f.GetCellHyperLink(sheetName, "E3")
	require.NoError(t, err)
	assert.False(t, hasLink)
}
