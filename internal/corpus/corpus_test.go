package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadFlattensAllColumns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "list_a.csv", "John Smith,J. Smith\nJane Doe,\n")
	writeFile(t, dir, "list_b.csv", "Omar Al-Rashid\n")

	c, err := Load(dir, zaptest.NewLogger(t))
	require.NoError(t, err)

	names := make([]string, 0, len(c.Entries))
	for i, e := range c.Entries {
		assert.Equal(t, i, e.ID)
		names = append(names, e.Name)
	}
	// Empty cells are dropped, column identity is not preserved.
	assert.ElementsMatch(t, []string{"JOHN SMITH", "J SMITH", "JANE DOE", "OMAR ALRASHID"}, names)
}

func TestLoadTokenizesEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "list.csv", "John Smithson\n")

	c, err := Load(dir, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, c.Entries, 1)
	assert.Equal(t, []string{"JOHN", "SMITHSON"}, c.Entries[0].Tokens)
}

func TestLoadNoFiles(t *testing.T) {
	_, err := Load(t.TempDir(), zaptest.NewLogger(t))
	assert.True(t, errors.Is(err, ErrNoReferenceFiles))
}

func TestLoadEmptyCorpus(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blank.csv", ",\n, \n")

	_, err := Load(dir, zaptest.NewLogger(t))
	assert.True(t, errors.Is(err, ErrEmptyCorpus))
}

func TestLoadIgnoresNonCSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "John Smith\n")

	_, err := Load(dir, zaptest.NewLogger(t))
	assert.True(t, errors.Is(err, ErrNoReferenceFiles))
}
