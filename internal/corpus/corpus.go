// Package corpus loads the sanctions reference corpus from a directory of
// CSV exports. Every cell of every file becomes an independent reference
// entry; column identity is not preserved, as list publishers spread primary
// names and aliases across columns inconsistently. Files are treated as
// headerless: a header row a publisher includes is flattened like any other
// row, since skipping the first row would drop real names from the many
// exports that carry none.
package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"namescreen/internal/normalize"
)

var (
	// ErrNoReferenceFiles indicates the reference directory holds no CSV files.
	ErrNoReferenceFiles = errors.New("no reference files found")
	// ErrEmptyCorpus indicates no entry survived normalization.
	ErrEmptyCorpus = errors.New("reference corpus is empty")
)

// Entry is one normalized reference name.
type Entry struct {
	ID     int
	Name   string
	Tokens []string
}

// Corpus is the full set of reference entries for a run. It is read-only
// after Load and safe to share across the whole batch.
type Corpus struct {
	Entries []Entry
}

// Load reads every *.csv file under dir and flattens all cell values into
// entries. It fails before any subject is processed when the directory has
// no qualifying files or when normalization leaves nothing to match against.
func Load(dir string, logger *zap.Logger) (*Corpus, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("scan reference dir: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoReferenceFiles, dir)
	}

	c := &Corpus{}
	for _, path := range paths {
		if err := c.loadFile(path); err != nil {
			return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
		}
	}
	if len(c.Entries) == 0 {
		return nil, ErrEmptyCorpus
	}

	logger.Info("Reference corpus loaded",
		zap.Int("files", len(paths)),
		zap.Int("entries", len(c.Entries)))
	return c, nil
}

func (c *Corpus) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // publishers do not agree on column counts
	r.LazyQuotes = true

	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}
		for _, cell := range record {
			name := normalize.Normalize(cell)
			if name == "" {
				continue
			}
			c.Entries = append(c.Entries, Entry{
				ID:     len(c.Entries),
				Name:   name,
				Tokens: strings.Fields(name),
			})
		}
	}
}
