// Package match implements full-coverage prefix matching of a subject name
// against the reference corpus. An entry qualifies only when every subject
// token is a prefix of some token in the entry; partial coverage is never
// reported. Prefix comparison tolerates truncated or transliterated spellings
// on the reference side without the cost of edit-distance scoring.
package match

import (
	"strings"

	"namescreen/internal/corpus"
	"namescreen/internal/subject"
)

// Result is one qualifying reference entry. Score is always 1.0: entries
// with partial coverage are excluded rather than ranked.
type Result struct {
	ReferenceID int     `json:"reference_id"`
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
}

// Engine matches subjects against a loaded corpus. The corpus is read-only
// and shared; Engine is safe for repeated sequential use.
type Engine struct {
	corpus *corpus.Corpus
}

// NewEngine creates a matching engine over the given corpus.
func NewEngine(c *corpus.Corpus) *Engine {
	return &Engine{corpus: c}
}

// Match returns every corpus entry fully covered by the subject's tokens,
// in corpus order. A subject with no tokens matches nothing: the coverage
// ratio is undefined for an empty token list, and treating it as a universal
// match would flag every entry.
func (e *Engine) Match(s subject.Subject) []Result {
	if len(s.Tokens) == 0 {
		return nil
	}

	var results []Result
	for _, entry := range e.corpus.Entries {
		if coversAll(s.Tokens, entry.Tokens) {
			results = append(results, Result{
				ReferenceID: entry.ID,
				Name:        entry.Name,
				Score:       1.0,
			})
		}
	}
	return results
}

// coversAll reports whether every subject token is a prefix of at least one
// entry token. Coverage is one-directional: extra entry tokens are ignored.
func coversAll(subjectTokens, entryTokens []string) bool {
	for _, p := range subjectTokens {
		covered := false
		for _, t := range entryTokens {
			if strings.HasPrefix(t, p) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}
