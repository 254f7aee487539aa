package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "Empty", input: "", want: ""},
		{name: "Lowercase", input: "john smith", want: "JOHN SMITH"},
		{name: "Punctuation", input: "O'Brien, J.-P.", want: "OBRIEN JP"},
		{name: "Whitespace Collapse", input: "  John \t Smith  ", want: "JOHN SMITH"},
		{name: "Only Punctuation", input: ".,-'", want: ""},
		{name: "Mixed", input: " Al-Rashid,  omar. ", want: "ALRASHID OMAR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"", "John Smith", "O'Brien, J.-P.", "  a  b  c  ", "ALREADY NORMAL"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}

func TestTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "Empty", input: "", want: nil},
		{name: "Whitespace Only", input: "   ", want: nil},
		{name: "Two Tokens", input: "John Smit", want: []string{"JOHN", "SMIT"}},
		{name: "Punctuation Merge", input: "Jean-Pierre Doe", want: []string{"JEANPIERRE", "DOE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokens(tt.input)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
