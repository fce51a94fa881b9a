package utils

import (
	"unicode"

	"github.com/aryann/difflib"
)

// TokenizeWords splits prose into word, whitespace, and punctuation runs.
// Keeping every run (including spaces) lets a diff reassemble the exact
// original text, and rune-level classification keeps Japanese manuscript
// text intact.
func TokenizeWords(s string) []string {
	var out []string
	var cur []rune
	kind := -1
	flush := func() {
		if len(cur) == 0 {
			return
		}
		out = append(out, string(cur))
		cur = cur[:0]
	}
	for _, r := range s {
		k := tokenKind(r)
		if kind == -1 {
			kind = k
		}
		if k != kind {
			flush()
			kind = k
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

func tokenKind(r rune) int {
	switch {
	case unicode.IsSpace(r):
		return 0
	case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || r == '-' || r == '\'':
		return 1
	default:
		return 2
	}
}

// WordDelta is one token of a word-level diff. Op is negative for
// deletions, positive for insertions, and zero for unchanged tokens.
type WordDelta struct {
	Op   int
	Text string
}

// DiffWords compares two drafts of a passage token by token. Used to show
// what a regeneration or revision changed inside a chapter.
func DiffWords(a, b string) []WordDelta {
	recs := difflib.Diff(TokenizeWords(a), TokenizeWords(b))
	out := make([]WordDelta, 0, len(recs))
	for _, r := range recs {
		switch r.Delta {
		case difflib.Common:
			out = append(out, WordDelta{Op: 0, Text: r.Payload})
		case difflib.LeftOnly:
			out = append(out, WordDelta{Op: -1, Text: r.Payload})
		case difflib.RightOnly:
			out = append(out, WordDelta{Op: +1, Text: r.Payload})
		}
	}
	return out
}
