package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// leadingNoisePattern drops everything before the first letter. \p{L}
	// rather than \w so accented names keep their first character; Go's \w
	// is ASCII-only.
	leadingNoisePattern = regexp.MustCompile(`^[^\p{L}]+`)

	// noteClausePattern matches trade annotations players append after a
	// name ("gift from X", "fs", "ft", "giveaway") through end of token.
	noteClausePattern = regexp.MustCompile(`(?is)\b(?:gift from|fs|ft|giveaway)\b.*$`)

	spaceRunPattern = regexp.MustCompile(`\s+`)
)

const (
	// quoteChars start a nickname annotation; the name is whatever precedes
	// the first of them. Costs apostrophe names their tail (Farfetch'd →
	// Farfetch), accepted the same way the dash cut below is.
	quoteChars = `"'“”‘’`

	// separatorChars split a name from trailing commentary. Unspaced dashes
	// inside names are cut too (Ho-Oh → Ho); known recall-over-precision
	// tradeoff, kept deliberately.
	separatorChars = "-—–/"

	trailingJunk = "•◦·[]{}<>«»"
)

// Clean normalizes one raw capture into a bare name. Steps run in a fixed
// order, each on the previous step's output; the result is "" when nothing
// name-like remains. Clean is idempotent: applying it to its own output
// changes nothing.
func Clean(raw string) string {
	s := norm.NFC.String(raw)
	s = strings.ReplaceAll(s, "　", " ")
	s = strings.TrimSpace(s)
	s = leadingNoisePattern.ReplaceAllString(s, "")
	if i := strings.IndexAny(s, quoteChars); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexAny(s, separatorChars); i >= 0 {
		s = s[:i]
	}
	s = noteClausePattern.ReplaceAllString(s, "")
	s = strings.TrimRight(s, trailingJunk)
	s = spaceRunPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
