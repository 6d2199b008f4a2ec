package extract

import (
	"regexp"
	"sort"
	"strings"
)

// marker flags the high-confidence transcript lines ("✨ Name: ...").
const marker = "✨"

// nameClass is the run of characters a creature name may consist of: ASCII
// letters and digits, the Latin-1/Latin-Extended-A accented range,
// apostrophes, hyphen, period and whitespace. Bounded to keep captures sane
// on pathological lines.
const nameClass = `[A-Za-z0-9\x{00C0}-\x{017F}'’\-.\s]{2,120}?`

var (
	// markerPattern captures whatever sits between a sparkle and the next
	// colon. It runs over the whole text, so a capture may cross a newline
	// when the colon only appears on the following line.
	markerPattern = regexp.MustCompile(`✨\s*([^:]+?)\s*:`)

	// genderPattern is the fallback for lines without the marker: a name-like
	// run directly before a colon and a gender word or glyph.
	genderPattern = regexp.MustCompile(`(?i)(` + nameClass + `)\s*:\s*(?:male|female|unknown|♂️|♀️)`)

	// lineStartPattern recovers a name from the beginning of a line up to the
	// first colon. Lowest confidence; only consulted for lines the other two
	// rules got nothing usable out of.
	lineStartPattern = regexp.MustCompile(`^\s*(` + nameClass + `)\s*:`)
)

// noiseWords are cleaned captures that are transcript furniture rather than
// names (level prefixes, pager chrome, the game's own name). Compared after
// case folding.
var noiseWords = map[string]struct{}{
	"lvl":     {},
	"your":    {},
	"pokétwo": {},
	"app":     {},
	"showing": {},
	"entries": {},
	"out":     {},
	"of":      {},
}

// isNoise reports whether a cleaned name is on the rejection list.
func isNoise(name string) bool {
	_, ok := noiseWords[foldName(name)]
	return ok
}

// token is one raw candidate emitted by the scanner.
type token struct {
	raw string // captured substring, untrimmed
	off int    // byte offset of the capture in the source text
}

type span struct {
	start, end int
}

// scan applies the three recognition rules and merges their candidates into
// one stream sorted by source offset, so downstream order is reading order
// no matter which rule fired.
func scan(text string) []token {
	lines := lineSpans(text)
	var toks []token

	// covered marks lines that already yielded a candidate surviving
	// cleaning; only uncovered lines get the line-start fallback.
	covered := make(map[int]bool)
	cover := func(raw string, from, to int) {
		if !usable(raw) {
			return
		}
		last := lineIndex(lines, max(from, to-1))
		for i := lineIndex(lines, from); i <= last; i++ {
			covered[i] = true
		}
	}

	for _, m := range markerPattern.FindAllStringSubmatchIndex(text, -1) {
		raw := text[m[2]:m[3]]
		toks = append(toks, token{raw: raw, off: m[2]})
		cover(raw, m[0], m[1])
	}

	for i, ln := range lines {
		lineText := text[ln.start:ln.end]
		if strings.Contains(lineText, marker) {
			continue
		}
		for _, m := range genderPattern.FindAllStringSubmatchIndex(lineText, -1) {
			raw := lineText[m[2]:m[3]]
			toks = append(toks, token{raw: raw, off: ln.start + m[2]})
			if usable(raw) {
				covered[i] = true
			}
		}
	}

	// Supplement pass: lines where neither rule above produced a surviving
	// candidate still get one shot at a line-start name. This is what
	// recovers "Bulbasaur" from "Bulbasaur: gift from Ash: male", where the
	// gender rule only captures the discarded note clause.
	for i, ln := range lines {
		if covered[i] {
			continue
		}
		m := lineStartPattern.FindStringSubmatchIndex(text[ln.start:ln.end])
		if m == nil {
			continue
		}
		toks = append(toks, token{
			raw: text[ln.start+m[2] : ln.start+m[3]],
			off: ln.start + m[2],
		})
	}

	sort.SliceStable(toks, func(i, j int) bool { return toks[i].off < toks[j].off })
	return toks
}

// usable reports whether a raw capture still names something after cleaning.
func usable(raw string) bool {
	name := Clean(raw)
	return name != "" && !isNoise(name)
}

// lineSpans splits text into newline-delimited byte ranges. The trailing \n
// is excluded from each span; the final span runs to end of text.
func lineSpans(text string) []span {
	var spans []span
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			spans = append(spans, span{start, i})
			start = i + 1
		}
	}
	return append(spans, span{start, len(text)})
}

// lineIndex locates the line containing byte offset off.
func lineIndex(lines []span, off int) int {
	i := sort.Search(len(lines), func(i int) bool { return lines[i].end >= off })
	if i >= len(lines) {
		return len(lines) - 1
	}
	return i
}
