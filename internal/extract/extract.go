package extract

// Result is the outcome of one extraction pass.
type Result struct {
	// Names holds the unique names in first-seen order, with the casing of
	// their first occurrence.
	Names []string `json:"names"`
	// Duplicates lists every name seen more than once, sorted
	// case-insensitively, with the number of occurrences beyond the first.
	Duplicates []Duplicate `json:"duplicates"`
	// Tokens is the total number of counted name occurrences.
	Tokens int `json:"total_tokens"`
}

// Duplicate reports repeat occurrences of a single name.
type Duplicate struct {
	Name  string `json:"name"`
	Extra int    `json:"extra"`
}

// Empty reports whether the pass found no names at all.
func (r Result) Empty() bool {
	return len(r.Names) == 0
}

// Names runs the full pipeline over text. It accepts anything, including the
// empty string, and never fails; garbage in simply means an empty Result out.
func Names(text string) Result {
	toks := scan(text)
	cleaned := make([]string, 0, len(toks))
	for _, tok := range toks {
		name := Clean(tok.raw)
		if name == "" || isNoise(name) {
			continue
		}
		cleaned = append(cleaned, name)
	}
	return dedupe(cleaned)
}
