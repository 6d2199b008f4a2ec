package extract

import (
	"sort"

	"golang.org/x/text/cases"
)

// foldName maps a name to its case-insensitive identity key. Full Unicode
// case folding, locale-agnostic, so "Pikachu", "PIKACHU" and "pikachu"
// collapse to one key. Casers are stateful, hence one per call.
func foldName(s string) string {
	return cases.Fold().String(s)
}

type tally struct {
	display string // casing of the first occurrence
	count   int
}

// dedupe folds the cleaned name stream into the unique list and duplicate
// counts. Order is carried by an explicit key slice; the map is lookup only.
func dedupe(names []string) Result {
	keys := make([]string, 0, len(names))
	byKey := make(map[string]*tally, len(names))
	for _, name := range names {
		key := foldName(name)
		if t, ok := byKey[key]; ok {
			t.count++
			continue
		}
		byKey[key] = &tally{display: name, count: 1}
		keys = append(keys, key)
	}

	res := Result{
		Names:      make([]string, 0, len(keys)),
		Duplicates: make([]Duplicate, 0),
		Tokens:     len(names),
	}
	for _, key := range keys {
		res.Names = append(res.Names, byKey[key].display)
	}

	dupKeys := make([]string, 0)
	for _, key := range keys {
		if byKey[key].count > 1 {
			dupKeys = append(dupKeys, key)
		}
	}
	// Folded keys sort bytewise, which is exactly the stable case-insensitive
	// ordering the duplicate listing promises.
	sort.Strings(dupKeys)
	for _, key := range dupKeys {
		t := byKey[key]
		res.Duplicates = append(res.Duplicates, Duplicate{Name: t.display, Extra: t.count - 1})
	}
	return res
}
