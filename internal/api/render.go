// SPDX-License-Identifier: MIT

package api

import (
	"fmt"
	"strings"

	"github.com/sparkledex/sparkledex/internal/extract"
)

// Placeholder lines for empty sections of the text rendering.
const (
	placeholderNoNames = "(no names found)"
	placeholderNoDupes = "(none)"
)

// FormatResult renders a Result as plain text: the unique names one per
// line, a blank line, then the duplicate listing. The same text appears in
// the HTML page's result block and in text/plain API responses.
func FormatResult(r extract.Result) string {
	var b strings.Builder

	if len(r.Names) == 0 {
		b.WriteString(placeholderNoNames)
		b.WriteByte('\n')
	} else {
		for _, name := range r.Names {
			b.WriteString(name)
			b.WriteByte('\n')
		}
	}

	b.WriteString("\nDuplicates:\n")
	if len(r.Duplicates) == 0 {
		b.WriteString(placeholderNoDupes)
		b.WriteByte('\n')
	} else {
		for _, d := range r.Duplicates {
			fmt.Fprintf(&b, "%s: %d\n", d.Name, d.Extra)
		}
	}

	return b.String()
}
