// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
// Extraction attributes are counts and sizes only; transcript content never
// enters span data.
const (
	ExtractInputBytesKey = "extract.input_bytes"
	ExtractNamesKey      = "extract.names"
	ExtractDuplicatesKey = "extract.duplicates"
	ExtractTokensKey     = "extract.tokens"
	ExtractSourceKey     = "extract.source" // "file", "text" or "body"
)

// ExtractAttributes creates extraction span attributes from pass statistics.
func ExtractAttributes(source string, inputBytes, names, duplicates, tokens int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ExtractSourceKey, source),
		attribute.Int(ExtractInputBytesKey, inputBytes),
		attribute.Int(ExtractNamesKey, names),
		attribute.Int(ExtractDuplicatesKey, duplicates),
		attribute.Int(ExtractTokensKey, tokens),
	}
}
