// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Extraction fields
	FieldInputBytes = "input_bytes"
	FieldNames      = "names"
	FieldDuplicates = "duplicates"

	// Network fields
	FieldListenAddr = "listen_addr"
	FieldRemoteIP   = "remote_ip"
	FieldStatus     = "status"
)
