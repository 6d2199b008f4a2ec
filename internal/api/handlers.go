// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/sparkledex/sparkledex/internal/extract"
	"github.com/sparkledex/sparkledex/internal/log"
	"github.com/sparkledex/sparkledex/internal/metrics"
	"github.com/sparkledex/sparkledex/internal/telemetry"
	"github.com/sparkledex/sparkledex/internal/version"
)

// handleIndex serves the upload form with an empty result block.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, pageData{Version: serviceVersion()})
}

// handleForm handles the browser form submit and renders the same page with
// the result block filled.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	if !s.admit(w, r) {
		return
	}

	text, source, err := readTranscript(r, s.holder.Get().MaxUploadBytes)
	if err != nil {
		s.writeUploadError(w, r, err)
		return
	}

	res := s.runPipeline(r.Context(), text, source)
	s.renderPage(w, r, pageData{
		Version:   serviceVersion(),
		HasResult: true,
		Result:    FormatResult(res),
	})
}

// handleExtract is the programmatic endpoint. The response is the JSON
// Result, or the plain-text rendering when the client asks for text.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if !s.admit(w, r) {
		return
	}

	text, source, err := readTranscript(r, s.holder.Get().MaxUploadBytes)
	if err != nil {
		s.writeUploadError(w, r, err)
		return
	}

	res := s.runPipeline(r.Context(), text, source)

	if wantsText(r) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(FormatResult(res)))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// statusResponse is the payload of GET /api/v1/status. Totals come from the
// Prometheus instruments; no user content is ever included.
type statusResponse struct {
	Service          string             `json:"service"`
	Version          string             `json:"version"`
	Commit           string             `json:"commit"`
	UptimeSeconds    int64              `json:"uptime_seconds"`
	ExtractionsTotal float64            `json:"extractions_total"`
	NamesTotal       float64            `json:"names_total"`
	DuplicatesTotal  float64            `json:"duplicates_total"`
	UploadsRejected  map[string]float64 `json:"uploads_rejected"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	_, uniqueSum := metrics.NamesObserved("unique")
	_, dupSum := metrics.NamesObserved("duplicate")

	writeJSON(w, http.StatusOK, statusResponse{
		Service:          "sparkledex",
		Version:          version.Version,
		Commit:           version.Commit,
		UptimeSeconds:    s.uptime(),
		ExtractionsTotal: metrics.ExtractionsServed(),
		NamesTotal:       uniqueSum,
		DuplicatesTotal:  dupSum,
		UploadsRejected: map[string]float64{
			metrics.ReasonTooLarge:     metrics.UploadsRejected(metrics.ReasonTooLarge),
			metrics.ReasonRateLimited:  metrics.UploadsRejected(metrics.ReasonRateLimited),
			metrics.ReasonBadMultipart: metrics.UploadsRejected(metrics.ReasonBadMultipart),
		},
	})
}

// admit runs the token-bucket admission check before any body bytes are
// read. A denial answers 429 and counts a rejected upload.
func (s *Server) admit(w http.ResponseWriter, r *http.Request) bool {
	if s.admission.Allow(s.clientIP(r)) {
		return true
	}
	metrics.RecordUploadRejected(metrics.ReasonRateLimited)
	w.Header().Set("Retry-After", "1")
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	return false
}

// runPipeline executes one extraction pass and records its observability
// artefacts: metrics, span attributes and a result log line. Counts only;
// transcript content never reaches logs or spans.
func (s *Server) runPipeline(ctx context.Context, text, source string) extract.Result {
	start := time.Now()
	res := extract.Names(text)
	elapsed := time.Since(start)

	metrics.RecordExtraction(len(text), len(res.Names), len(res.Duplicates), elapsed)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(telemetry.ExtractAttributes(
			source, len(text), len(res.Names), len(res.Duplicates), res.Tokens,
		)...)
	}

	logger := log.WithComponentFromContext(ctx, "extract")
	logger.Info().
		Str(log.FieldEvent, "extract.completed").
		Str("source", source).
		Int(log.FieldInputBytes, len(text)).
		Int(log.FieldNames, len(res.Names)).
		Int(log.FieldDuplicates, len(res.Duplicates)).
		Dur("duration", elapsed).
		Msg("extraction pass completed")

	return res
}

// writeUploadError maps transcript read failures to responses: 413 for an
// oversized body, 400 for anything malformed. The pipeline itself has no
// error cases.
func (s *Server) writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	if errors.Is(err, errUploadTooLarge) {
		metrics.RecordUploadRejected(metrics.ReasonTooLarge)
		logger.Warn().Str(log.FieldEvent, "upload.too_large").Msg("rejected oversized upload")
		writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
		return
	}

	metrics.RecordUploadRejected(metrics.ReasonBadMultipart)
	logger.Warn().Err(err).Str(log.FieldEvent, "upload.malformed").Msg("rejected malformed upload")
	writeError(w, http.StatusBadRequest, "malformed upload")
}

// wantsText reports whether the client asked for the plain-text rendering,
// via ?format=text or an Accept header preferring text/plain.
func wantsText(r *http.Request) bool {
	if r.URL.Query().Get("format") == "text" {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/plain") && !strings.Contains(accept, "application/json")
}
