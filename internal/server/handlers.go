package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sozercan/thesis-ai/apimodels"
	"github.com/sozercan/thesis-ai/internal/diff"
	"github.com/sozercan/thesis-ai/internal/docx"
	"github.com/sozercan/thesis-ai/internal/thesis"
)

const (
	kindInput      = "input"
	kindExtraction = "extraction"
	kindAnalysis   = "analysis"
	kindNotFound   = "not_found"
	kindTimeout    = "timeout"
	kindInternal   = "internal"

	previewRunes = 100
)

var (
	errEntryNotFound  = errors.New("history entry not found")
	errRequestTimeout = errors.New("request timed out")
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req apimodels.AnalyzeRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if int64(len(req.Text)) > s.cfg.MaxTextBytes {
		writeError(w, &thesis.InputError{Reason: fmt.Sprintf("text exceeds %d bytes", s.cfg.MaxTextBytes)})
		return
	}

	mode := thesis.ModeGeneral
	if req.Mode != "" {
		m, err := thesis.ParseMode(req.Mode)
		if err != nil {
			writeError(w, err)
			return
		}
		mode = m
	}

	slog.Debug("Received analysis request", "mode", mode, "chars", len(req.Text))

	ctx := r.Context()
	outcome, err := s.analyzer.Analyze(ctx, req.Text, mode)
	if err != nil {
		slog.Error("Analysis request failed", "error", err)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = errRequestTimeout
		}
		writeError(w, err)
		return
	}

	entry := thesis.HistoryEntry{
		Result:    outcome.Result,
		Mode:      mode,
		Original:  req.Text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.history.Record(context.WithoutCancel(ctx), entry); err != nil {
		slog.Error("Failed to record analysis in history", "error", err)
	}

	resp := apimodels.AnalyzeResponse{
		Result: outcome.Result,
		Metadata: apimodels.AnalysisMetadata{
			Duration:   outcome.Duration.String(),
			Model:      outcome.Model,
			TokensUsed: outcome.Usage.TotalTokens,
			Attempts:   outcome.Attempts,
		},
	}
	if req.Diff {
		resp.Diff = diff.Readable(req.Text, outcome.Result.FormattedText)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	var req apimodels.DiffRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	var segments []diff.Segment
	switch cleanup := r.URL.Query().Get("cleanup"); cleanup {
	case "":
		segments = diff.Words(req.Original, req.Modified)
	case "semantic":
		segments = diff.Readable(req.Original, req.Modified)
	default:
		writeError(w, &thesis.InputError{Reason: fmt.Sprintf("unknown cleanup %q", cleanup)})
		return
	}

	writeJSON(w, http.StatusOK, apimodels.DiffResponse{
		Segments: nonNil(segments),
		Stats:    diff.Stats(segments),
	})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, requestError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, &thesis.InputError{Reason: "missing form file \"file\""})
		return
	}
	defer file.Close()

	if err := docx.CheckFilename(header.Filename); err != nil {
		writeError(w, err)
		return
	}

	text, err := docx.Extract(header.Filename, file, header.Size)
	if err != nil {
		slog.Error("Document extraction failed", "filename", header.Filename, "error", err)
		writeError(w, err)
		return
	}

	slog.Debug("Document extracted", "filename", header.Filename, "chars", len(text))
	writeJSON(w, http.StatusOK, apimodels.ExtractResponse{Filename: header.Filename, Text: text})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries := s.history.Entries(r.Context())
	items := make([]apimodels.HistoryItem, 0, len(entries))
	for i, e := range entries {
		items = append(items, apimodels.HistoryItem{
			Index:     i,
			Mode:      e.Mode,
			Score:     e.Result.Score,
			Preview:   e.Preview(previewRunes),
			CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, apimodels.HistoryResponse{Entries: items})
}

func (s *Server) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, &thesis.InputError{Reason: "history index must be a number"})
		return
	}

	entry, ok := s.history.Get(r.Context(), index)
	if !ok {
		writeError(w, errEntryNotFound)
		return
	}

	writeJSON(w, http.StatusOK, apimodels.HistoryEntryResponse{
		Entry: entry,
		Diff:  nonNil(diff.Readable(entry.Original, entry.Result.FormattedText)),
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Clear(r.Context()); err != nil {
		slog.Error("Failed to clear history", "error", err)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	resp := apimodels.ModesResponse{Categories: thesis.Categories()}
	for _, m := range thesis.Modes() {
		resp.Modes = append(resp.Modes, apimodels.ModeInfo{Name: m, Description: m.Description()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a JSON body bounded by twice the text limit, which leaves room
// for escaping.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.MaxTextBytes+4096)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return requestError(err)
	}
	return nil
}

func requestError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return tooLarge
	}
	return &thesis.InputError{Reason: fmt.Sprintf("malformed request: %v", err)}
}

func writeError(w http.ResponseWriter, err error) {
	var (
		inputErr      *thesis.InputError
		extractionErr *thesis.ExtractionError
		analysisErr   *thesis.AnalysisError
		tooLarge      *http.MaxBytesError
	)

	status, kind := http.StatusInternalServerError, kindInternal
	switch {
	case errors.As(err, &inputErr):
		status, kind = http.StatusBadRequest, kindInput
	case errors.As(err, &tooLarge):
		status, kind = http.StatusRequestEntityTooLarge, kindInput
		err = fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
	case errors.As(err, &extractionErr):
		status, kind = http.StatusUnprocessableEntity, kindExtraction
	case errors.As(err, &analysisErr):
		status, kind = http.StatusBadGateway, kindAnalysis
	case errors.Is(err, errEntryNotFound):
		status, kind = http.StatusNotFound, kindNotFound
	case errors.Is(err, errRequestTimeout):
		status, kind = http.StatusGatewayTimeout, kindTimeout
	}

	writeJSON(w, status, apimodels.ErrorResponse{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func nonNil(segments []diff.Segment) []diff.Segment {
	if segments == nil {
		return []diff.Segment{}
	}
	return segments
}
