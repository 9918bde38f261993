package apimodels

import (
	"time"

	"github.com/sozercan/thesis-ai/internal/diff"
	"github.com/sozercan/thesis-ai/internal/thesis"
)

type AnalyzeResponse struct {
	// The validated analysis
	Result thesis.AnalysisResult `json:"result"`

	// Word diff from the input to the formatted text, when requested
	Diff []diff.Segment `json:"diff,omitempty"`

	// Metadata about the analysis
	Metadata AnalysisMetadata `json:"metadata"`
}

type AnalysisMetadata struct {
	// Time taken for analysis
	Duration string `json:"duration"`

	// Model that produced the result
	Model string `json:"model"`

	// Tokens used in analysis
	TokensUsed int64 `json:"tokensUsed"`

	// Candidates tried, including the successful one
	Attempts int `json:"attempts"`
}

type DiffResponse struct {
	Segments []diff.Segment `json:"segments"`
	Stats    diff.Summary   `json:"stats"`
}

type ExtractResponse struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

type HistoryResponse struct {
	Entries []HistoryItem `json:"entries"`
}

// HistoryItem is the list view of a stored analysis.
type HistoryItem struct {
	Index     int         `json:"index"`
	Mode      thesis.Mode `json:"mode"`
	Score     float64     `json:"score"`
	Preview   string      `json:"preview"`
	CreatedAt time.Time   `json:"createdAt"`
}

type HistoryEntryResponse struct {
	Entry thesis.HistoryEntry `json:"entry"`
	Diff  []diff.Segment      `json:"diff"`
}

type ModeInfo struct {
	Name        thesis.Mode `json:"name"`
	Description string      `json:"description"`
}

type ModesResponse struct {
	Modes      []ModeInfo        `json:"modes"`
	Categories []thesis.Category `json:"categories"`
}

type ErrorResponse struct {
	Error string `json:"error"`

	// Kind is one of input, extraction, analysis, not_found, internal
	Kind string `json:"kind"`
}
