package analyzer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/sozercan/thesis-ai/internal/thesis"
)

// wireResult mirrors thesis.AnalysisResult with pointers so that missing
// fields can be told apart from zero values.
type wireResult struct {
	FormattedText   *string           `json:"formattedText"`
	Suggestions     *[]wireSuggestion `json:"suggestions"`
	Score           *float64          `json:"score"`
	OverallFeedback *string           `json:"overallFeedback"`
	MissingSections *[]string         `json:"missingSections"`
}

type wireSuggestion struct {
	Category    *string `json:"category"`
	Original    *string `json:"original"`
	Suggestion  *string `json:"suggestion"`
	Explanation *string `json:"explanation"`
}

// parseResult decodes and validates a backend payload. Any shape mismatch is
// an error; nothing is coerced.
func parseResult(payload string) (thesis.AnalysisResult, error) {
	var w wireResult
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return thesis.AnalysisResult{}, fmt.Errorf("decoding response: %w", err)
	}

	var missing []string
	if w.FormattedText == nil {
		missing = append(missing, "formattedText")
	}
	if w.Suggestions == nil {
		missing = append(missing, "suggestions")
	}
	if w.Score == nil {
		missing = append(missing, "score")
	}
	if w.OverallFeedback == nil {
		missing = append(missing, "overallFeedback")
	}
	if w.MissingSections == nil {
		missing = append(missing, "missingSections")
	}
	if len(missing) > 0 {
		return thesis.AnalysisResult{}, fmt.Errorf("response is missing required fields: %s", strings.Join(missing, ", "))
	}

	if *w.Score < 0 || *w.Score > 100 {
		return thesis.AnalysisResult{}, fmt.Errorf("score %v is outside 0-100", *w.Score)
	}

	result := thesis.AnalysisResult{
		FormattedText:   *w.FormattedText,
		Suggestions:     make([]thesis.Suggestion, 0, len(*w.Suggestions)),
		Score:           *w.Score,
		OverallFeedback: *w.OverallFeedback,
		MissingSections: *w.MissingSections,
	}
	for i, s := range *w.Suggestions {
		if s.Category == nil || s.Original == nil || s.Suggestion == nil || s.Explanation == nil {
			return thesis.AnalysisResult{}, fmt.Errorf("suggestion %d is missing required fields", i)
		}
		category := thesis.Category(*s.Category)
		if !category.Valid() {
			return thesis.AnalysisResult{}, fmt.Errorf("suggestion %d has unknown category %q", i, *s.Category)
		}
		result.Suggestions = append(result.Suggestions, thesis.Suggestion{
			Category:    category,
			Original:    *s.Original,
			Suggestion:  *s.Suggestion,
			Explanation: *s.Explanation,
		})
	}
	return result, nil
}

var errNoJSONObject = errors.New("response does not contain a JSON object")

// extractJSON cleans a freeform response from a prompt-instructed model.
// It tries, in order: the reply without its surrounding markdown fences, the
// first fenced block anywhere in the reply, and the outermost {...} span.
func extractJSON(text string) (string, error) {
	if stripped := stripFences(text); gjson.Valid(stripped) {
		return stripped, nil
	}
	if block, ok := fencedBlock(text); ok && gjson.Valid(block) {
		return block, nil
	}

	text = stripFences(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", errNoJSONObject
	}
	candidate := text[start : end+1]
	if !gjson.Valid(candidate) {
		return "", errNoJSONObject
	}
	return candidate, nil
}

// fencedBlock returns the contents of the first ``` block, without its
// language tag.
func fencedBlock(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.ContainsAny(rest[:nl], "{[") {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```JSON")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
