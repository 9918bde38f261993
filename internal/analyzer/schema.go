package analyzer

import (
	"github.com/sozercan/thesis-ai/internal/llm"
	"github.com/sozercan/thesis-ai/internal/thesis"
)

// responseSchema describes thesis.AnalysisResult for structured-output backends.
func responseSchema() *llm.Schema {
	categories := make([]string, 0, len(thesis.Categories()))
	for _, c := range thesis.Categories() {
		categories = append(categories, string(c))
	}

	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"formattedText": {Type: llm.TypeString, Description: "Teks yang sudah dirapikan."},
			"suggestions": {
				Type: llm.TypeArray,
				Items: &llm.Schema{
					Type: llm.TypeObject,
					Properties: map[string]*llm.Schema{
						"category":    {Type: llm.TypeString, Enum: categories},
						"original":    {Type: llm.TypeString},
						"suggestion":  {Type: llm.TypeString},
						"explanation": {Type: llm.TypeString},
					},
					Required: []string{"category", "original", "suggestion", "explanation"},
				},
			},
			"score":           {Type: llm.TypeNumber, Description: "Skor kualitas tulisan 0-100."},
			"overallFeedback": {Type: llm.TypeString},
			"missingSections": {Type: llm.TypeArray, Items: &llm.Schema{Type: llm.TypeString}},
		},
		Required: []string{"formattedText", "suggestions", "score", "overallFeedback", "missingSections"},
	}
}
