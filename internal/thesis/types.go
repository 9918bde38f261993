package thesis

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects which instruction template is used for an analysis.
type Mode string

const (
	ModeGeneral      Mode = "general"
	ModeAbstract     Mode = "abstract"
	ModeChapter      Mode = "chapter"
	ModeBibliography Mode = "bibliography"
	ModeProofread    Mode = "proofread"
)

var modeDescriptions = map[Mode]string{
	ModeGeneral:      "Kalimat efektif, bahasa formal PUEBI, dan penggantian kata ganti orang pertama.",
	ModeAbstract:     "Struktur abstrak (latar belakang, metode, hasil, simpulan) dan batas 250 kata.",
	ModeChapter:      "Penyuntingan bab skripsi dengan aturan yang sama seperti mode umum.",
	ModeBibliography: "Validasi daftar pustaka APA 7th Edition dan urutan alfabetis.",
	ModeProofread:    "Hanya memperbaiki kesalahan mekanis tanpa mengubah kata atau struktur.",
}

// Modes returns every analysis mode in display order.
func Modes() []Mode {
	return []Mode{ModeGeneral, ModeAbstract, ModeChapter, ModeBibliography, ModeProofread}
}

// ParseMode accepts a mode name regardless of case and surrounding whitespace.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", &InputError{Reason: fmt.Sprintf("unknown analysis mode %q", s)}
	}
	return m, nil
}

func (m Mode) Valid() bool {
	_, ok := modeDescriptions[m]
	return ok
}

func (m Mode) Description() string {
	return modeDescriptions[m]
}

// Category is the closed set of suggestion categories.
type Category string

const (
	CategoryGrammar   Category = "Grammar"
	CategoryStructure Category = "Structure"
	CategoryCitation  Category = "Citation"
	CategoryTone      Category = "Tone"
	CategoryDiction   Category = "Diction"
)

func Categories() []Category {
	return []Category{CategoryGrammar, CategoryStructure, CategoryCitation, CategoryTone, CategoryDiction}
}

func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

type Suggestion struct {
	// Category of the flagged issue
	Category Category `json:"category" yaml:"category"`

	// Original is the verbatim excerpt from the input
	Original string `json:"original" yaml:"original"`

	// Suggestion is the replacement text
	Suggestion string `json:"suggestion" yaml:"suggestion"`

	// Explanation of why the change is needed
	Explanation string `json:"explanation" yaml:"explanation"`
}

type AnalysisResult struct {
	// The corrected full text
	FormattedText string `json:"formattedText" yaml:"formattedText"`

	// Suggestions in the order the backend emitted them
	Suggestions []Suggestion `json:"suggestions" yaml:"suggestions"`

	// Quality score between 0 and 100
	Score float64 `json:"score" yaml:"score"`

	OverallFeedback string `json:"overallFeedback" yaml:"overallFeedback"`

	// Sections the backend judged absent
	MissingSections []string `json:"missingSections" yaml:"missingSections"`
}

// HistoryEntry is one stored analysis together with the input it was produced from.
type HistoryEntry struct {
	Result    AnalysisResult `json:"result" yaml:"result"`
	Mode      Mode           `json:"mode" yaml:"mode"`
	Original  string         `json:"original" yaml:"original"`
	CreatedAt time.Time      `json:"createdAt" yaml:"createdAt"`
}

// Preview returns the first n runes of the formatted text, as shown in history lists.
func (e HistoryEntry) Preview(n int) string {
	runes := []rune(e.Result.FormattedText)
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}
