package apimodels

type AnalyzeRequest struct {
	// Text is the thesis excerpt to analyze
	Text string `json:"text"`

	// Mode is one of general, abstract, chapter, bibliography, proofread.
	// Empty means general.
	Mode string `json:"mode,omitempty"`

	// Diff asks for the word diff between the input and the formatted text
	Diff bool `json:"diff,omitempty"`
}

type DiffRequest struct {
	Original string `json:"original"`
	Modified string `json:"modified"`
}
