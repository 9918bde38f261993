package thesis

import "fmt"

// InputError is returned for requests that are rejected before any backend
// or extraction work is attempted.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "invalid input: " + e.Reason
}

// ExtractionError reports a document that could not be converted to text.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// AnalysisError is the only backend-related error surfaced to callers. It is
// returned once every model candidate has been tried.
type AnalysisError struct {
	Attempts int
	Err      error
}

func (e *AnalysisError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("analysis failed after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("analysis failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}
