package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sozercan/thesis-ai/internal/config"
	"github.com/sozercan/thesis-ai/internal/llm"
	"github.com/sozercan/thesis-ai/internal/thesis"
)

var errNoCandidates = errors.New("no model candidates are configured")

// Candidate is one backend configuration in the fallback chain.
type Candidate struct {
	Backend llm.Backend
	Model   string

	// Structured candidates accept a response schema; the others need the
	// JSON format spelled out in the prompt.
	Structured bool
}

func (c Candidate) String() string {
	return c.Backend.Name() + "/" + c.Model
}

// Chain is the ordered list of candidates. Primary candidates are tried in
// order with a response schema, Legacy is tried last without one.
type Chain struct {
	Primary []Candidate
	Legacy  *Candidate
}

func (c Chain) Len() int {
	return len(c.candidates())
}

func (c Chain) candidates() []Candidate {
	all := make([]Candidate, 0, len(c.Primary)+1)
	all = append(all, c.Primary...)
	if c.Legacy != nil {
		all = append(all, *c.Legacy)
	}
	return all
}

// NewChain resolves configured candidates against the available backends.
// Candidates whose provider has no credentials are skipped.
func NewChain(cfg config.AnalysisConfig, backends llm.Backends) Chain {
	var chain Chain
	for _, cc := range cfg.Candidates {
		backend, ok := backends[cc.Provider]
		if !ok {
			slog.Warn("skipping model candidate without credentials", "candidate", cc.String())
			continue
		}
		chain.Primary = append(chain.Primary, Candidate{Backend: backend, Model: cc.Model, Structured: true})
	}
	if cfg.Legacy.Enabled() {
		if backend, ok := backends[cfg.Legacy.Provider]; ok {
			chain.Legacy = &Candidate{Backend: backend, Model: cfg.Legacy.Model}
		} else {
			slog.Warn("skipping legacy model candidate without credentials", "candidate", cfg.Legacy.String())
		}
	}
	slog.Info("analysis chain ready", "candidates", chain.Len())
	return chain
}

// candidateError records why one attempt failed. It never leaves the
// package except as the cause inside thesis.AnalysisError.
type candidateError struct {
	candidate string
	stage     string
	err       error
}

func (e *candidateError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.candidate, e.stage, e.err)
}

func (e *candidateError) Unwrap() error {
	return e.err
}

type Analyzer struct {
	chain          Chain
	attemptTimeout time.Duration
	opts           []llm.Option
}

func New(chain Chain, attemptTimeout time.Duration, opts ...llm.Option) *Analyzer {
	return &Analyzer{
		chain:          chain,
		attemptTimeout: attemptTimeout,
		opts:           opts,
	}
}

// Outcome is a successful analysis together with how it was obtained.
type Outcome struct {
	Result   thesis.AnalysisResult
	Model    string
	Attempts int
	Duration time.Duration
	Usage    llm.Usage
}

// Analyze validates the input and walks the candidate chain until one
// candidate returns a valid result. Failed candidates are logged and skipped;
// only exhaustion of the whole chain is returned, as *thesis.AnalysisError.
func (a *Analyzer) Analyze(ctx context.Context, text string, mode thesis.Mode) (*Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &thesis.InputError{Reason: "text is empty"}
	}
	if !mode.Valid() {
		return nil, &thesis.InputError{Reason: fmt.Sprintf("unknown analysis mode %q", mode)}
	}

	slog.Info("Starting analysis", "mode", mode, "chars", len(text), "candidates", a.chain.Len())
	startTime := time.Now()
	prompt := userPrompt(text, mode)

	attempts := 0
	lastErr := errNoCandidates
	for _, c := range a.chain.candidates() {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		attempts++

		result, resp, err := a.attempt(ctx, c, mode, prompt)
		if err != nil {
			lastErr = err
			slog.Warn("Model candidate failed", "candidate", c.String(), "attempt", attempts, "error", err)
			continue
		}

		slog.Info("Analysis completed", "candidate", c.String(), "attempts", attempts, "duration", time.Since(startTime))
		return &Outcome{
			Result:   result,
			Model:    c.Model,
			Attempts: attempts,
			Duration: time.Since(startTime),
			Usage:    resp.Usage,
		}, nil
	}

	slog.Error("All model candidates failed", "attempts", attempts, "error", lastErr)
	return nil, &thesis.AnalysisError{Attempts: attempts, Err: lastErr}
}

// attempt runs one candidate with its own deadline. Structured candidates
// get the response schema; the others get the JSON format in the instruction
// and their reply is cleaned of markdown before validation.
func (a *Analyzer) attempt(ctx context.Context, c Candidate, mode thesis.Mode, prompt string) (thesis.AnalysisResult, *llm.Response, error) {
	req := llm.Request{Model: c.Model, Prompt: prompt}
	if c.Structured {
		req.SystemInstruction = instruction(mode)
		req.Schema = responseSchema()
	} else {
		req.SystemInstruction = legacyInstruction(mode)
	}

	if a.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.attemptTimeout)
		defer cancel()
	}

	slog.Debug("Calling model candidate", "candidate", c.String(), "structured", c.Structured)
	resp, err := c.Backend.Generate(ctx, req, a.opts...)
	if err != nil {
		return thesis.AnalysisResult{}, nil, &candidateError{candidate: c.String(), stage: "request", err: err}
	}

	payload := resp.Content
	if !c.Structured {
		payload, err = extractJSON(payload)
		if err != nil {
			return thesis.AnalysisResult{}, nil, &candidateError{candidate: c.String(), stage: "parse", err: err}
		}
	}

	result, err := parseResult(payload)
	if err != nil {
		slog.Debug("Rejected model response", "candidate", c.String(), "response", truncateString(resp.Content, 500))
		return thesis.AnalysisResult{}, nil, &candidateError{candidate: c.String(), stage: "parse", err: err}
	}
	return result, resp, nil
}

func truncateString(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "\n[truncated]"
	}
	return s
}
