package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/thesis-ai/internal/config"
	"github.com/sozercan/thesis-ai/internal/llm"
	"github.com/sozercan/thesis-ai/internal/thesis"
)

const validPayload = `{
  "formattedText": "Penelitian ini dilakukan oleh penulis.",
  "suggestions": [
    {"category": "Tone", "original": "Saya melakukan", "suggestion": "dilakukan oleh penulis", "explanation": "avoid first-person pronoun"}
  ],
  "score": 82,
  "overallFeedback": "Gunakan bentuk pasif.",
  "missingSections": []
}`

type reply struct {
	content string
	err     error
}

// fakeBackend returns scripted replies per model and records every request.
type fakeBackend struct {
	name     string
	replies  map[string]reply
	requests []llm.Request
}

func (f *fakeBackend) Name() string {
	return f.name
}

func (f *fakeBackend) Generate(ctx context.Context, req llm.Request, opts ...llm.Option) (*llm.Response, error) {
	f.requests = append(f.requests, req)
	r, ok := f.replies[req.Model]
	if !ok {
		return nil, errors.New("model not found")
	}
	if r.err != nil {
		return nil, r.err
	}
	return &llm.Response{Content: r.content, Model: req.Model, Usage: llm.Usage{TotalTokens: 42}}, nil
}

func (f *fakeBackend) models() []string {
	var models []string
	for _, r := range f.requests {
		models = append(models, r.Model)
	}
	return models
}

func structured(b llm.Backend, model string) Candidate {
	return Candidate{Backend: b, Model: model, Structured: true}
}

func TestAnalyzeFirstSuccessWins(t *testing.T) {
	backend := &fakeBackend{name: "gemini", replies: map[string]reply{
		"m1": {err: errors.New("503 unavailable")},
		"m2": {content: `{"formattedText": "x"}`},
		"m3": {content: validPayload},
		"m4": {content: validPayload},
	}}
	a := New(Chain{Primary: []Candidate{
		structured(backend, "m1"),
		structured(backend, "m2"),
		structured(backend, "m3"),
		structured(backend, "m4"),
	}}, time.Second)

	out, err := a.Analyze(context.Background(), "Saya melakukan penelitian ini.", thesis.ModeGeneral)
	require.NoError(t, err)

	assert.Equal(t, []string{"m1", "m2", "m3"}, backend.models(), "m4 must not be attempted")
	assert.Equal(t, "m3", out.Model)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, int64(42), out.Usage.TotalTokens)
	assert.Equal(t, "Penelitian ini dilakukan oleh penulis.", out.Result.FormattedText)
	assert.Equal(t, float64(82), out.Result.Score)
	require.Len(t, out.Result.Suggestions, 1)
	assert.Equal(t, thesis.CategoryTone, out.Result.Suggestions[0].Category)
	assert.NotNil(t, out.Result.MissingSections)
}

func TestAnalyzeStructuredRequest(t *testing.T) {
	backend := &fakeBackend{name: "gemini", replies: map[string]reply{"m1": {content: validPayload}}}
	a := New(Chain{Primary: []Candidate{structured(backend, "m1")}}, time.Second)

	_, err := a.Analyze(context.Background(), "Daftar pustaka", thesis.ModeBibliography)
	require.NoError(t, err)

	require.Len(t, backend.requests, 1)
	req := backend.requests[0]
	assert.NotNil(t, req.Schema)
	assert.Contains(t, req.SystemInstruction, "APA 7th Edition")
	assert.Contains(t, req.SystemInstruction, "formattedText")
	assert.NotContains(t, req.SystemInstruction, "blok kode markdown")
	assert.Equal(t, "Analisis dan rapikan teks berikut dengan mode: bibliography.\n\nTeks:\nDaftar pustaka", req.Prompt)
}

func TestAnalyzeLegacyFencedJSON(t *testing.T) {
	primary := &fakeBackend{name: "gemini", replies: map[string]reply{
		"pro":   {err: errors.New("invalid schema")},
		"flash": {err: context.DeadlineExceeded},
	}}
	legacy := &fakeBackend{name: "anthropic", replies: map[string]reply{
		"old": {content: "```json\n" + validPayload + "\n```"},
	}}
	a := New(Chain{
		Primary: []Candidate{structured(primary, "pro"), structured(primary, "flash")},
		Legacy:  &Candidate{Backend: legacy, Model: "old"},
	}, time.Second)

	out, err := a.Analyze(context.Background(), "Saya melakukan penelitian ini.", thesis.ModeGeneral)
	require.NoError(t, err)

	assert.Equal(t, "old", out.Model)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, float64(82), out.Result.Score)

	require.Len(t, legacy.requests, 1)
	assert.Nil(t, legacy.requests[0].Schema)
	assert.Contains(t, legacy.requests[0].SystemInstruction, "JSON mentah")
}

func TestAnalyzeAllCandidatesFail(t *testing.T) {
	primary := &fakeBackend{name: "openai", replies: map[string]reply{
		"a": {err: errors.New("network down")},
	}}
	legacy := &fakeBackend{name: "gemini", replies: map[string]reply{
		"b": {content: "Maaf, saya tidak bisa membantu."},
	}}
	a := New(Chain{
		Primary: []Candidate{structured(primary, "a")},
		Legacy:  &Candidate{Backend: legacy, Model: "b"},
	}, time.Second)

	_, err := a.Analyze(context.Background(), "teks", thesis.ModeProofread)
	require.Error(t, err)

	var analysisErr *thesis.AnalysisError
	require.True(t, errors.As(err, &analysisErr))
	assert.Equal(t, 2, analysisErr.Attempts)
	assert.NotEmpty(t, analysisErr.Error())
	assert.Contains(t, analysisErr.Error(), "gemini/b")
	assert.ErrorIs(t, err, errNoJSONObject)
}

func TestAnalyzeEmptyChain(t *testing.T) {
	a := New(Chain{}, time.Second)

	_, err := a.Analyze(context.Background(), "teks", thesis.ModeGeneral)
	var analysisErr *thesis.AnalysisError
	require.True(t, errors.As(err, &analysisErr))
	assert.Equal(t, 0, analysisErr.Attempts)
	assert.ErrorIs(t, err, errNoCandidates)
}

func TestAnalyzeInputErrors(t *testing.T) {
	backend := &fakeBackend{name: "gemini"}
	a := New(Chain{Primary: []Candidate{structured(backend, "m1")}}, time.Second)

	var inputErr *thesis.InputError
	_, err := a.Analyze(context.Background(), "  \n\t ", thesis.ModeGeneral)
	assert.True(t, errors.As(err, &inputErr))

	_, err = a.Analyze(context.Background(), "teks", thesis.Mode("essay"))
	assert.True(t, errors.As(err, &inputErr))

	assert.Empty(t, backend.requests, "no backend call on invalid input")
}

func TestAnalyzeRejectsUnknownCategory(t *testing.T) {
	bad := strings.Replace(validPayload, `"Tone"`, `"Style"`, 1)
	backend := &fakeBackend{name: "gemini", replies: map[string]reply{
		"m1": {content: bad},
		"m2": {content: validPayload},
	}}
	a := New(Chain{Primary: []Candidate{structured(backend, "m1"), structured(backend, "m2")}}, time.Second)

	out, err := a.Analyze(context.Background(), "teks", thesis.ModeGeneral)
	require.NoError(t, err)
	assert.Equal(t, "m2", out.Model)
}

func TestAnalyzeStopsWhenContextCancelled(t *testing.T) {
	backend := &fakeBackend{name: "gemini", replies: map[string]reply{}}
	a := New(Chain{Primary: []Candidate{structured(backend, "m1"), structured(backend, "m2")}}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Analyze(ctx, "teks", thesis.ModeGeneral)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, backend.requests)
}

func TestNewChainSkipsMissingBackends(t *testing.T) {
	gemini := &fakeBackend{name: config.ProviderGemini}
	chain := NewChain(config.AnalysisConfig{
		Candidates: []config.CandidateConfig{
			{Provider: config.ProviderGemini, Model: "gemini-1.5-pro", Structured: true},
			{Provider: config.ProviderOpenAI, Model: "gpt-4o-mini", Structured: true},
		},
		Legacy: config.CandidateConfig{Provider: config.ProviderGemini, Model: "gemini-pro"},
	}, llm.Backends{config.ProviderGemini: gemini})

	require.Len(t, chain.Primary, 1)
	assert.Equal(t, "gemini/gemini-1.5-pro", chain.Primary[0].String())
	assert.True(t, chain.Primary[0].Structured)
	require.NotNil(t, chain.Legacy)
	assert.False(t, chain.Legacy.Structured)
	assert.Equal(t, 2, chain.Len())
}
