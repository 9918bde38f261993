package llm

import (
	"context"
	"errors"
)

// ErrSchemaUnsupported is returned by backends that cannot constrain their
// output to a response schema.
var ErrSchemaUnsupported = errors.New("backend does not support structured output")

type Backend interface {
	// Name identifies the provider ("gemini", "openai", "anthropic")
	Name() string

	// Generate sends one request and returns the raw response text
	Generate(ctx context.Context, req Request, opts ...Option) (*Response, error)
}

type Request struct {
	Model             string
	SystemInstruction string

	// Schema, when set, asks the backend to constrain its output to it
	Schema *Schema

	Prompt string
}

type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

type Option func(*Options)

type Options struct {
	MaxTokens   int64
	Temperature float64
}

func WithMaxTokens(n int64) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.Temperature = t
	}
}

func applyOptions(opts []Option) *Options {
	options := &Options{
		MaxTokens:   8192,
		Temperature: 0.2,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

type Response struct {
	Content string
	Model   string
	Usage   Usage
}
