package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sozercan/thesis-ai/internal/config"
)

// Anthropic has no response-schema mode, so it can only serve as a
// prompt-instructed candidate.
type Anthropic struct {
	client anthropic.Client
}

func NewAnthropic(cfg *config.AnthropicConfig) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.APIEndpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.APIEndpoint))
	}
	return &Anthropic{client: anthropic.NewClient(opts...)}, nil
}

func (a *Anthropic) Name() string {
	return config.ProviderAnthropic
}

func (a *Anthropic) Generate(ctx context.Context, req Request, opts ...Option) (*Response, error) {
	if req.Schema != nil {
		return nil, ErrSchemaUnsupported
	}
	options := applyOptions(opts)

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   options.MaxTokens,
		Temperature: anthropic.Float(options.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.SystemInstruction != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemInstruction}}
	}

	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	usage := Usage{
		PromptTokens:     message.Usage.InputTokens,
		CompletionTokens: message.Usage.OutputTokens,
		TotalTokens:      message.Usage.InputTokens + message.Usage.OutputTokens,
	}
	for _, block := range message.Content {
		if block.Type == "text" {
			return &Response{Content: block.Text, Model: string(message.Model), Usage: usage}, nil
		}
	}
	return nil, errors.New("anthropic: no text content in response")
}
