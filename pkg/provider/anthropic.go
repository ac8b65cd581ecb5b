package provider

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/harun/askd/internal/config"
)

// AnthropicProvider implements Provider for Anthropic Claude.
type AnthropicProvider struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int
	system      SystemSource
}

// NewAnthropic creates a new Anthropic provider.
func NewAnthropic(cfg config.ProviderConfig, system SystemSource) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing API key in provider configuration")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("missing model in provider configuration")
	}

	return &AnthropicProvider{
		client:      anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		system:      system,
	}, nil
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return config.ProviderAnthropic
}

// Answer makes a single message call to the model.
func (p *AnthropicProvider) Answer(ctx context.Context, question string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(question)),
		},
		System: []anthropic.TextBlockParam{
			{Text: p.system.Current()},
		},
	}

	if p.temperature > 0 {
		params.Temperature = anthropic.Float(p.temperature)
	}

	response, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Err: err}
	}

	content := ""
	for _, block := range response.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += b.Text
		}
	}

	if content == "" {
		return "", &ProviderError{Provider: p.Name(), Err: fmt.Errorf("no text content returned")}
	}

	return content, nil
}
