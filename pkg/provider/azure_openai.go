package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"

	"github.com/harun/askd/internal/config"
)

// AzureOpenAIProvider implements Provider for Azure OpenAI chat
// deployments.
type AzureOpenAIProvider struct {
	client      openai.Client
	deployment  string
	temperature float64
	maxTokens   int
	system      SystemSource
}

// NewAzureOpenAI creates a new Azure OpenAI provider.
func NewAzureOpenAI(cfg config.ProviderConfig, system SystemSource) (*AzureOpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing API key in provider configuration")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("missing endpoint in provider configuration")
	}
	if cfg.APIVersion == "" {
		return nil, fmt.Errorf("missing API version in provider configuration")
	}
	if cfg.Deployment == "" {
		return nil, fmt.Errorf("missing deployment name in provider configuration")
	}

	return &AzureOpenAIProvider{
		client: openai.NewClient(
			azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
			azure.WithAPIKey(cfg.APIKey),
		),
		deployment:  cfg.Deployment,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		system:      system,
	}, nil
}

// Name returns the provider name.
func (p *AzureOpenAIProvider) Name() string {
	return config.ProviderAzureOpenAI
}

// Answer makes a single chat completion call to the deployment.
func (p *AzureOpenAIProvider) Answer(ctx context.Context, question string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.deployment),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.system.Current()),
			openai.UserMessage(question),
		},
	}

	if p.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.maxTokens))
	}
	if p.temperature > 0 {
		params.Temperature = openai.Float(p.temperature)
	}

	response, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Err: err}
	}

	if len(response.Choices) == 0 {
		return "", &ProviderError{Provider: p.Name(), Err: fmt.Errorf("no response choices returned")}
	}

	return response.Choices[0].Message.Content, nil
}
