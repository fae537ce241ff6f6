// Package azure provides an LLM service adapter for Azure OpenAI
// chat deployments.
package azure

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"

	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Configuration errors.
var (
	ErrMissingEndpoint   = errors.New("azure: endpoint is required")
	ErrMissingAPIKey     = errors.New("azure: API key is required")
	ErrMissingDeployment = errors.New("azure: deployment name is required")
)

// Config holds configuration for an Azure OpenAI deployment.
type Config struct {
	// Endpoint is the resource URL, e.g. https://name.openai.azure.com.
	Endpoint string

	// APIKey is the resource key.
	APIKey string

	// Deployment is the chat model deployment name.
	Deployment string
}

// LLMService generates completions from an Azure OpenAI deployment.
type LLMService struct {
	client     *azopenai.Client
	deployment string
}

// NewLLMService creates a client bound to one deployment.
func NewLLMService(cfg Config) (*LLMService, error) {
	switch {
	case cfg.Endpoint == "":
		return nil, ErrMissingEndpoint
	case cfg.APIKey == "":
		return nil, ErrMissingAPIKey
	case cfg.Deployment == "":
		return nil, ErrMissingDeployment
	}

	client, err := azopenai.NewClientWithKeyCredential(cfg.Endpoint, azcore.NewKeyCredential(cfg.APIKey), nil)
	if err != nil {
		return nil, fmt.Errorf("azure: create client: %w", err)
	}
	return &LLMService{client: client, deployment: cfg.Deployment}, nil
}

// Generate sends prompt as a single user message.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	resp, err := s.client.GetChatCompletions(ctx, chatOptions(s.deployment, prompt, opts), nil)
	if err != nil {
		return "", fmt.Errorf("azure: chat completion: %w", err)
	}
	if len(resp.Choices) > 0 && resp.Choices[0].Message != nil && resp.Choices[0].Message.Content != nil {
		return *resp.Choices[0].Message.Content, nil
	}
	return "", errors.New("azure: no completion received")
}

// ModelName returns the deployment name.
func (s *LLMService) ModelName() string {
	return s.deployment
}

// Ping requests a one-token completion.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.Generate(ctx, "ping", driven.GenerateOptions{MaxTokens: 1})
	return err
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

func chatOptions(deployment, prompt string, opts driven.GenerateOptions) azopenai.ChatCompletionsOptions {
	out := azopenai.ChatCompletionsOptions{
		DeploymentName: to.Ptr(deployment),
		Messages: []azopenai.ChatRequestMessageClassification{
			&azopenai.ChatRequestUserMessage{
				Content: azopenai.NewChatRequestUserMessageContent(prompt),
			},
		},
	}
	if opts.MaxTokens > 0 {
		out.MaxTokens = to.Ptr(int32(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		out.Temperature = to.Ptr(float32(opts.Temperature))
	}
	return out
}
