package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/contradicta/internal/model"
)

// OpenAIProvider implements Verifier over the Chat Completions API.
// It also serves OpenAI-compatible endpoints such as Ollama.
type OpenAIProvider struct {
	name         string
	client       *openai.Client
	config       Config
	defaultModel string
	jsonMode     bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	httpClient, err := newHTTPClient(config)
	if err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.HTTPClient = httpClient
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		name:         "openai",
		client:       openai.NewClientWithConfig(clientConfig),
		config:       config,
		defaultModel: openai.GPT4oMini,
		jsonMode:     true,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Verify asks the chat model for an opinion on one claim pair
func (p *OpenAIProvider) Verify(ctx context.Context, req VerifyRequest) (*model.Opinion, error) {
	modelName := p.config.Model
	if modelName == "" {
		modelName = p.defaultModel
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 400
	}

	timeout := p.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(req),
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0,
	}
	if p.jsonMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", p.name)
	}

	return parseOpinion(strings.TrimSpace(resp.Choices[0].Message.Content))
}
