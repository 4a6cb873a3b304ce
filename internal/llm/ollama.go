package llm

import (
	"strings"
)

const defaultOllamaURL = "http://localhost:11434/v1"

// NewOllamaProvider creates a verifier for a local Ollama server through its
// OpenAI-compatible endpoint
func NewOllamaProvider(config Config) (*OpenAIProvider, error) {
	if config.BaseURL == "" {
		config.BaseURL = defaultOllamaURL
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	if !strings.HasSuffix(config.BaseURL, "/v1") {
		config.BaseURL += "/v1"
	}
	if config.APIKey == "" {
		config.APIKey = "ollama" // Ignored by the server, required by the client
	}
	if config.Model == "" {
		config.Model = "llama3.1"
	}

	p, err := NewOpenAIProvider(config)
	if err != nil {
		return nil, err
	}
	p.name = "ollama"
	p.jsonMode = false
	return p, nil
}
