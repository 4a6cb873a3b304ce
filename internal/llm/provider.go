// Package llm asks an optional language model for a second opinion on detected
// contradictions. Opinions only move status tiers; they never create or delete
// contradictions.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/contradicta/internal/model"
)

// Verifier defines the interface for secondary-opinion providers
type Verifier interface {
	// Name returns the provider name
	Name() string

	// Verify asks whether the two claims state conflicting facts about the same thing
	Verify(ctx context.Context, req VerifyRequest) (*model.Opinion, error)
}

// VerifyRequest is the input for one opinion
type VerifyRequest struct {
	ClaimA        string
	ClaimB        string
	SuggestedType model.ConflictType
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for a single request
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// HTTPProxy and HTTPSProxy override HTTP_PROXY/HTTPS_PROXY for provider calls
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30 * time.Second,
		MaxTokens: 400,
	}
}

// ErrMalformedOpinion means the model replied with something other than the opinion contract
var ErrMalformedOpinion = errors.New("malformed opinion")

const systemPrompt = "You compare two statements from legal testimony. You answer only with a JSON object. You never judge credibility."

// BuildPrompt constructs the verification prompt for one claim pair
func BuildPrompt(req VerifyRequest) string {
	suggested := string(req.SuggestedType)
	if suggested == "" {
		suggested = "unknown"
	}
	return fmt.Sprintf(`Two statements were flagged by rules as a possible contradiction of type %q.

Statement A: %s
Statement B: %s

Answer with exactly this JSON object and nothing else:
{"same_fact": bool, "contradiction": bool, "type": string, "confidence": number between 0 and 1, "reason": string}

- same_fact: both statements are about the same event, object or person
- contradiction: both cannot be true at the same time
- type: one of temporal_date, quant_amount, actor_attribution, presence_participation, document_existence, identity_basic, or "" if none
- reason: one short sentence
`, suggested, quoteLine(req.ClaimA), quoteLine(req.ClaimB))
}

func quoteLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// parseOpinion extracts the JSON opinion from a model reply, tolerating code fences and prose around it
func parseOpinion(text string) (*model.Opinion, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrMalformedOpinion)
	}

	var op model.Opinion
	if err := json.Unmarshal([]byte(text[start:end+1]), &op); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOpinion, err)
	}
	if op.Confidence < 0 || op.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %v out of range", ErrMalformedOpinion, op.Confidence)
	}
	return &op, nil
}
