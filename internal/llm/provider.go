package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/slangspace/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Analyze asks the model for the meaning history of a term
	Analyze(ctx context.Context, term string) (*model.Analysis, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "openrouter", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for the chat completions endpoint
	APIKey string

	// BaseURL for OpenAI-compatible endpoints such as OpenRouter
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   60,
		MaxTokens: 1500,
	}
}

// BuildPrompt constructs the slang history prompt
func BuildPrompt(term string) string {
	return fmt.Sprintf(`You are a slang historian. Analyze the English slang/phrase: "%s"

Return a JSON object with this exact structure:
{
  "currentMeaning": "what it means today in 1-2 sentences",
  "periods": [
    {
      "timeRange": "e.g. 2014-2016",
      "meaning": "what it meant during this period",
      "origin": "cultural event or context that shaped this meaning, be specific about who/what/when"
    }
  ]
}

Include 3-6 time periods showing how the meaning evolved. Start from earliest known usage to present.
Be specific about cultural moments: songs, artists, memes, events that shifted the meaning.
Return ONLY valid JSON, no markdown, no explanation.`, term)
}

// ParseAnalysis decodes a model reply, tolerating markdown code fences
func ParseAnalysis(content string) (*model.Analysis, error) {
	cleaned := strings.TrimSpace(content)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	var analysis model.Analysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return nil, fmt.Errorf("LLM returned invalid JSON: %s: %w", truncate(content, 200), err)
	}

	// comments come from the fetcher, never from the model
	for i := range analysis.Periods {
		analysis.Periods[i].Comments = nil
	}

	return &analysis, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
