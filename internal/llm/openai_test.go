package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "nvidia/nemotron-3-nano-30b-a3b:free" {
			t.Errorf("Unexpected model: %s", req.Model)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, `"rizz"`) {
			t.Errorf("Prompt does not mention the term: %+v", req.Messages)
		}

		resp := openai.ChatCompletionResponse{
			ID:      "chatcmpl-123",
			Object:  "chat.completion",
			Created: 1677652288,
			Model:   req.Model,
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: content,
					},
					FinishReason: "stop",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testProvider(t *testing.T, url string) *OpenAIProvider {
	t.Helper()
	provider, err := NewOpenAIProvider(Config{
		Provider: "openrouter",
		APIKey:   "test-key",
		BaseURL:  url,
		Model:    "nvidia/nemotron-3-nano-30b-a3b:free",
		Timeout:  5,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	return provider
}

func TestOpenAIProvider_Analyze_Success(t *testing.T) {
	server := chatServer(t, `{"currentMeaning":"charisma","periods":[{"timeRange":"2021-2022","meaning":"charm","origin":"Kai Cenat streams"}]}`)
	defer server.Close()

	provider := testProvider(t, server.URL)
	analysis, err := provider.Analyze(context.Background(), "rizz")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if analysis.CurrentMeaning != "charisma" {
		t.Errorf("Unexpected meaning: %s", analysis.CurrentMeaning)
	}
	if len(analysis.Periods) != 1 || analysis.Periods[0].Origin != "Kai Cenat streams" {
		t.Errorf("Unexpected periods: %+v", analysis.Periods)
	}
	if provider.Name() != "openrouter" {
		t.Errorf("Unexpected name: %s", provider.Name())
	}
}

func TestOpenAIProvider_Analyze_CodeFence(t *testing.T) {
	server := chatServer(t, "```json\n{\"currentMeaning\":\"charisma\",\"periods\":[]}\n```")
	defer server.Close()

	analysis, err := testProvider(t, server.URL).Analyze(context.Background(), "rizz")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if analysis.CurrentMeaning != "charisma" {
		t.Errorf("Unexpected meaning: %s", analysis.CurrentMeaning)
	}
}

func TestOpenAIProvider_Analyze_InvalidJSON(t *testing.T) {
	server := chatServer(t, "rizz means charisma, trust me")
	defer server.Close()

	_, err := testProvider(t, server.URL).Analyze(context.Background(), "rizz")
	if err == nil {
		t.Fatal("Expected error for non-JSON reply, got nil")
	}
	if !strings.Contains(err.Error(), "invalid JSON") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestOpenAIProvider_Analyze_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
	}))
	defer server.Close()

	_, err := testProvider(t, server.URL).Analyze(context.Background(), "rizz")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOpenAIProvider_Analyze_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Rate limit exceeded", "type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	_, err := testProvider(t, server.URL).Analyze(context.Background(), "rizz")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOpenAIProvider_Analyze_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// the caller's deadline wins over the configured timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := testProvider(t, server.URL).Analyze(ctx, "rizz")
	if err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}

func TestOpenAIProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"data": [{"id": "nvidia/nemotron-3-nano-30b-a3b:free"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider := testProvider(t, server.URL)
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be false on error")
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{Provider: "openrouter"}); err == nil {
		t.Fatal("Expected error without API key")
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{})
	if err != nil || p != nil {
		t.Fatalf("Expected disabled provider, got %v, %v", p, err)
	}

	p, err = NewProvider(Config{Provider: "OpenRouter", APIKey: "k"})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if p.Name() != "openrouter" {
		t.Errorf("Unexpected name: %s", p.Name())
	}

	if _, err := NewProvider(Config{Provider: "carrier-pigeon"}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestParseAnalysis_DropsModelComments(t *testing.T) {
	analysis, err := ParseAnalysis(`{"currentMeaning":"x","periods":[{"timeRange":"2020","comments":[{"user":"bot","text":"made up"}]}]}`)
	if err != nil {
		t.Fatalf("ParseAnalysis failed: %v", err)
	}
	if len(analysis.Periods[0].Comments) != 0 {
		t.Errorf("Expected model-provided comments to be dropped, got %v", analysis.Periods[0].Comments)
	}
}
