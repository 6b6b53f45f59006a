package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"TOSAnalyzer/internal/config"
	"TOSAnalyzer/internal/ports"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing auth header")
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			MaxCompletionTokens int `json:"max_completion_tokens"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "gpt-test" || len(req.Messages) != 2 {
			t.Errorf("unexpected request: %+v", req)
		}
		if req.Messages[0].Role != "system" || req.Messages[0].Content != defaultSystemPrompt {
			t.Errorf("unexpected system message: %+v", req.Messages[0])
		}
		if req.Messages[1].Content != "long terms" {
			t.Errorf("unexpected user message: %q", req.Messages[1].Content)
		}
		if req.MaxCompletionTokens != 64 {
			t.Errorf("max tokens = %d", req.MaxCompletionTokens)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":" Plain summary. "},"finish_reason":"stop"}]}`))
	})
	mux.HandleFunc("/models/gpt-test", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"gpt-test","object":"model","owned_by":"test"}`))
	})
	mux.HandleFunc("/models/missing", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestChatGPTClient_Summarize(t *testing.T) {
	t.Parallel()

	server := newServer(t)
	client := NewChatGPTClient(config.ChatGPTConfig{
		Endpoint:  server.URL + "/",
		Model:     "gpt-test",
		APIKey:    "sk-test",
		MaxTokens: 64,
	})

	got, err := client.Summarize(context.Background(), "long terms")
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if got != "Plain summary." {
		t.Fatalf("summary = %q", got)
	}
}

func TestChatGPTClient_Ready(t *testing.T) {
	t.Parallel()

	server := newServer(t)
	ok := NewChatGPTClient(config.ChatGPTConfig{Endpoint: server.URL, Model: "gpt-test", APIKey: "sk-test"})
	if err := ok.Ready(context.Background()); err != nil {
		t.Fatalf("Ready returned error: %v", err)
	}

	missing := NewChatGPTClient(config.ChatGPTConfig{Endpoint: server.URL, Model: "missing", APIKey: "sk-test"})
	if err := missing.Ready(context.Background()); err == nil {
		t.Fatal("expected error for unknown model")
	}
}

func TestChatGPTClient_Misconfigured(t *testing.T) {
	t.Parallel()

	client := NewChatGPTClient(config.ChatGPTConfig{Model: "gpt-test"})
	if _, err := client.Summarize(context.Background(), "x"); !errors.Is(err, ports.ErrSummarizerUnavailable) {
		t.Fatalf("error = %v, want ErrSummarizerUnavailable", err)
	}
	if err := client.Ready(context.Background()); !errors.Is(err, ports.ErrSummarizerUnavailable) {
		t.Fatalf("Ready error = %v", err)
	}
}
