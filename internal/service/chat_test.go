package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/set-night/finmind/internal/config"
	"github.com/set-night/finmind/internal/domain"
)

type stubProvider struct {
	mu       sync.Mutex
	requests []ChatRequest
	path     string
	query    string
	apiKey   string
}

func (p *stubProvider) last() ChatRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests[len(p.requests)-1]
}

func newStubProvider(t *testing.T, respond http.HandlerFunc) (*stubProvider, *ChatService) {
	t.Helper()
	p := &stubProvider{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		p.mu.Lock()
		p.requests = append(p.requests, req)
		p.path = r.URL.Path
		p.query = r.URL.RawQuery
		p.apiKey = r.Header.Get("api-key")
		p.mu.Unlock()
		respond(w, r)
	}))
	t.Cleanup(ts.Close)

	svc := NewChatService(&config.Config{
		AzureAPIKey:     "secret",
		AzureEndpoint:   ts.URL,
		AzureDeployment: "gpt-4o",
		AzureAPIVersion: "2025-01-01-preview",
	})
	return p, svc
}

func answer(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
		})
	}
}

func TestReplyEmptyHistorySendsTwoTurns(t *testing.T) {
	p, svc := newStubProvider(t, answer("Save 20% of your income."))

	reply, err := svc.Reply(testContext(t), nil, "How do I budget?")
	if err != nil {
		t.Fatalf("Reply err=%v", err)
	}
	if reply != "Save 20% of your income." {
		t.Fatalf("reply=%q", reply)
	}

	req := p.last()
	if len(req.Messages) != 2 {
		t.Fatalf("sent %d turns, want 2", len(req.Messages))
	}
	if req.Messages[0].Role != domain.RoleSystem || req.Messages[0].Content != config.SystemPrompt {
		t.Fatalf("first turn=%+v", req.Messages[0])
	}
	if req.Messages[1].Role != domain.RoleUser || req.Messages[1].Content != "How do I budget?" {
		t.Fatalf("last turn=%+v", req.Messages[1])
	}
	if req.MaxTokens != config.MaxTokens || req.Temperature != config.Temperature {
		t.Fatalf("params max_tokens=%d temperature=%v", req.MaxTokens, req.Temperature)
	}
	if p.path != "/openai/deployments/gpt-4o/chat/completions" || p.query != "api-version=2025-01-01-preview" {
		t.Fatalf("path=%s query=%s", p.path, p.query)
	}
	if p.apiKey != "secret" {
		t.Fatalf("api-key=%q", p.apiKey)
	}
}

func TestReplyForwardsHistoryInOrder(t *testing.T) {
	p, svc := newStubProvider(t, answer("ok"))
	history := []domain.ChatTurn{
		{Role: domain.RoleAssistant, Content: config.GreetingReply},
		{Role: domain.RoleUser, Content: "I earn 3000 a month"},
		{Role: domain.RoleAssistant, Content: "Nice"},
	}

	if _, err := svc.Reply(testContext(t), history, "What now?"); err != nil {
		t.Fatal(err)
	}
	req := p.last()
	if len(req.Messages) != len(history)+2 {
		t.Fatalf("sent %d turns, want %d", len(req.Messages), len(history)+2)
	}
	for i, turn := range history {
		if req.Messages[i+1] != turn {
			t.Fatalf("turn %d=%+v want %+v", i+1, req.Messages[i+1], turn)
		}
	}
}

func TestReplyRejectsBlankMessage(t *testing.T) {
	p, svc := newStubProvider(t, answer("unused"))
	for _, msg := range []string{"", "   \n\t"} {
		if _, err := svc.Reply(testContext(t), nil, msg); !errors.Is(err, domain.ErrMessageRequired) {
			t.Fatalf("Reply(%q) err=%v", msg, err)
		}
	}
	if len(p.requests) != 0 {
		t.Fatal("blank message reached the provider")
	}
}

func TestReplyFallbackOnEmptyChoices(t *testing.T) {
	_, svc := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})
	reply, err := svc.Reply(testContext(t), nil, "hi")
	if err != nil || reply != config.FallbackReply {
		t.Fatalf("reply=%q err=%v", reply, err)
	}
}

func TestReplyProviderErrors(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		status      int
		body        string
		wantDetail  string
	}{
		{
			name:        "azure json",
			contentType: "application/json",
			status:      http.StatusTooManyRequests,
			body:        `{"error":{"code":"429","message":"Rate limit reached"}}`,
			wantDetail:  "429: Rate limit reached",
		},
		{
			name:        "gateway html",
			contentType: "text/html",
			status:      http.StatusBadGateway,
			body:        `<html><head><title>502 Bad Gateway</title></head><body><h1>nginx</h1></body></html>`,
			wantDetail:  "502 Bad Gateway",
		},
		{
			name:        "plain text",
			contentType: "text/plain",
			status:      http.StatusInternalServerError,
			body:        "boom",
			wantDetail:  "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := svc.Reply(testContext(t), nil, "hi")
			var provErr *domain.ProviderError
			if !errors.As(err, &provErr) {
				t.Fatalf("err=%v want *ProviderError", err)
			}
			if provErr.Status != tt.status || provErr.Detail != tt.wantDetail {
				t.Fatalf("status=%d detail=%q", provErr.Status, provErr.Detail)
			}
		})
	}
}

func TestReplyUnreachableProvider(t *testing.T) {
	svc := NewChatService(&config.Config{AzureEndpoint: "http://127.0.0.1:1", AzureDeployment: "d", AzureAPIVersion: "v"})
	_, err := svc.Reply(testContext(t), nil, "hi")
	var provErr *domain.ProviderError
	if !errors.As(err, &provErr) || provErr.Err == nil {
		t.Fatalf("err=%v", err)
	}
}

func TestSummarizeBodyTruncates(t *testing.T) {
	got := summarizeBody("text/plain", []byte(strings.Repeat("x", 1000)))
	if len([]rune(got)) != maxDetailLen+3 || !strings.HasSuffix(got, "...") {
		t.Fatalf("len=%d", len(got))
	}
}
