package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/set-night/finmind/internal/config"
	"github.com/set-night/finmind/internal/domain"
)

const maxDetailLen = 300

// ChatService forwards conversations to an Azure OpenAI chat-completion deployment.
type ChatService struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

func NewChatService(cfg *config.Config) *ChatService {
	q := url.Values{"api-version": {cfg.AzureAPIVersion}}
	return &ChatService{
		apiKey: cfg.AzureAPIKey,
		url: fmt.Sprintf("%s/openai/deployments/%s/chat/completions?%s",
			cfg.AzureEndpoint, url.PathEscape(cfg.AzureDeployment), q.Encode()),
		httpClient: &http.Client{Timeout: config.RequestTimeout},
	}
}

type ChatRequest struct {
	Messages    []domain.ChatTurn `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	Temperature float64           `json:"temperature"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// BuildTurns prepends the system prompt to history and appends the new user message.
func BuildTurns(history []domain.ChatTurn, message string) []domain.ChatTurn {
	turns := make([]domain.ChatTurn, 0, len(history)+2)
	turns = append(turns, domain.ChatTurn{Role: domain.RoleSystem, Content: config.SystemPrompt})
	for _, t := range history {
		turns = append(turns, domain.ChatTurn{Role: t.Role, Content: t.Content})
	}
	return append(turns, domain.ChatTurn{Role: domain.RoleUser, Content: message})
}

// Reply answers message in the context of history. Failures are *domain.ProviderError.
func (s *ChatService) Reply(ctx context.Context, history []domain.ChatTurn, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", domain.ErrMessageRequired
	}
	return s.Complete(ctx, BuildTurns(history, message))
}

// Complete sends turns as-is with the fixed completion parameters.
func (s *ChatService) Complete(ctx context.Context, turns []domain.ChatTurn) (string, error) {
	payload, err := json.Marshal(ChatRequest{
		Messages:    turns,
		MaxTokens:   config.MaxTokens,
		Temperature: config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", &domain.ProviderError{Err: fmt.Errorf("chat request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.ProviderError{Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &domain.ProviderError{
			Status: resp.StatusCode,
			Detail: summarizeBody(resp.Header.Get("Content-Type"), body),
		}
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", &domain.ProviderError{Status: resp.StatusCode, Err: fmt.Errorf("parse response: %w", err)}
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return config.FallbackReply, nil
	}
	return chatResp.Choices[0].Message.Content, nil
}

// summarizeBody reduces a provider error body to one loggable line. Gateways
// answer with HTML pages, so those are reduced to their title.
func summarizeBody(contentType string, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if strings.Contains(contentType, "html") || bytes.HasPrefix(trimmed, []byte("<")) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(trimmed))
		if err == nil {
			if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
				return truncate(title)
			}
			return truncate(strings.Join(strings.Fields(doc.Text()), " "))
		}
	}

	var azureErr struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(trimmed, &azureErr) == nil && azureErr.Error.Message != "" {
		if azureErr.Error.Code != "" {
			return truncate(azureErr.Error.Code + ": " + azureErr.Error.Message)
		}
		return truncate(azureErr.Error.Message)
	}
	return truncate(string(trimmed))
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxDetailLen {
		return s
	}
	return string(r[:maxDetailLen]) + "..."
}
