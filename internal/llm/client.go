// Package llm is a minimal client for the OpenRouter chat-completions API.
//
// OpenRouter speaks the OpenAI chat-completions wire format, so this client
// is the standard POST-JSON/parse-choices shape. One deliberate difference
// from most API clients: NO RETRY. A review call is user-initiated and the
// UI surfaces upstream failures directly — retrying would just make the user
// wait longer for the same error (and double-spend tokens on flaky success).
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mhasan/pr-reviewer/internal/apperror"
)

const defaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

// DefaultModel is the completion model used when none is configured.
const DefaultModel = "deepseek/deepseek-r1"

// Generation parameters, fixed per the review prompt design: moderate
// temperature for varied phrasing, 2000 tokens is plenty for 3-5 suggestions.
const (
	temperature = 0.7
	maxTokens   = 2000
)

// Client calls the OpenRouter chat-completions endpoint.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	httpCli *http.Client
	logger  *slog.Logger
}

// NewClient creates a Client. An empty model selects DefaultModel; baseURL
// is overridable for tests (point it at an httptest server).
func NewClient(apiKey, model, baseURL string, logger *slog.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		httpCli: &http.Client{Timeout: 120 * time.Second},
		logger:  logger,
	}
}

// wire types for the chat-completions request/response

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends one system+user prompt pair and returns the raw completion
// text. Upstream failures come back as apperror.ErrUpstream with the
// response body attached as diagnostic detail.
//
// An empty choices list is NOT an error: it degrades to "[]", which the
// extractor then turns into its free-text fallback. The review flow never
// dies on a weird-but-2xx upstream response.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", apperror.Upstream("Failed to get response from OpenRouter", err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", apperror.Upstream("Failed to get response from OpenRouter", err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return "", apperror.Upstream("Failed to get response from OpenRouter", err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperror.Upstream("Failed to get response from OpenRouter", err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("OpenRouter call failed",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(respBody)),
		)
		return "", apperror.Upstream("Failed to get response from OpenRouter", string(respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", apperror.Upstream("Failed to get response from OpenRouter", err.Error())
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		c.logger.Warn("OpenRouter returned no completion choices")
		return "[]", nil
	}

	raw := result.Choices[0].Message.Content
	c.logger.Debug("raw completion received", slog.Int("length", len(raw)))

	return raw, nil
}
