// Package llm talks to a local Ollama server through its
// OpenAI-compatible chat-completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// maxResponseSize caps the response body read; grading responses are
// bounded JSON, anything bigger is a misbehaving endpoint.
const maxResponseSize = 10 * 1024 * 1024

const (
	defaultModel    = "llama3.2:3b"
	defaultEndpoint = "http://localhost:11434/v1"
)

type Client struct {
	model    string
	endpoint string
	httpc    *http.Client
}

// NewClient builds a client from OLLAMA_MODEL / OLLAMA_ENDPOINT, with
// the service defaults when unset. The HTTP client carries no timeout:
// the generative call is blocking and callers impose deadlines through
// context.
func NewClient() *Client {
	model := os.Getenv("OLLAMA_MODEL")
	if model == "" {
		model = defaultModel
	}
	endpoint := os.Getenv("OLLAMA_ENDPOINT")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		model:    model,
		endpoint: endpoint,
		httpc:    &http.Client{},
	}
}

// Model returns the configured model name, for report metadata.
func (c *Client) Model() string { return c.model }

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Chat sends a single user message and returns the raw completion
// text. There is no retry: a failure here is terminal for the grading
// request and becomes a structured error report upstream.
func (c *Client) Chat(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}

	url := strings.TrimSuffix(c.endpoint, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read ollama response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		detail := string(respBody)
		if len(detail) > 200 {
			detail = detail[:200] + "..."
		}
		return "", fmt.Errorf("ollama API error (status %d): %s", res.StatusCode, detail)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parse ollama response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in ollama response")
	}
	return parsed.Choices[0].Message.Content, nil
}
