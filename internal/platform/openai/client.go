package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/avelldro/converse-backend/internal/platform/fault"
	"github.com/avelldro/converse-backend/internal/platform/logger"
)

// Message is one entry of the prompt window sent to the completion API.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the completion provider used by the respond pipeline.
type Client interface {
	// Complete issues exactly one chat completion request and returns the
	// assistant text. No retries, no streaming.
	Complete(ctx context.Context, messages []Message) (string, error)
	Model() string
}

type client struct {
	log        *logger.Logger
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewClient(log *logger.Logger) Client {
	baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = "gpt-3.5-turbo"
	}

	timeout := 60 * time.Second
	return &client{
		log:        log.With("service", "OpenAIClient"),
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *client) Model() string { return c.model }

type chatCompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func (c *client) Complete(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fault.New(fault.KindValidation, "empty message window")
	}

	// The credential is read per call so rotation does not require a restart.
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return "", fault.New(fault.KindConfiguration, "missing OPENAI_API_KEY")
	}

	raw, err := c.doOnce(ctx, apiKey, "/v1/chat/completions", chatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}

	var out chatCompletionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fault.New(fault.KindUpstream, "malformed completion response: %v", err)
	}
	if len(out.Choices) == 0 {
		return "", fault.New(fault.KindUpstream, "completion response has no choices")
	}
	content := out.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fault.New(fault.KindUpstream, "completion response has empty content")
	}
	return content, nil
}

func (c *client) doOnce(ctx context.Context, apiKey, path string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fault.Wrap(fault.KindUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fault.Wrap(fault.KindUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fault.New(fault.KindUpstream, "completion request failed: %v", err)
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, fault.Wrap(fault.KindUpstream, readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fault.New(fault.KindUpstream, "completion status %d: %s", resp.StatusCode, truncateBody(raw))
	}
	return raw, nil
}

func truncateBody(raw []byte) string {
	const max = 2000
	s := string(raw)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
