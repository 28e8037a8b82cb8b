package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nhle/mail-triage/internal/model"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"

	defaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 1024

	requestTimeout = 60 * time.Second
)

// ClaudeCapability implements Capability against the Claude Messages
// API. The model is configuration, not a design decision; swap it via
// SummarizerConfig.
type ClaudeCapability struct {
	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
}

// NewClaude creates a capability handle. Construct it once at startup
// and inject it into the Summarizer.
func NewClaude(apiKey string, cfg model.SummarizerConfig) *ClaudeCapability {
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &ClaudeCapability{
		apiKey:    apiKey,
		model:     modelName,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: requestTimeout},
	}
}

// Summarize sends one message to the API and returns the generated
// summary text. Decoding is deterministic (temperature 0).
func (c *ClaudeCapability) Summarize(
	ctx context.Context,
	text string,
	minWords, maxWords int,
) (string, error) {
	system := fmt.Sprintf(
		"You summarize emails. Write an abstractive summary of the "+
			"message body between %d and %d words. Respond with the "+
			"summary only, no preamble.",
		minWords, maxWords,
	)

	// Roughly two tokens per word keeps the hard cap above the word
	// budget without letting responses run away.
	maxTokens := maxWords * 2
	if maxTokens > c.maxTokens {
		maxTokens = c.maxTokens
	}

	reqBody := apiRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: 0,
		System:      system,
		Messages: []apiMessage{
			{
				Role: "user",
				Content: []apiContentBlock{
					{Type: "text", Text: text},
				},
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, apiURL, bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling summarization API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	var parts []string
	for _, block := range result.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	summary := strings.TrimSpace(strings.Join(parts, ""))
	if summary == "" {
		return "", fmt.Errorf("empty summary in response")
	}

	return summary, nil
}

// --- Claude API types ---

type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature float64      `json:"temperature"`
	System      string       `json:"system"`
	Messages    []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type apiResponse struct {
	ID      string            `json:"id"`
	Type    string            `json:"type"`
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
	Model   string            `json:"model"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
