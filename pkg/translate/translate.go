// Package translate turns English phrases into the Kannada people actually
// speak in Bengaluru (and back) using the Gemini generateContent REST API.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	// DefaultBaseURL is the default Gemini REST endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel handles the translation prompts.
	DefaultModel = "gemini-2.5-flash"
)

const toKannadaPrompt = `Translate to Bangalore Kannada (NOT formal Kannada):
%q

Use:
- Common Bangalore slang and mixed language (Kanglish)
- Familiar "neevu" instead of formal "nivu"
- Street language people actually use
- Include English words where locals normally mix them

Example: "How much?" → "Yaake? Eshtu aagutte?" or "Eshtu sir?"

Give ONLY the translation, no explanation.`

const toEnglishPrompt = `Translate this Kannada text to English:
%q

Give ONLY the translation, no explanation.`

// Client calls the generateContent endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithModel overrides the translation model.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a translation client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ToKannada translates English text into conversational Bangalore Kannada.
func (c *Client) ToKannada(ctx context.Context, text string) (string, error) {
	return c.generate(ctx, fmt.Sprintf(toKannadaPrompt, text))
}

// ToEnglish translates Kannada text into English.
func (c *Client) ToEnglish(ctx context.Context, text string) (string, error) {
	return c.generate(ctx, fmt.Sprintf(toEnglishPrompt, text))
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("translate: %s (%s)", apiErr.Error.Message, apiErr.Error.Status)
		}
		return "", fmt.Errorf("translate: unexpected status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("translate: empty response")
	}

	c.logger.Debug("translation complete", "model", c.model)
	return strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text), nil
}
