// ABOUTME: HTTP client for the Gemini generateContent API.
// ABOUTME: Sends the system instruction plus transcript and returns the reply text.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// EnvAPIKey is the environment variable holding the model provider secret.
const EnvAPIKey = "GEMINI_API_KEY"

// DefaultBaseURL is the production Gemini API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// DefaultTimeout bounds one model call when the config does not set one.
const DefaultTimeout = 60 * time.Second

// Turn is one transcript entry sent to the model.
type Turn struct {
	Role string // "user" or "model"
	Text string
}

// Client talks to the Gemini generateContent endpoint.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// Option adjusts a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a Client for the given model using the given API key.
func New(model, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		model:      model,
		apiKey:     apiKey,
		timeout:    DefaultTimeout,
		httpClient: http.DefaultClient,
		logger:     slog.Default().With("component", "llm"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromEnv creates a Client reading the API key from the environment.
// A missing key is a startup error; nothing else is checked here.
func NewFromEnv(model string, opts ...Option) (*Client, error) {
	apiKey := os.Getenv(EnvAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%s is not set; export your API key before starting", EnvAPIKey)
	}
	return New(model, apiKey, opts...), nil
}

// Wire types for the generateContent request/response.

type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Generate sends the system instruction and transcript turns and returns the
// model's reply text. One request per call; the context plus the configured
// timeout bound the wait.
func (c *Client) Generate(ctx context.Context, system string, turns []Turn) (string, error) {
	reqBody := generateRequest{
		Contents: make([]content, 0, len(turns)),
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
		},
	}
	if system != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	for _, turn := range turns {
		reqBody.Contents = append(reqBody.Contents, content{
			Role:  turn.Role,
			Parts: []part{{Text: turn.Text}},
		})
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Surface the API's error message when it sends one.
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var errResp generateResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != nil {
			return "", fmt.Errorf("model API error (%d %s): %s",
				errResp.Error.Code, errResp.Error.Status, errResp.Error.Message)
		}
		return "", fmt.Errorf("model API returned status %d", resp.StatusCode)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model returned no candidates")
	}

	text := ""
	for _, p := range result.Candidates[0].Content.Parts {
		text += p.Text
	}

	c.logger.Debug("model call completed",
		"model", c.model,
		"turns", len(turns),
		"reply_bytes", len(text),
		"elapsed", time.Since(start),
	)

	return text, nil
}
