// Package inference talks to an Ollama-compatible generation endpoint and
// turns profiles into structured analyses.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spiffcs/ghaudit/internal/apperr"
	"github.com/spiffcs/ghaudit/internal/constants"
	"github.com/spiffcs/ghaudit/internal/log"
)

// maxBodyBytes bounds how much of an endpoint response is read.
const maxBodyBytes = 8 << 20

// Config configures a Client. Zero values fall back to the defaults in
// the constants package.
type Config struct {
	URL       string
	Model     string
	APIKey    string
	Timeout   time.Duration
	MaxTokens int
	// HTTPClient defaults to a client without its own timeout; the call
	// deadline is carried by the request context.
	HTTPClient *http.Client
}

// Client issues single non-streaming generation calls.
type Client struct {
	url       string
	model     string
	apiKey    string
	timeout   time.Duration
	maxTokens int
	http      *http.Client
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) *Client {
	c := &Client{
		url:       cfg.URL,
		model:     cfg.Model,
		apiKey:    cfg.APIKey,
		timeout:   cfg.Timeout,
		maxTokens: cfg.MaxTokens,
		http:      cfg.HTTPClient,
	}
	if c.url == "" {
		c.url = constants.DefaultInferenceURL
	}
	if c.model == "" {
		c.model = constants.DefaultInferenceModel
	}
	if c.timeout <= 0 {
		c.timeout = constants.DefaultInferenceTimeout
	}
	if c.maxTokens <= 0 {
		c.maxTokens = constants.DefaultMaxTokens
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Format  string          `json:"format"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Message  *struct {
		Content string `json:"content"`
	} `json:"message"`
}

// Generate sends system and user as one prompt and returns the completion
// text. Failures carry a model-layer apperr kind, or wrap ctx.Err() when
// the caller canceled.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  system + "\n\n" + user,
		Stream:  false,
		Format:  "json",
		Options: generateOptions{Temperature: 0, NumPredict: c.maxTokens},
	})
	if err != nil {
		return "", fmt.Errorf("encoding generate request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", apperr.Wrap(apperr.KindModelUnavailable, "invalid inference endpoint", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	log.Debug("inference request", "url", c.url, "model", c.model, "prompt_chars", len(system)+len(user))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.transportError(ctx, callCtx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", c.transportError(ctx, callCtx, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", apperr.New(apperr.KindModelUnauthorized, "AI Service Unauthorized. Check API Key configuration.")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		e := apperr.New(apperr.KindModelServiceError,
			fmt.Sprintf("AI Service Error (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw))))
		e.Status = resp.StatusCode
		return "", e
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return "", apperr.New(apperr.KindModelEmptyResponse, "AI Service returned empty response.")
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		log.Error("inference endpoint returned undecodable body", "body", string(raw), "error", err)
		return "", apperr.Wrap(apperr.KindModelInvalidResponse, "AI Service returned invalid JSON.", err)
	}

	content := gr.Response
	if content == "" && gr.Message != nil {
		content = gr.Message.Content
	}
	if strings.TrimSpace(content) == "" {
		return "", apperr.New(apperr.KindModelEmptyResponse, "AI Service returned empty response.")
	}

	log.Info("inference complete", "model", c.model, "duration", time.Since(start), "chars", len(content))
	return content, nil
}

// transportError classifies a failure to complete the round trip. Parent
// cancellation wins over the call deadline.
func (c *Client) transportError(parent, call context.Context, err error) error {
	if parent.Err() != nil {
		return fmt.Errorf("inference call: %w", parent.Err())
	}
	if errors.Is(call.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindModelTimeout, "AI Service Timeout. The model took too long to respond.", err)
	}
	return apperr.Wrap(apperr.KindModelUnavailable, "AI Service Unavailable. Unable to connect to the inference endpoint.", err)
}
