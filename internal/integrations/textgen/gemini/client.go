// Package gemini calls the Google Generative Language REST API.
package gemini

import (
	"context"
	"strings"
	"time"

	"api_tractors/internal/integrations/textgen"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"resty.dev/v3"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultTimeout = 30 * time.Second

	generatePath = "/v1beta/models/{model}:generateContent"
	apiKeyHeader = "x-goog-api-key"
)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// New builds a client. An empty baseURL means DefaultBaseURL and a zero
// timeout means DefaultTimeout.
func New(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader(apiKeyHeader, apiKey).
		SetHeader("Content-Type", "application/json")

	return &Client{http: c, logger: logger}
}

func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	var (
		out    generateResponse
		apiErr apiError
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("model", model).
		SetBody(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}).
		SetResult(&out).
		SetError(&apiErr).
		Post(generatePath)
	if err != nil {
		return "", errors.Wrapf(textgen.ErrRemoteService, "generate %s: %v", model, err)
	}
	if resp.IsError() {
		c.logger.Warn("gemini rejected request",
			zap.String("model", model),
			zap.Int("status", resp.StatusCode()),
			zap.String("reason", apiErr.Error.Message),
		)
		return "", errors.Wrapf(textgen.ErrRemoteService, "generate %s: status %d", model, resp.StatusCode())
	}

	text := out.text()
	if text == "" {
		return "", errors.Wrapf(textgen.ErrRemoteService, "generate %s: empty response", model)
	}
	return text, nil
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() error {
	return c.http.Close()
}

func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}
