package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"resume-builder/pkg/ai/formatters"

	"github.com/rs/zerolog/log"
)

const DefaultBaseURL = "http://ai-service:8000"

// GatewayError is any failure talking to the ai-service: transport, status
// or an unusable reply. Callers fall back to static text on it.
type GatewayError struct {
	Op     string
	Status int
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ai %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("ai %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Client calls the ai-service chat endpoint to draft résumé text.
type Client struct {
	BaseURL  string
	HTTP     *http.Client
	Attempts int
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: timeout}, Attempts: 3}
}

// GenerateSummary drafts a professional summary.
func (c *Client) GenerateSummary(ctx context.Context, in formatters.SummaryInput) (string, error) {
	s, err := formatters.NewSummaryFormatter(c).Format(ctx, in)
	if err != nil {
		return "", asGatewayError("summary", err)
	}
	return s, nil
}

// GenerateAchievements drafts bullet points for one role.
func (c *Client) GenerateAchievements(ctx context.Context, in formatters.AchievementsInput) ([]string, error) {
	items, err := formatters.NewAchievementsFormatter(c).Format(ctx, in)
	if err != nil {
		return nil, asGatewayError("achievements", err)
	}
	return items, nil
}

func asGatewayError(op string, err error) error {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return &GatewayError{Op: op, Status: ge.Status, Err: ge.Err}
	}
	return &GatewayError{Op: op, Err: err}
}

// Chat posts {agent:"auto", input} to /v1/chat and returns the output field.
func (c *Client) Chat(ctx context.Context, input string) (string, error) {
	b, err := json.Marshal(map[string]any{"agent": "auto", "input": input})
	if err != nil {
		return "", err
	}
	log.Debug().Str("url", c.BaseURL+"/v1/chat").Int("bytes", len(b)).Msg("ai chat request")

	resp, err := c.doPostWithRetry(ctx, "/v1/chat", b)
	if err != nil {
		return "", &GatewayError{Op: "chat", Err: err}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &GatewayError{Op: "chat", Err: err}
	}
	log.Debug().Int("status", resp.StatusCode).Int("bytes", len(respBytes)).Msg("ai chat response")

	if resp.StatusCode != http.StatusOK {
		return "", &GatewayError{Op: "chat", Status: resp.StatusCode, Err: errors.New("ai-service returned non-200 status")}
	}

	var chatResp struct {
		Agent  string `json:"agent"`
		Output string `json:"output"`
	}
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return "", &GatewayError{Op: "chat", Err: err}
	}
	return chatResp.Output, nil
}

// doPostWithRetry retries transport errors with exponential backoff. HTTP
// error statuses are returned to the caller as-is.
func (c *Client) doPostWithRetry(ctx context.Context, path string, body []byte) (*http.Response, error) {
	attempts := c.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTP.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if i < attempts-1 {
			backoff := time.Duration(1<<i) * backoffUnit
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

// backoffUnit is the first retry delay; tests shorten it.
var backoffUnit = time.Second
