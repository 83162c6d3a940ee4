package imageparser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"todam/internal/usecase"
)

// parseResponse is the minimal response shape returned by the parsing API.
// The confirmed message id sits two envelopes deep.
type parseResponse struct {
	SendMessageResponse struct {
		SendMessageResult struct {
			MessageID string `json:"MessageId"`
		} `json:"SendMessageResult"`
	} `json:"SendMessageResponse"`
}

// Client posts image-analysis requests to the external parsing API.
type Client struct {
	apiURL     string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client for the given endpoint. Parsing runs a model
// behind the endpoint, so the default timeout is generous.
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	apiURL = strings.TrimSpace(apiURL)
	if apiURL == "" {
		return nil, errors.New("imageparser: api url must not be empty")
	}
	c := &Client{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// Parse submits one request and reports the upstream status plus the
// confirmed message id, when the response carried one. Non-2xx statuses are
// reported in the result, not as errors.
func (c *Client) Parse(ctx context.Context, req usecase.ParseRequest) (usecase.ParseResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return usecase.ParseResult{}, fmt.Errorf("imageparser: marshal request: %w", err)
	}

	httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if reqErr != nil {
		return usecase.ParseResult{}, fmt.Errorf("imageparser: create request: %w", reqErr)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, doErr := c.resolvedHTTPClient().Do(httpReq)
	if doErr != nil {
		return usecase.ParseResult{}, fmt.Errorf("imageparser: request failed: %w", doErr)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return usecase.ParseResult{}, fmt.Errorf("imageparser: read response body: %w", err)
	}

	result := usecase.ParseResult{StatusCode: res.StatusCode}

	var payload parseResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		// An unconfirmed result leaves the job queued, so an unparseable
		// body degrades to that rather than failing the consumer.
		slog.Error("unparseable response from parsing api", "status", res.StatusCode)
		return result, nil
	}
	result.MessageID = payload.SendMessageResponse.SendMessageResult.MessageID

	return result, nil
}
