package ticketing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"todam/internal/usecase"
)

// Getter is satisfied by paramstore.Client.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Client posts ticket-creation requests to the external ticketing API,
// authenticating with an API key held in SSM.
type Client struct {
	apiURL     string
	httpClient *http.Client
	getter     Getter
	paramName  string

	keyOnce sync.Once
	apiKey  string
	keyErr  error
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client backed by the given paramstore getter. The API
// key is fetched from SSM on the first CreateTicket call and reused for the
// lifetime of the process.
func NewClient(ps Getter, paramName, apiURL string, opts ...Option) (*Client, error) {
	if ps == nil {
		return nil, errors.New("ticketing: paramstore getter must not be nil")
	}
	paramName = strings.TrimSpace(paramName)
	if paramName == "" {
		return nil, errors.New("ticketing: api key parameter name must not be empty")
	}
	apiURL = strings.TrimSpace(apiURL)
	if apiURL == "" {
		return nil, errors.New("ticketing: api url must not be empty")
	}
	c := &Client{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		getter:     ps,
		paramName:  paramName,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) resolveAPIKey(ctx context.Context) (string, error) {
	c.keyOnce.Do(func() {
		key, err := c.getter.GetParameter(ctx, c.paramName)
		if err != nil {
			c.keyErr = fmt.Errorf("ticketing: fetch api key: %w", err)
			return
		}
		if strings.TrimSpace(key) == "" {
			c.keyErr = errors.New("ticketing: api key is empty")
			return
		}
		c.apiKey = key
	})
	return c.apiKey, c.keyErr
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// CreateTicket forwards one ticket request. The upstream status and raw body
// are passed through so the caller decides what a rejection means.
func (c *Client) CreateTicket(ctx context.Context, req usecase.TicketRequest) (usecase.TicketResponse, error) {
	apiKey, err := c.resolveAPIKey(ctx)
	if err != nil {
		return usecase.TicketResponse{}, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return usecase.TicketResponse{}, fmt.Errorf("ticketing: marshal request: %w", err)
	}

	httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if reqErr != nil {
		return usecase.TicketResponse{}, fmt.Errorf("ticketing: create request: %w", reqErr)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", apiKey)

	res, doErr := c.resolvedHTTPClient().Do(httpReq)
	if doErr != nil {
		return usecase.TicketResponse{}, fmt.Errorf("ticketing: request failed: %w", doErr)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return usecase.TicketResponse{}, fmt.Errorf("ticketing: read response body: %w", err)
	}
	if !json.Valid(raw) {
		raw, _ = json.Marshal(string(raw))
	}

	return usecase.TicketResponse{StatusCode: res.StatusCode, Body: raw}, nil
}
