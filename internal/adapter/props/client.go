package props

import (
	"context"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/thushan/llamadeck/internal/core/constants"
	"github.com/thushan/llamadeck/internal/core/domain"
	"github.com/thushan/llamadeck/internal/core/ports"
	"github.com/thushan/llamadeck/internal/logger"
	"github.com/thushan/llamadeck/internal/util"
	"github.com/thushan/llamadeck/internal/version"
)

const (
	MaxResponseSize = 10 * 1024 * 1024 // chat templates can be large

	DefaultMaxIdleConnections = 4
	DefaultIdleConnTimeout    = 60 * time.Second

	opFetch = "failed to fetch server props"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var _ ports.PropsService = (*Client)(nil)

// Client reads GET /props from a llama.cpp server
type Client struct {
	httpClient *http.Client
	logger     *logger.StyledLogger
	endpoint   string
	apiKey     string
}

func NewClient(apiBase, apiKey string, timeout time.Duration, logger *logger.StyledLogger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        DefaultMaxIdleConnections,
				MaxIdleConnsPerHost: DefaultMaxIdleConnections,
				IdleConnTimeout:     DefaultIdleConnTimeout,
			},
		},
		logger:   logger,
		endpoint: util.APIEndpoint(apiBase, constants.PathProps),
		apiKey:   apiKey,
	}
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) Fetch(ctx context.Context) (*domain.ServerProps, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	req.Header.Set(constants.HeaderUserAgent, version.UserAgent())
	if c.apiKey != "" {
		req.Header.Set(constants.HeaderAuthorization, "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{URL: c.endpoint, Err: err}
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewHTTPStatusError(opFetch, c.endpoint, resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, &domain.NetworkError{URL: c.endpoint, Err: err}
	}

	props, err := Decode(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched server props", "endpoint", c.endpoint, "bytes", len(body), "took", time.Since(start))
	return props, nil
}

// Decode parses a /props body, keeping the raw bytes for later queries
func Decode(body []byte) (*domain.ServerProps, error) {
	var props domain.ServerProps
	if err := json.Unmarshal(body, &props); err != nil {
		return nil, &domain.FormatError{Reason: "invalid server props payload", Err: err}
	}
	props.Raw = append([]byte(nil), body...)
	return &props, nil
}
