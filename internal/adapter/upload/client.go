package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"

	"github.com/thushan/llamadeck/internal/core/constants"
	"github.com/thushan/llamadeck/internal/core/domain"
	"github.com/thushan/llamadeck/internal/core/ports"
	"github.com/thushan/llamadeck/internal/logger"
	"github.com/thushan/llamadeck/internal/util"
	"github.com/thushan/llamadeck/internal/version"
)

const (
	// upload responses only carry a path, anything bigger is not ours
	MaxResponseSize = 1 * 1024 * 1024

	opUpload = "failed to upload file"
)

// ErrInvalidResponse is wrapped by every FormatError the client returns
var ErrInvalidResponse = errors.New("invalid response format from upload endpoint")

// pathFields are checked in order, first string wins
var pathFields = []string{"path", "file_path"}

var _ ports.FileUploader = (*Client)(nil)

// Client posts files to the server's upload endpoint. One request per call,
// no retries, no caching.
type Client struct {
	httpClient *http.Client
	logger     *logger.StyledLogger
	endpoint   string
	apiKey     string
}

// NewClient bounds only the wait for response headers by timeout, the body
// streams for as long as ctx allows
func NewClient(apiBase, apiKey string, timeout time.Duration, logger *logger.StyledLogger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout

	return &Client{
		httpClient: &http.Client{Transport: transport},
		logger:     logger,
		endpoint:   util.APIEndpoint(apiBase, constants.PathUpload),
		apiKey:     apiKey,
	}
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// UploadFile opens path and uploads it under its base name
func (c *Client) UploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return c.Upload(ctx, filepath.Base(path), f)
}

// Upload streams r as the multipart "file" field and returns the path the
// server assigned to it
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		part, err := form.CreateFormFile(constants.UploadFormField, filename)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = form.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		return "", err
	}
	req.Header.Set(constants.ContentTypeHeader, form.FormDataContentType())
	req.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	req.Header.Set(constants.HeaderUserAgent, version.UserAgent())
	if c.apiKey != "" {
		req.Header.Set(constants.HeaderAuthorization, "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	// the server may answer before draining the body, release the writer either way
	_ = pr.Close()
	if err != nil {
		return "", &domain.NetworkError{URL: c.endpoint, Err: err}
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", domain.NewHTTPStatusError(opUpload, c.endpoint, resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return "", &domain.NetworkError{URL: c.endpoint, Err: err}
	}

	serverPath, err := ParseUploadResponse(body)
	if err != nil {
		return "", err
	}

	c.logger.Debug("Uploaded file", "file", filename, "path", serverPath, "took", time.Since(start))
	return serverPath, nil
}

// ParseUploadResponse extracts the canonical server path from an upload
// response body
func ParseUploadResponse(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", &domain.FormatError{Reason: "upload response is not valid JSON", Err: ErrInvalidResponse}
	}

	for _, field := range pathFields {
		if res := gjson.GetBytes(body, field); res.Type == gjson.String {
			return res.Str, nil
		}
	}
	return "", &domain.FormatError{Reason: "upload response has no path or file_path", Err: ErrInvalidResponse}
}
