package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thushan/llamadeck/internal/core/domain"
	"github.com/thushan/llamadeck/internal/logger"
	"github.com/thushan/llamadeck/internal/version"
)

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, "", 5*time.Second, logger.NewDiscard())
}

func TestUpload(t *testing.T) {
	tests := []struct {
		name         string
		serverBody   string
		expectedPath string
		serverStatus int
		expectFormat bool
		expectStatus bool
	}{
		{
			name:         "path field",
			serverStatus: http.StatusOK,
			serverBody:   `{"path": "/x/y.bin"}`,
			expectedPath: "/x/y.bin",
		},
		{
			name:         "file_path field",
			serverStatus: http.StatusOK,
			serverBody:   `{"file_path": "/a/b.bin"}`,
			expectedPath: "/a/b.bin",
		},
		{
			name:         "path preferred over file_path",
			serverStatus: http.StatusCreated,
			serverBody:   `{"file_path": "/a/b.bin", "path": "/x/y.bin"}`,
			expectedPath: "/x/y.bin",
		},
		{
			name:         "non-string path falls through to file_path",
			serverStatus: http.StatusOK,
			serverBody:   `{"path": 42, "file_path": "/a/b.bin"}`,
			expectedPath: "/a/b.bin",
		},
		{
			name:         "neither field",
			serverStatus: http.StatusOK,
			serverBody:   `{"id": "abc"}`,
			expectFormat: true,
		},
		{
			name:         "invalid json",
			serverStatus: http.StatusOK,
			serverBody:   `{"path": `,
			expectFormat: true,
		},
		{
			name:         "server error",
			serverStatus: http.StatusInternalServerError,
			serverBody:   `{"error": "disk full"}`,
			expectStatus: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v1/upload", r.URL.Path)
				assert.Equal(t, version.UserAgent(), r.Header.Get("User-Agent"))

				file, header, err := r.FormFile("file")
				if assert.NoError(t, err) {
					data, _ := io.ReadAll(file)
					assert.Equal(t, "weights", string(data))
					assert.Equal(t, "model.bin", header.Filename)
				}

				w.WriteHeader(tt.serverStatus)
				_, _ = w.Write([]byte(tt.serverBody))
			}))
			defer server.Close()

			got, err := newTestClient(server.URL).Upload(context.Background(), "model.bin", strings.NewReader("weights"))

			switch {
			case tt.expectFormat:
				var formatErr *domain.FormatError
				require.ErrorAs(t, err, &formatErr)
				assert.ErrorIs(t, err, ErrInvalidResponse)
			case tt.expectStatus:
				var statusErr *domain.HTTPStatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
				assert.Contains(t, err.Error(), "Internal Server Error")
				assert.Contains(t, err.Error(), "failed to upload file")
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.expectedPath, got)
			}
		})
	}
}

func TestUpload_APIKeyAndBasePrefix(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/llama/v1/upload", r.URL.Path)
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"path":"/tmp/u/1"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/llama/", "sekrit", time.Second, logger.NewDiscard())
	got, err := client.Upload(context.Background(), "a.txt", strings.NewReader("hi"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/u/1", got)
}

func TestUpload_OneRequestPerCall(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Upload(context.Background(), "a.txt", strings.NewReader("hi"))
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "upload must not retry")
}

func TestUpload_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(url).Upload(context.Background(), "a.txt", strings.NewReader("hi"))

	var netErr *domain.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, url+"/v1/upload", netErr.URL)
}

func TestUpload_ReaderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"path":"/never"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Upload(context.Background(), "a.txt", io.MultiReader(strings.NewReader("x"), failingReader{}))
	assert.Error(t, err)
}

// slowReader hands out one byte per delay
type slowReader struct {
	data  []byte
	delay time.Duration
}

func (r *slowReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	time.Sleep(r.delay)
	p[0] = r.data[0]
	r.data = r.data[1:]
	return 1, nil
}

func TestUpload_SlowBodyOutlivesTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(file)
		assert.Equal(t, "gguf-bytes", string(data))
		_, _ = w.Write([]byte(`{"path":"/uploads/slow.bin"}`))
	}))
	defer server.Close()

	// ten bytes at 40ms each is well past the 100ms header timeout
	client := NewClient(server.URL, "", 100*time.Millisecond, logger.NewDiscard())
	start := time.Now()
	got, err := client.Upload(context.Background(), "slow.bin", &slowReader{data: []byte("gguf-bytes"), delay: 40 * time.Millisecond})

	require.NoError(t, err)
	assert.Equal(t, "/uploads/slow.bin", got)
	assert.Greater(t, time.Since(start), 100*time.Millisecond)
}

func TestUpload_HeaderTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.ReadAll(r.Body)
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, "", 50*time.Millisecond, logger.NewDiscard())
	_, err := client.Upload(context.Background(), "a.txt", strings.NewReader("hi"))

	var netErr *domain.NetworkError
	require.ErrorAs(t, err, &netErr)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestUploadFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"file_path":"/uploads/` + header.Filename + `"}`))
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	got, err := newTestClient(server.URL).UploadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/notes.txt", got)

	_, err = newTestClient(server.URL).UploadFile(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseUploadResponse(t *testing.T) {
	got, err := ParseUploadResponse([]byte(`{"path":""}`))
	require.NoError(t, err)
	assert.Equal(t, "", got, "an empty string is still a present string")

	_, err = ParseUploadResponse([]byte(`[]`))
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = ParseUploadResponse(nil)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
