package bundler

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/thushan/llamadeck/internal/logger"
	"github.com/thushan/llamadeck/pkg/format"
)

// gzip header offsets, MTIME is 4..7 and OS is 9
var volatileHeaderBytes = []int{4, 5, 6, 7, 9}

type Options struct {
	IndexPath   string
	OutputPath  string
	FaviconPath string
	// Banner is prepended to the HTML followed by a newline, even when empty
	Banner        string
	MaxBundleSize int64
	MaxAssetSize  int64
}

// Result describes one run. Err holds a failure that was logged but not
// returned, the build carries on without the bundle in that case.
type Result struct {
	Err             error
	OutputPath      string
	RawSize         int
	CompressedSize  int
	Took            time.Duration
	Skipped         bool
	FaviconInlined  bool
	FaviconReplaced int
}

// BundleSizeError rejects a compressed bundle over the configured limit
type BundleSizeError struct {
	Size  int64
	Limit int64
}

func (e *BundleSizeError) Error() string {
	return fmt.Sprintf("bundle size is too large (%d KB)", format.KiBCeil(e.Size))
}

// Bundler turns the built HTML shell into a single deterministic
// index.html.gz that the server binary embeds
type Bundler struct {
	logger *logger.StyledLogger
	opts   Options
}

func New(opts Options, logger *logger.StyledLogger) *Bundler {
	return &Bundler{opts: opts, logger: logger}
}

func (b *Bundler) Options() Options {
	return b.opts
}

// Run produces the bundle. Only a size limit violation is returned as an
// error, any other failure is logged and recorded in Result.Err.
func (b *Bundler) Run() (*Result, error) {
	start := time.Now()
	result := &Result{OutputPath: b.opts.OutputPath}

	raw, err := os.ReadFile(b.opts.IndexPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			b.logger.Debug("No HTML shell to bundle", "path", b.opts.IndexPath)
			result.Skipped = true
			return result, nil
		}
		return b.swallow(result, fmt.Errorf("read %s: %w", b.opts.IndexPath, err)), nil
	}

	content, replaced, inlined := b.inlineFavicon(raw)
	result.FaviconInlined = inlined
	result.FaviconReplaced = replaced

	content = bytes.ReplaceAll(content, []byte("\r"), nil)
	content = append([]byte(b.opts.Banner+"\n"), content...)
	result.RawSize = len(content)

	compressed, err := Compress(content)
	if err != nil {
		return b.swallow(result, err), nil
	}
	result.CompressedSize = len(compressed)

	if limit := b.opts.MaxBundleSize; limit > 0 && int64(len(compressed)) > limit {
		sizeErr := &BundleSizeError{Size: int64(len(compressed)), Limit: limit}
		b.logger.Error("Failed to create gzip file", "error", sizeErr, "limit", format.Bytes(limit))
		return result, sizeErr
	}

	if err := os.WriteFile(b.opts.OutputPath, compressed, 0o644); err != nil {
		return b.swallow(result, fmt.Errorf("write %s: %w", b.opts.OutputPath, err)), nil
	}

	result.Took = time.Since(start)
	b.logger.InfoWithPath("Created", b.opts.OutputPath,
		"size", format.Bytes(int64(result.CompressedSize)),
		"ratio", format.Ratio(int64(result.CompressedSize), int64(result.RawSize)),
		"took", format.Duration(result.Took))
	return result, nil
}

func (b *Bundler) swallow(result *Result, err error) *Result {
	b.logger.Error("Failed to create gzip file", "error", err)
	result.Err = err
	return result
}

// inlineFavicon replaces every href ending in the favicon's file name with a
// base64 data URL. A missing favicon leaves the HTML untouched.
func (b *Bundler) inlineFavicon(content []byte) ([]byte, int, bool) {
	if b.opts.FaviconPath == "" {
		return content, 0, false
	}

	favicon, err := os.ReadFile(b.opts.FaviconPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			b.logger.WarnWithPath("Unable to read favicon", b.opts.FaviconPath, "error", err)
		}
		return content, 0, false
	}

	if limit := b.opts.MaxAssetSize; limit > 0 && int64(len(favicon)) > limit {
		b.logger.WarnWithPath("Favicon is larger than the asset limit, inlining anyway", b.opts.FaviconPath,
			"size", format.Bytes(int64(len(favicon))), "limit", format.Bytes(limit))
	}

	name := filepath.Base(b.opts.FaviconPath)
	pattern := regexp.MustCompile(`href="[^"]*` + regexp.QuoteMeta(name) + `"`)
	replacement := []byte(`href="` + DataURL(name, favicon) + `"`)

	replaced := len(pattern.FindAllIndex(content, -1))
	if replaced == 0 {
		return content, 0, false
	}
	content = pattern.ReplaceAllLiteral(content, replacement)

	b.logger.InfoWithCount("Inlined "+name+" as base64 data URL", replaced)
	return content, replaced, true
}

// DataURL encodes data as a base64 data URL, typed from name's extension
func DataURL(name string, data []byte) string {
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	// svg resolves to "image/svg+xml" but some platforms add a charset
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mediaType
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Compress gzips content at maximum compression and zeroes the modification
// time and OS header fields so identical input gives identical output
func Compress(content []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(content); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}

	out := buf.Bytes()
	for _, i := range volatileHeaderBytes {
		out[i] = 0
	}
	return out, nil
}
