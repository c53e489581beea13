// Package fetcher downloads source documents over HTTP into temporary files.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/custodia-labs/ragline/internal/adapters/driven/apierr"
	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
	"github.com/custodia-labs/ragline/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.DocumentFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout   = 60 * time.Second
	DefaultMaxBytes  = 100 << 20
	DefaultUserAgent = "ragline/1.0"
)

// ErrTooLarge is returned when a body exceeds the configured limit.
var ErrTooLarge = errors.New("document exceeds size limit")

// Config holds configuration for the HTTP fetcher.
type Config struct {
	// Timeout bounds a whole request including the body (default: 60s).
	Timeout time.Duration

	// MaxBytes caps the body size (default: 100 MiB).
	MaxBytes int64

	// UserAgent is sent with every request.
	UserAgent string

	// TempDir is where bodies are spooled (default: os.TempDir()).
	TempDir string
}

// Fetcher implements driven.DocumentFetcher with net/http.
type Fetcher struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
	tempDir   string
}

// New creates an HTTP fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		maxBytes:  cfg.MaxBytes,
		userAgent: cfg.UserAgent,
		tempDir:   cfg.TempDir,
	}
}

// Fetch downloads url into a temporary file owned by the returned Download.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*driven.Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrDownload, url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	logger.Debug("fetching %s", url)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDownload, apierr.FromTransport("fetch", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: %w", domain.ErrDownload, apierr.FromStatus(url, resp.StatusCode, body))
	}
	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%w: %s: %w (%d bytes)", domain.ErrDownload, url, ErrTooLarge, resp.ContentLength)
	}

	tmp, err := os.CreateTemp(f.tempDir, "ragline-download-*")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp file: %w", domain.ErrDownload, err)
	}

	n, copyErr := io.Copy(tmp, io.LimitReader(resp.Body, f.maxBytes+1))
	closeErr := tmp.Close()
	dl := &driven.Download{
		URL:         resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Path:        tmp.Name(),
		Size:        n,
	}

	switch {
	case copyErr != nil:
		_ = dl.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrDownload, apierr.FromTransport("fetch", copyErr))
	case closeErr != nil:
		_ = dl.Close()
		return nil, fmt.Errorf("%w: write temp file: %w", domain.ErrDownload, closeErr)
	case n > f.maxBytes:
		_ = dl.Close()
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrDownload, url, ErrTooLarge)
	}

	logger.Debug("fetched %s (%d bytes, %s)", dl.URL, dl.Size, dl.ContentType)
	return dl, nil
}
