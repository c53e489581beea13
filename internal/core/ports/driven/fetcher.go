package driven

import (
	"context"
	"os"
)

// DocumentFetcher downloads remote documents.
type DocumentFetcher interface {
	// Fetch retrieves the resource at url.
	// Failures (transport errors, non-2xx status) are wrapped with domain.ErrDownload.
	// The caller must Close the returned Download.
	Fetch(ctx context.Context, url string) (*Download, error)
}

// Download is a fetched resource spooled to a temporary file.
type Download struct {
	// URL is the final URL after redirects.
	URL string

	// ContentType is the declared Content-Type header, verbatim.
	ContentType string

	// Path is the temporary file holding the body.
	Path string

	// Size is the body length in bytes.
	Size int64
}

// ReadAll returns the downloaded bytes.
func (d *Download) ReadAll() ([]byte, error) {
	return os.ReadFile(d.Path)
}

// Close removes the temporary file. It is safe to call more than once.
func (d *Download) Close() error {
	if d == nil || d.Path == "" {
		return nil
	}
	err := os.Remove(d.Path)
	d.Path = ""
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
