package domain

// RawDocument represents opaque document bytes before text extraction.
type RawDocument struct {
	// URI is the original location (file path, URL, upload name).
	URI string

	// MIMEType is the media type without parameters (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
