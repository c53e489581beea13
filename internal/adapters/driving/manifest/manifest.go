// Package manifest reads batch ingestion manifests.
//
// A manifest lists the documents of one batch. TOML, YAML and JSON files
// hold a "sources" array of descriptors plus optional "metadata" applied to
// every source; plain-text files hold one URL or path per line.
package manifest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// Format is a manifest encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Manifest is the decoded file.
type Manifest struct {
	// Metadata is merged into every source; source keys win.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty" toml:"metadata,omitempty"`

	// Sources are the documents to ingest, in order.
	Sources []domain.SourceDescriptor `json:"sources" yaml:"sources" toml:"sources"`
}

// FormatFromPath picks the format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".txt", ".list", "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown manifest extension %q", domain.ErrInvalidInput, filepath.Ext(path))
	}
}

// Load reads a manifest file and returns its sources.
// Relative paths are resolved against the manifest's directory.
func Load(path string) ([]domain.SourceDescriptor, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	srcs, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	base := filepath.Dir(path)
	for i := range srcs {
		if srcs[i].Path != "" && !filepath.IsAbs(srcs[i].Path) {
			srcs[i].Path = filepath.Join(base, srcs[i].Path)
		}
	}
	return srcs, nil
}

// Parse decodes manifest data. An empty manifest is an error.
func Parse(data []byte, format Format) ([]domain.SourceDescriptor, error) {
	var (
		m   Manifest
		err error
	)
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &m)
	case FormatYAML:
		err = yaml.Unmarshal(data, &m)
	case FormatJSON:
		err = parseJSON(data, &m)
	case FormatText:
		m.Sources, err = parseText(data)
	default:
		return nil, fmt.Errorf("%w: unknown manifest format %q", domain.ErrInvalidInput, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if len(m.Sources) == 0 {
		return nil, fmt.Errorf("%w: manifest lists no sources", domain.ErrInvalidInput)
	}

	for i := range m.Sources {
		m.Sources[i].Metadata = merge(m.Metadata, m.Sources[i].Metadata)
	}
	return m.Sources, nil
}

// parseJSON accepts either a manifest object or a bare array of sources.
func parseJSON(data []byte, m *Manifest) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &m.Sources)
	}
	return json.Unmarshal(trimmed, m)
}

// maxLineSize bounds one line of a plain-text manifest.
const maxLineSize = 1 << 20

// schemePrefix matches a URL scheme of two or more characters, so a
// Windows drive letter such as C:\ stays a path.
var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]+:`)

// IsURL reports whether s names a URL rather than a local path.
// Malformed URLs still count so that validation can reject them.
func IsURL(s string) bool {
	return schemePrefix.MatchString(s)
}

func parseText(data []byte) ([]domain.SourceDescriptor, error) {
	var srcs []domain.SourceDescriptor
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if IsURL(line) {
			srcs = append(srcs, domain.SourceDescriptor{URL: line})
		} else {
			srcs = append(srcs, domain.SourceDescriptor{Path: line})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read line: %w", err)
	}
	return srcs, nil
}

func merge(defaults, own map[string]string) map[string]string {
	if len(defaults) == 0 {
		return own
	}
	out := make(map[string]string, len(defaults)+len(own))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range own {
		out[k] = v
	}
	return out
}
