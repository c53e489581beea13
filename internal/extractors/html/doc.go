// Package html provides a TextExtractor for HTML documents.
// It strips tags, scripts and styles and decodes entities.
package html
