package domain

import "strings"

// DefaultContextDelimiter separates retrieved chunk texts in a context string.
const DefaultContextDelimiter = "\n\n---\n\n"

// Answer is the output of the retrieval/answer pipeline.
type Answer struct {
	// Query is the trimmed question.
	Query string `json:"query"`

	// Results are the ranked chunks used as context.
	Results []SearchResult `json:"results"`

	// Context is the assembled context string passed to the generator.
	Context string `json:"-"`

	// Answer is the generator output, verbatim.
	Answer string `json:"answer"`
}

// BuildContext concatenates result texts in ranked order.
func BuildContext(results []SearchResult, delimiter string) string {
	texts := make([]string, len(results))
	for i := range results {
		texts[i] = results[i].Text
	}
	return strings.Join(texts, delimiter)
}
