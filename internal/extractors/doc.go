// Package extractors turns raw document bytes into plain text.
//
// Each sub-package handles a family of media types and implements
// driven.TextExtractor. Registry dispatches a document to the extractor
// registered for its MIME type; NewDefaultRegistry registers the built-in set.
package extractors
