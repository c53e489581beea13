// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for ingestion and retrieval to function:
//
//   - EmbeddingService: Maps text to fixed-dimension vectors
//   - VectorIndex: Stores (text, vector, metadata) tuples and answers k-NN queries
//   - TextExtractor / ExtractorRegistry: Turns document bytes into plain text
//   - DocumentFetcher: Downloads remote documents
//   - Chunker: Splits text into overlapping windows
//   - RecordStore: Document-level metadata records
//   - PromptStore: Answer prompt templates with a single active slot
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - GenerationService: Answer generation. Without it, search still works but
//     answer returns ErrGenerationUnavailable.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
