// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The EmbeddingOrchestrator is the only component that runs work
// concurrently; ingestion processes documents one at a time.
package services
