// Package service contains the application use cases that sit between the
// delivery mechanisms (CLI and HTTP API) and the domain.
//
// Key components:
//
// 1. Orchestrator:
//   - Normalizes and deduplicates a word list through a run-scoped cache
//   - Dispatches one generation task per distinct word onto a bounded worker pool
//   - Returns outcomes in input order together with a RunSummary
//
// 2. DeckService:
//   - Builds a deck from the successes of a run and attaches audio references
//   - Encodes it through the export package to a writer or a file
//
// Services receive their dependencies through constructor injection and
// report expected conditions with the sentinel errors in errors.go.
package service
