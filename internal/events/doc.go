// Package events provides progress events for generation runs.
//
// The orchestrator emits events without knowing which handlers will process
// them, so the CLI can log progress while the HTTP API stays silent.
//
// The primary components are:
// - ProgressEvent: a run-level or word-level progress report
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
// - LogHandler: an EventHandler that writes progress to a structured logger
package events
