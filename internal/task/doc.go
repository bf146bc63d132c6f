// Package task manages in-process work queuing and execution for a generation
// run. A TaskQueue feeds a bounded WorkerPool; each WordGenerationTask calls
// the model client and the card validator for one distinct word and keeps
// its terminal outcome for the orchestrator to collect.
package task
