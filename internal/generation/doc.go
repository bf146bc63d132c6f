// Package generation defines the boundary between the card pipeline and the
// language model providers behind it.
//
// Provider is the port each adapter in internal/platform implements: one
// request, one attempt, one classified error. Client wraps a Provider with the
// retry policy, per-call timeouts and the optional fall back to MockProvider,
// expressed as a small explicit state machine. BuildPrompt and ParseRawCard
// are shared by every adapter so that providers differ only in how they shape
// the HTTP or SDK call.
package generation
