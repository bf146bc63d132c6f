// Package anthropic implements generation.Provider with the official
// Anthropic Go SDK.
package anthropic
