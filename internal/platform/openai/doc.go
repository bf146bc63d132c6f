// Package openai implements generation.Provider against OpenAI-compatible
// chat completions endpoints. It serves both OpenAI and Zhipu GLM, whose
// APIs share the request and response shapes.
package openai
