// Package gemini provides an implementation of the generation.Provider interface
// that uses Google's Gemini API for generating vocabulary cards.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the application's domain logic to Google's external Gemini AI service.
// It translates between the application's domain models and the Gemini API
// without exposing the details of the external service to the core application.
//
// Key components:
//
// 1. GeminiGenerator:
//   - Implements the generation.Provider interface
//   - Sends the shared system prompt as a system instruction
//   - Requests a JSON response MIME type
//
// 2. Response Processing:
//   - Concatenates the text parts of the first candidate
//   - Reports safety blocks as generation.ErrContentBlocked
//   - Parses the card JSON with generation.ParseRawCard
//
// 3. Error Handling:
//   - Maps genai.APIError status codes to transient or permanent errors
//   - Leaves retries and fallback to generation.Client
//
// The package depends on Google's google.golang.org/genai client library.
package gemini
