// Package api handles incoming HTTP requests, request validation and
// response formatting. It adapts HTTP to the generation and deck services
// and maps their errors to status codes with sanitized messages.
package api
