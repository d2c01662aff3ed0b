// Package endpoint provides the Gin handlers of the operational HTTP
// surface. Success bodies are wrapped in {"data": ...}; failures use the
// error envelope of the errors package.
package endpoint
