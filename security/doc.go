// Package security builds TLS client configuration for MongoDB connections.
package security
