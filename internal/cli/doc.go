// Package cli implements the multimongo command line: report, ping, serve
// and version.
package cli
