// Package resilience provides retry with exponential backoff and a circuit
// breaker. Slot components use Retry for the startup ping and the breaker to
// keep health probes from piling onto a server that is down.
package resilience
