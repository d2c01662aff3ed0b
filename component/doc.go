// Package component manages the lifecycle of long-lived infrastructure
// pieces such as MongoDB connection slots.
//
// A Registry starts components in registration order, stops them in reverse
// order and aggregates their health.
package component
