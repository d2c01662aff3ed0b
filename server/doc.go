// Package server exposes the operational HTTP surface of a multimongo
// application: health, readiness, the condition report, registered beans
// and the configured MongoDB connections.
//
// Middleware (server/middleware) applies to every route: panic recovery,
// request ids and request logging. Handlers live in server/endpoint and
// are mounted with RegisterEndpoints.
package server
