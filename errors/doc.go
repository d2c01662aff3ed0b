// Package errors provides the structured error type used across multimongo.
//
// AppError carries a machine-readable code, a retryable flag and an HTTP
// status so the same value can drive retry decisions, log fields and the
// JSON bodies served by the endpoint package.
package errors
