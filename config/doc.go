// Package config loads externalized configuration for multimongo.
//
// Values come from a YAML file, a .env file and the process environment.
// Environment variables are bound to every nested key variant, so
// MULTIMONGO_PRIMARY_URI sets multimongo.primary.uri.
//
// Two views are offered over the same loaded values. Properties answers
// presence and value questions for single keys, which is what activation
// conditions need, and decodes a key prefix into a struct. LoadConfig
// decodes the whole tree into a typed service configuration.
//
//	props, err := config.LoadProperties("multimongo")
//	if props.IsSet("multimongo.primary.uri") { ... }
package config
