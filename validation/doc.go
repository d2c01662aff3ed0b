// Package validation validates configuration structs.
//
// Struct tags are checked with go-playground/validator; field names in
// messages follow the mapstructure tag so they match the configuration keys
// a user wrote. Cross-field rules are collected with Collector.
//
//	type SlotConfig struct {
//	    URI string `mapstructure:"uri" validate:"omitempty,mongouri"`
//	}
//	err := validation.Validate(cfg)
package validation
