package validation

import (
	"fmt"
	"strings"

	"github.com/kbukum/multimongo/errors"
)

// FieldError is a single failing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Collector gathers field errors for rules that struct tags cannot express.
type Collector struct {
	errors []FieldError
}

func NewCollector() *Collector {
	return &Collector{}
}

// Add records a failing field.
func (c *Collector) Add(field, message string) {
	c.errors = append(c.errors, FieldError{Field: field, Message: message})
}

// Check records a failing field when ok is false.
func (c *Collector) Check(ok bool, field, message string) {
	if !ok {
		c.Add(field, message)
	}
}

// Merge folds the field errors of err into the collector. Errors that carry
// no field list are recorded under field.
func (c *Collector) Merge(field string, err error) {
	if err == nil {
		return
	}
	if appErr, ok := errors.AsAppError(err); ok {
		if fields, ok := appErr.Details["fields"].([]FieldError); ok {
			for _, f := range fields {
				c.Add(join(field, f.Field), f.Message)
			}
			return
		}
	}
	c.Add(field, err.Error())
}

func (c *Collector) HasErrors() bool { return len(c.errors) > 0 }

func (c *Collector) Errors() []FieldError { return c.errors }

// Err returns nil or an AppError listing every field error.
func (c *Collector) Err() error {
	if !c.HasErrors() {
		return nil
	}
	messages := make([]string, len(c.errors))
	for i, e := range c.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return errors.Validation(strings.Join(messages, "; ")).
		WithDetail("fields", c.errors)
}

func join(prefix, field string) string {
	if prefix == "" {
		return field
	}
	if field == "" {
		return prefix
	}
	return prefix + "." + field
}
