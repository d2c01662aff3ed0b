package validation

import (
	"net"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/kbukum/multimongo/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})
		_ = validate.RegisterValidation("mongouri", isMongoURI)
		_ = validate.RegisterValidation("hostport", isHostPort)
	})
	return validate
}

// Validate checks s against its `validate` tags and returns an AppError
// listing every failing field.
func Validate(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed").WithCause(err)
	}

	c := NewCollector()
	for _, e := range validationErrors {
		c.Add(fieldPath(e.Namespace()), formatValidationError(e))
	}
	return c.Err()
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "gtefield":
		return "must not be less than " + e.Param()
	case "mongouri":
		return "must be a valid mongodb:// or mongodb+srv:// connection string"
	case "hostport":
		return "must be host or host:port"
	default:
		return "is invalid"
	}
}

// isMongoURI parses standard connection strings fully. SRV strings are only
// checked for a host, parsing them would resolve DNS records.
func isMongoURI(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	if rest, ok := strings.CutPrefix(v, connstring.SchemeMongoDBSRV+"://"); ok {
		host, _, _ := strings.Cut(rest, "/")
		if i := strings.LastIndex(host, "@"); i >= 0 {
			host = host[i+1:]
		}
		return host != "" && !strings.ContainsAny(host, ":,")
	}
	_, err := connstring.Parse(v)
	return err == nil
}

func isHostPort(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	if v == "" {
		return false
	}
	if !strings.Contains(v, ":") {
		return true
	}
	_, port, err := net.SplitHostPort(v)
	return err == nil && port != ""
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
