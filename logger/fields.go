package logger

import "time"

// Standard field keys.
const (
	FieldComponent     = "component"
	FieldTraceID       = "trace_id"
	FieldSpanID        = "span_id"
	FieldOperation     = "operation"
	FieldError         = "error"
	FieldDuration      = "duration_ms"
	FieldPhase         = "phase"
	FieldSlot          = "slot"
	FieldBean          = "bean"
	FieldConfiguration = "configuration"
	FieldDatabase      = "database"
	FieldCollection    = "collection"
	FieldCommand       = "command"
	FieldHosts         = "hosts"
)

// Fields builds a field map from alternating key-value pairs. A trailing key
// without a value is dropped.
//
//	logger.Info("connected", logger.Fields(logger.FieldSlot, "primary", "hosts", 2))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for a failed operation.
func ErrorFields(op string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
}

// DurationFields creates fields for a timed operation.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldDuration:  d.Milliseconds(),
	}
}

// SlotFields tags a log line with the connection slot and an optional bean name.
func SlotFields(slot, bean string) map[string]interface{} {
	m := map[string]interface{}{FieldSlot: slot}
	if bean != "" {
		m[FieldBean] = bean
	}
	return m
}

// MergeFields merges field maps left to right.
func MergeFields(maps ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
