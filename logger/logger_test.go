package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "multimongo", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a log line")
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("decode %q: %v", line, err)
	}
	return m
}

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "debug").WithComponent("autoconfig")

	l.Info("bean registered", Fields(FieldBean, "primary_mongo_client", FieldSlot, "primary"))

	m := decodeLine(t, &buf)
	if m["message"] != "bean registered" {
		t.Errorf("message = %v", m["message"])
	}
	if m[FieldComponent] != "autoconfig" {
		t.Errorf("component = %v", m[FieldComponent])
	}
	if m[FieldBean] != "primary_mongo_client" {
		t.Errorf("bean = %v", m[FieldBean])
	}
	if m["service"] != "multimongo" {
		t.Errorf("service = %v", m["service"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "warn")

	l.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	l.Warn("kept")
	if decodeLine(t, &buf)["level"] != "warn" {
		t.Error("expected warn level")
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").WithError(errors.New("boom")).Error("failed")

	if decodeLine(t, &buf)["error"] != "boom" {
		t.Error("expected error field")
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").WithFields(map[string]interface{}{FieldDatabase: "orders"}).Info("x")

	if decodeLine(t, &buf)[FieldDatabase] != "orders" {
		t.Error("expected database field")
	}
}

func TestWithContextAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info")

	if got := l.WithContext(context.Background()); got != l {
		t.Error("logger without span context should be returned unchanged")
	}

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	l.WithContext(ctx).Info("traced")

	m := decodeLine(t, &buf)
	if m[FieldTraceID] != sc.TraceID().String() {
		t.Errorf("trace_id = %v", m[FieldTraceID])
	}
	if m[FieldSpanID] != sc.SpanID().String() {
		t.Errorf("span_id = %v", m[FieldSpanID])
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "console", NoColor: true}, "multimongo", &buf)
	l.Info("hello", Fields("k", "v"))

	out := buf.String()
	if !strings.Contains(out, "[MUL][INF]") {
		t.Errorf("expected service and level tag, got %q", out)
	}
	if !strings.Contains(out, "k:v") {
		t.Errorf("expected field, got %q", out)
	}
}

func TestGlobalLogger(t *testing.T) {
	SetGlobalLogger(nil)
	if GetGlobalLogger() == nil {
		t.Fatal("expected default global logger")
	}

	l := Nop()
	SetGlobalLogger(l)
	if GetGlobalLogger() != l {
		t.Error("SetGlobalLogger did not take effect")
	}

	Init(Config{Level: "debug", Format: "json"})
	if GetGlobalLogger() == l {
		t.Error("Init should replace the global logger")
	}
	SetGlobalLogger(Nop())
}

func TestRegistry(t *testing.T) {
	t.Cleanup(Reset)
	l := Nop()
	Register("engine", l)

	if Get("engine") != l {
		t.Error("expected registered logger")
	}
	if Get("other") == nil {
		t.Error("expected fallback logger")
	}

	Reset()
	if Get("engine") == l {
		t.Error("Reset should drop registrations")
	}
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stdout" || !cfg.Timestamp {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json", Output: "stdout"}, false},
		{"pretty", Config{Level: "debug", Format: "pretty", Output: "stderr"}, false},
		{"bad level", Config{Level: "loud", Format: "json", Output: "stdout"}, true},
		{"bad format", Config{Level: "info", Format: "xml", Output: "stdout"}, true},
		{"bad output", Config{Level: "info", Format: "json", Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFieldHelpers(t *testing.T) {
	f := Fields("a", 1, "b")
	if len(f) != 1 || f["a"] != 1 {
		t.Errorf("Fields = %v", f)
	}

	ef := ErrorFields("ping", errors.New("down"))
	if ef[FieldOperation] != "ping" || ef[FieldError] != "down" {
		t.Errorf("ErrorFields = %v", ef)
	}

	df := DurationFields("connect", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("DurationFields = %v", df)
	}

	sf := SlotFields("secondary", "")
	if _, ok := sf[FieldBean]; ok {
		t.Error("empty bean should be omitted")
	}
	if SlotFields("primary", "primary_mongo_template")[FieldBean] != "primary_mongo_template" {
		t.Error("expected bean field")
	}
}
