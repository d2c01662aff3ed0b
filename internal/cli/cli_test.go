package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/multimongo/condition"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--set", "logging.level=disabled"))
	err := cmd.Execute()
	return out.String(), err
}

func TestReportJSON(t *testing.T) {
	out, err := run(t, "report", "-o", "json",
		"--set", "multimongo.primary.uri=mongodb://db1:27017/app",
		"--set", "multimongo.secondary.host=db2",
	)
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	var entries []condition.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	matched := map[string]bool{}
	for _, e := range entries {
		if e.Kind != condition.KindConfiguration {
			t.Errorf("bean entry without --beans: %+v", e)
		}
		matched[e.Configuration] = e.Match
	}
	for name, want := range map[string]bool{
		"primary-mongo":            true,
		"primary-mongo-reactive":   true,
		"secondary-mongo":          true,
		"secondary-mongo-reactive": false,
		"tertiary-mongo":           false,
		"mongo-default":            false,
	} {
		if got, ok := matched[name]; !ok || got != want {
			t.Errorf("%s matched = %v (present %v), want %v", name, got, ok, want)
		}
	}
}

func TestReportYAMLNegativeBeans(t *testing.T) {
	out, err := run(t, "report", "-o", "yaml", "--match", "negative", "--beans",
		"--set", "multimongo.primary.host=db1",
		"--without", "mongo-reactive",
	)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	var entries []condition.Entry
	if err := yaml.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected negative entries")
	}
	for _, e := range entries {
		if e.Match {
			t.Errorf("positive entry in negative report: %+v", e)
		}
	}
}

func TestReportText(t *testing.T) {
	out, err := run(t, "report", "--set", "mongodb.host=legacy")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if !strings.HasPrefix(lines[0], "CONFIGURATION") {
		t.Errorf("header = %q", lines[0])
	}
	found := false
	for _, l := range lines[1:] {
		f := strings.Fields(l)
		if len(f) >= 3 && f[0] == "mongo-default" && f[2] == "true" {
			found = true
		}
	}
	if !found {
		t.Errorf("mongo-default not active:\n%s", out)
	}
}

func TestReportFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
name: reports
multimongo:
  tertiary:
    uri: mongodb://t1:27017,t2:27017/archive?replicaSet=rs0
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "report", "-o", "json", "--config", path)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out, `"configuration": "tertiary-mongo"`) {
		t.Errorf("tertiary missing:\n%s", out)
	}
}

func TestFlagErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad set", []string{"report", "--set", "novalue"}, "expected key=value"},
		{"bad output", []string{"report", "-o", "xml"}, "expected text, json or yaml"},
		{"bad match", []string{"report", "--match", "some"}, "expected all, positive or negative"},
		{"bad capability", []string{"report", "--without", "mongo-sync"}, "unknown capability"},
		{"ping without connections", []string{"ping"}, "no connection is configured"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := run(t, tc.args...)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestPingUnreachable(t *testing.T) {
	out, err := run(t, "ping", "--timeout", "2s",
		"--set", "multimongo.primary.uri=mongodb://127.0.0.1:1/app",
		"--set", "multimongo.primary.server_selection_timeout=200ms",
		"--set", "multimongo.primary.connect_timeout=200ms",
	)
	if err == nil || !strings.Contains(err.Error(), "1 of 1 connections unreachable") {
		t.Errorf("ping err = %v", err)
	}
	if !strings.Contains(out, "primary-mongo") || !strings.Contains(out, "unhealthy") {
		t.Errorf("output:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil || !strings.HasPrefix(out, "dev") {
		t.Errorf("version = %q, %v", out, err)
	}
	out, err = run(t, "version", "-o", "json")
	if err != nil {
		t.Fatal(err)
	}
	var info map[string]any
	if err := json.Unmarshal([]byte(out), &info); err != nil || info["version"] != "dev" {
		t.Errorf("json version = %v, %v", info, err)
	}
}
