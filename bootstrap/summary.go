package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/multimongo/autoconfig"
	"github.com/kbukum/multimongo/component"
	"github.com/kbukum/multimongo/condition"
)

// Summary prints what the application started with.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a summary that prints to stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: os.Stdout}
}

// SetOutput redirects the summary.
func (s *Summary) SetOutput(w io.Writer) { s.out = w }

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) { s.startupDuration = d }

// Display prints connections, auto-configuration counts and live health.
// Either argument may be nil.
func (s *Summary) Display(ctx context.Context, registry *component.Registry, engine *autoconfig.Engine) {
	w := s.out
	fmt.Fprintf(w, "\n🚀 %s v%s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	var comps []component.Component
	if registry != nil {
		comps = registry.All()
	}

	fmt.Fprintf(w, "\n📊 Components\n")
	if len(comps) == 0 {
		fmt.Fprintf(w, "   └── none configured\n")
	}
	for i, c := range comps {
		line := c.Name()
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			line = fmt.Sprintf("%s: %s %s", c.Name(), desc.Type, desc.Details)
		}
		fmt.Fprintf(w, "   %s %s\n", branch(i, len(comps)), line)
	}

	if engine != nil {
		report := engine.Report()
		fmt.Fprintf(w, "\n⚙️  Auto-configuration\n")
		fmt.Fprintf(w, "   ├── configurations: %d matched, %d skipped\n",
			countKind(report.Positive()), countKind(report.Negative()))
		fmt.Fprintf(w, "   └── beans: %d\n", len(engine.Beans()))
	}

	if registry != nil {
		results := registry.HealthAll(ctx)
		if len(results) > 0 {
			fmt.Fprintf(w, "\n🏥 Health Check\n")
			for i, h := range results {
				msg := ""
				if h.Message != "" {
					msg = " - " + h.Message
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n", branch(i, len(results)), healthIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
			}
		}
	}
	fmt.Fprintln(w)
}

func countKind(entries []condition.Entry) int {
	n := 0
	for _, e := range entries {
		if e.Kind == condition.KindConfiguration {
			n++
		}
	}
	return n
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
