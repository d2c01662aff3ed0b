package condition

import (
	"sync"
	"time"
)

// Kind tells what an Entry was recorded for.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindBean          Kind = "bean"
)

// Entry is the recorded decision for one configuration or bean.
type Entry struct {
	Kind          Kind      `json:"kind" yaml:"kind"`
	Configuration string    `json:"configuration" yaml:"configuration"`
	Bean          string    `json:"bean,omitempty" yaml:"bean,omitempty"`
	Match         bool      `json:"match" yaml:"match"`
	Conditions    []string  `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Outcomes      []Outcome `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`
}

// Report collects evaluation entries in the order they were decided.
type Report struct {
	mu      sync.RWMutex
	entries []Entry
	created time.Time
}

func NewReport() *Report {
	return &Report{created: time.Now()}
}

// Record evaluates conds, stores the entry and returns whether it matched.
func (r *Report) Record(kind Kind, configuration, bean string, ctx Context, conds []Condition) bool {
	ok, outcomes := Evaluate(ctx, conds)
	names := make([]string, len(conds))
	for i, c := range conds {
		names[i] = c.String()
	}
	r.Add(Entry{
		Kind:          kind,
		Configuration: configuration,
		Bean:          bean,
		Match:         ok,
		Conditions:    names,
		Outcomes:      outcomes,
	})
	return ok
}

// Add stores an entry.
func (r *Report) Add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// Entries returns every entry.
func (r *Report) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Positive returns the matched entries.
func (r *Report) Positive() []Entry { return r.filter(true) }

// Negative returns the entries that did not match.
func (r *Report) Negative() []Entry { return r.filter(false) }

func (r *Report) filter(matched bool) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Match == matched {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the configuration entry (bean == "") or bean entry recorded
// last for the given names.
func (r *Report) Find(configuration, bean string) (Entry, bool) {
	entries := r.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Configuration == configuration && entries[i].Bean == bean {
			return entries[i], true
		}
	}
	return Entry{}, false
}

// Created returns when the report was started.
func (r *Report) Created() time.Time { return r.created }
