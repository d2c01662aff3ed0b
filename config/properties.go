package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Properties is a read-only view over loaded configuration keyed by
// dot-separated, case-insensitive paths.
type Properties interface {
	// IsSet reports whether key has a value from any source.
	IsSet(key string) bool
	// Get returns the raw value of key, or nil.
	Get(key string) any
	// GetString returns key converted to a string, or "".
	GetString(key string) string
	// Unmarshal decodes every key under prefix into out.
	Unmarshal(prefix string, out any) error
	// Keys returns the sorted leaf keys under prefix. An empty prefix returns all keys.
	Keys(prefix string) []string
}

// ViperProperties implements Properties over a viper instance.
type ViperProperties struct {
	v *viper.Viper
}

var _ Properties = (*ViperProperties)(nil)

// NewProperties builds Properties from a flat or nested map. Dotted keys are
// expanded into nested paths.
func NewProperties(values map[string]any) *ViperProperties {
	v := viper.New()
	for k, val := range values {
		v.Set(k, val)
	}
	return &ViperProperties{v: v}
}

// FromViper wraps an existing viper instance.
func FromViper(v *viper.Viper) *ViperProperties {
	return &ViperProperties{v: v}
}

// Viper returns the underlying viper instance.
func (p *ViperProperties) Viper() *viper.Viper { return p.v }

func (p *ViperProperties) IsSet(key string) bool { return p.v.IsSet(key) }

func (p *ViperProperties) Get(key string) any { return p.v.Get(key) }

func (p *ViperProperties) GetString(key string) string { return cast.ToString(p.v.Get(key)) }

func (p *ViperProperties) Keys(prefix string) []string {
	pfx := normalizePrefix(prefix)
	keys := make([]string, 0)
	for _, k := range p.v.AllKeys() {
		if strings.HasPrefix(k, pfx) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Unmarshal rebuilds the subtree under prefix from its leaf keys before
// decoding, so values that come from different sources merge instead of
// shadowing each other.
func (p *ViperProperties) Unmarshal(prefix string, out any) error {
	pfx := normalizePrefix(prefix)
	tree := make(map[string]any)
	for _, key := range p.Keys(prefix) {
		setPath(tree, strings.Split(strings.TrimPrefix(key, pfx), "."), p.v.Get(key))
	}
	if err := Decode(tree, out); err != nil {
		return fmt.Errorf("decode %q: %w", prefix, err)
	}
	return nil
}

// UnmarshalAll decodes the whole configuration tree into out.
func (p *ViperProperties) UnmarshalAll(out any) error {
	return p.Unmarshal("", out)
}

// Decode converts input into out using the hooks shared by every loader:
// durations from strings, comma-separated slices and encoding.TextUnmarshaler.
func Decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func normalizePrefix(prefix string) string {
	prefix = strings.ToLower(strings.Trim(prefix, "."))
	if prefix == "" {
		return ""
	}
	return prefix + "."
}

func setPath(tree map[string]any, path []string, value any) {
	node := tree
	for _, part := range path[:len(path)-1] {
		next, ok := node[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[part] = next
		}
		node = next
	}
	node[path[len(path)-1]] = value
}
