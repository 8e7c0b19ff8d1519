// Package localize provides display-string lookup with positional
// placeholder substitution. Strings live in an embedded YAML bundle; a
// missing key falls back to the key itself so a stale bundle never blanks
// out the UI.
package localize

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed strings.yaml
var bundleYAML []byte

// Bundle is a loaded key-to-string mapping.
type Bundle struct {
	strings map[string]string
}

// LoadBundle parses a YAML mapping of keys to display strings.
func LoadBundle(data []byte) (*Bundle, error) {
	m := make(map[string]string)
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse string bundle: %w", err)
	}
	return &Bundle{strings: m}, nil
}

// Localize looks up key and substitutes positional {0}, {1}, ... markers
// with args. Unknown keys return the key unchanged.
func (b *Bundle) Localize(key string, args ...any) string {
	s, ok := b.strings[key]
	if !ok {
		s = key
	}
	for i, arg := range args {
		marker := fmt.Sprintf("{%d}", i)
		s = strings.ReplaceAll(s, marker, fmt.Sprint(arg))
	}
	return s
}

var defaultBundle = mustLoadDefault()

func mustLoadDefault() *Bundle {
	b, err := LoadBundle(bundleYAML)
	if err != nil {
		// The embedded bundle is validated by tests; an empty bundle
		// still degrades to key passthrough.
		return &Bundle{strings: map[string]string{}}
	}
	return b
}

// Localize looks up key in the embedded bundle.
func Localize(key string, args ...any) string {
	return defaultBundle.Localize(key, args...)
}
