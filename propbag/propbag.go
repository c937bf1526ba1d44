// Package propbag implements the flat dotted-key configuration map of
// spec.md §6 ("scene.camera.*", "scene.lights.<name>.*", ...): an untyped
// string-keyed store plus a typed accessor layer that surfaces malformed
// configuration as a ConfigError at the point of first use, rather than
// letting a bad value propagate silently into the renderer.
//
// Grounded on the teacher's scene/tag.go tagged-property record: a flat,
// self-describing set of keyed records rather than a nested config struct
// per feature. Bag plays the same "one flat namespace, many producers and
// consumers" role tag.go's byte-tag stream does for scene commands.
package propbag

import (
	"fmt"
	"strconv"
	"strings"
)

// ConfigError reports a malformed, missing, or conflicting configuration
// value, per spec.md §7 ("bad property / unknown type / undefined
// reference / cyclic texture graph / out-of-range value / conflicting
// flags").
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("propbag: %s", e.Reason)
	}
	return fmt.Sprintf("propbag: %s: %s", e.Key, e.Reason)
}

func errBadValue(key, reason string) error { return &ConfigError{Key: key, Reason: reason} }

// Bag is a flat, dotted-key property store. Every key maps to a list of
// string values (spec.md §6's properties are always string-valued at the
// wire level; typed accessors parse on demand).
type Bag struct {
	values map[string][]string
}

// NewBag returns an empty property bag.
func NewBag() *Bag {
	return &Bag{values: make(map[string][]string)}
}

// Set stores one or more values under key, replacing any existing entry.
func (b *Bag) Set(key string, values ...string) {
	b.values[key] = append([]string(nil), values...)
}

// SetFloat stores a single float64 value under key.
func (b *Bag) SetFloat(key string, v float64) {
	b.Set(key, strconv.FormatFloat(v, 'g', -1, 64))
}

// Has reports whether key is present.
func (b *Bag) Has(key string) bool {
	_, ok := b.values[key]
	return ok
}

// Raw returns the raw string values for key, or nil if absent.
func (b *Bag) Raw(key string) []string { return b.values[key] }

// Keys returns every key with the given dotted prefix, in no particular
// order; used to enumerate "scene.lights.<name>.*"-style groups.
func (b *Bag) Keys(prefix string) []string {
	var out []string
	for k := range b.values {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

// GetString returns the single string value of key, or def if absent.
func (b *Bag) GetString(key, def string) string {
	v, ok := b.values[key]
	if !ok || len(v) == 0 {
		return def
	}
	return v[0]
}

// GetFloat parses the single value of key as a float64.
func (b *Bag) GetFloat(key string, def float64) (float64, error) {
	v, ok := b.values[key]
	if !ok || len(v) == 0 {
		return def, nil
	}
	f, err := strconv.ParseFloat(v[0], 64)
	if err != nil {
		return 0, errBadValue(key, "not a float: "+v[0])
	}
	return f, nil
}

// GetInt parses the single value of key as an int.
func (b *Bag) GetInt(key string, def int) (int, error) {
	v, ok := b.values[key]
	if !ok || len(v) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(v[0])
	if err != nil {
		return 0, errBadValue(key, "not an integer: "+v[0])
	}
	return n, nil
}

// GetBool parses the single value of key as a bool.
func (b *Bag) GetBool(key string, def bool) (bool, error) {
	v, ok := b.values[key]
	if !ok || len(v) == 0 {
		return def, nil
	}
	bv, err := strconv.ParseBool(v[0])
	if err != nil {
		return false, errBadValue(key, "not a bool: "+v[0])
	}
	return bv, nil
}

// GetFloats parses every value of key as a float64, in order.
func (b *Bag) GetFloats(key string) ([]float64, error) {
	v, ok := b.values[key]
	if !ok {
		return nil, nil
	}
	out := make([]float64, len(v))
	for i, s := range v {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errBadValue(key, fmt.Sprintf("element %d not a float: %s", i, s))
		}
		out[i] = f
	}
	return out, nil
}

// GetFloat32s parses every value of key as a float32, in order.
func (b *Bag) GetFloat32s(key string) ([]float32, error) {
	fs, err := b.GetFloats(key)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(fs))
	for i, f := range fs {
		out[i] = float32(f)
	}
	return out, nil
}

// RequireString returns the single string value of key, or a ConfigError if
// the key is absent (spec.md §7's "undefined reference" class).
func (b *Bag) RequireString(key string) (string, error) {
	v, ok := b.values[key]
	if !ok || len(v) == 0 {
		return "", errBadValue(key, "required property is missing")
	}
	return v[0], nil
}

// RequireOneOf parses the single value of key and checks it against allowed,
// the "unknown type" class of ConfigError.
func (b *Bag) RequireOneOf(key string, allowed ...string) (string, error) {
	v, err := b.RequireString(key)
	if err != nil {
		return "", err
	}
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", errBadValue(key, fmt.Sprintf("unknown value %q, want one of %v", v, allowed))
}
