package textparse

import (
	"regexp"
	"strings"
)

// Kind identifies which variant of Value is populated.
type Kind int

const (
	// KindString is a scalar; Value.Str holds it with one pair of quotes removed.
	KindString Kind = iota
	// KindArray is a flat list of scalars in Value.Array.
	KindArray
	// KindObject is a key/value mapping in Value.Object.
	KindObject
)

// Value is the tagged result of ParseAny: a string, a flat array of strings or a
// nested object. Only the field that matches Kind is meaningful.
type Value struct {
	Kind   Kind
	Str    string
	Array  []string
	Object map[string]Value
}

// StringValue wraps s as a KindString value.
func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// AsString returns the scalar for string values and "" otherwise.
func (v Value) AsString() string {
	if v.Kind != KindString {
		return ""
	}
	return v.Str
}

// AsArray returns the elements of array values. A string value is promoted to a
// single-element list so callers can treat `'x'` and `['x']` alike.
func (v Value) AsArray() []string {
	switch v.Kind {
	case KindArray:
		return v.Array
	case KindString:
		if v.Str == "" {
			return nil
		}
		return []string{v.Str}
	default:
		return nil
	}
}

// Normalizer rewrites raw object text before it is parsed, typically to map a
// dialect's member separator onto commas.
type Normalizer func(string) string

// SemicolonsToCommas is the Normalizer for compiled declaration files, whose
// object types separate members with ';'.
func SemicolonsToCommas(s string) string {
	return strings.ReplaceAll(s, ";", ",")
}

var danglingComma = regexp.MustCompile(`,\s*}`)

// IsParsableArray reports whether s is bracketed by '[' and ']'.
func IsParsableArray(s string) bool {
	return len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']'
}

// IsParsableObject reports whether s is bracketed by '{' and '}'.
func IsParsableObject(s string) bool {
	return len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}'
}

// IsParsableString reports whether s starts and ends with the same quote
// character.
func IsParsableString(s string) bool {
	if len(s) < 2 {
		return false
	}
	q := s[0]
	return (q == '"' || q == '\'' || q == '`') && s[len(s)-1] == q
}

// ParseString trims s and strips one matching pair of surrounding quotes.
func ParseString(s string) string {
	t := strings.TrimSpace(s)
	if IsParsableString(t) {
		return t[1 : len(t)-1]
	}
	return t
}

// ParseArray parses a flat `[a, 'b', "c"]` literal into its trimmed, unquoted
// elements. Empty elements are dropped and nested collections are kept as raw
// text. Input that is not an array literal yields an empty slice.
func ParseArray(s string) []string {
	t := strings.TrimSpace(s)
	out := make([]string, 0)
	if !IsParsableArray(t) {
		return out
	}

	for _, part := range CommaSplit(t[1 : len(t)-1]) {
		if elem := ParseString(part); elem != "" {
			out = append(out, elem)
		}
	}
	return out
}

// ParseObject parses a loose object literal into a map. Keys may be quoted or
// bare; each pair is split on its first ':'. Values are classified as arrays,
// objects (parsed recursively with the same normalizer) or strings. Pairs with
// an empty key or no ':' are skipped. Input that is not an object literal
// yields an empty map.
func ParseObject(s string, normalize Normalizer) map[string]Value {
	t := strings.TrimSpace(s)
	out := make(map[string]Value)
	if !IsParsableObject(t) {
		return out
	}

	if normalize != nil {
		t = strings.TrimSpace(normalize(t))
	}
	t = danglingComma.ReplaceAllString(t, "}")
	if !IsParsableObject(t) {
		return out
	}

	for _, pair := range CommaSplit(t[1 : len(t)-1]) {
		idx := strings.IndexByte(pair, ':')
		if idx < 0 {
			continue
		}
		key := ParseString(pair[:idx])
		if key == "" {
			continue
		}
		out[key] = parseValue(pair[idx+1:], normalize)
	}
	return out
}

// ParseAny classifies s as an object, array or string literal and parses it
// accordingly. Empty input is an empty string value.
func ParseAny(s string) Value {
	return parseValue(s, nil)
}

func parseValue(s string, normalize Normalizer) Value {
	t := strings.TrimSpace(s)
	switch {
	case IsParsableObject(t):
		return Value{Kind: KindObject, Object: ParseObject(t, normalize)}
	case IsParsableArray(t):
		return Value{Kind: KindArray, Array: ParseArray(t)}
	default:
		return StringValue(ParseString(t))
	}
}
