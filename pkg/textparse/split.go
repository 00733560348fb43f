// Package textparse implements the tolerant, regex-assisted parsers used to read
// Angular component metadata out of TypeScript sources and compiled declaration
// files without a full TypeScript front end.
//
// Every function in this package is total: malformed input produces an empty or
// partial result, never an error or a panic.
package textparse

// closers maps each opening bracket to the closer that pops it.
var closers = map[byte]byte{
	'{': '}',
	'[': ']',
	'<': '>',
}

// CommaSplit splits s on commas that appear at the top nesting level.
//
// Brackets ({}, [] and <>) nest with stack discipline: any opener is pushed and
// only the closer matching the top of the stack pops it. A closer that does not
// match the top is ignored. Double quotes, single quotes and backticks open a
// string span that only the same quote character closes; no bracket is tracked
// inside a string.
//
// Segments are returned untrimmed, in input order. Empty input yields an empty
// slice. A trailing top-level comma does not produce an empty final segment, and
// an unterminated bracket or string simply leaves the rest of the input in the
// last segment.
func CommaSplit(s string) []string {
	parts := make([]string, 0, 4)
	stack := make([]byte, 0, 8)

	var quote byte
	start := 0

	for i := 0; i < len(s); i++ {
		c := s[i]

		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'', '`':
			quote = c
		case '{', '[', '<':
			stack = append(stack, c)
		case '}', ']', '>':
			if n := len(stack); n > 0 && closers[stack[n-1]] == c {
				stack = stack[:n-1]
			}
		case ',':
			if len(stack) == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}

	if start < len(s) {
		parts = append(parts, s[start:])
	}

	return parts
}
