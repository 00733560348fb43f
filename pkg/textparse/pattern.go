package textparse

import "regexp"

// CompiledDeclarationPattern matches the component declaration type emitted into
// the .d.ts files of compiled Angular libraries, e.g.
//
//	static ɵcmp: i0.ɵɵComponentDeclaration<MyComp, "my-comp", never, {}, {}, never, never, true, never>;
//
// The single capture group is the text between the angle brackets.
var CompiledDeclarationPattern = regexp.MustCompile(`(?:\w+\.)?(?:ɵɵ)?ComponentDeclaration<([\s\S]+?)>;`)

// DecoratorDeclarationPattern matches an @Component decorator followed by the
// exported class it decorates. Group 1 is the metadata object text and group 2
// the class identifier.
var DecoratorDeclarationPattern = regexp.MustCompile(`@Component\(([\s\S]+?)\)\s+export\s+class\s+(\w+)`)

// PatternMatches returns the capture groups of every match of re in content, in
// match order. The full-match text is not included.
func PatternMatches(content string, re *regexp.Regexp) [][]string {
	matches := re.FindAllStringSubmatch(content, -1)
	out := make([][]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1:])
	}
	return out
}

// PatternMatch returns the capture groups of the first match, or nil.
func PatternMatch(content string, re *regexp.Regexp) []string {
	m := re.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	return m[1:]
}
