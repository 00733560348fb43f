package importer

import (
	"regexp"
	"strings"
)

var (
	importsArrayPattern = regexp.MustCompile(`imports:\s+\[([\w,\s\n]*?)\],`)
	selectorPattern     = regexp.MustCompile("(selector[:][\\s\\t]*['\"`][\\w,\\-\\s\\n]+?['\"`],?)")
)

// updateWithRegex adds name to the first imports array of content, or inserts
// an imports property after the selector when there is none. It works on the
// text alone and is used when the file cannot be parsed.
func updateWithRegex(content, name string) (string, bool) {
	if strings.Contains(content, "imports:") {
		loc := importsArrayPattern.FindStringSubmatchIndex(content)
		if loc == nil {
			return content, false
		}
		current := content[loc[2]:loc[3]]
		trimmed := strings.TrimSpace(current)
		if trimmed != "" && containsIdentifier(current, name) {
			return content, false
		}

		added := name
		if trimmed != "" {
			added = ", " + name
		}
		replacement := "imports: [" + current + added + "],"
		return content[:loc[0]] + replacement + content[loc[1]:], true
	}

	loc := selectorPattern.FindStringSubmatchIndex(content)
	if loc == nil {
		return content, false
	}
	selector := content[loc[2]:loc[3]]
	if !strings.HasSuffix(selector, ",") {
		selector += ","
	}
	replacement := selector + "\nimports: [" + name + "],"
	return content[:loc[0]] + replacement + content[loc[1]:], true
}

// containsIdentifier reports whether the comma-separated list holds name.
func containsIdentifier(list, name string) bool {
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == name {
			return true
		}
	}
	return false
}
