package textparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommaSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", []string{}},
		{"no comma", "abc", []string{"abc"}},
		{"flat", "a,b,c", []string{"a", "b", "c"}},
		{"untrimmed", "a, b ,c", []string{"a", " b ", "c"}},
		{"nested braces", "{a,b},c", []string{"{a,b}", "c"}},
		{"nested brackets", "[a,[b,c]],d", []string{"[a,[b,c]]", "d"}},
		{"angle brackets", "Map<K,V>,x", []string{"Map<K,V>", "x"}},
		{"double quotes", `"a,b",c`, []string{`"a,b"`, "c"}},
		{"single quotes", `'a,b',c`, []string{`'a,b'`, "c"}},
		{"backticks", "`a,b`,c", []string{"`a,b`", "c"}},
		{"bracket inside string", `"{",a`, []string{`"{"`, "a"}},
		{"mismatched closer ignored", "{a]b,c},d", []string{"{a]b,c}", "d"}},
		{"trailing comma", "a,b,", []string{"a", "b"}},
		{"empty middle segment", "a,,b", []string{"a", "", "b"}},
		{"unterminated bracket", "a,{b,c", []string{"a", "{b,c"}},
		{"unterminated string", `a,"b,c`, []string{"a", `"b,c`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommaSplit(tt.input))
		})
	}
}

func TestCommaSplit_RoundTrip(t *testing.T) {
	inputs := []string{
		`MyComp, "my-comp", never, { "a": "a"; }, {}, never, ["*"], true, never, false`,
		"[a, {b: [c, d]}], <T, U>, 'x, y'",
		"single",
	}
	for _, in := range inputs {
		assert.Equal(t, in, strings.Join(CommaSplit(in), ","))
	}
}

func TestIsParsable(t *testing.T) {
	assert.True(t, IsParsableArray("[]"))
	assert.True(t, IsParsableArray("[a, b]"))
	assert.False(t, IsParsableArray("["))
	assert.False(t, IsParsableArray("a]"))

	assert.True(t, IsParsableObject("{}"))
	assert.False(t, IsParsableObject("{a"))

	assert.True(t, IsParsableString(`"x"`))
	assert.True(t, IsParsableString(`'x'`))
	assert.True(t, IsParsableString("`x`"))
	assert.False(t, IsParsableString(`"x'`))
	assert.False(t, IsParsableString(`"`))
}

func TestParseString(t *testing.T) {
	assert.Equal(t, "app-foo", ParseString(`  'app-foo' `))
	assert.Equal(t, "app-foo", ParseString(`"app-foo"`))
	assert.Equal(t, "true", ParseString("true"))
	assert.Equal(t, `'a"`, ParseString(`'a"`))
	assert.Equal(t, "", ParseString(""))
	assert.Equal(t, "", ParseString(`""`))
}

func TestParseArray(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, ParseArray("[a, b, c]"))
	assert.Equal(t, []string{"a", "b", "c"}, ParseArray(`['a', "b", c]`))
	assert.Equal(t, []string{"*"}, ParseArray(`["*"]`))
	assert.Equal(t, []string{}, ParseArray("[]"))
	assert.Equal(t, []string{"a"}, ParseArray("[a, , ]"))
	assert.Equal(t, []string{"x", "{a: 1, b: 2}"}, ParseArray("[x, {a: 1, b: 2}]"))
	assert.Equal(t, []string{}, ParseArray("never"))
	assert.Equal(t, []string{}, ParseArray(""))
}

func TestParseObject(t *testing.T) {
	t.Run("compiled dialect", func(t *testing.T) {
		in := `{ "value": { "alias": "value"; "required": true; }; "label": "label"; }`
		got := ParseObject(in, SemicolonsToCommas)

		require.Len(t, got, 2)
		require.Equal(t, KindObject, got["value"].Kind)
		assert.Equal(t, "value", got["value"].Object["alias"].AsString())
		assert.Equal(t, "true", got["value"].Object["required"].AsString())
		assert.Equal(t, KindString, got["label"].Kind)
		assert.Equal(t, "label", got["label"].AsString())
	})

	t.Run("decorator dialect", func(t *testing.T) {
		in := `{
			selector: 'app-foo-bar, foo-bar',
			standalone: true,
			imports: [CommonModule, RouterModule],
			templateUrl: './foo-bar.component.html',
		}`
		got := ParseObject(in, nil)

		assert.Equal(t, "app-foo-bar, foo-bar", got["selector"].AsString())
		assert.Equal(t, "true", got["standalone"].AsString())
		assert.Equal(t, []string{"CommonModule", "RouterModule"}, got["imports"].Array)
		assert.Equal(t, "./foo-bar.component.html", got["templateUrl"].AsString())
	})

	t.Run("value with colon", func(t *testing.T) {
		got := ParseObject(`{ url: 'http://x' }`, nil)
		assert.Equal(t, "http://x", got["url"].AsString())
	})

	t.Run("empty keys and bare words skipped", func(t *testing.T) {
		got := ParseObject(`{ '': 1, lonely, a: 2 }`, nil)
		assert.Equal(t, map[string]Value{"a": StringValue("2")}, got)
	})

	t.Run("not an object", func(t *testing.T) {
		assert.Empty(t, ParseObject("never", SemicolonsToCommas))
		assert.Empty(t, ParseObject("", nil))
		assert.NotNil(t, ParseObject("", nil))
	})
}

func TestParseAny(t *testing.T) {
	assert.Equal(t, KindObject, ParseAny("{a: 1}").Kind)
	assert.Equal(t, KindArray, ParseAny("[1]").Kind)

	v := ParseAny(" 'x' ")
	assert.Equal(t, KindString, v.Kind)
	assert.Equal(t, "x", v.Str)

	assert.Equal(t, StringValue(""), ParseAny(""))
}

func TestValueAsArray(t *testing.T) {
	assert.Equal(t, []string{"x"}, StringValue("x").AsArray())
	assert.Nil(t, StringValue("").AsArray())
	assert.Equal(t, []string{"a"}, Value{Kind: KindArray, Array: []string{"a"}}.AsArray())
	assert.Nil(t, Value{Kind: KindObject}.AsArray())
	assert.Equal(t, "", Value{Kind: KindArray}.AsString())
}

func TestPatternMatches_Compiled(t *testing.T) {
	content := `import * as i0 from "@angular/core";
export declare class MyComp {
    static ɵfac: i0.ɵɵFactoryDeclaration<MyComp, never>;
    static ɵcmp: i0.ɵɵComponentDeclaration<MyComp, "my-comp", never, {}, {}, never, never, true, never>;
}
export declare class Other {
    static ɵcmp: i0.ɵɵComponentDeclaration<Other, "other-comp", never, {}, {}, never, never, false, never>;
}`
	matches := PatternMatches(content, CompiledDeclarationPattern)
	require.Len(t, matches, 2)
	assert.Equal(t, `MyComp, "my-comp", never, {}, {}, never, never, true, never`, matches[0][0])
	assert.True(t, strings.HasPrefix(matches[1][0], "Other,"))
}

func TestPatternMatches_Decorator(t *testing.T) {
	content := `import { Component } from '@angular/core';

@Component({
  selector: 'app-foo-bar',
  standalone: true,
})
export class FooBarComponent {}
`
	groups := PatternMatch(content, DecoratorDeclarationPattern)
	require.Len(t, groups, 2)
	assert.Equal(t, "FooBarComponent", groups[1])
	assert.Contains(t, groups[0], "selector: 'app-foo-bar'")

	assert.Nil(t, PatternMatch("no components here", DecoratorDeclarationPattern))
	assert.Empty(t, PatternMatches("", CompiledDeclarationPattern))
}
