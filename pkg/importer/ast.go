package importer

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// hostDecorators are the decorators whose metadata object carries an imports
// array.
var hostDecorators = map[string]bool{
	"Component": true,
	"NgModule":  true,
}

// insertion is a single text insertion at a byte offset.
type insertion struct {
	offset int
	text   string
}

// planInsertion locates the metadata object of the host decorator and returns
// the insertion that adds name to its imports array. It returns (nil, true)
// when name is already listed and (nil, false) when no decorator object was
// found.
//
// The decorator attached to targetClass is preferred; when targetClass is
// empty or not found the first Component or NgModule decorator is used.
func planInsertion(root *ts.Node, src []byte, name, targetClass string) (*insertion, bool) {
	obj := findMetadataObject(root, src, targetClass)
	if obj == nil {
		return nil, false
	}

	if imports := findPair(obj, src, "imports"); imports != nil {
		value := imports.ChildByFieldName("value")
		if value == nil || value.Kind() != "array" {
			return nil, false
		}
		return planArrayInsertion(value, src, name), true
	}

	entry := "imports: [" + name + "],"
	if selector := findPair(obj, src, "selector"); selector != nil {
		indent := lineIndent(src, int(selector.StartByte()))
		if next := selector.NextSibling(); next != nil && next.Kind() == "," {
			return &insertion{offset: int(next.EndByte()), text: "\n" + indent + entry}, true
		}
		return &insertion{offset: int(selector.EndByte()), text: ",\n" + indent + entry}, true
	}

	// No selector (an NgModule): open the object with the new property.
	indent := "  "
	if obj.NamedChildCount() > 0 {
		indent = lineIndent(src, int(obj.NamedChild(0).StartByte()))
	}
	return &insertion{offset: int(obj.StartByte()) + 1, text: "\n" + indent + entry}, true
}

func planArrayInsertion(array *ts.Node, src []byte, name string) *insertion {
	count := array.NamedChildCount()
	for i := uint(0); i < count; i++ {
		elem := array.NamedChild(i)
		if elem.Kind() == "comment" {
			continue
		}
		if strings.TrimSpace(elem.Utf8Text(src)) == name {
			return nil
		}
	}

	var last *ts.Node
	for i := int(count) - 1; i >= 0; i-- {
		if n := array.NamedChild(uint(i)); n.Kind() != "comment" {
			last = n
			break
		}
	}
	if last == nil {
		return &insertion{offset: int(array.StartByte()) + 1, text: name}
	}
	return &insertion{offset: int(last.EndByte()), text: ", " + name}
}

// findMetadataObject returns the object literal passed to the host decorator.
func findMetadataObject(root *ts.Node, src []byte, targetClass string) *ts.Node {
	var first, target *ts.Node
	walk(root, func(n *ts.Node) bool {
		if n.Kind() != "decorator" {
			return true
		}
		obj := decoratorObject(n, src)
		if obj == nil {
			return false
		}
		if first == nil {
			first = obj
		}
		if targetClass != "" && decoratedClassName(n, src) == targetClass {
			target = obj
		}
		return false
	})
	if target != nil {
		return target
	}
	return first
}

// decoratorObject returns the first argument of @Component(...)/@NgModule(...)
// when it is an object literal.
func decoratorObject(decorator *ts.Node, src []byte) *ts.Node {
	for i := uint(0); i < decorator.NamedChildCount(); i++ {
		call := decorator.NamedChild(i)
		if call.Kind() != "call_expression" {
			continue
		}
		fn := call.ChildByFieldName("function")
		if fn == nil || !hostDecorators[fn.Utf8Text(src)] {
			return nil
		}
		args := call.ChildByFieldName("arguments")
		if args == nil || args.NamedChildCount() == 0 {
			return nil
		}
		if obj := args.NamedChild(0); obj.Kind() == "object" {
			return obj
		}
		return nil
	}
	return nil
}

// decoratedClassName returns the name of the class a decorator applies to.
// Decorators on an exported class hang off the export statement.
func decoratedClassName(decorator *ts.Node, src []byte) string {
	parent := decorator.Parent()
	if parent == nil {
		return ""
	}

	class := parent
	if parent.Kind() == "export_statement" {
		class = parent.ChildByFieldName("declaration")
	}
	if class == nil {
		return ""
	}
	if name := class.ChildByFieldName("name"); name != nil {
		return name.Utf8Text(src)
	}
	return ""
}

// findPair returns the object property whose key is key, quoted or not.
func findPair(obj *ts.Node, src []byte, key string) *ts.Node {
	for i := uint(0); i < obj.NamedChildCount(); i++ {
		pair := obj.NamedChild(i)
		if pair.Kind() != "pair" {
			continue
		}
		k := pair.ChildByFieldName("key")
		if k == nil {
			continue
		}
		if strings.Trim(k.Utf8Text(src), `"'`+"`") == key {
			return pair
		}
	}
	return nil
}

// walk visits n and its descendants depth-first in source order. fn returns
// false to skip the children of a node.
func walk(n *ts.Node, fn func(*ts.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		walk(n.NamedChild(i), fn)
	}
}

// lineIndent returns the whitespace that starts the line containing offset.
func lineIndent(src []byte, offset int) string {
	start := offset
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[start:end])
}
