package component

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gnana997/ngtags/pkg/textparse"
)

// Binding describes how an input or output property is exposed. It is either a
// BindingName (a plain public name) or a BindingSpec (alias plus flags).
type Binding interface {
	// PublicName returns the name used in templates for the given class property.
	PublicName(property string) string
}

// BindingName is the plain string form: the public binding name.
type BindingName struct {
	Name string `json:"name" yaml:"name"`
}

// PublicName implements Binding.
func (b BindingName) PublicName(property string) string {
	if b.Name == "" {
		return property
	}
	return b.Name
}

// BindingSpec is the structured form emitted for inputs declared with options.
type BindingSpec struct {
	Alias    string `json:"alias,omitempty" yaml:"alias,omitempty"`
	HasAlias bool   `json:"has_alias" yaml:"has_alias"`
	Required bool   `json:"required" yaml:"required"`
}

// PublicName implements Binding.
func (b BindingSpec) PublicName(property string) string {
	if b.HasAlias && b.Alias != "" {
		return b.Alias
	}
	return property
}

// Binding kinds on the wire.
const (
	kindName = "name"
	kindSpec = "spec"
)

// Bindings maps a class property to its binding. On the wire every entry
// carries a "kind" field ("name" or "spec") so the union can be decoded.
type Bindings map[string]Binding

type bindingWire struct {
	Kind     string `json:"kind" yaml:"kind"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Alias    string `json:"alias,omitempty" yaml:"alias,omitempty"`
	HasAlias bool   `json:"has_alias,omitempty" yaml:"has_alias,omitempty"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

func (b Bindings) wire() (map[string]bindingWire, error) {
	if b == nil {
		return nil, nil
	}
	out := make(map[string]bindingWire, len(b))
	for prop, binding := range b {
		switch v := binding.(type) {
		case BindingName:
			out[prop] = bindingWire{Kind: kindName, Name: v.Name}
		case BindingSpec:
			out[prop] = bindingWire{Kind: kindSpec, Alias: v.Alias, HasAlias: v.HasAlias, Required: v.Required}
		default:
			return nil, fmt.Errorf("binding %q: unsupported type %T", prop, binding)
		}
	}
	return out, nil
}

// MarshalJSON implements json.Marshaler.
func (b Bindings) MarshalJSON() ([]byte, error) {
	w, err := b.wire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bindings) UnmarshalJSON(data []byte) error {
	var w map[string]bindingWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w == nil {
		*b = nil
		return nil
	}
	out := make(Bindings, len(w))
	for prop, entry := range w {
		switch entry.Kind {
		case kindName:
			out[prop] = BindingName{Name: entry.Name}
		case kindSpec:
			out[prop] = BindingSpec{Alias: entry.Alias, HasAlias: entry.HasAlias, Required: entry.Required}
		default:
			return fmt.Errorf("binding %q: unknown kind %q", prop, entry.Kind)
		}
	}
	*b = out
	return nil
}

// MarshalYAML implements yaml.Marshaler with the same shape as the JSON form.
func (b Bindings) MarshalYAML() (interface{}, error) {
	return b.wire()
}

// bindingsFromObject converts a parsed compiled-dialect map
// ({ prop: "name" } or { prop: { alias: "x"; required: true } }) into bindings.
func bindingsFromObject(obj map[string]textparse.Value) Bindings {
	if len(obj) == 0 {
		return nil
	}
	out := make(Bindings, len(obj))
	for prop, v := range obj {
		out[prop] = bindingFromValue(v)
	}
	return out
}

func bindingFromValue(v textparse.Value) Binding {
	if v.Kind != textparse.KindObject {
		return BindingName{Name: v.AsString()}
	}

	alias := v.Object["alias"].AsString()
	hasAlias := alias != "" && alias != "null" && alias != "undefined"
	if !hasAlias {
		alias = ""
	}
	return BindingSpec{
		Alias:    alias,
		HasAlias: hasAlias,
		Required: v.Object["required"].AsString() == "true",
	}
}

// bindingsFromDecorator reads the decorator `inputs`/`outputs` property. Both the
// array form (['name', 'name: alias', { name: 'x', alias: 'y', required: true }])
// and the object form ({ name: 'alias' }) are accepted.
func bindingsFromDecorator(v textparse.Value) Bindings {
	if v.Kind == textparse.KindObject {
		return bindingsFromObject(v.Object)
	}
	if v.Kind != textparse.KindArray {
		return nil
	}

	out := make(Bindings, len(v.Array))
	for _, elem := range v.Array {
		if textparse.IsParsableObject(elem) {
			obj := textparse.ParseObject(elem, nil)
			name := obj["name"].AsString()
			if name == "" {
				continue
			}
			out[name] = bindingFromValue(textparse.Value{Kind: textparse.KindObject, Object: obj})
			continue
		}

		name, alias, found := strings.Cut(elem, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !found {
			out[name] = BindingName{Name: name}
			continue
		}
		out[name] = BindingSpec{Alias: strings.TrimSpace(alias), HasAlias: true}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
