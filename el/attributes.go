package el

import "github.com/reflow-dev/reflow/pkg/bind"

func ID(id string) Attr {
	return Attr{Name: "id", Value: id}
}

func Class(class string) Attr {
	return Attr{Name: "class", Value: class}
}

func Name(name string) Attr {
	return Attr{Name: "name", Value: name}
}

func Type(t string) Attr {
	return Attr{Name: "type", Value: t}
}

func Placeholder(text string) Attr {
	return Attr{Name: "placeholder", Value: text}
}

func Href(url string) Attr {
	return Attr{Name: "href", Value: url}
}

func Src(url string) Attr {
	return Attr{Name: "src", Value: url}
}

func Data(key, value string) Attr {
	return Attr{Name: "data-" + key, Value: value}
}

// Value sets a control's current value.
func Value(v string) Attr {
	return Attr{Name: "value", Value: v}
}

// Checked sets a toggle control's current state.
func Checked(c bool) Attr {
	if c {
		return Attr{Name: "checked", Value: "true"}
	}
	return Attr{Name: "checked", Value: "false"}
}

// Multiple marks a select as multi-valued.
func Multiple() Attr {
	return Attr{Name: "multiple", Value: "multiple"}
}

// BindTo attaches the value binding marker for a dotted path.
func BindTo(path string) Attr {
	return Attr{Name: bind.AttrBind, Value: path}
}

// ForEach attaches the collection marker with a loop expression like
// "item in items" or "(item, i) in items".
func ForEach(expr string) Attr {
	return Attr{Name: bind.AttrFor, Value: expr}
}

// Key attaches the key selector for a collection marker.
func Key(selector string) Attr {
	return Attr{Name: bind.AttrKey, Value: selector}
}

// Validate attaches a validation rule list like "required|email".
func Validate(rules string) Attr {
	return Attr{Name: bind.AttrValidate, Value: rules}
}
