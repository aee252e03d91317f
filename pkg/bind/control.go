package bind

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reflow-dev/reflow/pkg/dom"
)

// controlEvent returns the natural change signal for a control: the
// continuous text-entry signal for free text, the discrete signal for
// toggles and selections.
func controlEvent(n *dom.Node) string {
	switch n.Tag() {
	case "select":
		return "change"
	case "input":
		if t, _ := n.Attr("type"); t == "checkbox" || t == "radio" {
			return "change"
		}
	}
	return "input"
}

// isToggle reports whether the control carries a boolean value.
func isToggle(n *dom.Node) bool {
	t, _ := n.Attr("type")
	return n.Tag() == "input" && t == "checkbox"
}

// isNumericControl reports whether the control's text coerces to a number.
func isNumericControl(n *dom.Node) bool {
	t, _ := n.Attr("type")
	return n.Tag() == "input" && (t == "number" || t == "range")
}

// readControl reads the control's raw value coerced to the path's expected
// representation: numeric text becomes a number (invalid input becomes 0),
// a toggle becomes a boolean, a multi-selection becomes the ordered
// sequence of selected values.
func readControl(n *dom.Node) any {
	switch {
	case isToggle(n):
		return n.Checked()
	case n.IsMultiSelect():
		vals := n.SelectedValues()
		out := make([]any, len(vals))
		for i, v := range vals {
			out[i] = v
		}
		return out
	case isNumericControl(n):
		f, err := strconv.ParseFloat(strings.TrimSpace(n.Value()), 64)
		if err != nil {
			return float64(0)
		}
		return f
	default:
		return n.Value()
	}
}

// writeControl pushes a state value into the control's displayed state.
func writeControl(n *dom.Node, value any) {
	switch {
	case isToggle(n):
		n.SetChecked(truthy(value))
	case n.IsMultiSelect():
		n.SetSelectedValues(stringSeq(value))
	default:
		n.SetValue(display(value))
	}
}

// controlDiffers reports whether the control's displayed value differs from
// the state value. Equal values are left alone: redundant writes would
// disrupt cursor position in text controls.
func controlDiffers(n *dom.Node, value any) bool {
	switch {
	case isToggle(n):
		return n.Checked() != truthy(value)
	case n.IsMultiSelect():
		cur := n.SelectedValues()
		want := stringSeq(value)
		if len(cur) != len(want) {
			return true
		}
		for i := range cur {
			if cur[i] != want[i] {
				return true
			}
		}
		return false
	default:
		return n.Value() != display(value)
	}
}

// display renders a state value as text. Nullish values render empty.
func display(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}

func stringSeq(value any) []string {
	seq, _ := value.([]any)
	out := make([]string, len(seq))
	for i, v := range seq {
		out[i] = display(v)
	}
	return out
}
