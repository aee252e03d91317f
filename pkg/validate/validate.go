// Package validate implements the declarative validation-rule pipeline used
// by two-way bindings: a pipe-separated list of rule tokens, each a bare
// keyword or name:parameter pair, evaluated left to right with the first
// failing rule's message winning.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Rule is one parsed validation predicate.
type Rule struct {
	Name  string
	Param string

	// compiled pattern for "pattern" rules, numeric bound for min/max.
	re    *regexp.Regexp
	bound float64
}

// Known rule names.
const (
	ruleRequired = "required"
	ruleEmail    = "email"
	ruleNumeric  = "numeric"
	ruleMin      = "min"
	ruleMax      = "max"
	rulePattern  = "pattern"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Parse parses a rule string like "required|email|min:3". It fails on empty
// tokens, unknown rule names, missing or malformed parameters, and invalid
// pattern expressions, so binding setup can reject bad markup up front.
// Pattern expressions cannot contain the pipe separator.
func Parse(spec string) ([]Rule, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, fmt.Errorf("validate: empty rule string")
	}

	var rules []Rule
	for _, token := range strings.Split(spec, "|") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, fmt.Errorf("validate: empty rule token in %q", spec)
		}

		name, param, hasParam := strings.Cut(token, ":")
		r := Rule{Name: name, Param: param}

		switch name {
		case ruleRequired, ruleEmail, ruleNumeric:
			if hasParam {
				return nil, fmt.Errorf("validate: rule %q takes no parameter", name)
			}
		case ruleMin, ruleMax:
			if !hasParam || param == "" {
				return nil, fmt.Errorf("validate: rule %q needs a numeric parameter", name)
			}
			b, err := strconv.ParseFloat(param, 64)
			if err != nil {
				return nil, fmt.Errorf("validate: rule %q parameter %q is not numeric", name, param)
			}
			r.bound = b
		case rulePattern:
			if !hasParam || param == "" {
				return nil, fmt.Errorf("validate: rule %q needs an expression", name)
			}
			re, err := regexp.Compile(param)
			if err != nil {
				return nil, fmt.Errorf("validate: bad pattern %q: %w", param, err)
			}
			r.re = re
		default:
			return nil, fmt.Errorf("validate: unknown rule %q", name)
		}

		rules = append(rules, r)
	}
	return rules, nil
}

// Evaluate runs the rules left to right against value and returns the first
// failure message, or the empty string when every rule passes.
func Evaluate(rules []Rule, value any) string {
	for _, r := range rules {
		if msg := r.check(value); msg != "" {
			return msg
		}
	}
	return ""
}

// Check is a convenience that parses and evaluates in one step.
func Check(spec string, value any) (string, error) {
	rules, err := Parse(spec)
	if err != nil {
		return "", err
	}
	return Evaluate(rules, value), nil
}

func (r Rule) check(value any) string {
	switch r.Name {
	case ruleRequired:
		if isEmpty(value) {
			return "This field is required"
		}
	case ruleEmail:
		s := toString(value)
		if s != "" && !emailRE.MatchString(s) {
			return "Invalid email address"
		}
	case ruleNumeric:
		if isEmpty(value) {
			return ""
		}
		if _, ok := toNumber(value); ok {
			return ""
		}
		if s, ok := value.(string); ok {
			if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return ""
			}
		}
		return "Must be a number"
	case ruleMin:
		if isEmpty(value) {
			return ""
		}
		if n, ok := toNumber(value); ok {
			if n < r.bound {
				return fmt.Sprintf("Must be at least %s", r.Param)
			}
			return ""
		}
		if float64(len([]rune(toString(value)))) < r.bound {
			return fmt.Sprintf("Must be at least %s characters", r.Param)
		}
	case ruleMax:
		if isEmpty(value) {
			return ""
		}
		if n, ok := toNumber(value); ok {
			if n > r.bound {
				return fmt.Sprintf("Must be at most %s", r.Param)
			}
			return ""
		}
		if float64(len([]rune(toString(value)))) > r.bound {
			return fmt.Sprintf("Must be at most %s characters", r.Param)
		}
	case rulePattern:
		s := toString(value)
		if s != "" && !r.re.MatchString(s) {
			return "Invalid format"
		}
	}
	return ""
}

// isEmpty reports whether value counts as missing for the required rule.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case bool:
		return !v
	default:
		return false
	}
}

// toNumber coerces numeric values. Strings are not coerced here: a string
// value compares by length under min/max, matching the rule semantics.
func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	}
	return 0, false
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
