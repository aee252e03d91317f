package validate

import "testing"

func TestParseErrors(t *testing.T) {
	bad := []string{
		"",
		"   ",
		"required|",
		"shouty",
		"min",
		"min:",
		"min:abc",
		"pattern",
		"pattern:[",
		"required:yes",
	}
	for _, spec := range bad {
		if _, err := Parse(spec); err == nil {
			t.Errorf("Parse(%q): expected error", spec)
		}
	}

	if rules, err := Parse("required|email|min:3|pattern:^a+$"); err != nil || len(rules) != 4 {
		t.Errorf("Parse valid spec: rules=%v err=%v", rules, err)
	}
}

func TestShortCircuit(t *testing.T) {
	rules, err := Parse("required|min:3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		value any
		want  string
	}{
		{"", "This field is required"},
		{nil, "This field is required"},
		{"Jo", "Must be at least 3 characters"},
		{"Joe", ""},
	}
	for _, tt := range tests {
		if got := Evaluate(rules, tt.value); got != tt.want {
			t.Errorf("Evaluate(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestNumericMinMax(t *testing.T) {
	tests := []struct {
		spec  string
		value any
		want  string
	}{
		{"min:18", 10, "Must be at least 18"},
		{"min:18", 20, ""},
		{"min:18", float64(18), ""},
		{"max:100", 150, "Must be at most 100"},
		{"max:5", "toolong", "Must be at most 5 characters"},
		{"numeric", "12.5", ""},
		{"numeric", "12x", "Must be a number"},
		{"numeric", 7, ""},
	}
	for _, tt := range tests {
		got, err := Check(tt.spec, tt.value)
		if err != nil {
			t.Fatalf("Check(%q): %v", tt.spec, err)
		}
		if got != tt.want {
			t.Errorf("Check(%q, %v) = %q, want %q", tt.spec, tt.value, got, tt.want)
		}
	}
}

func TestEmailAndPattern(t *testing.T) {
	tests := []struct {
		spec  string
		value any
		want  string
	}{
		{"email", "ada@example.com", ""},
		{"email", "not-an-email", "Invalid email address"},
		{"email", "", ""}, // required's job
		{"pattern:^[a-z]+$", "abc", ""},
		{"pattern:^[a-z]+$", "ABC", "Invalid format"},
	}
	for _, tt := range tests {
		got, err := Check(tt.spec, tt.value)
		if err != nil {
			t.Fatalf("Check(%q): %v", tt.spec, err)
		}
		if got != tt.want {
			t.Errorf("Check(%q, %v) = %q, want %q", tt.spec, tt.value, got, tt.want)
		}
	}
}

func TestRequiredOnCollectionsAndBools(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{[]any{}, "This field is required"},
		{[]any{"x"}, ""},
		{false, "This field is required"},
		{true, ""},
		{0, ""}, // zero is a present number
	}
	for _, tt := range tests {
		got, err := Check("required", tt.value)
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if got != tt.want {
			t.Errorf("required(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
