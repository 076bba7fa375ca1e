package validator

import "testing"

func TestValidatorCheck(t *testing.T) {
	var v Validator

	if v.HasErrors() {
		t.Error("fresh validator must not have errors")
	}

	v.Check(true, "never added")
	if v.HasErrors() {
		t.Error("passing check must not add an error")
	}

	v.Check(false, "something went wrong")
	if !v.HasErrors() {
		t.Error("failing check must add an error")
	}
	if len(v.Errors) != 1 || v.Errors[0] != "something went wrong" {
		t.Errorf("unexpected errors: %v", v.Errors)
	}
}

func TestValidatorCheckField(t *testing.T) {
	var v Validator

	v.CheckField(false, "name", "must not be blank")
	v.CheckField(false, "name", "overwritten message is kept")
	v.CheckField(true, "city", "never added")

	if got := v.FieldErrors["name"]; got != "must not be blank" {
		t.Errorf("expected first message to win, got %q", got)
	}
	if _, ok := v.FieldErrors["city"]; ok {
		t.Error("passing field check must not add an error")
	}
}

func TestNotBlank(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"hello", true},
		{"", false},
		{"   ", false},
		{"\t\n", false},
		{" x ", true},
	}

	for _, tt := range tests {
		if got := NotBlank(tt.input); got != tt.want {
			t.Errorf("NotBlank(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestMaxRunes(t *testing.T) {
	tests := []struct {
		input string
		limit int
		want  bool
	}{
		{"abc", 3, true},
		{"abcd", 3, false},
		{"", 0, true},
		{"äöü", 3, true}, // runes, not bytes
	}

	for _, tt := range tests {
		if got := MaxRunes(tt.input, tt.limit); got != tt.want {
			t.Errorf("MaxRunes(%q, %d) = %v, want %v", tt.input, tt.limit, got, tt.want)
		}
	}
}

func TestIn(t *testing.T) {
	if !In("b", "a", "b", "c") {
		t.Error("expected In to find the value")
	}
	if In("d", "a", "b", "c") {
		t.Error("expected In to miss the value")
	}
}
