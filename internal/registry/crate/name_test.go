package crate

import "testing"

func TestParseName(t *testing.T) {
	valid := []string{"a", "a0", "z-z", "a_b"}
	for _, s := range valid {
		if _, err := Parse(s); err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", s, err)
		}
	}

	invalid := []string{"", "A", "0a", "a!", "-a"}
	for _, s := range invalid {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q): expected error, got nil", s)
		}
	}
}

func TestNameLess(t *testing.T) {
	a, _ := Parse("a")
	b, _ := Parse("b")
	if !a.Less(b) {
		t.Errorf("expected %q < %q", a, b)
	}
	if b.Less(a) {
		t.Errorf("expected %q not less than %q", b, a)
	}
}
