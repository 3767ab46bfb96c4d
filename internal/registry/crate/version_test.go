package crate

import "testing"

func TestVersionOrdering(t *testing.T) {
	cases := []struct{ lower, higher string }{
		{"1.0.0", "1.0.1"},
		{"1.0.0", "1.1.0"},
		{"1.0.0", "2.0.0"},
		{"1.0.0-alpha", "1.0.0"},
		{"1.0.0-alpha", "1.0.0-alpha.1"},
	}
	for _, c := range cases {
		lo, err := ParseVersion(c.lower)
		if err != nil {
			t.Fatalf("ParseVersion(%q): %v", c.lower, err)
		}
		hi, err := ParseVersion(c.higher)
		if err != nil {
			t.Fatalf("ParseVersion(%q): %v", c.higher, err)
		}
		if !lo.Less(hi) {
			t.Errorf("expected %q < %q", c.lower, c.higher)
		}
		if hi.Less(lo) {
			t.Errorf("expected %q not less than %q", c.higher, c.lower)
		}
	}
}

func TestVersionReqMatches(t *testing.T) {
	req, err := ParseVersionReq("^0.6")
	if err != nil {
		t.Fatal(err)
	}
	v, err := ParseVersion("0.6.1")
	if err != nil {
		t.Fatal(err)
	}
	if !req.Matches(v) {
		t.Errorf("expected ^0.6 to match 0.6.1")
	}
	v2, _ := ParseVersion("0.7.0")
	if req.Matches(v2) {
		t.Errorf("expected ^0.6 to not match 0.7.0")
	}
}
