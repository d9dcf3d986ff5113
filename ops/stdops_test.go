package ops

import "testing"

func TestIntShimmering(t *testing.T) {
	s := New()
	o := s.NewString("42")
	n, err := s.AsInt(o)
	if err != nil || n != 42 {
		t.Fatalf("AsInt(%q) = %d, %v", "42", n, err)
	}
	if !s.IsInt(o) {
		t.Fatalf("expected %q to shimmer to an int", "42")
	}
}

func TestListRoundTrip(t *testing.T) {
	s := New()
	items := []*Obj{s.NewString("a"), s.NewString("b"), s.NewInt(3)}
	list := s.NewList(items)
	got, err := s.AsList(list)
	if err != nil {
		t.Fatalf("AsList: %v", err)
	}
	if len(got) != 3 || s.StringOf(got[0]) != "a" || s.StringOf(got[2]) != "3" {
		t.Fatalf("AsList round trip = %v", got)
	}
}

func TestDictSetGetUnset(t *testing.T) {
	s := New()
	d := s.NewDict(nil, nil)
	d = s.DictSet(d, "x", s.NewInt(1))
	d = s.DictSet(d, "y", s.NewInt(2))
	keys, vals, err := s.AsDict(d)
	if err != nil {
		t.Fatalf("AsDict: %v", err)
	}
	if len(keys) != 2 || s.StringOf(vals["x"]) != "1" {
		t.Fatalf("keys=%v vals=%v", keys, vals)
	}
	d = s.DictUnset(d, "x")
	_, vals2, _ := s.AsDict(d)
	if _, present := vals2["x"]; present {
		t.Fatalf("DictUnset did not remove key x")
	}
}

func TestCompareAndEqual(t *testing.T) {
	s := New()
	a := s.NewInt(1)
	b := s.NewInt(2)
	if s.Compare(a, b) >= 0 {
		t.Fatalf("Compare(1,2) should be negative")
	}
	if !s.Equal(s.NewString("x"), s.NewString("x")) {
		t.Fatalf("Equal should treat same-content strings as equal")
	}
}

func TestStringMatchGlob(t *testing.T) {
	s := New()
	tests := []struct {
		pattern, s string
		want       bool
	}{
		{"foo*", "foobar", true},
		{"foo*", "barfoo", false},
		{"f?o", "foo", true},
		{"[fb]oo", "boo", true},
		{"[fb]oo", "zoo", false},
	}
	for _, tt := range tests {
		if got := s.StringMatch(tt.pattern, tt.s); got != tt.want {
			t.Errorf("StringMatch(%q, %q) = %v, want %v", tt.pattern, tt.s, got, tt.want)
		}
	}
}
