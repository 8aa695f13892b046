package names

import "testing"

func TestSymbol(t *testing.T) {
	cases := []struct {
		path []string
		want string
	}{
		{[]string{"main"}, "mathic__main"},
		{[]string{"main", "helper"}, "mathic__main.helper"},
		{[]string{"a", "b", "c"}, "mathic__a.b.c"},
	}
	for _, tc := range cases {
		if got := Symbol(tc.path); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestChildDoesNotAlias(t *testing.T) {
	base := make([]string, 1, 4)
	base[0] = "main"
	a := Child(base, "a")
	b := Child(base, "b")
	if a[1] != "a" || b[1] != "b" {
		t.Fatalf("expected independent paths, got %v and %v", a, b)
	}
	if Display(a) != "main::a" {
		t.Fatalf("expected main::a, got %q", Display(a))
	}
}
