package policy

import "testing"

func TestDefault_Predicates(t *testing.T) {
	c := Default()

	tests := []struct {
		name string
		fn   func() bool
		want bool
	}{
		{"os is forbidden import", func() bool { return c.IsForbiddenImport("os") }, true},
		{"math is permitted import", func() bool { return c.IsPermittedImport("math") }, true},
		{"os is not permitted", func() bool { return c.IsPermittedImport("os") }, false},
		{"numpy is permitted", func() bool { return c.IsPermittedImport("numpy") }, true},
		{"eval is forbidden builtin", func() bool { return c.IsForbiddenBuiltin("eval") }, true},
		{"print is not forbidden builtin", func() bool { return c.IsForbiddenBuiltin("print") }, false},
		{"__globals__ is forbidden attribute", func() bool { return c.IsForbiddenAttribute("__globals__") }, true},
		{"real_attr is not forbidden", func() bool { return c.IsForbiddenAttribute("real_attr") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefault_DisjointSets(t *testing.T) {
	c := Default()
	if err := c.checkInvariants(); err != nil {
		t.Fatalf("default catalog violates invariants: %v", err)
	}
}

func TestNew_RejectsOverlap(t *testing.T) {
	_, err := New([]string{"math"}, []string{"math"}, nil, nil)
	if err == nil {
		t.Fatal("expected error when a name appears in both forbidden and permitted imports")
	}
}

func TestNew_Valid(t *testing.T) {
	c, err := New([]string{"os"}, []string{"math"}, []string{"eval"}, []string{"__class__"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsForbiddenImport("os") || !c.IsPermittedImport("math") {
		t.Fatal("catalog did not retain the supplied sets")
	}
}

func TestPermittedImportNames_Sorted(t *testing.T) {
	c, _ := New(nil, []string{"zlib_like", "math", "abc"}, nil, nil)
	got := c.PermittedImportNames()
	want := []string{"abc", "math", "zlib_like"}
	if len(got) != len(want) {
		t.Fatalf("got %d names, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
