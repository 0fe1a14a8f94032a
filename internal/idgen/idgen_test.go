package idgen

import "testing"

func TestNextIsSequentialPerKind(t *testing.T) {
	a := New()
	if got := a.Next(Var); got != "var0" {
		t.Errorf("first Var = %q, want var0", got)
	}
	if got := a.Next(Var); got != "var1" {
		t.Errorf("second Var = %q, want var1", got)
	}
	if got := a.Next(Func); got != "fun0" {
		t.Errorf("first Func = %q, want fun0 despite earlier Vars", got)
	}
	if got := a.Next(Var); got != "var2" {
		t.Errorf("third Var = %q, want var2", got)
	}
}

func TestKindPrefixes(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Var, "var0"},
		{Func, "fun0"},
		{Struct, "Struct0"},
		{Enum, "Enum0"},
		{Field, "field0"},
		{Param, "param0"},
		{Binding, "bound0"},
	}
	for _, tt := range tests {
		a := New()
		if got := a.Next(tt.kind); got != tt.want {
			t.Errorf("Next(%s) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestAllocatorsAreIndependent(t *testing.T) {
	a := New()
	b := New()
	a.Next(Var)
	a.Next(Var)
	if got := b.Next(Var); got != "var0" {
		t.Errorf("fresh allocator should start at var0, got %q", got)
	}
}
