package args

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/rustsynth/rustsynth/internal/ast"
	"github.com/rustsynth/rustsynth/internal/rstype"
)

func TestOneValuePerParameter(t *testing.T) {
	params := []ast.Param{
		{Name: "param0", Type: rstype.I64},
		{Name: "param1", Type: rstype.Bool},
		{Name: "param2", Type: rstype.Str},
		{Name: "param3", Type: rstype.Char},
	}
	values, err := Generate(params, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(values) != len(params) {
		t.Fatalf("got %d values for %d parameters", len(values), len(params))
	}
}

func TestValueFormsMatchTypes(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 50; i++ {
		params := []ast.Param{
			{Name: "param0", Type: rstype.U8},
			{Name: "param1", Type: rstype.I32},
			{Name: "param2", Type: rstype.I128},
			{Name: "param3", Type: rstype.U128},
			{Name: "param4", Type: rstype.Bool},
			{Name: "param5", Type: rstype.Char},
			{Name: "param6", Type: rstype.Str},
			{Name: "param7", Type: rstype.USize},
		}
		values, err := Generate(params, rng)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}

		if _, err := strconv.ParseUint(values[0], 10, 8); err != nil {
			t.Errorf("u8 value %q does not parse", values[0])
		}
		if _, err := strconv.ParseInt(values[1], 10, 32); err != nil {
			t.Errorf("i32 value %q does not parse", values[1])
		}
		for _, v := range []string{values[2], values[3]} {
			if !strings.HasPrefix(v, `"`) || !strings.HasSuffix(v, `"`) {
				t.Errorf("128-bit value %q should be quoted", v)
			}
			if _, err := strconv.ParseInt(Unquote(v), 10, 64); err != nil {
				t.Errorf("128-bit value %q is not quoted decimal", v)
			}
		}
		if values[4] != "true" && values[4] != "false" {
			t.Errorf("bool value %q", values[4])
		}
		if !strings.HasPrefix(values[5], `"`) || len(Unquote(values[5])) != 1 {
			t.Errorf("char value %q should be a quoted single character", values[5])
		}
		if !strings.HasPrefix(values[6], `"`) {
			t.Errorf("text value %q should be quoted", values[6])
		}
		if _, err := strconv.ParseUint(values[7], 10, 64); err != nil {
			t.Errorf("usize value %q does not parse", values[7])
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	params := []ast.Param{
		{Name: "param0", Type: rstype.I64},
		{Name: "param1", Type: rstype.Str},
	}
	a, err := Generate(params, rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(params, rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("value %d differs across identically seeded draws: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestGenerateRejectsCompositeParams(t *testing.T) {
	params := []ast.Param{{Name: "param0", Type: &rstype.BoxType{Inner: rstype.I8}}}
	if _, err := Generate(params, rand.New(rand.NewSource(1))); err == nil {
		t.Error("composite parameter type should be rejected")
	}
}

func TestUnquoteRoundTrip(t *testing.T) {
	tests := []string{"", "plain", `wi"th quote`, `back\slash`, `both"\`}
	for _, raw := range tests {
		if got := Unquote(quote(raw)); got != raw {
			t.Errorf("round trip of %q gave %q", raw, got)
		}
	}
	if got := Unquote("42"); got != "42" {
		t.Errorf("unquoted value should pass through, got %q", got)
	}
}

func TestFormatOneValuePerLine(t *testing.T) {
	got := Format([]string{"1", `"ab"`, "true"})
	want := "1\n\"ab\"\ntrue\n"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}
