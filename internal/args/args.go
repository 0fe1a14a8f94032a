// Package args produces concrete literal argument values for a
// generated program's entry parameters.
package args

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/rustsynth/rustsynth/internal/ast"
	"github.com/rustsynth/rustsynth/internal/rstype"
)

const valueAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Generate draws one literal value per parameter, in parameter order,
// already formatted for downstream consumption: text and character
// values are quoted with backslash escaping, 128-bit integers are
// emitted as quoted decimal text so they survive formats with
// native-width limits, and every other scalar is unquoted.
func Generate(params []ast.Param, rng *rand.Rand) ([]string, error) {
	out := make([]string, len(params))
	for i, p := range params {
		v, err := value(p.Type, rng)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", p.Name, err)
		}
		out[i] = v
	}
	return out, nil
}

func value(t rstype.Type, rng *rand.Rand) (string, error) {
	switch tt := t.(type) {
	case *rstype.IntType:
		v := intValue(tt, rng)
		if rstype.Is128Bit(tt) {
			return quote(v), nil
		}
		return v, nil
	case *rstype.BoolType:
		if rng.Intn(2) == 0 {
			return "false", nil
		}
		return "true", nil
	case *rstype.CharType:
		return quote(string(valueAlphabet[rng.Intn(len(valueAlphabet))])), nil
	case *rstype.StrType:
		n := rng.Intn(9)
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteByte(valueAlphabet[rng.Intn(len(valueAlphabet))])
		}
		return quote(b.String()), nil
	default:
		return "", fmt.Errorf("unsupported parameter type %s", t.Rust())
	}
}

// intValue keeps magnitudes small so that argument-dependent
// arithmetic stays interesting without immediately saturating.
func intValue(t *rstype.IntType, rng *rand.Rand) string {
	n := rng.Intn(101)
	if !t.Unsigned && rng.Intn(2) == 0 {
		n = -n
	}
	return fmt.Sprintf("%d", n)
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range s {
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	b.WriteByte('"')
	return b.String()
}

// Unquote recovers the raw value from a formatted one. Quoted forms
// strip their delimiters and escapes; unquoted forms pass through.
func Unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	var b strings.Builder
	body := s[1 : len(s)-1]
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
		}
		b.WriteByte(body[i])
	}
	return b.String()
}

// Format renders values one per line for a .args sidecar file.
func Format(values []string) string {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(v)
		b.WriteByte('\n')
	}
	return b.String()
}
