// Package builtins defines the fixed table of built-in math functions and
// named constants recognised in formula source text.
package builtins

import (
	"strings"

	"github.com/risor-io/formula/op"
)

// Pi is the value compiled for the named constant "pi".
const Pi = 3.14159265358979323846

// DefaultMu0 is the initial value of a registry's mu0 scalar, compiled for
// the named constant "mu".
const DefaultMu0 = 1.0

// Function describes one entry of the built-in function table.
type Function struct {
	Name  string
	Arity int
	Code  op.Code
}

// Functions is the built-in function table. Matching walks the table in
// order and takes the first case-insensitive prefix hit, so a name must
// appear before any shorter name it starts with (atan2 before atan, log10
// before log, erfcs before erfc before erf).
var Functions = []Function{
	{"abs", 1, op.Abs},
	{"exp", 1, op.Exp},
	{"log10", 1, op.Log10},
	{"log", 1, op.Ln},
	{"sqrt", 1, op.Sqrt},
	{"sinh", 1, op.Sinh},
	{"cosh", 1, op.Cosh},
	{"tanh", 1, op.Tanh},
	{"sin", 1, op.Sin},
	{"cos", 1, op.Cos},
	{"tan", 1, op.Tan},
	{"asin", 1, op.Asin},
	{"acos", 1, op.Acos},
	{"atan2", 2, op.Atan2},
	{"atan", 1, op.Atan},
	{"besj0", 1, op.Besj0},
	{"besj1", 1, op.Besj1},
	{"besy0", 1, op.Besy0},
	{"besy1", 1, op.Besy1},
	{"erfcs", 1, op.Erfcs},
	{"erfc", 1, op.Erfc},
	{"erf", 1, op.Erf},
	{"gamf", 1, op.Gamma},
}

// Match attempts to match a built-in function name as a case-insensitive
// prefix of s. It returns the matched table entry and true on a hit.
func Match(s string) (Function, bool) {
	for _, fn := range Functions {
		n := len(fn.Name)
		if len(s) >= n && strings.EqualFold(s[:n], fn.Name) {
			return fn, true
		}
	}
	return Function{}, false
}

// MatchConstant attempts to match one of the two named constants as a
// case-insensitive two-character prefix of s. The value of "mu" is the
// supplied mu0 scalar, captured at parse time.
func MatchConstant(s string, mu0 float64) (float64, bool) {
	if len(s) < 2 {
		return 0, false
	}
	switch strings.ToLower(s[:2]) {
	case "pi":
		return Pi, true
	case "mu":
		return mu0, true
	}
	return 0, false
}

// ConstantLen is the length of a matched constant token.
const ConstantLen = 2
