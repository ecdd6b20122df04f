package vm

import (
	"math"
	"testing"

	"github.com/risor-io/formula/builtins"
	"github.com/risor-io/formula/compiler"
	"github.com/risor-io/formula/errz"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string, vars []string, values []float64) (float64, errz.EvalCode) {
	t.Helper()
	code, err := compiler.New(compiler.WithVariables(vars)).Compile(src)
	require.Nil(t, err)
	return New(code).Eval(values)
}

func TestEval(t *testing.T) {
	tests := []struct {
		input  string
		vars   []string
		values []float64
		want   float64
	}{
		{"2+3*4", nil, nil, 14},
		{"-2^2", nil, nil, -4},
		{"sqrt(x^2+y^2)", []string{"x", "y"}, []float64{3, 4}, 5},
		{"atan2(1,1)", nil, nil, math.Pi / 4},
		{"pi*mu", nil, nil, builtins.Pi},
		{"2 ** (1+2)", nil, nil, 8},
		{"a-b-c", []string{"a", "b", "c"}, []float64{10, 3, 2}, 5},
		{"a^b^c", []string{"a", "b", "c"}, []float64{2, 3, 2}, 512},
		{"-a^2", []string{"a"}, []float64{3}, -9},
		{"-a*b", []string{"a", "b"}, []float64{3, 4}, -12},
		{"2*-3", nil, nil, -6},
		{"abs(-5)", nil, nil, 5},
		{"exp(0)", nil, nil, 1},
		{"log10(100)", nil, nil, 2},
		{"log(exp(2))", nil, nil, 2},
		{"sinh(0)+cosh(0)+tanh(0)", nil, nil, 1},
		{"sin(0)+cos(0)+tan(0)", nil, nil, 1},
		{"asin(1)+acos(1)", nil, nil, math.Pi / 2},
		{"atan(1)", nil, nil, math.Pi / 4},
		{"erf(0)+erfc(0)", nil, nil, 1},
		{"erfcs(0)", nil, nil, 1},
		{"gamf(5)", nil, nil, 24},
		{"besj0(0)", nil, nil, 1},
		{"besj1(0)", nil, nil, 0},
		{"1e-3*2", nil, nil, 0.002},
		{"2.5d2", nil, nil, 250},
		{"x/y", []string{"x", "y"}, []float64{1, 4}, 0.25},
		{"+x", []string{"x"}, []float64{7}, 7},
		{"(-8)^(-1)", nil, nil, -0.125},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, code := run(t, tt.input, tt.vars, tt.values)
			require.Equal(t, errz.EvalOK, code)
			require.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestEvalDomainErrors(t *testing.T) {
	tests := []struct {
		input  string
		values []float64
		code   errz.EvalCode
	}{
		{"1/(x-x)", []float64{5}, errz.EvalDivZero},
		{"0^(-1)", nil, errz.EvalDivZero},
		{"sqrt(-1)", nil, errz.EvalSqrtNeg},
		{"log(-1)", nil, errz.EvalLogNonPos},
		{"log10(0)", nil, errz.EvalLogNonPos},
		{"asin(2)", nil, errz.EvalAsinRange},
		{"acos(-1.5)", nil, errz.EvalAsinRange},
		{"(-8)^(1/3)", nil, errz.EvalPowDomain},
		{"besy0(0)", nil, errz.EvalBesy0NonPos},
		{"besy0(-1)", nil, errz.EvalBesy0NonPos},
		{"besy1(0)", nil, errz.EvalBesy1NonPos},
		{"gamf(-3)", nil, errz.EvalGammaPole},
		{"gamf(0)", nil, errz.EvalGammaPole},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, code := run(t, tt.input, []string{"x"}, tt.values)
			require.Equal(t, tt.code, code)
			require.Equal(t, 0.0, got)
		})
	}
}

func TestEvalNegativeBaseIntegerExponent(t *testing.T) {
	got, code := run(t, "(-2)^3", nil, nil)
	require.Equal(t, errz.EvalOK, code)
	require.Equal(t, -8.0, got)

	got, code = run(t, "gamf(-2.5)", nil, nil)
	require.Equal(t, errz.EvalOK, code)
	require.InDelta(t, math.Gamma(-2.5), got, 1e-12)
}

func TestEvalDeterminism(t *testing.T) {
	code, err := compiler.New(compiler.WithVariables([]string{"x", "y"})).
		Compile("sin(x)*cos(y)+sqrt(x^2+y^2)/besj0(x)")
	require.Nil(t, err)
	vm := New(code)
	values := []float64{0.5, 1.5}
	first, ec := vm.Eval(values)
	require.Equal(t, errz.EvalOK, ec)
	for i := 0; i < 100; i++ {
		got, ec := vm.Eval(values)
		require.Equal(t, errz.EvalOK, ec)
		require.Equal(t, first, got)
	}
}

func TestEvalDoesNotMutateCode(t *testing.T) {
	code, err := compiler.New().Compile("1/0")
	require.Nil(t, err)
	before := append([]float64(nil), code.Immediates()...)
	vm := New(code)
	_, ec := vm.Eval(nil)
	require.Equal(t, errz.EvalDivZero, ec)
	require.Equal(t, before, code.Immediates())
	// A failed evaluation leaves the machine reusable.
	got, ec := vm.Eval(nil)
	require.Equal(t, errz.EvalDivZero, ec)
	require.Equal(t, 0.0, got)
}

func TestAtan2Order(t *testing.T) {
	got, ec := run(t, "atan2(1,2)", nil, nil)
	require.Equal(t, errz.EvalOK, ec)
	require.InDelta(t, math.Atan2(1, 2), got, 1e-15)
}

func BenchmarkEval(b *testing.B) {
	code, err := compiler.New(compiler.WithVariables([]string{"x", "y"})).
		Compile("sqrt(x^2+y^2)*sin(x)/cos(y)+atan2(x,y)")
	if err != nil {
		b.Fatal(err)
	}
	vm := New(code)
	values := []float64{3, 4}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ec := vm.Eval(values); ec != errz.EvalOK {
			b.Fatal(ec)
		}
	}
}
