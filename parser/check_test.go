package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckValid(t *testing.T) {
	vars := []string{"x", "y"}
	tests := []string{
		"2+3*4",
		"-2^2",
		"sqrt(x^2+y^2)",
		"atan2(1,1)",
		"1/(x-x)",
		"log(-1)",
		"(-8)^(1/3)",
		"pi*mu",
		"2 ** (1+2)",
		"gamf(-3)",
		"x",
		"-x",
		"+x",
		"2*-3",
		"sin(cos(x))",
		"atan2(atan2(1,2),3)",
		"((x))",
		"1e-3+x",
		"2.5d2",
		"abs(-x)",
		"-(x+y)",
		"-sin(x)",
	}
	for _, tt := range tests {
		t.Run(tt, func(t *testing.T) {
			require.Nil(t, Check(tt, vars))
		})
	}
}

func TestCheckErrors(t *testing.T) {
	vars := []string{"x", "y"}
	tests := []struct {
		input string
		msg   string
		pos   int
	}{
		{"((x+1)", "Missing )", 7},
		{"x y", "Invalid element", 1},
		{"foo(x)", "Invalid element", 1},
		{"sin()", "Empty parentheses", 5},
		{"atan2(1)", "Invalid number of arguments", 6},
		{"3.e", "Invalid number format", 1},
		{"+*x", "Multiple operators", 2},
		{"", "Missing operand", 1},
		{"2+", "Missing operand", 3},
		{"x+*y", "Multiple operators", 3},
		{"x)", "Mismatched parenthesis", 2},
		{"()", "Empty parentheses", 2},
		{"sin x", "Missing (", 5},
		{"sinx", "Missing (", 4},
		{"2*(x+1", "Missing )", 7},
		{"atan2(1,2,3)", "Invalid number of arguments", 6},
		{"sin(1,2)", "Invalid number of arguments", 4},
		{"x@y", "Invalid element", 1},
		{"2x", "Missing operator", 2},
		{"-", "Missing operand", 2},
		{"atan2(1,", "Missing )", 9},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := Check(tt.input, vars)
			require.NotNil(t, err)
			require.Equal(t, tt.msg, err.Message)
			require.Equal(t, tt.pos, err.Pos)
			require.Equal(t, tt.input, err.Source)
		})
	}
}

func TestCheckEmptyVariableTable(t *testing.T) {
	// With no variables declared, identifiers resolve only through the
	// constants table.
	require.Nil(t, Check("pi*2", nil))
	require.Nil(t, Check("mu+1", nil))
	err := Check("x+1", nil)
	require.NotNil(t, err)
	require.Equal(t, "Invalid element", err.Message)
}

func TestCheckVariablesAreCaseSensitive(t *testing.T) {
	require.Nil(t, Check("Temp+1", []string{"Temp"}))
	err := Check("temp+1", []string{"Temp"})
	require.NotNil(t, err)
	require.Equal(t, "Invalid element", err.Message)
}

func TestCheckFunctionsAreCaseInsensitive(t *testing.T) {
	require.Nil(t, Check("SIN(x)", []string{"x"}))
	require.Nil(t, Check("Sqrt(x)", []string{"x"}))
}

func TestLookupVar(t *testing.T) {
	vars := []string{"x", "y", "z"}
	require.Equal(t, 1, LookupVar("x", vars))
	require.Equal(t, 3, LookupVar("z", vars))
	require.Equal(t, 0, LookupVar("w", vars))
	require.Equal(t, 0, LookupVar("X", vars))
	require.Equal(t, 0, LookupVar("x", nil))
}
