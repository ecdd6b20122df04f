// Package op defines opcodes used by the formula compiler and virtual machine.
package op

import "fmt"

// Code is an integer opcode that indicates an operation to execute.
type Code uint16

const (
	Invalid Code = 0

	// Literals
	PushImmed Code = 1

	// Unary sign
	Neg Code = 2

	// Binary arithmetic. The relative order of these five opcodes matches
	// ascending operator precedence and must not be changed.
	Add Code = 10
	Sub Code = 11
	Mul Code = 12
	Div Code = 13
	Pow Code = 14

	// Unary math
	Abs   Code = 20
	Exp   Code = 21
	Log10 Code = 22
	Ln    Code = 23
	Sqrt  Code = 24
	Sinh  Code = 25
	Cosh  Code = 26
	Tanh  Code = 27
	Sin   Code = 28
	Cos   Code = 29
	Tan   Code = 30
	Asin  Code = 31
	Acos  Code = 32
	Atan  Code = 33
	Besj0 Code = 34
	Besj1 Code = 35
	Besy0 Code = 36
	Besy1 Code = 37
	Erfcs Code = 38
	Erfc  Code = 39
	Erf   Code = 40
	Gamma Code = 41

	// Binary math
	Atan2 Code = 50

	// VarBase is the first variable-reference opcode. Every opcode value
	// greater than or equal to VarBase pushes the variable at offset
	// (opcode - VarBase) in the evaluate-time value vector.
	VarBase Code = 64
)

// Info contains information about an opcode.
type Info struct {
	Code Code
	Name string
}

var infos = make([]Info, VarBase)

func init() {
	type opInfo struct {
		op   Code
		name string
	}
	ops := []opInfo{
		{PushImmed, "PUSH_IMMED"},
		{Neg, "NEG"},
		{Add, "ADD"},
		{Sub, "SUB"},
		{Mul, "MUL"},
		{Div, "DIV"},
		{Pow, "POW"},
		{Abs, "ABS"},
		{Exp, "EXP"},
		{Log10, "LOG10"},
		{Ln, "LN"},
		{Sqrt, "SQRT"},
		{Sinh, "SINH"},
		{Cosh, "COSH"},
		{Tanh, "TANH"},
		{Sin, "SIN"},
		{Cos, "COS"},
		{Tan, "TAN"},
		{Asin, "ASIN"},
		{Acos, "ACOS"},
		{Atan, "ATAN"},
		{Besj0, "BESJ0"},
		{Besj1, "BESJ1"},
		{Besy0, "BESY0"},
		{Besy1, "BESY1"},
		{Erfcs, "ERFCS"},
		{Erfc, "ERFC"},
		{Erf, "ERF"},
		{Gamma, "GAMMA"},
		{Atan2, "ATAN2"},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Name: o.name,
			Code: o.op,
		}
	}
}

// GetInfo returns information about the given opcode. Variable-reference
// opcodes (values at or above VarBase) are named PUSH_VAR with the variable
// offset appended.
func GetInfo(op Code) Info {
	if op >= VarBase {
		return Info{
			Code: op,
			Name: fmt.Sprintf("PUSH_VAR %d", op-VarBase),
		}
	}
	return infos[op]
}

// IsBinary returns true if the opcode pops two operands and pushes one.
func IsBinary(op Code) bool {
	switch op {
	case Add, Sub, Mul, Div, Pow, Atan2:
		return true
	}
	return false
}
