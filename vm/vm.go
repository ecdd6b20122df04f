// Package vm provides a virtual machine that executes compiled formula
// bytecode.
package vm

import (
	"math"

	"github.com/risor-io/formula/builtins"
	"github.com/risor-io/formula/compiler"
	"github.com/risor-io/formula/errz"
	"github.com/risor-io/formula/op"
)

// VirtualMachine executes the bytecode of one compiled formula. The operand
// stack is allocated once, sized to the compile-time high-water mark, and
// reused across evaluations, so a VirtualMachine must not be used from
// multiple goroutines at once. Evaluation never mutates the bytecode or
// immediates.
type VirtualMachine struct {
	code  *compiler.Code
	stack []float64
}

// New creates a virtual machine for the given compiled formula.
func New(code *compiler.Code) *VirtualMachine {
	return &VirtualMachine{
		code:  code,
		stack: make([]float64, code.StackCapacity()),
	}
}

// Code returns the compiled formula this machine executes.
func (vm *VirtualMachine) Code() *compiler.Code {
	return vm.code
}

// Eval executes the bytecode against the given variable values and returns
// the result. On a numeric domain error it returns 0 and the corresponding
// nonzero error code. The values slice must have one entry per variable
// name the formula was compiled against; this is a programmer contract, not
// a runtime check.
func (vm *VirtualMachine) Eval(values []float64) (float64, errz.EvalCode) {
	var (
		instrs = vm.code.Instructions()
		immeds = vm.code.Immediates()
		stack  = vm.stack
		ip     int
		dp     int
		sp     int
	)
	for ip = 0; ip < len(instrs); ip++ {
		opcode := instrs[ip]
		if opcode >= op.VarBase {
			stack[sp] = values[opcode-op.VarBase]
			sp++
			continue
		}
		switch opcode {
		case op.PushImmed:
			stack[sp] = immeds[dp]
			dp++
			sp++
		case op.Neg:
			stack[sp-1] = -stack[sp-1]
		case op.Add:
			stack[sp-2] += stack[sp-1]
			sp--
		case op.Sub:
			stack[sp-2] -= stack[sp-1]
			sp--
		case op.Mul:
			stack[sp-2] *= stack[sp-1]
			sp--
		case op.Div:
			if stack[sp-1] == 0 {
				return 0, errz.EvalDivZero
			}
			stack[sp-2] /= stack[sp-1]
			sp--
		case op.Pow:
			base, exp := stack[sp-2], stack[sp-1]
			if base == 0 && exp < 0 {
				return 0, errz.EvalDivZero
			}
			if base <= 0 && exp != math.Trunc(exp) {
				return 0, errz.EvalPowDomain
			}
			stack[sp-2] = math.Pow(base, exp)
			sp--
		case op.Abs:
			stack[sp-1] = math.Abs(stack[sp-1])
		case op.Exp:
			stack[sp-1] = math.Exp(stack[sp-1])
		case op.Log10:
			if stack[sp-1] <= 0 {
				return 0, errz.EvalLogNonPos
			}
			stack[sp-1] = math.Log10(stack[sp-1])
		case op.Ln:
			if stack[sp-1] <= 0 {
				return 0, errz.EvalLogNonPos
			}
			stack[sp-1] = math.Log(stack[sp-1])
		case op.Sqrt:
			if stack[sp-1] < 0 {
				return 0, errz.EvalSqrtNeg
			}
			stack[sp-1] = math.Sqrt(stack[sp-1])
		case op.Sinh:
			stack[sp-1] = math.Sinh(stack[sp-1])
		case op.Cosh:
			stack[sp-1] = math.Cosh(stack[sp-1])
		case op.Tanh:
			stack[sp-1] = math.Tanh(stack[sp-1])
		case op.Sin:
			stack[sp-1] = math.Sin(stack[sp-1])
		case op.Cos:
			stack[sp-1] = math.Cos(stack[sp-1])
		case op.Tan:
			stack[sp-1] = math.Tan(stack[sp-1])
		case op.Asin:
			if math.Abs(stack[sp-1]) > 1 {
				return 0, errz.EvalAsinRange
			}
			stack[sp-1] = math.Asin(stack[sp-1])
		case op.Acos:
			if math.Abs(stack[sp-1]) > 1 {
				return 0, errz.EvalAsinRange
			}
			stack[sp-1] = math.Acos(stack[sp-1])
		case op.Atan:
			stack[sp-1] = math.Atan(stack[sp-1])
		case op.Besj0:
			stack[sp-1] = math.J0(stack[sp-1])
		case op.Besj1:
			stack[sp-1] = math.J1(stack[sp-1])
		case op.Besy0:
			if stack[sp-1] <= 0 {
				return 0, errz.EvalBesy0NonPos
			}
			stack[sp-1] = math.Y0(stack[sp-1])
		case op.Besy1:
			if stack[sp-1] <= 0 {
				return 0, errz.EvalBesy1NonPos
			}
			stack[sp-1] = math.Y1(stack[sp-1])
		case op.Erfcs:
			stack[sp-1] = builtins.Erfcs(stack[sp-1])
		case op.Erfc:
			stack[sp-1] = math.Erfc(stack[sp-1])
		case op.Erf:
			stack[sp-1] = math.Erf(stack[sp-1])
		case op.Gamma:
			x := stack[sp-1]
			if x <= 0 && x == math.Trunc(x) {
				return 0, errz.EvalGammaPole
			}
			stack[sp-1] = math.Gamma(x)
		case op.Atan2:
			stack[sp-2] = math.Atan2(stack[sp-2], stack[sp-1])
			sp--
		}
	}
	return stack[0], errz.EvalOK
}
