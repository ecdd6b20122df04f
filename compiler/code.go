package compiler

import (
	"fmt"
	"strings"

	"github.com/risor-io/formula/op"
)

// Code is the compiled representation of one formula. It is immutable after
// compilation: evaluation reads the bytecode and immediates but never
// modifies them.
type Code struct {
	source     string
	vars       []string
	bytecode   []op.Code
	immediates []float64
	stackCap   int
}

// Source returns the original source text the formula was compiled from.
func (c *Code) Source() string {
	return c.source
}

// Instructions returns the bytecode. The returned slice is the internal
// buffer and must not be modified.
func (c *Code) Instructions() []op.Code {
	return c.bytecode
}

// Immediates returns the immediate values consumed by PUSH_IMMED opcodes in
// order of appearance. The returned slice is the internal buffer and must
// not be modified.
func (c *Code) Immediates() []float64 {
	return c.immediates
}

// StackCapacity returns the operand stack high-water mark observed during
// compilation. Executing the bytecode never needs more cells than this.
func (c *Code) StackCapacity() int {
	return c.stackCap
}

// VarCount returns the length of the variable name list the formula was
// compiled against. Evaluation requires a value vector of this length.
func (c *Code) VarCount() int {
	return len(c.vars)
}

// VarNames returns the variable names the formula was compiled against.
func (c *Code) VarNames() []string {
	return c.vars
}

// Disassemble returns a listing of the bytecode with one instruction per
// line: offset, opcode name, and the immediate value or variable name where
// one applies.
func (c *Code) Disassemble() string {
	var b strings.Builder
	di := 0
	for i, instr := range c.bytecode {
		info := op.GetInfo(instr)
		fmt.Fprintf(&b, "%04d %s", i, info.Name)
		switch {
		case instr == op.PushImmed:
			fmt.Fprintf(&b, " %v", c.immediates[di])
			di++
		case instr >= op.VarBase:
			idx := int(instr - op.VarBase)
			if idx < len(c.vars) {
				fmt.Fprintf(&b, " ; %s", c.vars[idx])
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
