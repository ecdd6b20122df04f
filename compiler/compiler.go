// Package compiler lowers formula source text to stack-machine bytecode.
//
// There is no AST. The compiler works directly on the normalised source
// string by recursive substring analysis: each call examines a window
// [b, e] and decides, in fixed order, whether it is a sign application, a
// fully parenthesised group, a function call, a binary operation, or a
// leaf. Binary operators are located by scanning the window at parenthesis
// depth zero, trying precedence classes from lowest (+ -) to highest (^);
// within a class the rightmost occurrence splits the window, except for ^
// where the leftmost does, which yields left-associative + - * / and
// right-associative ^. A + or - found by the scan only splits the window
// when it is classified binary: a sign at the window start, after another
// operator or an opening parenthesis, or inside a real-number exponent is
// part of the operand instead.
//
// Compilation runs the recursion twice. The dry pass only counts emitted
// opcodes and immediates and tracks the abstract operand-stack depth; the
// buffers are then allocated at their exact sizes and the emit pass repeats
// the identical decisions to fill them. The recorded stack high-water mark
// becomes the capacity the interpreter allocates.
package compiler

import (
	"fmt"

	"github.com/risor-io/formula/builtins"
	"github.com/risor-io/formula/errz"
	"github.com/risor-io/formula/op"
	"github.com/risor-io/formula/parser"
)

// Option is a configuration function for a Compiler.
type Option func(*Compiler)

// WithVariables sets the ordered variable name list. The position of a name
// determines the offset encoded in its variable opcode.
func WithVariables(names []string) Option {
	return func(c *Compiler) {
		c.vars = names
	}
}

// WithMu0 sets the value compiled for the named constant "mu". Defaults to
// builtins.DefaultMu0. The value is baked into the immediates at compile
// time; later changes do not affect already-compiled formulas.
func WithMu0(v float64) Option {
	return func(c *Compiler) {
		c.mu0 = v
	}
}

// Compiler compiles formula source text against a fixed variable list.
type Compiler struct {
	vars []string
	mu0  float64
}

// New creates a new Compiler with the given options.
func New(opts ...Option) *Compiler {
	c := &Compiler{mu0: builtins.DefaultMu0}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles source text to bytecode. The input is normalised here,
// so "a ** b" and "a**b" compile identically. Syntax errors are located
// *errz.SyntaxError values pointing into the original string; a failed
// internal consistency check (stack effect, emit-pass divergence) is
// reported as a plain error.
func (c *Compiler) Compile(src string) (*Code, error) {
	norm, posMap := parser.Normalize(src)

	dry := &emitter{f: norm, posMap: posMap, src: src, vars: c.vars, mu0: c.mu0, dry: true}
	if err := dry.compileWindow(0, len(norm)-1); err != nil {
		return nil, err
	}
	if dry.depth != 1 {
		return nil, fmt.Errorf("compile error: stack effect of %q is %d, want 1", src, dry.depth)
	}

	emit := &emitter{
		f: norm, posMap: posMap, src: src, vars: c.vars, mu0: c.mu0,
		bytecode:   make([]op.Code, 0, dry.nb),
		immediates: make([]float64, 0, dry.ni),
	}
	if err := emit.compileWindow(0, len(norm)-1); err != nil {
		return nil, err
	}
	if len(emit.bytecode) != dry.nb || len(emit.immediates) != dry.ni {
		return nil, fmt.Errorf("compile error: emit pass diverged for %q", src)
	}

	vars := make([]string, len(c.vars))
	copy(vars, c.vars)
	return &Code{
		source:     src,
		vars:       vars,
		bytecode:   emit.bytecode,
		immediates: emit.immediates,
		stackCap:   dry.maxDepth,
	}, nil
}

// emitter runs one compilation pass. In the dry pass it only counts; in the
// emit pass it writes the preallocated buffers. Both passes track the
// abstract stack depth.
type emitter struct {
	f      string // normalised source
	posMap []int
	src    string
	vars   []string
	mu0    float64

	dry        bool
	nb, ni     int
	bytecode   []op.Code
	immediates []float64

	depth    int
	maxDepth int
}

func (e *emitter) emit(code op.Code) {
	if e.dry {
		e.nb++
	} else {
		e.bytecode = append(e.bytecode, code)
	}
	switch {
	case code == op.PushImmed || code >= op.VarBase:
		e.depth++
		if e.depth > e.maxDepth {
			e.maxDepth = e.depth
		}
	case op.IsBinary(code):
		e.depth--
	}
}

func (e *emitter) emitImmediate(v float64) {
	if e.dry {
		e.ni++
	} else {
		e.immediates = append(e.immediates, v)
	}
}

func (e *emitter) errorAt(npos int, msg string) *errz.SyntaxError {
	return &errz.SyntaxError{
		Message: msg,
		Pos:     parser.OrigPos(e.posMap, len(e.src), npos),
		Source:  e.src,
	}
}

// compileWindow compiles the window [b, end] (inclusive) of the normalised
// string. The case order is fixed; earlier cases take precedence.
func (e *emitter) compileWindow(b, end int) error {
	if b > end || b < 0 || end >= len(e.f) {
		return e.errorAt(b, "Missing operand")
	}
	f := e.f

	// Leading unary plus.
	if f[b] == '+' {
		return e.compileWindow(b+1, end)
	}

	// Fully enclosing parentheses.
	if enclosed(f, b, end) {
		return e.compileWindow(b+1, end-1)
	}

	// Function call.
	if isLetter(f[b]) {
		if done, err := e.compileCall(b, end); done {
			return err
		}
	}

	if f[b] == '-' && b < end {
		// Unary minus over a parenthesised group.
		if enclosed(f, b+1, end) {
			if err := e.compileWindow(b+2, end-1); err != nil {
				return err
			}
			e.emit(op.Neg)
			return nil
		}
		// Unary minus over a function call.
		if isLetter(f[b+1]) {
			if done, err := e.compileCall(b+1, end); done {
				if err != nil {
					return err
				}
				e.emit(op.Neg)
				return nil
			}
		}
	}

	// Binary operator, lowest precedence class first.
	if j, opcode := e.findBinary(b, end); j >= 0 {
		// A leading - binds looser than * / ^ but tighter than + -, so
		// -a^b compiles as -(a^b) while -a+b compiles as (-a)+b.
		if f[b] == '-' && (opcode == op.Mul || opcode == op.Div || opcode == op.Pow) {
			if err := e.compileWindow(b+1, end); err != nil {
				return err
			}
			e.emit(op.Neg)
			return nil
		}
		if err := e.compileWindow(b, j-1); err != nil {
			return err
		}
		if err := e.compileWindow(j+1, end); err != nil {
			return err
		}
		e.emit(opcode)
		return nil
	}

	return e.compileLeaf(b, end)
}

// compileCall recognises and compiles a function call spanning exactly
// [b, end]. The first return value reports whether the window was a call;
// when false the caller falls through to the remaining cases.
func (e *emitter) compileCall(b, end int) (bool, error) {
	f := e.f
	fn, ok := builtins.Match(f[b : end+1])
	if !ok {
		return false, nil
	}
	p := b + len(fn.Name)
	if p >= end || f[p] != '(' || !enclosed(f, p, end) {
		return false, nil
	}
	if fn.Arity == 2 {
		m := topComma(f, p+1, end-1)
		if m < 0 {
			return true, e.errorAt(p, "Invalid number of arguments")
		}
		if err := e.compileWindow(p+1, m-1); err != nil {
			return true, err
		}
		if err := e.compileWindow(m+1, end-1); err != nil {
			return true, err
		}
	} else {
		if err := e.compileWindow(p+1, end-1); err != nil {
			return true, err
		}
	}
	e.emit(fn.Code)
	return true, nil
}

// compileLeaf compiles a number, variable, or named constant, with an
// optional leading minus applied after the operand is pushed.
func (e *emitter) compileLeaf(b, end int) error {
	f := e.f
	neg := false
	if f[b] == '-' {
		neg = true
		b++
		if b > end {
			return e.errorAt(b, "Missing operand")
		}
	}
	switch {
	case isDigit(f[b]) || f[b] == '.':
		value, _, numEnd, err := parser.ParseReal(f[:end+1], b)
		if err != nil || numEnd != end+1 {
			return e.errorAt(b, "Invalid number format")
		}
		e.emit(op.PushImmed)
		e.emitImmediate(value)
	default:
		if idx := parser.LookupVar(f[b:end+1], e.vars); idx > 0 {
			e.emit(op.VarBase + op.Code(idx-1))
		} else if v, ok := builtins.MatchConstant(f[b:end+1], e.mu0); ok && end+1-b == builtins.ConstantLen {
			e.emit(op.PushImmed)
			e.emitImmediate(v)
		} else {
			return e.errorAt(b, "Invalid element")
		}
	}
	if neg {
		e.emit(op.Neg)
	}
	return nil
}

// findBinary locates the operator that splits the window: the rightmost
// depth-zero binary + or -, else the rightmost depth-zero * or /, else the
// leftmost depth-zero ^. It returns -1 when the window holds no binary
// operator.
func (e *emitter) findBinary(b, end int) (int, op.Code) {
	f := e.f
	depth := 0
	for j := end; j >= b; j-- {
		switch f[j] {
		case ')':
			depth++
		case '(':
			depth--
		case '+':
			if depth == 0 && e.isBinarySign(j) {
				return j, op.Add
			}
		case '-':
			if depth == 0 && e.isBinarySign(j) {
				return j, op.Sub
			}
		}
	}
	depth = 0
	for j := end; j >= b; j-- {
		switch f[j] {
		case ')':
			depth++
		case '(':
			depth--
		case '*':
			if depth == 0 {
				return j, op.Mul
			}
		case '/':
			if depth == 0 {
				return j, op.Div
			}
		}
	}
	depth = 0
	for j := b; j <= end; j++ {
		switch f[j] {
		case '(':
			depth++
		case ')':
			depth--
		case '^':
			if depth == 0 {
				return j, op.Pow
			}
		}
	}
	return -1, op.Invalid
}

// isBinarySign classifies the + or - at position j of the normalised
// string. It is unary when leading, when preceded by an operator or an
// opening parenthesis, or when it is the sign of a real-number exponent.
func (e *emitter) isBinarySign(j int) bool {
	if j == 0 {
		return false
	}
	switch e.f[j-1] {
	case '+', '-', '*', '/', '^', '(':
		return false
	}
	return !e.isExponentSign(j)
}

// isExponentSign reports whether the sign at j sits between a real-number
// exponent marker and an exponent digit, with a well-formed mantissa to the
// left of the marker.
func (e *emitter) isExponentSign(j int) bool {
	f := e.f
	if j+1 >= len(f) || !isDigit(f[j+1]) {
		return false
	}
	if j == 0 || !isExpMarker(f[j-1]) {
		return false
	}
	digits, dots := 0, 0
	for i := j - 2; i >= 0; i-- {
		c := f[i]
		if isDigit(c) {
			digits++
			continue
		}
		if c == '.' {
			dots++
			if dots > 1 {
				return false
			}
			continue
		}
		switch c {
		case '+', '-', '*', '/', '^', '(':
			return digits >= 1
		}
		return false
	}
	return digits >= 1
}

// enclosed reports whether the window [b, end] is one fully parenthesised
// group: it starts with ( and ends with ), and the depth never returns to
// zero before the final character.
func enclosed(f string, b, end int) bool {
	if b >= end || f[b] != '(' || f[end] != ')' {
		return false
	}
	depth := 0
	for i := b; i < end; i++ {
		switch f[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 {
			return false
		}
	}
	return true
}

// topComma returns the position of the first depth-zero comma in [b, end],
// or -1 if there is none.
func topComma(f string, b, end int) int {
	depth := 0
	for i := b; i <= end; i++ {
		switch f[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isExpMarker(c byte) bool {
	return c == 'e' || c == 'E' || c == 'd' || c == 'D'
}
