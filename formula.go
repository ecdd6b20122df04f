// Package formula compiles textual mathematical expressions over named
// variables to stack-machine bytecode and evaluates the bytecode repeatedly
// against supplied value vectors.
//
// The pipeline has three stages: a normalising syntax checker that locates
// the first violation in the user's original string, a compiler that lowers
// the expression to postfix bytecode by recursive substring analysis, and a
// fixed-stack interpreter with per-opcode domain-error detection.
//
// Most callers use either a Registry, which holds a fixed table of
// independently compiled slots:
//
//	r, _ := formula.New(4)
//	if err := r.Parse(1, "sqrt(x^2+y^2)", []string{"x", "y"}); err != nil {
//		// syntax error with position information
//	}
//	result := r.Evaluate(1, []float64{3, 4})
//
// or the one-shot helpers:
//
//	result, err := formula.Eval("2+3*4", nil, nil)
//
// A package-level default registry mirrors the Registry API for programs
// that want process-wide slots (Init, Teardown, Parse, Check, Evaluate).
package formula

import (
	"sync"

	"github.com/risor-io/formula/compiler"
	"github.com/risor-io/formula/errz"
	"github.com/risor-io/formula/vm"
)

// Program is one independently compiled formula, outside any registry. It
// owns its evaluation stack, so a Program must not be shared across
// goroutines without external synchronisation.
type Program struct {
	machine *vm.VirtualMachine
}

// Compile compiles text against the ordered variable name list and returns
// a runnable Program. Options are the registry options; WithMu0 and the
// verbose diagnostic options apply.
func Compile(text string, vars []string, opts ...Option) (*Program, error) {
	r, err := New(1, opts...)
	if err != nil {
		return nil, err
	}
	code, err := r.compile(text, vars)
	if err != nil {
		return nil, err
	}
	return &Program{machine: vm.New(code)}, nil
}

// Run evaluates the program against the given variable values. On a domain
// error it returns 0 and the nonzero error code.
func (p *Program) Run(values []float64) (float64, errz.EvalCode) {
	return p.machine.Eval(values)
}

// Code returns the compiled representation of the program.
func (p *Program) Code() *compiler.Code {
	return p.machine.Code()
}

// Eval compiles and evaluates text in one call. Syntax errors and domain
// errors are both reported through the returned error; domain errors are
// errz.EvalCode values.
func Eval(text string, vars []string, values []float64, opts ...Option) (float64, error) {
	program, err := Compile(text, vars, opts...)
	if err != nil {
		return 0, err
	}
	result, code := program.Run(values)
	if code != errz.EvalOK {
		return 0, code
	}
	return result, nil
}

// The package-level default registry. All functions below are safe for
// sequential use from any goroutine but, like the Registry itself, do not
// synchronise Parse against Evaluate on the same slot.
var (
	defaultMu       sync.Mutex
	defaultRegistry *Registry
)

// Init allocates the package default registry with n slots. Calling Init
// again without Teardown is tolerated: the previous registry is released
// first and a warning is logged.
func Init(n int, opts ...Option) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry != nil {
		defaultRegistry.logger.Warn().
			Msg("formula registry already initialised; releasing previous registry")
		defaultRegistry.Close()
		defaultRegistry = nil
	}
	r, err := New(n, opts...)
	if err != nil {
		return err
	}
	defaultRegistry = r
	return nil
}

// Teardown releases the package default registry. It is idempotent.
func Teardown() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry != nil {
		defaultRegistry.Close()
		defaultRegistry = nil
	}
}

func mustDefault() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		panic("formula: registry not initialised (call Init first)")
	}
	return defaultRegistry
}

// Parse fills slot i of the default registry. See Registry.Parse.
func Parse(i int, text string, vars []string) error {
	return mustDefault().Parse(i, text, vars)
}

// Check validates text against the default registry's configuration
// without mutating any slot. See Registry.Check.
func Check(text string, vars []string) error {
	return mustDefault().Check(text, vars)
}

// Evaluate executes slot i of the default registry. See Registry.Evaluate.
func Evaluate(i int, values []float64) float64 {
	return mustDefault().Evaluate(i, values)
}

// EvalErr returns the default registry's last evaluation error code.
func EvalErr() errz.EvalCode {
	return mustDefault().EvalErr()
}

// EvalErrMsg returns the message for the given code, or for the default
// registry's last recorded code when called without arguments.
func EvalErrMsg(code ...errz.EvalCode) string {
	return mustDefault().EvalErrMsg(code...)
}

// SetMu0 sets the default registry's mu0 scalar.
func SetMu0(v float64) {
	mustDefault().SetMu0(v)
}

// Mu0 returns the default registry's mu0 scalar.
func Mu0() float64 {
	return mustDefault().Mu0()
}
