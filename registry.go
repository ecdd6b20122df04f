package formula

import (
	"fmt"
	"io"
	"os"

	"github.com/risor-io/formula/compiler"
	"github.com/risor-io/formula/errz"
	"github.com/risor-io/formula/parser"
	"github.com/risor-io/formula/vm"
	"github.com/rs/zerolog"
)

// Registry is a fixed-length table of compiled formula slots, indexed
// 1..n. Each slot is filled by Parse, which fully replaces any prior
// content, and executed by Evaluate. Diagnostics, the mu0 scalar, and the
// last evaluation error are per-registry state.
//
// A Registry is not safe for concurrent use: each slot's evaluation stack
// lives in the slot, and the last-error cell is shared by all slots.
// Callers that want parallel evaluation should compile one Program per
// goroutine instead.
type Registry struct {
	slots   []*vm.VirtualMachine
	mu0     float64
	evalErr errz.EvalCode
	logger  zerolog.Logger
	out     io.Writer
	verbose bool
}

// New creates a registry with n empty slots, indexed 1..n.
func New(n int, opts ...Option) (*Registry, error) {
	if n < 1 {
		return nil, fmt.Errorf("formula: slot count must be at least 1 (got %d)", n)
	}
	r := &Registry{
		slots:  make([]*vm.VirtualMachine, n),
		mu0:    1,
		logger: zerolog.Nop(),
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Close releases all slots. It is idempotent; the registry must not be
// used afterwards except to call Close again.
func (r *Registry) Close() {
	if r.slots != nil {
		r.logger.Debug().Int("slots", len(r.slots)).Msg("formula registry released")
	}
	r.slots = nil
}

// Slots returns the number of slots in the registry.
func (r *Registry) Slots() int {
	return len(r.slots)
}

// SetMu0 sets the value compiled for the named constant "mu". The value is
// baked into immediates at parse time; formulas already parsed are not
// affected.
func (r *Registry) SetMu0(v float64) {
	r.mu0 = v
}

// Mu0 returns the current value of the registry's mu0 scalar.
func (r *Registry) Mu0() float64 {
	return r.mu0
}

// Parse compiles text against the ordered variable name list and stores the
// result in slot i (1-based), replacing any prior content. A nil return
// means the slot is ready for Evaluate. On a syntax error the slot is left
// unchanged and, in verbose mode, the caret diagnostic is printed to the
// registry's output.
func (r *Registry) Parse(i int, text string, vars []string) error {
	if i < 1 || i > len(r.slots) {
		return fmt.Errorf("formula: slot %d out of range 1..%d", i, len(r.slots))
	}
	code, err := r.compile(text, vars)
	if err != nil {
		return err
	}
	r.slots[i-1] = vm.New(code)
	r.logger.Debug().
		Int("slot", i).
		Str("source", text).
		Int("bytecode", len(code.Instructions())).
		Int("stack", code.StackCapacity()).
		Msg("formula parsed")
	return nil
}

// Check validates text exactly as Parse does but mutates no slot. It can be
// used to vet user input before committing it to the registry.
func (r *Registry) Check(text string, vars []string) error {
	_, err := r.compile(text, vars)
	return err
}

func (r *Registry) compile(text string, vars []string) (*compiler.Code, error) {
	if serr := parser.Check(text, vars); serr != nil {
		r.diagnose(serr)
		return nil, serr
	}
	code, err := compiler.New(
		compiler.WithVariables(vars),
		compiler.WithMu0(r.mu0),
	).Compile(text)
	if err != nil {
		if serr, ok := err.(*errz.SyntaxError); ok {
			r.diagnose(serr)
		}
		return nil, err
	}
	return code, nil
}

func (r *Registry) diagnose(serr *errz.SyntaxError) {
	if r.verbose {
		fmt.Fprint(r.out, serr.FriendlyErrorMessage())
	}
}

// Evaluate executes slot i against the given variable values and returns
// the result. On a numeric domain error it returns 0 and records the error
// code, readable through EvalErr and EvalErrMsg; on success the recorded
// code is cleared. The values slice must match the variable list used at
// parse time.
//
// Evaluating a slot that is out of range or was never parsed is a
// programmer error and panics.
func (r *Registry) Evaluate(i int, values []float64) float64 {
	if i < 1 || i > len(r.slots) {
		panic(fmt.Sprintf("formula: slot %d out of range 1..%d", i, len(r.slots)))
	}
	machine := r.slots[i-1]
	if machine == nil {
		panic(fmt.Sprintf("formula: slot %d has not been parsed", i))
	}
	result, code := machine.Eval(values)
	r.evalErr = code
	return result
}

// EvalErr returns the error code recorded by the most recent Evaluate
// call: zero for success, 1..8 for a numeric domain error.
func (r *Registry) EvalErr() errz.EvalCode {
	return r.evalErr
}

// EvalErrMsg returns the message for the given evaluation error code, or
// for the most recently recorded code when called without arguments. The
// result is empty for code zero and for out-of-range codes.
func (r *Registry) EvalErrMsg(code ...errz.EvalCode) string {
	if len(code) > 0 {
		return code[0].Message()
	}
	return r.evalErr.Message()
}

// Code returns the compiled program in slot i, or nil if the slot was
// never parsed. The returned value is read-only.
func (r *Registry) Code(i int) *compiler.Code {
	if i < 1 || i > len(r.slots) || r.slots[i-1] == nil {
		return nil
	}
	return r.slots[i-1].Code()
}
