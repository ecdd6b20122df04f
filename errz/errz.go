// Package errz defines error types produced while parsing and evaluating
// formulas, with source locations and caret diagnostics.
package errz

import (
	"fmt"
	"strings"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrSyntax indicates a syntax error found while checking or compiling
	// a formula string.
	ErrSyntax ErrorKind = iota
	// ErrEval indicates a numeric domain error raised during evaluation.
	ErrEval
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax error"
	case ErrEval:
		return "evaluation error"
	default:
		return "error"
	}
}

// SyntaxError is a located error in a formula string. Pos is the 1-based
// index of the offending character in the original (un-normalised) source;
// 0 means the position is unknown.
type SyntaxError struct {
	Message string
	Pos     int
	Source  string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Pos == 0 {
		return fmt.Sprintf("syntax error: %s", e.Message)
	}
	return fmt.Sprintf("syntax error: %s (position %d)", e.Message, e.Pos)
}

// FriendlyErrorMessage returns the diagnostic block for this error: the
// header line, a blank line, the original source indented by one space, and
// a caret aligned under the offending character.
func (e *SyntaxError) FriendlyErrorMessage() string {
	var b strings.Builder
	b.WriteString("*** Error in syntax of function string: ")
	b.WriteString(e.Message)
	b.WriteString("\n\n ")
	b.WriteString(e.Source)
	b.WriteString("\n")
	if e.Pos > 0 {
		b.WriteString(strings.Repeat(" ", e.Pos))
		b.WriteString("^\n")
	}
	return b.String()
}

// EvalCode enumerates the numeric domain errors an evaluation can raise.
// Zero means no error.
type EvalCode int

const (
	EvalOK          EvalCode = 0
	EvalDivZero     EvalCode = 1
	EvalSqrtNeg     EvalCode = 2
	EvalLogNonPos   EvalCode = 3
	EvalAsinRange   EvalCode = 4
	EvalPowDomain   EvalCode = 5
	EvalBesy0NonPos EvalCode = 6
	EvalBesy1NonPos EvalCode = 7
	EvalGammaPole   EvalCode = 8
)

var evalMessages = map[EvalCode]string{
	EvalDivZero:     "division by zero",
	EvalSqrtNeg:     "square root of negative argument",
	EvalLogNonPos:   "logarithm of non-positive argument",
	EvalAsinRange:   "asin/acos argument out of range",
	EvalPowDomain:   "negative base to fractional power",
	EvalBesy0NonPos: "besy0 of non-positive argument",
	EvalBesy1NonPos: "besy1 of non-positive argument",
	EvalGammaPole:   "gamma at non-positive integer",
}

// Message returns the human-readable message for the code, or the empty
// string for EvalOK and out-of-range codes.
func (c EvalCode) Message() string {
	return evalMessages[c]
}

// Error implements the error interface. It is only meaningful for nonzero
// codes.
func (c EvalCode) Error() string {
	if msg := c.Message(); msg != "" {
		return fmt.Sprintf("evaluation error %d: %s", int(c), msg)
	}
	return fmt.Sprintf("evaluation error %d", int(c))
}
