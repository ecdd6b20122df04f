package parser

import (
	"github.com/risor-io/formula/builtins"
	"github.com/risor-io/formula/errz"
)

// Check validates src against the formula grammar for the given variable
// names. It returns nil if the string is well formed, or a *errz.SyntaxError
// whose position points into the original string. Check never mutates any
// state and may be called concurrently.
func Check(src string, vars []string) *errz.SyntaxError {
	norm, posMap := Normalize(src)
	if err := checkNorm(norm, vars); err != nil {
		return &errz.SyntaxError{
			Message: err.msg,
			Pos:     OrigPos(posMap, len(src), err.pos),
			Source:  src,
		}
	}
	return nil
}

// checkError is a violation located by a 0-based index into the normalised
// string. The index may equal the string length for end-of-input errors.
type checkError struct {
	msg string
	pos int
}

// checkNorm is the single left-to-right pass over the normalised string.
// The scanner state is "expecting operand"; each iteration consumes one
// operand (with optional sign and closing parentheses) and one trailing
// binary operator or comma.
func checkNorm(f string, vars []string) *checkError {
	n := len(f)
	if n == 0 {
		return &checkError{"Missing operand", 0}
	}
	depth := 0
	i := 0
	for {
		// Optional unary sign.
		if f[i] == '+' || f[i] == '-' {
			i++
			if i >= n {
				return &checkError{"Missing operand", i}
			}
			if isOperatorChar(f[i]) || f[i] == ',' {
				return &checkError{"Multiple operators", i}
			}
		}
		// Function call: the name must be followed by ( and the
		// parenthesised region must hold the declared argument count.
		if fn, ok := builtins.Match(f[i:]); ok {
			j := i + len(fn.Name)
			if j >= n || f[j] != '(' {
				return &checkError{"Missing (", j}
			}
			closing := matchParen(f, j)
			if closing < 0 {
				return &checkError{"Missing )", n}
			}
			commas := topLevelCommas(f[j+1 : closing])
			if commas != fn.Arity-1 {
				return &checkError{"Invalid number of arguments", j}
			}
			i = j
		}
		if f[i] == '(' {
			depth++
			i++
			if i >= n {
				return &checkError{"Missing operand", i}
			}
			if f[i] == ')' {
				return &checkError{"Empty parentheses", i}
			}
			continue
		}
		if isDigit(f[i]) || f[i] == '.' {
			_, _, end, err := ParseReal(f, i)
			if err != nil {
				return &checkError{"Invalid number format", i}
			}
			i = end
		} else {
			end := nameEnd(f, i)
			if end == i {
				return &checkError{"Invalid element", i}
			}
			if LookupVar(f[i:end], vars) > 0 {
				i = end
			} else if _, ok := builtins.MatchConstant(f[i:], 0); ok {
				i += builtins.ConstantLen
			} else {
				return &checkError{"Invalid element", i}
			}
		}
		// Closing parentheses.
		for i < n && f[i] == ')' {
			if f[i-1] == '(' {
				return &checkError{"Empty parentheses", i}
			}
			depth--
			if depth < 0 {
				return &checkError{"Mismatched parenthesis", i}
			}
			i++
		}
		if i >= n {
			if depth > 0 {
				return &checkError{"Missing )", i}
			}
			return nil
		}
		// Binary operator or argument separator.
		if isOperatorChar(f[i]) || f[i] == ',' {
			i++
			if i >= n {
				return &checkError{"Missing operand", i}
			}
			if f[i] == '*' || f[i] == '/' || f[i] == '^' || f[i] == ',' {
				return &checkError{"Multiple operators", i}
			}
			continue
		}
		return &checkError{"Missing operator", i}
	}
}

// LookupVar returns the 1-based index of name in vars, or 0 on a miss.
// Variable names are case-sensitive.
func LookupVar(name string, vars []string) int {
	for i, v := range vars {
		if v == name {
			return i + 1
		}
	}
	return 0
}

// NameEnd returns the index one past the end of an identifier beginning at
// i: the first following character that is an operator, comma, closing
// parenthesis, or blank.
func NameEnd(f string, i int) int {
	return nameEnd(f, i)
}

func nameEnd(f string, i int) int {
	for i < len(f) {
		switch f[i] {
		case '+', '-', '*', '/', '^', ',', ')', ' ':
			return i
		}
		i++
	}
	return i
}

func isOperatorChar(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '^':
		return true
	}
	return false
}

// matchParen returns the index of the ) matching the ( at open, or -1 if
// the parenthesis is never closed.
func matchParen(f string, open int) int {
	depth := 0
	for i := open; i < len(f); i++ {
		switch f[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// topLevelCommas counts commas at parenthesis depth zero of s.
func topLevelCommas(s string) int {
	depth, count := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				count++
			}
		}
	}
	return count
}
