package parser

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidNumber is returned by ParseReal for a malformed literal.
var ErrInvalidNumber = errors.New("invalid number format")

// ParseReal scans a real-number literal in s beginning at start. The
// accepted grammar is
//
//	[+|-]? digits? ('.' digits?)? ([eEdD] [+|-]? digits)?
//
// with at least one mantissa digit required, and at least one exponent
// digit required whenever the exponent marker is present. The markers d and
// D are synonyms for e and E. Leading blanks are skipped; a blank inside
// the number terminates it.
//
// ParseReal returns the value, the index of the first character of the
// literal (after leading blanks), the index one past the last consumed
// character, and an error for a malformed literal.
func ParseReal(s string, start int) (float64, int, int, error) {
	i := start
	for i < len(s) && s[i] == ' ' {
		i++
	}
	first := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	mantissa := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		mantissa++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			mantissa++
		}
	}
	if mantissa == 0 {
		return 0, first, i, ErrInvalidNumber
	}
	end := i
	if i < len(s) && isExpMarker(s[i]) {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expDigits := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			expDigits++
		}
		if expDigits == 0 {
			return 0, first, j, ErrInvalidNumber
		}
		end = j
	}
	text := s[first:end]
	if k := strings.IndexAny(text, "dD"); k >= 0 {
		text = text[:k] + "e" + text[k+1:]
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, first, end, ErrInvalidNumber
	}
	return value, first, end, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isExpMarker(c byte) bool {
	return c == 'e' || c == 'E' || c == 'd' || c == 'D'
}
