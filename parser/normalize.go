// Package parser implements normalisation and syntax checking of formula
// source text. The checker is a single fail-fast left-to-right pass that
// reports the first violation with a position in the original string.
package parser

// Normalize returns the working copy of src used by the checker and the
// compiler, plus the position map. The rewrites are "**" to "^" followed by
// elision of all spaces, so "a ** b" and "a**b" normalise identically. The
// returned map holds, for each character of the working copy, its 1-based
// index in the original string.
func Normalize(src string) (string, []int) {
	buf := make([]byte, 0, len(src))
	pos := make([]int, 0, len(src))
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == ' ' {
			continue
		}
		if c == '*' && i+1 < len(src) && src[i+1] == '*' {
			buf = append(buf, '^')
			pos = append(pos, i+1)
			i++
			continue
		}
		buf = append(buf, c)
		pos = append(pos, i+1)
	}
	return string(buf), pos
}

// OrigPos maps a 0-based index into the normalised string back to the
// 1-based index in the original string of length srcLen. An index at or
// past the end of the normalised string maps to one past the end of the
// original, so end-of-input diagnostics point just after the last character.
func OrigPos(posMap []int, srcLen, npos int) int {
	if npos < 0 {
		return 0
	}
	if npos >= len(posMap) {
		return srcLen + 1
	}
	return posMap[npos]
}
