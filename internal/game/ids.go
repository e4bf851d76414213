package game

import (
	"cmp"
	"strconv"
	"strings"
	"unicode"
)

// CompareIDs orders participant ids naturally: a shared textual prefix is
// compared as text and a trailing run of digits as a number, so "Agent-2"
// sorts before "Agent-10".
func CompareIDs(a, b string) int {
	pa, na, okA := splitNumericSuffix(a)
	pb, nb, okB := splitNumericSuffix(b)
	if okA && okB && pa == pb {
		if c := cmp.Compare(na, nb); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}

func splitNumericSuffix(s string) (string, uint64, bool) {
	i := len(s)
	for i > 0 && unicode.IsDigit(rune(s[i-1])) {
		i--
	}
	if i == len(s) {
		return s, 0, false
	}
	n, err := strconv.ParseUint(s[i:], 10, 64)
	if err != nil {
		return s, 0, false
	}
	return s[:i], n, true
}
