package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Sort is the string tag of a declared variable type.
//
// Bit-vector sorts are tagged "BV{n}"; every other sort is its SMT-LIB name
// ("Bool", "Int", "Real").
type Sort string

const (
	SortBool Sort = "Bool"
	SortInt  Sort = "Int"
	SortReal Sort = "Real"
)

// BitVecSort returns the tag of a bit-vector sort of the given width.
func BitVecSort(width int) Sort {
	return Sort(fmt.Sprintf("BV{%d}", width))
}

// BitVecWidth reports the width of a bit-vector sort.
// ok is false when s is not a well-formed bit-vector tag.
func (s Sort) BitVecWidth() (width int, ok bool) {
	str := string(s)
	if !strings.HasPrefix(str, "BV{") || !strings.HasSuffix(str, "}") {
		return 0, false
	}
	n, err := strconv.Atoi(str[3 : len(str)-1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// IsBitVec reports whether s is a bit-vector sort.
func (s Sort) IsBitVec() bool {
	_, ok := s.BitVecWidth()
	return ok
}

// ParseSort accepts the sort spellings used in configuration: SMT-LIB names
// and the BV{n} tag. "BV8" is accepted as shorthand for "BV{8}".
func ParseSort(s string) (Sort, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty sort")
	}
	if Sort(s).IsBitVec() {
		return Sort(s), nil
	}
	if rest, found := strings.CutPrefix(s, "BV"); found {
		n, err := strconv.Atoi(rest)
		if err != nil || n <= 0 {
			return "", fmt.Errorf("invalid bit-vector sort %q", s)
		}
		return BitVecSort(n), nil
	}
	return Sort(s), nil
}
