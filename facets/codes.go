package facets

import (
	"regexp"
	"sort"
	"strconv"
)

// Service codes mix several coding systems. Display order groups them:
//
//	numeric         "90791", "97151"        ascending by value
//	letter prefix   "H2019", "T1019"        alphabetical
//	letter suffix   "0001F", "0591T"        ascending by numeric prefix
//	anything else                           lexicographic
var (
	numericCodeRe = regexp.MustCompile(`^\d+$`)
	prefixCodeRe  = regexp.MustCompile(`^[A-Za-z]\d+[A-Za-z0-9]*$`)
	suffixCodeRe  = regexp.MustCompile(`^(\d+)[A-Za-z]+$`)
)

type codeClass int

const (
	classNumeric codeClass = iota
	classPrefix
	classSuffix
	classOther
)

type codeKey struct {
	class codeClass
	num   uint64
	text  string
}

func keyOf(code string) codeKey {
	switch {
	case numericCodeRe.MatchString(code):
		n, _ := strconv.ParseUint(code, 10, 64)
		return codeKey{class: classNumeric, num: n, text: code}
	case prefixCodeRe.MatchString(code):
		return codeKey{class: classPrefix, text: code}
	}
	if m := suffixCodeRe.FindStringSubmatch(code); m != nil {
		n, _ := strconv.ParseUint(m[1], 10, 64)
		return codeKey{class: classSuffix, num: n, text: code}
	}
	return codeKey{class: classOther, text: code}
}

func (a codeKey) less(b codeKey) bool {
	if a.class != b.class {
		return a.class < b.class
	}
	if (a.class == classNumeric || a.class == classSuffix) && a.num != b.num {
		return a.num < b.num
	}
	return a.text < b.text
}

// CompareCodes orders two service codes in display order.
func CompareCodes(a, b string) int {
	ka, kb := keyOf(a), keyOf(b)
	switch {
	case ka.less(kb):
		return -1
	case kb.less(ka):
		return 1
	}
	return 0
}

// SortCodes sorts service codes in place in display order.
func SortCodes(codes []string) {
	keys := make(map[string]codeKey, len(codes))
	for _, c := range codes {
		keys[c] = keyOf(c)
	}
	sort.SliceStable(codes, func(i, j int) bool {
		return keys[codes[i]].less(keys[codes[j]])
	})
}
