package posesource

import (
	"regexp"
	"slices"
	"strconv"
)

var digitRun = regexp.MustCompile(`\d+`)

// NumericToken returns the first run of digits in name, or 0 when there is none.
// Runs too long for an int saturate.
func NumericToken(name string) int {
	m := digitRun.FindString(name)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}

// SortByNumber orders names ascending by NumericToken. Equal tokens keep their
// listing order.
func SortByNumber(names []string) {
	slices.SortStableFunc(names, func(a, b string) int {
		na, nb := NumericToken(a), NumericToken(b)
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	})
}
