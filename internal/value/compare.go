package value

import (
	"strconv"
	"strings"
)

// Compare orders a and b using the operator tree's comparison coercion
// rules: strings compare lexicographically, numbers numerically, and a
// mixed number/string
// pair compares numerically when the string converts losslessly. Every
// other combination (bool paired with anything, array/map involved on
// either side) is undefined and reports ok=false — callers (the operator
// tree) must treat that as "not equal"/"false", never as an error.
func Compare(a, b Value) (result int, ok bool) {
	switch {
	case a.Kind() == KindString && b.Kind() == KindString:
		as, _ := a.AsString()
		bs, _ := b.AsString()
		return strings.Compare(as, bs), true

	case a.Kind() == KindNumber && b.Kind() == KindNumber:
		an, _ := a.AsNumber()
		bn, _ := b.AsNumber()
		return compareFloat(an, bn), true

	case a.Kind() == KindNumber && b.Kind() == KindString:
		an, _ := a.AsNumber()
		bs, _ := b.AsString()
		bn, err := strconv.ParseFloat(bs, 64)
		if err != nil {
			return 0, false
		}
		return compareFloat(an, bn), true

	case a.Kind() == KindString && b.Kind() == KindNumber:
		as, _ := a.AsString()
		bn, _ := b.AsNumber()
		an, err := strconv.ParseFloat(as, 64)
		if err != nil {
			return 0, false
		}
		return compareFloat(an, bn), true

	default:
		return 0, false
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
