package value

import "testing"

func TestCompareStrings(t *testing.T) {
	r, ok := Compare(String("a"), String("b"))
	if !ok || r >= 0 {
		t.Errorf("Compare(a,b) = %d,%v, want <0,true", r, ok)
	}
}

func TestCompareNumbers(t *testing.T) {
	r, ok := Compare(Number(5), Number(3))
	if !ok || r <= 0 {
		t.Errorf("Compare(5,3) = %d,%v, want >0,true", r, ok)
	}
}

func TestCompareMixedNumericString(t *testing.T) {
	r, ok := Compare(Number(5), String("5"))
	if !ok || r != 0 {
		t.Errorf("Compare(5,\"5\") = %d,%v, want 0,true (lossless conversion)", r, ok)
	}

	if _, ok := Compare(Number(5), String("not-a-number")); ok {
		t.Error("Compare(5, \"not-a-number\") should be undefined")
	}
}

func TestCompareUndefinedCombinations(t *testing.T) {
	undefined := []struct{ a, b Value }{
		{Bool(true), Number(1)},
		{Bool(true), String("true")},
		{Array(Number(1)), Array(Number(1))},
		{Map(map[string]Value{"a": Number(1)}), Map(map[string]Value{"a": Number(1)})},
		{Bool(true), Bool(false)},
	}
	for _, c := range undefined {
		if _, ok := Compare(c.a, c.b); ok {
			t.Errorf("Compare(%v, %v) should be undefined (ok=false), got ok=true", c.a, c.b)
		}
	}
}
