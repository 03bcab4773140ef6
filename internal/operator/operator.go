// Package operator implements the boolean predicate tree matcher engines
// evaluate per event. Operator is a closed tagged variant,
// matched by Kind, following the same "no capability-based polymorphism"
// design note as the accessor package.
package operator

import (
	"regexp"
	"strings"

	"github.com/0x4d31/matcherd/internal/accessor"
	"github.com/0x4d31/matcherd/internal/evalctx"
	"github.com/0x4d31/matcherd/internal/matcherr"
	"github.com/0x4d31/matcherd/internal/value"
)

// Kind tags the compiled operator variant.
type Kind int

const (
	KindAnd Kind = iota
	KindOr
	KindNot
	KindEqual
	KindNotEqual
	KindGreater
	KindGreaterEqual
	KindLess
	KindLessEqual
	KindContains
	KindContainsIgnoreCase
	KindRegex
	KindStartsWith
	KindEndsWith
	KindTrue
)

// Operator is the compiled form of a boolean predicate.
type Operator struct {
	kind Kind

	children []Operator // KindAnd, KindOr
	operand  *Operator  // KindNot

	first  accessor.Accessor // comparison/string operators
	second accessor.Accessor

	pattern    *regexp.Regexp // KindRegex, compiled at build time
	patternSrc string
	target     accessor.Accessor // KindRegex
}

// True builds the always-true operator.
func True() Operator { return Operator{kind: KindTrue} }

// And builds a short-circuiting conjunction over children, evaluated in
// the given order.
func And(children ...Operator) Operator { return Operator{kind: KindAnd, children: children} }

// Or builds a short-circuiting disjunction over children, evaluated in
// the given order.
func Or(children ...Operator) Operator { return Operator{kind: KindOr, children: children} }

// Not negates operand.
func Not(operand Operator) Operator { return Operator{kind: KindNot, operand: &operand} }

// Comparison builds one of the equal/notEqual/greater*/less* operators.
// first and second must already be compiled accessors.
func Comparison(kind Kind, first, second accessor.Accessor) Operator {
	return Operator{kind: kind, first: first, second: second}
}

// StringOp builds one of contains/containsIgnoreCase/startsWith/endsWith.
func StringOp(kind Kind, first, second accessor.Accessor) Operator {
	return Operator{kind: kind, first: first, second: second}
}

// Regex builds the regex operator. pattern is compiled immediately; a
// failed compile is a build-time OperatorBuildError.
func Regex(pattern string, target accessor.Accessor) (Operator, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Operator{}, &matcherr.OperatorBuildError{OperatorType: "regex", Cause: err}
	}
	return Operator{kind: KindRegex, pattern: re, patternSrc: pattern, target: target}, nil
}

// Kind reports the compiled variant.
func (o Operator) Kind() Kind { return o.kind }

// Accessors returns every operand accessor reachable from o, including
// nested AND/OR/NOT children. Used by matchconf to validate that filter
// operators reference only "event.*".
func (o Operator) Accessors() []accessor.Accessor {
	var out []accessor.Accessor
	switch o.kind {
	case KindAnd, KindOr:
		for _, c := range o.children {
			out = append(out, c.Accessors()...)
		}
	case KindNot:
		if o.operand != nil {
			out = append(out, o.operand.Accessors()...)
		}
	case KindRegex:
		out = append(out, o.target)
	case KindEqual, KindNotEqual, KindGreater, KindGreaterEqual, KindLess, KindLessEqual,
		KindContains, KindContainsIgnoreCase, KindStartsWith, KindEndsWith:
		out = append(out, o.first, o.second)
	}
	return out
}

// Evaluate runs the operator against ie. Errors during evaluation (a
// missing value, a non-string regex target) yield false, never an error
// or panic.
func (o Operator) Evaluate(ie *evalctx.InternalEvent) bool {
	switch o.kind {
	case KindTrue:
		return true

	case KindAnd:
		for _, c := range o.children {
			if !c.Evaluate(ie) {
				return false
			}
		}
		return true

	case KindOr:
		for _, c := range o.children {
			if c.Evaluate(ie) {
				return true
			}
		}
		return false

	case KindNot:
		if o.operand == nil {
			return false
		}
		return !o.operand.Evaluate(ie)

	case KindEqual:
		a, aok := o.first.Get(ie)
		b, bok := o.second.Get(ie)
		if !aok || !bok {
			return false
		}
		return valuesEqual(a, b)

	case KindNotEqual:
		a, aok := o.first.Get(ie)
		b, bok := o.second.Get(ie)
		if !aok || !bok {
			return false
		}
		return !valuesEqual(a, b)

	case KindGreater, KindGreaterEqual, KindLess, KindLessEqual:
		a, aok := o.first.Get(ie)
		b, bok := o.second.Get(ie)
		if !aok || !bok {
			return false
		}
		cmp, ok := value.Compare(a, b)
		if !ok {
			return false
		}
		switch o.kind {
		case KindGreater:
			return cmp > 0
		case KindGreaterEqual:
			return cmp >= 0
		case KindLess:
			return cmp < 0
		case KindLessEqual:
			return cmp <= 0
		}
		return false

	case KindContains, KindContainsIgnoreCase:
		a, aok := o.first.Get(ie)
		b, bok := o.second.Get(ie)
		if !aok || !bok {
			return false
		}
		return containsValue(a, b, o.kind == KindContainsIgnoreCase)

	case KindStartsWith:
		a, aok := o.first.Get(ie)
		b, bok := o.second.Get(ie)
		if !aok || !bok || a.Kind() != value.KindString {
			return false
		}
		return strings.HasPrefix(a.String(), b.String())

	case KindEndsWith:
		a, aok := o.first.Get(ie)
		b, bok := o.second.Get(ie)
		if !aok || !bok || a.Kind() != value.KindString {
			return false
		}
		return strings.HasSuffix(a.String(), b.String())

	case KindRegex:
		t, ok := o.target.Get(ie)
		if !ok || t.Kind() != value.KindString {
			return false
		}
		s, _ := t.AsString()
		return o.pattern.MatchString(s)

	default:
		return false
	}
}

// valuesEqual implements equal/not_equal's coercion: numerically/
// lexicographically equal via value.Compare when defined, otherwise
// structural equality for matching kinds, otherwise not equal.
func valuesEqual(a, b value.Value) bool {
	if cmp, ok := value.Compare(a, b); ok {
		return cmp == 0
	}
	if a.Kind() == b.Kind() {
		return a.Equal(b)
	}
	return false
}

func containsValue(haystack, needle value.Value, ignoreCase bool) bool {
	switch haystack.Kind() {
	case value.KindString:
		hs, _ := haystack.AsString()
		ns := needle.String()
		if ignoreCase {
			return strings.Contains(strings.ToLower(hs), strings.ToLower(ns))
		}
		return strings.Contains(hs, ns)
	case value.KindArray:
		arr, _ := haystack.AsArray()
		for _, e := range arr {
			if ignoreCase {
				if es, ok := e.AsString(); ok {
					if ns, ok := needle.AsString(); ok && strings.EqualFold(es, ns) {
						return true
					}
					continue
				}
			}
			if e.Equal(needle) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
