package operator

import (
	"testing"

	"github.com/0x4d31/matcherd/internal/accessor"
	"github.com/0x4d31/matcherd/internal/evalctx"
	"github.com/0x4d31/matcherd/internal/value"
)

func newEvent(t *testing.T, eventType string, payload map[string]value.Value) *evalctx.InternalEvent {
	t.Helper()
	ev, err := evalctx.NewEvent(eventType, 1, payload, nil, "")
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	return evalctx.NewInternalEvent(ev)
}

func compile(t *testing.T, src string) accessor.Accessor {
	t.Helper()
	a, err := accessor.Compile(src, nil)
	if err != nil {
		t.Fatalf("Compile(%q): %v", src, err)
	}
	return a
}

func TestTrueOperator(t *testing.T) {
	if !True().Evaluate(newEvent(t, "x", nil)) {
		t.Error("true operator must always evaluate true")
	}
}

func TestEqualOperatorMatchesSameValue(t *testing.T) {
	op := Comparison(KindEqual, compile(t, "${event.type}"), compile(t, "email"))
	if !op.Evaluate(newEvent(t, "email", nil)) {
		t.Error("expected match for type == email")
	}
	if op.Evaluate(newEvent(t, "sms", nil)) {
		t.Error("expected no match for type != email")
	}
}

func TestAndShortCircuitsLeftToRight(t *testing.T) {
	order := []string{}
	rec := func(name string, val bool) Operator {
		return recordingOperator(&order, name, val)
	}
	op := And(rec("a", false), rec("b", true))
	if op.Evaluate(newEvent(t, "x", nil)) {
		t.Error("AND should be false")
	}
	if len(order) != 1 || order[0] != "a" {
		t.Errorf("AND should short-circuit after first false, got %v", order)
	}
}

func TestOrShortCircuitsLeftToRight(t *testing.T) {
	order := []string{}
	rec := func(name string, val bool) Operator {
		return recordingOperator(&order, name, val)
	}
	op := Or(rec("a", true), rec("b", false))
	if !op.Evaluate(newEvent(t, "x", nil)) {
		t.Error("OR should be true")
	}
	if len(order) != 1 || order[0] != "a" {
		t.Errorf("OR should short-circuit after first true, got %v", order)
	}
}

// recordingOperator wraps a literal bool with a side-effecting Evaluate to
// assert ordering; implemented as a thin custom accessor so it fits the
// tagged-variant Operator without adding a test-only Kind. The recorded
// value is rendered as a string so both operands share value.KindString,
// keeping the comparison defined.
func recordingOperator(order *[]string, name string, val bool) Operator {
	reg := accessor.NewRegistry()
	reg.Register("rec_"+name, func(ie *evalctx.InternalEvent) (value.Value, bool) {
		*order = append(*order, name)
		if val {
			return value.String("true"), true
		}
		return value.String("false"), true
	})
	a, _ := accessor.Compile("${rec_"+name+"}", reg)
	b, _ := accessor.Compile("true", nil)
	return Comparison(KindEqual, a, b)
}

func TestRegexOperatorOnNonStringReturnsFalse(t *testing.T) {
	op, err := Regex("^ALERT", compile(t, "${event.payload.n}"))
	if err != nil {
		t.Fatalf("Regex: %v", err)
	}
	ev := newEvent(t, "x", map[string]value.Value{"n": value.Number(1)})
	if op.Evaluate(ev) {
		t.Error("regex on non-string value must return false")
	}
}

func TestRegexOperatorBuildErrorOnBadPattern(t *testing.T) {
	if _, err := Regex("(unterminated", compile(t, "${event.type}")); err == nil {
		t.Error("expected OperatorBuildError for invalid regex pattern")
	}
}

func TestComparisonBoolVsStringIsUndefinedFalse(t *testing.T) {
	ev := newEvent(t, "x", nil)
	reg := accessor.NewRegistry()
	reg.Register("boolval", func(ie *evalctx.InternalEvent) (value.Value, bool) {
		return value.Bool(true), true
	})
	boolAcc, _ := accessor.Compile("${boolval}", reg)
	strAcc := compile(t, "abc")
	op := Comparison(KindGreater, boolAcc, strAcc)
	if op.Evaluate(ev) {
		t.Error("bool vs string comparison must be undefined (false)")
	}
	eq := Comparison(KindEqual, boolAcc, strAcc)
	if eq.Evaluate(ev) {
		t.Error("bool vs string equality must also be undefined (false)")
	}
}

func TestEqualOperatorRejectsDifferentValue(t *testing.T) {
	op := Comparison(KindEqual, compile(t, "${event.type}"), compile(t, "x"))
	if op.Evaluate(newEvent(t, "y", nil)) {
		t.Error("filter should not match when event.type differs")
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	op := StringOp(KindContainsIgnoreCase, compile(t, "${event.payload.s}"), compile(t, "ALERT"))
	ev := newEvent(t, "x", map[string]value.Value{"s": value.String("an alert fired")})
	if !op.Evaluate(ev) {
		t.Error("containsIgnoreCase should match case-insensitively")
	}
}

func TestStartsWithEndsWith(t *testing.T) {
	sw := StringOp(KindStartsWith, compile(t, "${event.payload.s}"), compile(t, "ale"))
	ew := StringOp(KindEndsWith, compile(t, "${event.payload.s}"), compile(t, "RED"))
	ev := newEvent(t, "x", map[string]value.Value{"s": value.String("ALERT FIRED")})
	if sw.Evaluate(ev) {
		t.Error("startsWith is case-sensitive and should not match here")
	}
	if !ew.Evaluate(ev) {
		t.Error("endsWith should match RED suffix")
	}
}

func TestBuildFromJSON(t *testing.T) {
	def := JSON{
		Type: "AND",
		Operators: []JSON{
			{Type: "equal", First: "${event.type}", Second: "email"},
			{Type: "regex", Regex: "^ALERT:", Target: "${event.payload.line}"},
		},
	}
	op, err := Build(def, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ev := newEvent(t, "email", map[string]value.Value{"line": value.String("ALERT:42")})
	if !op.Evaluate(ev) {
		t.Error("expected AND of both operators to match")
	}
}
