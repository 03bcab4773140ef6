package extractor

import (
	"testing"

	"github.com/0x4d31/matcherd/internal/accessor"
	"github.com/0x4d31/matcherd/internal/evalctx"
	"github.com/0x4d31/matcherd/internal/value"
)

func newTestEvent(t *testing.T, payload map[string]value.Value) *evalctx.InternalEvent {
	t.Helper()
	ev, err := evalctx.NewEvent("x", 1, payload, nil, "")
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	ie := evalctx.NewInternalEvent(ev)
	ie.EnterRule("r1")
	return ie
}

func compileFrom(t *testing.T, src string) accessor.Accessor {
	t.Helper()
	a, err := accessor.Compile(src, nil)
	if err != nil {
		t.Fatalf("Compile(%q): %v", src, err)
	}
	return a
}

func TestDefaultSingleMatchNoGroups(t *testing.T) {
	from := compileFrom(t, "${event.payload.line}")
	ex, err := Build("code", from, RegexModeMatch, `ALERT:\d+`, 0, false, false, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ie := newTestEvent(t, map[string]value.Value{"line": value.String("saw ALERT:42 here")})
	if !ex.Run(ie) {
		t.Fatal("expected extraction to succeed")
	}
	v, _, ok := ie.LookupVar([]string{"code"})
	if !ok || v.String() != "ALERT:42" {
		t.Errorf("var = %v, ok=%v", v, ok)
	}
}

func TestDefaultSingleMatchUsesGroupOne(t *testing.T) {
	from := compileFrom(t, "${event.payload.line}")
	ex, err := Build("num", from, RegexModeMatch, `ALERT:(\d+)`, 0, false, false, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ie := newTestEvent(t, map[string]value.Value{"line": value.String("saw ALERT:42 here")})
	if !ex.Run(ie) {
		t.Fatal("expected extraction to succeed")
	}
	v, _, _ := ie.LookupVar([]string{"num"})
	if v.String() != "42" {
		t.Errorf("var = %v, want 42", v)
	}
}

func TestAllMatchesZeroMatchesFails(t *testing.T) {
	from := compileFrom(t, "${event.payload.line}")
	ex, err := Build("nums", from, RegexModeMatch, `\d+`, 0, false, true, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ie := newTestEvent(t, map[string]value.Value{"line": value.String("no digits here")})
	if ex.Run(ie) {
		t.Error("expected PartiallyMatched (ok=false) for zero matches with all_matches")
	}
}

func TestAllMatchesCollectsSequence(t *testing.T) {
	from := compileFrom(t, "${event.payload.line}")
	ex, err := Build("nums", from, RegexModeMatch, `\d+`, 0, false, true, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ie := newTestEvent(t, map[string]value.Value{"line": value.String("a1 b22 c333")})
	if !ex.Run(ie) {
		t.Fatal("expected extraction to succeed")
	}
	v, _, _ := ie.LookupVar([]string{"nums"})
	arr, ok := v.AsArray()
	if !ok || len(arr) != 3 {
		t.Fatalf("expected array of 3 matches, got %v", v)
	}
	if arr[0].String() != "1" || arr[2].String() != "333" {
		t.Errorf("unexpected matches: %v", arr)
	}
}

func TestSingleKeyRegex(t *testing.T) {
	from := compileFrom(t, "${event.payload.line}")
	ex, err := Build("host", from, RegexModeSingleKeyRegex, `host=(\S+)`, 0, false, false, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ie := newTestEvent(t, map[string]value.Value{"line": value.String("host=db01 up")})
	if !ex.Run(ie) {
		t.Fatal("expected extraction to succeed")
	}
	v, _, _ := ie.LookupVar([]string{"host"})
	if v.String() != "db01" {
		t.Errorf("var = %v, want db01", v)
	}
}

func TestNamedGroups(t *testing.T) {
	from := compileFrom(t, "${event.payload.line}")
	ex, err := Build("fields", from, RegexModeNamedGroups, `host=(?P<host>\S+) port=(?P<port>\d+)`, 0, false, false, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ie := newTestEvent(t, map[string]value.Value{"line": value.String("host=db01 port=5432")})
	if !ex.Run(ie) {
		t.Fatal("expected extraction to succeed")
	}
	v, _, _ := ie.LookupVar([]string{"fields"})
	m, ok := v.AsMap()
	if !ok {
		t.Fatalf("expected map value, got %v", v)
	}
	if host, _ := m["host"].AsString(); host != "db01" {
		t.Errorf("host = %v", m["host"])
	}
	if port, _ := m["port"].AsString(); port != "5432" {
		t.Errorf("port = %v", m["port"])
	}
}

func TestMissingSourceFailsExtraction(t *testing.T) {
	from := compileFrom(t, "${event.payload.missing}")
	ex, err := Build("x", from, RegexModeMatch, `.+`, 0, false, false, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ie := newTestEvent(t, nil)
	if ex.Run(ie) {
		t.Error("expected missing source to fail extraction (PartiallyMatched)")
	}
}

func TestModifierChainLowercaseTrim(t *testing.T) {
	from := compileFrom(t, "${event.payload.line}")
	ex, err := Build("code", from, RegexModeMatch, `CODE:\s*\S+`, 0, false, false, []Modifier{Trim(), Lowercase()})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ie := newTestEvent(t, map[string]value.Value{"line": value.String("  CODE: ABC  ")})
	if !ex.Run(ie) {
		t.Fatal("expected extraction to succeed")
	}
	v, _, _ := ie.LookupVar([]string{"code"})
	if v.String() != "code: abc" {
		t.Errorf("var = %q", v.String())
	}
}

func TestReplaceModifierLiteralAndRegex(t *testing.T) {
	litMod, err := Replace("x", "-", "_", false)
	if err != nil {
		t.Fatalf("Replace literal: %v", err)
	}
	v, ok := litMod.Apply(value.String("a-b-c"))
	if !ok || v.String() != "a_b_c" {
		t.Errorf("literal replace = %v, %v", v, ok)
	}

	reMod, err := Replace("x", `\d+`, "#", true)
	if err != nil {
		t.Fatalf("Replace regex: %v", err)
	}
	v2, ok := reMod.Apply(value.String("a1b22"))
	if !ok || v2.String() != "a#b#" {
		t.Errorf("regex replace = %v, %v", v2, ok)
	}

	if _, err := Replace("x", "(unterminated", "y", true); err == nil {
		t.Error("expected ExtractorBuildError for invalid regex")
	}
}

func TestDateAndTimeModifier(t *testing.T) {
	mod, err := DateAndTime("x", "2006-01-02", "Jan 2, 2006", "UTC")
	if err != nil {
		t.Fatalf("DateAndTime: %v", err)
	}
	v, ok := mod.Apply(value.String("2026-07-31"))
	if !ok || v.String() != "Jul 31, 2026" {
		t.Errorf("formatted = %q, ok=%v", v.String(), ok)
	}

	if _, ok := mod.Apply(value.String("not-a-date")); ok {
		t.Error("expected parse failure to report ok=false")
	}

	if _, err := DateAndTime("x", "2006-01-02", "", "Not/A/Zone"); err == nil {
		t.Error("expected ExtractorBuildError for invalid timezone")
	}
}

func TestMapModifier(t *testing.T) {
	lookup := map[string]value.Value{"1": value.String("low"), "2": value.String("high")}
	withDefault := Map(lookup, value.String("unknown"), true)
	v, ok := withDefault.Apply(value.String("1"))
	if !ok || v.String() != "low" {
		t.Errorf("mapped = %v, %v", v, ok)
	}
	v2, ok := withDefault.Apply(value.String("9"))
	if !ok || v2.String() != "unknown" {
		t.Errorf("default = %v, %v", v2, ok)
	}

	noDefault := Map(lookup, value.Value{}, false)
	if _, ok := noDefault.Apply(value.String("9")); ok {
		t.Error("expected missing key with no default to fail")
	}
}

func TestBuildFromJSONWithModifiers(t *testing.T) {
	idx := 1
	def := JSON{
		From: "${event.payload.line}",
		Regex: RegexJSON{
			Type:          "Regex",
			Regex:         `CODE:(\d+)`,
			GroupMatchIdx: &idx,
		},
		ModifiersPost: []ModifierJSON{
			{Type: "trim"},
			{Type: "map", Lookup: map[string]any{"42": "answer"}, Default: []byte(`"other"`)},
		},
	}
	ex, err := BuildFromJSON("result", def, nil)
	if err != nil {
		t.Fatalf("BuildFromJSON: %v", err)
	}
	ie := newTestEvent(t, map[string]value.Value{"line": value.String("CODE:42")})
	if !ex.Run(ie) {
		t.Fatal("expected extraction to succeed")
	}
	v, _, _ := ie.LookupVar([]string{"result"})
	if v.String() != "answer" {
		t.Errorf("var = %q, want answer", v.String())
	}
}
