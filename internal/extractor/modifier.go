package extractor

import (
	"regexp"
	"strings"
	"time"

	"github.com/0x4d31/matcherd/internal/matcherr"
	"github.com/0x4d31/matcherd/internal/value"
)

// ModifierKind tags the compiled post-modifier variant.
type ModifierKind int

const (
	ModifierLowercase ModifierKind = iota
	ModifierTrim
	ModifierReplace
	ModifierDateAndTime
	ModifierMap
)

// Modifier is a single post-extraction transform, applied in declared
// order. Each variant takes and returns a Value; any failure aborts
// extraction for the whole rule (reported as PartiallyMatched).
type Modifier struct {
	kind ModifierKind

	// ModifierReplace
	replacePattern *regexp.Regexp
	replaceWith    string
	replaceLiteral string // used when is_regex=false
	isRegex        bool

	// ModifierDateAndTime
	inputLayout  string
	outputLayout string
	location     *time.Location

	// ModifierMap
	lookup     map[string]value.Value
	defaultVal value.Value
	hasDefault bool
}

// Lowercase builds the lowercase modifier.
func Lowercase() Modifier { return Modifier{kind: ModifierLowercase} }

// Trim builds the trim modifier (strips leading/trailing whitespace).
func Trim() Modifier { return Modifier{kind: ModifierTrim} }

// Replace builds the replace(pattern, with, is_regex) modifier. When
// isRegex is true, pattern is compiled at build time; a failed compile is
// an ExtractorBuildError.
func Replace(varName, pattern, with string, isRegex bool) (Modifier, error) {
	if !isRegex {
		return Modifier{kind: ModifierReplace, replaceLiteral: pattern, replaceWith: with, isRegex: false}, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Modifier{}, &matcherr.ExtractorBuildError{VarName: varName, Cause: err}
	}
	return Modifier{kind: ModifierReplace, replacePattern: re, replaceWith: with, isRegex: true}, nil
}

// DateAndTime builds the date-and-time(format, timezone) modifier: parses
// the extracted string with inputLayout, then reformats it in outputLayout
// within the named IANA timezone. An empty outputLayout reuses inputLayout.
func DateAndTime(varName, inputLayout, outputLayout, timezone string) (Modifier, error) {
	loc := time.UTC
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return Modifier{}, &matcherr.ExtractorBuildError{VarName: varName, Cause: err}
		}
		loc = l
	}
	if outputLayout == "" {
		outputLayout = inputLayout
	}
	return Modifier{kind: ModifierDateAndTime, inputLayout: inputLayout, outputLayout: outputLayout, location: loc}, nil
}

// Map builds the map(lookup-table, default) modifier: looks the extracted
// string up in lookup, falling back to defaultVal when absent. Passing
// hasDefault=false means a missing key fails the modifier instead.
func Map(lookup map[string]value.Value, defaultVal value.Value, hasDefault bool) Modifier {
	return Modifier{kind: ModifierMap, lookup: lookup, defaultVal: defaultVal, hasDefault: hasDefault}
}

// Apply runs the modifier against v, returning ok=false on failure.
func (m Modifier) Apply(v value.Value) (value.Value, bool) {
	switch m.kind {
	case ModifierLowercase:
		s, ok := v.AsString()
		if !ok {
			return value.Value{}, false
		}
		return value.String(strings.ToLower(s)), true

	case ModifierTrim:
		s, ok := v.AsString()
		if !ok {
			return value.Value{}, false
		}
		return value.String(strings.TrimSpace(s)), true

	case ModifierReplace:
		s, ok := v.AsString()
		if !ok {
			return value.Value{}, false
		}
		if m.isRegex {
			return value.String(m.replacePattern.ReplaceAllString(s, m.replaceWith)), true
		}
		return value.String(strings.ReplaceAll(s, m.replaceLiteral, m.replaceWith)), true

	case ModifierDateAndTime:
		s, ok := v.AsString()
		if !ok {
			return value.Value{}, false
		}
		t, err := time.Parse(m.inputLayout, s)
		if err != nil {
			return value.Value{}, false
		}
		return value.String(t.In(m.location).Format(m.outputLayout)), true

	case ModifierMap:
		key := v.String()
		if mapped, ok := m.lookup[key]; ok {
			return mapped, true
		}
		if m.hasDefault {
			return m.defaultVal, true
		}
		return value.Value{}, false

	default:
		return value.Value{}, false
	}
}
