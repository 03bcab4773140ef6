// Package extractor implements named extraction rules:
// regex-based captures over an accessor target, followed by a chain of
// post-modifiers, writing into the current rule's variable namespace.
package extractor

import (
	"regexp"

	"github.com/0x4d31/matcherd/internal/accessor"
	"github.com/0x4d31/matcherd/internal/evalctx"
	"github.com/0x4d31/matcherd/internal/matcherr"
	"github.com/0x4d31/matcherd/internal/value"
)

// RegexMode tags the extraction strategy.
type RegexMode int

const (
	RegexModeMatch RegexMode = iota
	RegexModeNamedGroups
	RegexModeSingleKeyRegex
)

// Extractor is the compiled form of a `with` entry: an accessor target, a
// regex extraction mode, and a chain of post-modifiers.
type Extractor struct {
	varName string
	from    accessor.Accessor

	mode          RegexMode
	pattern       *regexp.Regexp
	groupMatchIdx int
	hasGroupIdx   bool
	allMatches    bool

	modifiers []Modifier
}

// Build compiles an Extractor from its source fields. pattern is compiled
// immediately; a failure is an ExtractorBuildError.
func Build(varName string, from accessor.Accessor, mode RegexMode, pattern string, groupMatchIdx int, hasGroupIdx, allMatches bool, modifiers []Modifier) (Extractor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Extractor{}, &matcherr.ExtractorBuildError{VarName: varName, Cause: err}
	}
	return Extractor{
		varName:       varName,
		from:          from,
		mode:          mode,
		pattern:       re,
		groupMatchIdx: groupMatchIdx,
		hasGroupIdx:   hasGroupIdx,
		allMatches:    allMatches,
		modifiers:     modifiers,
	}, nil
}

// VarName reports the unqualified variable name this extractor populates.
func (e Extractor) VarName() string { return e.varName }

// Run resolves the source accessor, performs the regex extraction, applies
// every post-modifier in order, and writes the result into ie under the
// current rule's namespace (ie.EnterRule must already have been called).
// It reports ok=false — the caller marks the rule PartiallyMatched — on a
// missing source value, a failed match, or a modifier failure.
func (e Extractor) Run(ie *evalctx.InternalEvent) (ok bool) {
	src, got := e.from.Get(ie)
	if !got {
		return false
	}
	s, isString := src.AsString()
	if !isString {
		s = src.String()
	}

	extracted, ok := e.extract(s)
	if !ok {
		return false
	}

	for _, m := range e.modifiers {
		v, ok := m.Apply(extracted)
		if !ok {
			return false
		}
		extracted = v
	}

	if err := ie.SetVar(e.varName, extracted); err != nil {
		return false
	}
	return true
}

func (e Extractor) extract(s string) (value.Value, bool) {
	switch e.mode {
	case RegexModeMatch:
		return e.extractMatch(s)
	case RegexModeSingleKeyRegex:
		return e.extractSingleKey(s)
	case RegexModeNamedGroups:
		return e.extractNamedGroups(s)
	default:
		return value.Value{}, false
	}
}

// extractMatch implements the "default single match" and all_matches
// modes. Without all_matches, it returns the value of group
// group_match_idx (default 1, or 0 if the pattern has no capture groups) of
// the first match. With all_matches, it returns an array of that group's
// value across every non-overlapping match; zero matches is a failure.
func (e Extractor) extractMatch(s string) (value.Value, bool) {
	idx := e.resolvedGroupIdx()

	if !e.allMatches {
		m := e.pattern.FindStringSubmatch(s)
		if m == nil || idx >= len(m) {
			return value.Value{}, false
		}
		return value.String(m[idx]), true
	}

	all := e.pattern.FindAllStringSubmatch(s, -1)
	if len(all) == 0 {
		return value.Value{}, false
	}
	out := make([]value.Value, 0, len(all))
	for _, m := range all {
		if idx >= len(m) {
			return value.Value{}, false
		}
		out = append(out, value.String(m[idx]))
	}
	return value.Array(out...), true
}

func (e Extractor) resolvedGroupIdx() int {
	if e.hasGroupIdx {
		return e.groupMatchIdx
	}
	if e.pattern.NumSubexp() == 0 {
		return 0
	}
	return 1
}

// extractSingleKey is a convenience form for single-group regexes: it
// always yields the value of capture group 1.
func (e Extractor) extractSingleKey(s string) (value.Value, bool) {
	m := e.pattern.FindStringSubmatch(s)
	if m == nil || len(m) < 2 {
		return value.Value{}, false
	}
	return value.String(m[1]), true
}

// extractNamedGroups builds a map keyed by the pattern's named capture
// groups, or a sequence of such maps when all_matches is set.
func (e Extractor) extractNamedGroups(s string) (value.Value, bool) {
	names := e.pattern.SubexpNames()

	toMap := func(m []string) value.Value {
		out := make(map[string]value.Value, len(names))
		for i, name := range names {
			if i == 0 || name == "" {
				continue
			}
			out[name] = value.String(m[i])
		}
		return value.Map(out)
	}

	if !e.allMatches {
		m := e.pattern.FindStringSubmatch(s)
		if m == nil {
			return value.Value{}, false
		}
		return toMap(m), true
	}

	all := e.pattern.FindAllStringSubmatch(s, -1)
	if len(all) == 0 {
		return value.Value{}, false
	}
	out := make([]value.Value, 0, len(all))
	for _, m := range all {
		out = append(out, toMap(m))
	}
	return value.Array(out...), true
}
