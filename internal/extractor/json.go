package extractor

import (
	"encoding/json"

	"github.com/0x4d31/matcherd/internal/accessor"
	"github.com/0x4d31/matcherd/internal/matcherr"
	"github.com/0x4d31/matcherd/internal/value"
)

// RegexJSON is the on-disk "regex" sub-object of an extractor.
type RegexJSON struct {
	Type          string `json:"type"`
	Regex         string `json:"regex"`
	GroupMatchIdx *int   `json:"group_match_idx,omitempty"`
	AllMatches    bool   `json:"all_matches,omitempty"`
}

// ModifierJSON is a single tagged post-modifier entry.
type ModifierJSON struct {
	Type     string          `json:"type"`
	Pattern  string          `json:"pattern,omitempty"`
	With     string          `json:"with,omitempty"`
	IsRegex  bool            `json:"is_regex,omitempty"`
	Format   string          `json:"format,omitempty"`
	Output   string          `json:"output,omitempty"`
	Timezone string          `json:"timezone,omitempty"`
	Lookup   map[string]any  `json:"lookup,omitempty"`
	Default  json.RawMessage `json:"default,omitempty"`
}

// JSON is the on-disk representation of a `with` entry.
type JSON struct {
	From          string         `json:"from"`
	Regex         RegexJSON      `json:"regex"`
	ModifiersPost []ModifierJSON `json:"modifiers_post,omitempty"`
}

var regexTypeToMode = map[string]RegexMode{
	"Regex":            RegexModeMatch,
	"RegexNamedGroups": RegexModeNamedGroups,
	"SingleKeyRegex":   RegexModeSingleKeyRegex,
}

// BuildFromJSON compiles a named extractor definition into an Extractor, compiling
// its source accessor, its regex pattern, and every post-modifier. A
// failure surfaces as an ExtractorBuildError.
func BuildFromJSON(varName string, def JSON, registry *accessor.Registry) (Extractor, error) {
	from, err := accessor.Compile(def.From, registry)
	if err != nil {
		return Extractor{}, &matcherr.ExtractorBuildError{VarName: varName, Cause: err}
	}

	mode, ok := regexTypeToMode[def.Regex.Type]
	if !ok {
		mode = RegexModeMatch
	}

	groupIdx := 0
	hasGroupIdx := def.Regex.GroupMatchIdx != nil
	if hasGroupIdx {
		groupIdx = *def.Regex.GroupMatchIdx
	}

	modifiers := make([]Modifier, 0, len(def.ModifiersPost))
	for _, mdef := range def.ModifiersPost {
		m, err := buildModifier(varName, mdef)
		if err != nil {
			return Extractor{}, err
		}
		modifiers = append(modifiers, m)
	}

	return Build(varName, from, mode, def.Regex.Regex, groupIdx, hasGroupIdx, def.Regex.AllMatches, modifiers)
}

func buildModifier(varName string, def ModifierJSON) (Modifier, error) {
	switch def.Type {
	case "lowercase":
		return Lowercase(), nil
	case "trim":
		return Trim(), nil
	case "replace":
		return Replace(varName, def.Pattern, def.With, def.IsRegex)
	case "date-and-time":
		return DateAndTime(varName, def.Format, def.Output, def.Timezone)
	case "map":
		lookup := make(map[string]value.Value, len(def.Lookup))
		for k, raw := range def.Lookup {
			v, err := value.FromAny(raw)
			if err != nil {
				return Modifier{}, &matcherr.ExtractorBuildError{VarName: varName, Cause: err}
			}
			lookup[k] = v
		}
		if len(def.Default) == 0 {
			return Map(lookup, value.Value{}, false), nil
		}
		var raw any
		if err := json.Unmarshal(def.Default, &raw); err != nil {
			return Modifier{}, &matcherr.ExtractorBuildError{VarName: varName, Cause: err}
		}
		defVal, err := value.FromAny(raw)
		if err != nil {
			return Modifier{}, &matcherr.ExtractorBuildError{VarName: varName, Cause: err}
		}
		return Map(lookup, defVal, true), nil
	default:
		return Modifier{}, &matcherr.ExtractorBuildError{VarName: varName, Cause: errUnknownModifier(def.Type)}
	}
}

type unknownModifierError string

func (e unknownModifierError) Error() string { return "unknown modifier type " + string(e) }

func errUnknownModifier(t string) error { return unknownModifierError(t) }

// ParseJSON unmarshals raw JSON bytes into an extractor definition.
func ParseJSON(data []byte) (JSON, error) {
	var j JSON
	if err := json.Unmarshal(data, &j); err != nil {
		return JSON{}, &matcherr.JsonDeserializationError{File: "<extractor>", Cause: err}
	}
	return j, nil
}
