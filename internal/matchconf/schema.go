// Package matchconf implements the configuration model: an immutable tree of Filter and
// Ruleset nodes loaded from a directory of JSON files, structurally
// validated, and compiled into the accessor/operator/extractor artifacts
// the matcher engine walks per event.
package matchconf

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/0x4d31/matcherd/internal/extractor"
	"github.com/0x4d31/matcherd/internal/operator"
)

// FilterFileJSON is the on-disk "filter.json" schema.
type FilterFileJSON struct {
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Active      *bool          `json:"active,omitempty"`
	Filter      *operator.JSON `json:"filter,omitempty"`
}

// isActive reports the effective active flag, defaulting to true when the
// field is omitted.
func (f FilterFileJSON) isActive() bool {
	if f.Active == nil {
		return true
	}
	return *f.Active
}

// ConstraintJSON is a rule's "constraint" object.
type ConstraintJSON struct {
	Where operator.JSON     `json:"WHERE"`
	With  OrderedExtractors `json:"WITH,omitempty"`
}

// NamedExtractorJSON pairs a `with` entry's declared variable name with
// its extractor definition.
type NamedExtractorJSON struct {
	Name string
	Def  extractor.JSON
}

// OrderedExtractors preserves the declaration order of a rule's `with`
// object, since Go's map-based JSON decoding would otherwise discard it —
// and extraction order is part of the contract.
type OrderedExtractors []NamedExtractorJSON

// UnmarshalJSON decodes a `with` object by token-streaming its keys in
// file order rather than unmarshaling into a Go map.
func (o *OrderedExtractors) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("matchconf: expected WITH to be a JSON object")
	}
	var out OrderedExtractors
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var def extractor.JSON
		if err := dec.Decode(&def); err != nil {
			return err
		}
		out = append(out, NamedExtractorJSON{Name: key, Def: def})
	}
	*o = out
	return nil
}

// ActionJSON is a single rule action.
type ActionJSON struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

// RuleFileJSON is the on-disk schema of a single rule file.
type RuleFileJSON struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Active      *bool          `json:"active,omitempty"`
	Constraint  ConstraintJSON `json:"constraint"`
	Actions     []ActionJSON   `json:"actions,omitempty"`
}

func (r RuleFileJSON) isActive() bool {
	if r.Active == nil {
		return true
	}
	return *r.Active
}
