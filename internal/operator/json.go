package operator

import (
	"encoding/json"
	"fmt"

	"github.com/0x4d31/matcherd/internal/accessor"
	"github.com/0x4d31/matcherd/internal/matcherr"
)

// JSON is the on-disk representation of an Operator: tagged by Type, with First/Second operand accessor expressions
// for comparison/string operators, Operators for AND/OR/NOT, and
// Regex/Target for the regex operator.
type JSON struct {
	Type      string `json:"type"`
	First     string `json:"first,omitempty"`
	Second    string `json:"second,omitempty"`
	Operators []JSON `json:"operators,omitempty"`
	Regex     string `json:"regex,omitempty"`
	Target    string `json:"target,omitempty"`
}

var jsonKindByType = map[string]Kind{
	"equal":              KindEqual,
	"notEqual":           KindNotEqual,
	"greaterThan":        KindGreater,
	"greaterThanEquals":  KindGreaterEqual,
	"lessThan":           KindLess,
	"lessThanEquals":     KindLessEqual,
	"contains":           KindContains,
	"containsIgnoreCase": KindContainsIgnoreCase,
	"startsWith":         KindStartsWith,
	"endsWith":           KindEndsWith,
}

// Build compiles a JSON operator definition into an Operator, compiling
// every operand accessor and regex pattern along the way. A failure
// surfaces as an OperatorBuildError.
func Build(def JSON, registry *accessor.Registry) (Operator, error) {
	switch def.Type {
	case "true":
		return True(), nil

	case "AND":
		children, err := buildChildren(def.Operators, registry)
		if err != nil {
			return Operator{}, err
		}
		return And(children...), nil

	case "OR":
		children, err := buildChildren(def.Operators, registry)
		if err != nil {
			return Operator{}, err
		}
		return Or(children...), nil

	case "NOT":
		if len(def.Operators) != 1 {
			return Operator{}, &matcherr.OperatorBuildError{
				OperatorType: "NOT",
				Cause:        fmt.Errorf("NOT requires exactly one operand, got %d", len(def.Operators)),
			}
		}
		child, err := Build(def.Operators[0], registry)
		if err != nil {
			return Operator{}, err
		}
		return Not(child), nil

	case "regex":
		target, err := accessor.Compile(def.Target, registry)
		if err != nil {
			return Operator{}, &matcherr.OperatorBuildError{OperatorType: "regex", Cause: err}
		}
		op, err := Regex(def.Regex, target)
		if err != nil {
			return Operator{}, err
		}
		return op, nil

	default:
		kind, ok := jsonKindByType[def.Type]
		if !ok {
			return Operator{}, &matcherr.OperatorBuildError{
				OperatorType: def.Type,
				Cause:        fmt.Errorf("unknown operator type %q", def.Type),
			}
		}
		first, err := accessor.Compile(def.First, registry)
		if err != nil {
			return Operator{}, &matcherr.OperatorBuildError{OperatorType: def.Type, Cause: err}
		}
		second, err := accessor.Compile(def.Second, registry)
		if err != nil {
			return Operator{}, &matcherr.OperatorBuildError{OperatorType: def.Type, Cause: err}
		}
		switch kind {
		case KindContains, KindContainsIgnoreCase, KindStartsWith, KindEndsWith:
			return StringOp(kind, first, second), nil
		default:
			return Comparison(kind, first, second), nil
		}
	}
}

func buildChildren(defs []JSON, registry *accessor.Registry) ([]Operator, error) {
	out := make([]Operator, len(defs))
	for i, d := range defs {
		op, err := Build(d, registry)
		if err != nil {
			return nil, err
		}
		out[i] = op
	}
	return out, nil
}

// ParseJSON unmarshals raw JSON bytes into a JSON operator definition.
func ParseJSON(data []byte) (JSON, error) {
	var j JSON
	if err := json.Unmarshal(data, &j); err != nil {
		return JSON{}, &matcherr.JsonDeserializationError{File: "<operator>", Cause: err}
	}
	return j, nil
}
