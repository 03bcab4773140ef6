package matchconf

import (
	"encoding/json"
	"fmt"

	"github.com/0x4d31/matcherd/internal/accessor"
	"github.com/0x4d31/matcherd/internal/extractor"
	"github.com/0x4d31/matcherd/internal/matcherr"
	"github.com/0x4d31/matcherd/internal/operator"
)

// Build compiles a directory tree already read by LoadDir into an
// immutable Config. Validation and compilation both abort on
// the first failure, reporting the full configuration path to the
// offending node ("filter[core]/filter[alerts]/ruleset[alerts]/rule[escalate]/where").
// The path stops at the rule's where/with[...]/actions[...] part; which
// operator inside a where failed is named only in the wrapped cause.
func Build(root *rawNode, registry *accessor.Registry) (*Config, error) {
	node, err := buildNode(root, registry)
	if err != nil {
		return nil, err
	}
	return &Config{Root: node}, nil
}

func buildNode(raw *rawNode, registry *accessor.Registry) (*Node, error) {
	if err := validateName(raw.name); err != nil {
		return nil, matcherr.WithPath(segmentFor(raw), err)
	}

	switch raw.kind {
	case NodeRuleset:
		return buildRuleset(raw, registry)
	default:
		return buildFilter(raw, registry)
	}
}

func buildFilter(raw *rawNode, registry *accessor.Registry) (*Node, error) {
	n := &Node{
		Kind:        NodeFilter,
		Name:        raw.name,
		Description: raw.filter.Description,
		Active:      raw.filter.isActive(),
	}

	if raw.filter.Filter != nil {
		op, err := operator.Build(*raw.filter.Filter, registry)
		if err != nil {
			return nil, matcherr.WithPath(segmentFor(raw)+"/filter", err)
		}
		if err := validateFilterOperatorRoots(op); err != nil {
			return nil, matcherr.WithPath(segmentFor(raw)+"/filter", err)
		}
		n.HasFilter = true
		n.Filter = op
	}

	childNames := make([]string, 0, len(raw.children))
	for _, c := range raw.children {
		childNames = append(childNames, c.name)
	}
	if err := validateUniqueNames(childNames); err != nil {
		return nil, matcherr.WithPath(segmentFor(raw), err)
	}

	for _, c := range raw.children {
		child, err := buildNode(c, registry)
		if err != nil {
			return nil, matcherr.WithPath(segmentFor(raw), err)
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

func buildRuleset(raw *rawNode, registry *accessor.Registry) (*Node, error) {
	n := &Node{Kind: NodeRuleset, Name: raw.name, Active: true}

	ruleNames := make([]string, 0, len(raw.ruleFiles))
	for _, rs := range raw.ruleFiles {
		ruleNames = append(ruleNames, rs.rule.Name)
	}
	if err := validateUniqueNames(ruleNames); err != nil {
		return nil, matcherr.WithPath(segmentFor(raw), err)
	}

	for _, rs := range raw.ruleFiles {
		rule, err := buildRule(rs.rule, registry)
		if err != nil {
			return nil, matcherr.WithPath(segmentFor(raw)+"/rule["+rs.rule.Name+"]", err)
		}
		n.Rules = append(n.Rules, rule)
	}
	return n, nil
}

func buildRule(def RuleFileJSON, registry *accessor.Registry) (*Rule, error) {
	if err := validateName(def.Name); err != nil {
		return nil, err
	}

	r := &Rule{
		Name:        def.Name,
		Description: def.Description,
		Active:      def.isActive(),
	}

	where, err := operator.Build(def.Constraint.Where, registry)
	if err != nil {
		return nil, matcherr.WithPath("where", err)
	}
	r.Where = where

	for _, entry := range def.Constraint.With {
		ex, err := extractor.BuildFromJSON(entry.Name, entry.Def, registry)
		if err != nil {
			return nil, matcherr.WithPath("with["+entry.Name+"]", err)
		}
		r.With = append(r.With, NamedExtractor{VarName: entry.Name, Extractor: ex})
	}

	for i, actDef := range def.Actions {
		act, err := buildAction(actDef, registry)
		if err != nil {
			return nil, matcherr.WithPath(fmt.Sprintf("actions[%d]", i), err)
		}
		r.Actions = append(r.Actions, act)
	}

	return r, nil
}

func buildAction(def ActionJSON, registry *accessor.Registry) (Action, error) {
	var raw any
	if len(def.Payload) > 0 {
		if err := json.Unmarshal(def.Payload, &raw); err != nil {
			return Action{}, &matcherr.JsonDeserializationError{File: "action[" + def.ID + "].payload", Cause: err}
		}
	}
	tmpl, err := CompileValueTemplate(raw, registry)
	if err != nil {
		return Action{}, err
	}
	return Action{ID: def.ID, Payload: tmpl}, nil
}

func segmentFor(raw *rawNode) string {
	if raw.kind == NodeRuleset {
		return "ruleset[" + raw.name + "]"
	}
	return "filter[" + raw.name + "]"
}
