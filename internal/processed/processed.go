// Package processed implements the ProcessedEvent result model: a tree mirroring
// the MatcherConfig tree, annotated with per-node outcomes, that the
// matcher engine returns and the dispatcher walks.
package processed

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/0x4d31/matcherd/internal/matchconf"
	"github.com/0x4d31/matcherd/internal/value"
)

// FilterStatus tags the outcome of a Filter node.
type FilterStatus int

const (
	FilterMatched FilterStatus = iota
	FilterNotMatched
	FilterInactive
)

func (s FilterStatus) String() string {
	switch s {
	case FilterMatched:
		return "Matched"
	case FilterNotMatched:
		return "NotMatched"
	case FilterInactive:
		return "Inactive"
	default:
		return "Unknown"
	}
}

// RuleStatus tags the outcome of a single rule evaluation.
type RuleStatus int

const (
	RuleMatched RuleStatus = iota
	RulePartiallyMatched
	RuleNotMatched
	RuleNotProcessed
)

func (s RuleStatus) String() string {
	switch s {
	case RuleMatched:
		return "Matched"
	case RulePartiallyMatched:
		return "PartiallyMatched"
	case RuleNotMatched:
		return "NotMatched"
	case RuleNotProcessed:
		return "NotProcessed"
	default:
		return "Unknown"
	}
}

// RenderedAction is a rule action after its ValueTemplate payload has been
// rendered against that rule's accessor context. Err is non-empty when
// rendering failed; Payload is the zero Value in that case.
type RenderedAction struct {
	ID      string
	Payload value.Value
	Err     string
}

// RuleMeta carries the diagnostic information a caller needs to
// diagnose a rule that did not fire as expected: the processed event
// itself should be self-sufficient for that.
type RuleMeta struct {
	ExtractedVars map[string]value.Value
	Message       string
}

// RuleResult is the per-rule outcome of a ProcessedEvent.
type RuleResult struct {
	Name    string
	Status  RuleStatus
	Actions []RenderedAction
	Meta    RuleMeta
}

// Node is the processed mirror of one matchconf.Node. It is a tagged
// variant over Filter and Ruleset, matching matchconf.Node's own shape.
type Node struct {
	Kind matchconf.NodeKind
	Name string

	// NodeFilter
	FilterStatus FilterStatus
	Children     []*Node

	// NodeRuleset
	Rules []*RuleResult
}

// RuleByName looks up a ruleset node's rule result by name, in O(n) —
// rulesets are small in practice and this keeps Rules a plain ordered
// slice rather than requiring callers to maintain a side index.
func (n *Node) RuleByName(name string) (*RuleResult, bool) {
	for _, r := range n.Rules {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Event is the root of a processed-event tree, returned by
// matcher.Matcher.Process.
type Event struct {
	Root *Node
}

// MatchedRules collects every rule in Matched status, in config traversal
// order, for the dispatcher to walk.
func (e *Event) MatchedRules() []*RuleResult {
	var out []*RuleResult
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		switch n.Kind {
		case matchconf.NodeFilter:
			for _, c := range n.Children {
				walk(c)
			}
		case matchconf.NodeRuleset:
			for _, r := range n.Rules {
				if r.Status == RuleMatched {
					out = append(out, r)
				}
			}
		}
	}
	walk(e.Root)
	return out
}

// ContentHash returns a cheap fingerprint of the processed tree's
// observable shape (statuses, rendered action payloads), used by the
// determinism/idempotence property tests to
// compare two runs without a full deep-equal.
func (e *Event) ContentHash() uint64 {
	h := xxhash.New()
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			h.Write([]byte{0})
			return
		}
		h.Write([]byte(n.Name))
		switch n.Kind {
		case matchconf.NodeFilter:
			h.Write([]byte{byte(n.FilterStatus)})
			for _, c := range n.Children {
				walk(c)
			}
		case matchconf.NodeRuleset:
			for _, r := range n.Rules {
				h.Write([]byte(r.Name))
				h.Write([]byte{byte(r.Status)})
				for _, a := range r.Actions {
					h.Write([]byte(a.ID))
					h.Write([]byte(a.Err))
					h.Write([]byte(canonicalValueString(a.Payload)))
				}
			}
		}
	}
	walk(e.Root)
	return h.Sum64()
}

func canonicalValueString(v value.Value) string {
	b, err := v.MarshalJSON()
	if err != nil {
		return v.String()
	}
	return string(b)
}

// sortedVarNames returns the keys of vars in sorted order, used when a
// caller needs deterministic iteration (e.g. JSON rendering) over
// extracted variables.
func sortedVarNames(vars map[string]value.Value) []string {
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
