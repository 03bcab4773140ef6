package matchconf

import (
	"github.com/0x4d31/matcherd/internal/extractor"
	"github.com/0x4d31/matcherd/internal/operator"
)

// NodeKind tags the compiled MatcherConfig variant: Filter is a
// gate node, Ruleset is a leaf.
type NodeKind int

const (
	NodeFilter NodeKind = iota
	NodeRuleset
)

// Node is the compiled, immutable form of one MatcherConfig tree element.
// A tagged variant rather than an interface, matching the closed-set
// "Polymorphism" design note that governs Accessor and Operator.
type Node struct {
	Kind        NodeKind
	Name        string
	Description string
	Active      bool

	// NodeFilter
	HasFilter bool
	Filter    operator.Operator
	Children  []*Node

	// NodeRuleset
	Rules []*Rule
}

// Rule is the compiled form of one rule file.
type Rule struct {
	Name        string
	Description string
	Active      bool

	Where operator.Operator
	With  []NamedExtractor // declared order

	Actions []Action
}

// NamedExtractor pairs a `with` entry's variable name with its compiled
// Extractor.
type NamedExtractor struct {
	VarName   string
	Extractor extractor.Extractor
}

// Action is the compiled form of a rule action: a stable id plus a
// payload template whose string leaves may be accessor/interpolator
// expressions.
type Action struct {
	ID      string
	Payload ValueTemplate
}

// Config is the compiled, immutable configuration snapshot the matcher
// engine walks per event.
type Config struct {
	Root *Node
}
