// Package matcher implements the matcher engine: it walks a
// compiled matchconf.Config per event, evaluating filters and rules, and
// returns a processed.Event mirroring the configuration tree. A Matcher
// holds only compiled artifacts and is safe for concurrent readers:
// Process takes no lock.
package matcher

import (
	"log/slog"

	"github.com/0x4d31/matcherd/internal/accessor"
	"github.com/0x4d31/matcherd/internal/evalctx"
	"github.com/0x4d31/matcherd/internal/matchconf"
	"github.com/0x4d31/matcherd/internal/processed"
)

// TraceSink receives every ProcessedEvent a Matcher produces, in addition
// to Process's direct return value. internal/trace implements this to
// append a compressed JSONL audit trail.
type TraceSink interface {
	Write(*processed.Event) error
}

// Matcher is an immutable configuration snapshot ready to evaluate events.
type Matcher struct {
	cfg  *matchconf.Config
	sink TraceSink
}

// Option configures optional Matcher behavior at build time.
type Option func(*Matcher)

// WithTraceSink attaches a TraceSink that every Process call writes its
// result to, synchronously, just before returning it to the caller. A sink write failure is
// logged and never affects Process's return value.
func WithTraceSink(sink TraceSink) Option {
	return func(m *Matcher) { m.sink = sink }
}

// Build loads, validates, and compiles the configuration directory rooted
// at dirPath into a Matcher.
// registry supplies any engine-registered custom accessor roots and may
// be nil.
func Build(dirPath string, registry *accessor.Registry, opts ...Option) (*Matcher, error) {
	raw, err := matchconf.LoadDir(dirPath)
	if err != nil {
		return nil, err
	}
	cfg, err := matchconf.Build(raw, registry)
	if err != nil {
		return nil, err
	}
	m := &Matcher{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// FromConfig wraps an already-built matchconf.Config, for callers (tests,
// in-process config builders) that construct the compiled tree directly
// rather than loading it from disk.
func FromConfig(cfg *matchconf.Config, opts ...Option) *Matcher {
	m := &Matcher{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the compiled snapshot this Matcher wraps, e.g. for a
// caller that wants to confirm two Matcher values share the same
// snapshot after a reload swap.
func (m *Matcher) Config() *matchconf.Config { return m.cfg }

// Process walks the configuration tree against event, evaluating every
// filter and rule and returning a ProcessedEvent mirroring the tree. When
// includeMeta is false, extracted-variable and message diagnostics are
// omitted from the result to avoid retaining per-event state the caller
// does not need.
func (m *Matcher) Process(event *evalctx.Event, includeMeta bool) *processed.Event {
	ie := evalctx.NewInternalEvent(event)
	pe := &processed.Event{Root: processNode(m.cfg.Root, ie, includeMeta)}
	if m.sink != nil {
		if err := m.sink.Write(pe); err != nil {
			slog.Warn("trace sink write failed", "error", err)
		}
	}
	return pe
}

func processNode(n *matchconf.Node, ie *evalctx.InternalEvent, includeMeta bool) *processed.Node {
	if n.Kind == matchconf.NodeRuleset {
		return processRuleset(n, ie, includeMeta)
	}
	return processFilter(n, ie, includeMeta)
}

// processFilter implements the Filter traversal rule: an inactive
// filter halts descent without evaluating its operator; an active filter
// with no operator always descends; the operator, when present, is
// evaluated against the event only — never against extracted vars, which
// matchconf.Build already enforces at compile time.
func processFilter(n *matchconf.Node, ie *evalctx.InternalEvent, includeMeta bool) *processed.Node {
	out := &processed.Node{Kind: matchconf.NodeFilter, Name: n.Name}

	if !n.Active {
		out.FilterStatus = processed.FilterInactive
		return out
	}

	if n.HasFilter && !n.Filter.Evaluate(ie) {
		out.FilterStatus = processed.FilterNotMatched
		return out
	}

	out.FilterStatus = processed.FilterMatched
	out.Children = make([]*processed.Node, 0, len(n.Children))
	for _, c := range n.Children {
		out.Children = append(out.Children, processNode(c, ie, includeMeta))
	}
	return out
}

// processRuleset implements the Ruleset traversal rule: every
// rule is evaluated in declared order and the engine never stops on
// first match ("a rule-set is a list, not a chain").
func processRuleset(n *matchconf.Node, ie *evalctx.InternalEvent, includeMeta bool) *processed.Node {
	out := &processed.Node{Kind: matchconf.NodeRuleset, Name: n.Name}
	out.Rules = make([]*processed.RuleResult, 0, len(n.Rules))
	for _, rule := range n.Rules {
		out.Rules = append(out.Rules, processRule(rule, ie, includeMeta))
	}
	return out
}

// processRule implements the per-rule contract: inactive
// rules are NotProcessed; a false where is NotMatched; extraction runs
// only after where is true and a missing/failing extractor aborts
// further extraction for that rule with PartiallyMatched; otherwise the
// rule is Matched and its actions are rendered.
func processRule(rule *matchconf.Rule, ie *evalctx.InternalEvent, includeMeta bool) *processed.RuleResult {
	res := &processed.RuleResult{Name: rule.Name}

	if !rule.Active {
		res.Status = processed.RuleNotProcessed
		return res
	}

	ie.EnterRule(rule.Name)

	if !rule.Where.Evaluate(ie) {
		res.Status = processed.RuleNotMatched
		return res
	}

	for _, we := range rule.With {
		if !we.Extractor.Run(ie) {
			res.Status = processed.RulePartiallyMatched
			if includeMeta {
				res.Meta.ExtractedVars = ie.VarsForRule(rule.Name)
				res.Meta.Message = "extraction failed for variable " + we.VarName
			}
			return res
		}
	}

	res.Status = processed.RuleMatched
	res.Actions = renderActions(rule, ie)
	if includeMeta {
		res.Meta.ExtractedVars = ie.VarsForRule(rule.Name)
	}
	return res
}

// renderActions resolves every action's ValueTemplate against the rule's
// own accessor context. A render failure demotes that one action to a
// logged diagnostic and does not abort rendering of its peers, and the
// rule's status remains Matched.
func renderActions(rule *matchconf.Rule, ie *evalctx.InternalEvent) []processed.RenderedAction {
	if len(rule.Actions) == 0 {
		return nil
	}
	out := make([]processed.RenderedAction, 0, len(rule.Actions))
	for _, act := range rule.Actions {
		v, err := act.Payload.Render(ie)
		if err != nil {
			slog.Warn("action render failed", "rule", rule.Name, "action", act.ID, "error", err)
			out = append(out, processed.RenderedAction{ID: act.ID, Err: err.Error()})
			continue
		}
		out = append(out, processed.RenderedAction{ID: act.ID, Payload: v})
	}
	return out
}
