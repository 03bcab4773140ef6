package evalctx

import (
	"fmt"
	"strings"

	"github.com/0x4d31/matcherd/internal/value"
)

// InternalEvent is the evaluation view of an Event: the event itself plus
// the extracted-variables side table. The engine guarantees at
// most one writer per variable name within a single event evaluation, so
// SetVar rejects overwrites rather than silently allowing a second write.
type InternalEvent struct {
	Event *Event
	vars  map[string]value.Value // "<rule-name>.<var-name>" -> Value

	// currentRule names the rule currently being evaluated, so that an
	// unqualified "_variables.<var>" reference resolves within its own
	// namespace without repeating the rule name.
	currentRule string
}

// NewInternalEvent creates the per-event evaluation state for e.
func NewInternalEvent(e *Event) *InternalEvent {
	return &InternalEvent{
		Event: e,
		vars:  make(map[string]value.Value),
	}
}

// EnterRule scopes subsequent unqualified "_variables.<var>" lookups (and
// SetVar calls) to ruleName, for the duration of that rule's evaluation.
func (ie *InternalEvent) EnterRule(ruleName string) {
	ie.currentRule = ruleName
}

// CurrentRule returns the rule namespace currently in scope.
func (ie *InternalEvent) CurrentRule() string {
	return ie.currentRule
}

// SetVar records an extracted variable under the current rule's namespace.
// It returns an error if the variable was already set, enforcing a
// single-writer-per-name guarantee.
func (ie *InternalEvent) SetVar(varName string, v value.Value) error {
	if ie.currentRule == "" {
		return fmt.Errorf("evalctx: SetVar %q called with no rule in scope", varName)
	}
	key := ie.currentRule + "." + varName
	if _, exists := ie.vars[key]; exists {
		return fmt.Errorf("evalctx: variable %q already set for this event", key)
	}
	ie.vars[key] = v
	return nil
}

// LookupVar resolves a "_variables" selector chain. The first one or two
// selectors are tried, in order, as: (1) an unqualified name within the
// current rule's namespace, then (2) a fully-qualified "<rule>.<var>"
// pair. The remaining selectors (if any) are returned unconsumed so the
// caller can continue walking into the variable's own value.
func (ie *InternalEvent) LookupVar(selectorNames []string) (v value.Value, consumed int, ok bool) {
	if len(selectorNames) == 0 {
		return value.Value{}, 0, false
	}

	if ie.currentRule != "" {
		key := ie.currentRule + "." + selectorNames[0]
		if val, exists := ie.vars[key]; exists {
			return val, 1, true
		}
	}

	if len(selectorNames) >= 2 {
		key := selectorNames[0] + "." + selectorNames[1]
		if val, exists := ie.vars[key]; exists {
			return val, 2, true
		}
	}

	return value.Value{}, 0, false
}

// AllVars returns a copy of every extracted variable, fully qualified
// ("<rule-name>.<var-name>"), for diagnostics (ProcessedRule.Meta).
func (ie *InternalEvent) AllVars() map[string]value.Value {
	out := make(map[string]value.Value, len(ie.vars))
	for k, v := range ie.vars {
		out[k] = v
	}
	return out
}

// VarsForRule returns the extracted variables belonging to ruleName, keyed
// by their unqualified variable name.
func (ie *InternalEvent) VarsForRule(ruleName string) map[string]value.Value {
	prefix := ruleName + "."
	out := make(map[string]value.Value)
	for k, v := range ie.vars {
		if name, ok := strings.CutPrefix(k, prefix); ok {
			out[name] = v
		}
	}
	return out
}
