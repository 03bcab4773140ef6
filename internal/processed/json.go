package processed

import (
	"encoding/json"

	"github.com/0x4d31/matcherd/internal/matchconf"
)

// nodeJSON mirrors  "Processed-event output shape": "each node
// carries {type, name, rules?, nodes?}".
type nodeJSON struct {
	Type  string              `json:"type"`
	Name  string              `json:"name"`
	Nodes []*nodeJSON         `json:"nodes,omitempty"`
	Rules map[string]ruleJSON `json:"rules,omitempty"`
}

// ruleJSON mirrors : "each rule carries {status, actions,
// meta: {extracted_vars, message?}}".
type ruleJSON struct {
	Status  string       `json:"status"`
	Actions []actionJSON `json:"actions"`
	Meta    ruleMetaJSON `json:"meta"`
}

type actionJSON struct {
	ID      string `json:"id"`
	Payload any    `json:"payload,omitempty"`
	Err     string `json:"error,omitempty"`
}

type ruleMetaJSON struct {
	ExtractedVars map[string]any `json:"extracted_vars,omitempty"`
	Message       string         `json:"message,omitempty"`
}

func toNodeJSON(n *Node) *nodeJSON {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case matchconf.NodeRuleset:
		return rulesetNodeJSON(n)
	default:
		return filterNodeJSON(n)
	}
}

func filterNodeJSON(n *Node) *nodeJSON {
	out := &nodeJSON{Type: "filter", Name: n.Name}
	for _, c := range n.Children {
		out.Nodes = append(out.Nodes, toNodeJSON(c))
	}
	return out
}

func rulesetNodeJSON(n *Node) *nodeJSON {
	out := &nodeJSON{Type: "ruleset", Name: n.Name, Rules: make(map[string]ruleJSON, len(n.Rules))}
	for _, r := range n.Rules {
		out.Rules[r.Name] = toRuleJSON(r)
	}
	return out
}

func toRuleJSON(r *RuleResult) ruleJSON {
	rj := ruleJSON{Status: r.Status.String()}
	for _, a := range r.Actions {
		aj := actionJSON{ID: a.ID, Err: a.Err}
		if a.Err == "" {
			aj.Payload = a.Payload.ToAny()
		}
		rj.Actions = append(rj.Actions, aj)
	}
	if len(r.Meta.ExtractedVars) > 0 {
		rj.Meta.ExtractedVars = make(map[string]any, len(r.Meta.ExtractedVars))
		for _, name := range sortedVarNames(r.Meta.ExtractedVars) {
			rj.Meta.ExtractedVars[name] = r.Meta.ExtractedVars[name].ToAny()
		}
	}
	rj.Meta.Message = r.Meta.Message
	return rj
}

// MarshalJSON renders the processed-event tree in the diagnostic shape a
// host process can forward to `send_event`-style endpoints outside this
// module's scope.
func (e *Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(toNodeJSON(e.Root))
}
