// Package dispatch implements the dispatcher: given a
// processed event, it walks the matched rules in traversal order and
// publishes each of their already-rendered actions to a Bus. The core
// never suspends — publish is called synchronously and its
// blocking behavior is a bus-implementation contract, not the
// dispatcher's.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/cespare/xxhash/v2"

	"github.com/0x4d31/matcherd/internal/processed"
	"github.com/0x4d31/matcherd/internal/value"
)

// Action is the outbound message handed to a Bus.
type Action struct {
	ID      string
	Payload value.Value
	TraceID string
}

// Bus is the single-method dispatch abstraction downstream executors
// consume. A concrete Bus
// implementation (in-process channel, NATS, TCP, UDS) is outside this
// module's scope; it must document whether PublishAction can block and
// for how long.
type Bus interface {
	PublishAction(ctx context.Context, action Action) error
}

// Dispatcher renders no templates itself — the matcher engine already
// rendered every action while it had the rule's accessor context
// available — it only walks the processed tree and forwards
// what matched.
type Dispatcher struct {
	bus    Bus
	logger *slog.Logger
}

// New builds a Dispatcher publishing onto bus. A nil logger falls back
// to slog.Default().
func New(bus Bus, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{bus: bus, logger: logger.With("component", "dispatcher")}
}

// Dispatch walks pe's matched rules in traversal order and publishes
// each successfully rendered action. Actions that failed to render
// (RenderedAction.Err set) were already logged by the matcher engine and
// are skipped here rather than republished as errors. Within a single
// Dispatch call, an action is skipped if an identical rule+id+payload was
// already published — this defends against a rule whose extractor
// re-triggers the same rendered action twice in one traversal, not
// against redelivery across separate Process calls. A publish failure is
// recorded and returned alongside any others, but does not prevent the
// remaining actions — including peer actions on the same rule — from
// being attempted.
func (d *Dispatcher) Dispatch(ctx context.Context, traceID string, pe *processed.Event) []error {
	var errs []error
	seen := make(map[uint64]struct{})
	for _, rule := range pe.MatchedRules() {
		for _, act := range rule.Actions {
			if act.Err != "" {
				continue
			}
			h := actionHash(rule.Name, act)
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}

			err := d.bus.PublishAction(ctx, Action{ID: act.ID, Payload: act.Payload, TraceID: traceID})
			if err != nil {
				d.logger.Warn("publish_action failed", "rule", rule.Name, "action", act.ID, "error", err)
				errs = append(errs, err)
				continue
			}
		}
	}
	return errs
}

func actionHash(ruleName string, act processed.RenderedAction) uint64 {
	h := xxhash.New()
	h.Write([]byte(ruleName))
	h.Write([]byte{0})
	h.Write([]byte(act.ID))
	h.Write([]byte{0})
	payload, err := act.Payload.MarshalJSON()
	if err == nil {
		h.Write(payload)
	} else {
		h.Write([]byte(act.Payload.String()))
	}
	return h.Sum64()
}
