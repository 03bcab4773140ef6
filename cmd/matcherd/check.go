package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/0x4d31/matcherd/internal/evalctx"
	"github.com/0x4d31/matcherd/internal/logutil"
	"github.com/0x4d31/matcherd/internal/matcher"
	"github.com/0x4d31/matcherd/internal/value"
)

// eventFile is the on-disk JSON shape `matcherd check` accepts for its
// --event flag, mirroring evalctx.Event's fields.
type eventFile struct {
	TraceID   string                 `json:"trace_id"`
	EventType string                 `json:"event_type"`
	CreatedMs uint64                 `json:"created_ms"`
	Payload   map[string]value.Value `json:"payload"`
	Metadata  map[string]value.Value `json:"metadata"`
}

func newCheckCmd() *cobra.Command {
	var rulesDir, eventPath string
	var includeMeta bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one event through a configuration directory and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, rulesDir, eventPath, includeMeta)
		},
	}
	cmd.Flags().StringVar(&rulesDir, "rules-dir", "", "path to the matcher configuration directory (required)")
	cmd.Flags().StringVar(&eventPath, "event", "", "path to a JSON event file, or '-' for stdin (required)")
	cmd.Flags().BoolVar(&includeMeta, "meta", true, "include extracted-variable diagnostics in the output")
	_ = cmd.MarkFlagRequired("rules-dir")
	_ = cmd.MarkFlagRequired("event")
	return cmd
}

func runCheck(cmd *cobra.Command, rulesDir, eventPath string, includeMeta bool) error {
	m, err := matcher.Build(rulesDir, nil)
	if err != nil {
		return fmt.Errorf("build configuration: %w", err)
	}

	var raw []byte
	if eventPath == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(eventPath)
	}
	if err != nil {
		return fmt.Errorf("read event: %w", err)
	}

	var ef eventFile
	if err := json.Unmarshal(raw, &ef); err != nil {
		return fmt.Errorf("parse event: %w", err)
	}

	ev, err := evalctx.NewEvent(ef.EventType, ef.CreatedMs, ef.Payload, ef.Metadata, ef.TraceID)
	if err != nil {
		return fmt.Errorf("construct event: %w", err)
	}

	pe := m.Process(ev, includeMeta)

	for _, rule := range pe.MatchedRules() {
		extra := ""
		if includeMeta && len(rule.Meta.ExtractedVars) > 0 {
			ctx := make(map[string]string, len(rule.Meta.ExtractedVars))
			for k, v := range rule.Meta.ExtractedVars {
				ctx[k] = v.String()
			}
			extra = logutil.MatchedRuleContext(ctx)
		}
		logutil.MatchedRule(rule.Name, rule.Status.String(), "matched", extra)
	}

	out, err := json.MarshalIndent(pe, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

