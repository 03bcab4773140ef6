package reload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/0x4d31/matcherd/internal/evalctx"
	"github.com/0x4d31/matcherd/internal/value"
)

func writeRule(t *testing.T, dir, name string) {
	t.Helper()
	content := `{
		"name":"` + name + `","active":true,
		"constraint": {"WHERE": {"type":"true"}, "WITH": {}},
		"actions": [{"id":"a","payload":"hi"}]
	}`
	if err := os.WriteFile(filepath.Join(dir, name+".json"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile rule: %v", err)
	}
}

func mustEvent(t *testing.T) *evalctx.Event {
	t.Helper()
	ev, err := evalctx.NewEvent("test", 1, map[string]value.Value{"x": value.String("1")}, nil, "trace")
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	return ev
}

func TestNewBuildsInitialSnapshot(t *testing.T) {
	root := t.TempDir()
	writeRule(t, root, "r1")

	r, err := New(root, nil, WithStabilityWait(50*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	m := r.Matcher()
	if m == nil {
		t.Fatal("expected non-nil initial snapshot")
	}
	pe := m.Process(mustEvent(t), false)
	if len(pe.MatchedRules()) != 1 {
		t.Fatalf("matched = %d, want 1", len(pe.MatchedRules()))
	}
}

func TestRebuildPicksUpNewRule(t *testing.T) {
	root := t.TempDir()
	writeRule(t, root, "r1")

	r, err := New(root, nil, WithStabilityWait(80*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go func() { _ = r.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	writeRule(t, root, "r2")

	deadline := time.After(1500 * time.Millisecond)
	for {
		pe := r.Matcher().Process(mustEvent(t), false)
		if len(pe.MatchedRules()) == 2 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("rebuild did not pick up new rule in time, matched=%d", len(pe.MatchedRules()))
		case <-time.After(25 * time.Millisecond):
		}
	}
}

func TestRebuildFailureKeepsPreviousSnapshot(t *testing.T) {
	root := t.TempDir()
	writeRule(t, root, "r1")

	r, err := New(root, nil, WithStabilityWait(60*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()
	before := r.Matcher()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	go func() { _ = r.Start(ctx) }()

	time.Sleep(40 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(root, "broken.json"), []byte(`{not json`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	time.Sleep(400 * time.Millisecond)
	if r.Matcher() != before {
		t.Fatal("expected snapshot to remain unchanged after a broken rebuild")
	}
}
