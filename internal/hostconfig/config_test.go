package hostconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matcherd.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "matcher:\n  config_dir: /etc/matcherd/rules.d\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Matcher.ReloadOn != "fsnotify" {
		t.Errorf("ReloadOn = %q, want fsnotify", cfg.Matcher.ReloadOn)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Matcher.StabilityWait.String() != "2s" {
		t.Errorf("StabilityWait = %v, want 2s", cfg.Matcher.StabilityWait)
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("MATCHERD_CONFIG_DIR", "/opt/matcherd/rules")
	path := writeConfig(t, "matcher:\n  config_dir: ${MATCHERD_CONFIG_DIR}\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Matcher.ConfigDir != "/opt/matcherd/rules" {
		t.Errorf("ConfigDir = %q, want expanded value", cfg.Matcher.ConfigDir)
	}
}

func TestValidateRejectsRelativeConfigDir(t *testing.T) {
	path := writeConfig(t, "matcher:\n  config_dir: relative/path\n")
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for relative config_dir")
	}
}

func TestValidateRejectsUnknownReloadMode(t *testing.T) {
	path := writeConfig(t, "matcher:\n  config_dir: /etc/matcherd/rules.d\n  reload_on: never\n")
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for unknown reload_on")
	}
}

func TestValidateRequiresAbsoluteTracePathWhenEnabled(t *testing.T) {
	path := writeConfig(t, "matcher:\n  config_dir: /etc/matcherd/rules.d\ntrace:\n  enabled: true\n  path: relative.jsonl\n")
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for relative trace.path")
	}
}
