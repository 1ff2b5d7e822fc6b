package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !reflect.DeepEqual(cfg.Ports, []int{80, 443, 22, 445, 8080}) {
		t.Errorf("Ports = %v", cfg.Ports)
	}
	if cfg.SettleDelay.Duration() != 500*time.Millisecond {
		t.Errorf("SettleDelay = %v", cfg.SettleDelay.Duration())
	}
	if cfg.BranchTimeout.Duration() != 15*time.Second {
		t.Errorf("BranchTimeout = %v", cfg.BranchTimeout.Duration())
	}
	if !cfg.Radio || !cfg.EnableMDNS || cfg.ActiveARP {
		t.Errorf("unexpected toggles: %+v", cfg)
	}
}

func TestLoadFromPath_KeepsDefaultsForMissingKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devicescan.yaml")
	data := `
interface: eth0
ports: [22, 3389]
probe_timeout: 250ms
enable_mdns: false
radio: false
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, gotPath, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if gotPath != path {
		t.Errorf("path = %q, want %q", gotPath, path)
	}
	if cfg.Interface != "eth0" {
		t.Errorf("Interface = %q", cfg.Interface)
	}
	if !reflect.DeepEqual(cfg.Ports, []int{22, 3389}) {
		t.Errorf("Ports = %v", cfg.Ports)
	}
	if cfg.ProbeTimeout.Duration() != 250*time.Millisecond {
		t.Errorf("ProbeTimeout = %v", cfg.ProbeTimeout.Duration())
	}
	if cfg.EnableMDNS || cfg.Radio {
		t.Error("explicit false values should be kept")
	}
	if !cfg.EnableLLMNR || !cfg.EnableSSDP {
		t.Error("missing toggles should keep their defaults")
	}
	if cfg.HostnameTimeout.Duration() != 2*time.Second {
		t.Errorf("HostnameTimeout = %v", cfg.HostnameTimeout.Duration())
	}

	lc := cfg.LANConfig()
	if lc.ProbeTimeout != 250*time.Millisecond || lc.SettleDelay != 500*time.Millisecond {
		t.Errorf("LANConfig() = %+v", lc)
	}
}

func TestLoadFromPath_ZeroSettleDelay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("settle_delay: 0s\nprobe_timeout: 0s\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SettleDelay != 0 {
		t.Errorf("SettleDelay = %v, want 0", cfg.SettleDelay.Duration())
	}
	if lc := cfg.LANConfig(); lc.SettleDelay >= 0 {
		t.Errorf("LANConfig().SettleDelay = %v, want the negative off value", lc.SettleDelay)
	}
	if cfg.ProbeTimeout.Duration() != 800*time.Millisecond {
		t.Errorf("zero ProbeTimeout should fall back to the default, got %v", cfg.ProbeTimeout.Duration())
	}
}

func TestLoadFromPath_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := LoadFromPath(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("probe_timeout: soon\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadFromPath(bad); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Interface = "en1"
	cfg.SettleDelay = Duration(time.Second)

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Interface != "en1" || loaded.SettleDelay.Duration() != time.Second {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestFindConfigPath_Env(t *testing.T) {
	path := filepath.Join(t.TempDir(), "explicit.yaml")
	if err := os.WriteFile(path, []byte("radio: false\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, path)

	if got := FindConfigPath(); got != path {
		t.Fatalf("FindConfigPath() = %q, want %q", got, path)
	}
	cfg, got, err := Load()
	if err != nil || got != path {
		t.Fatalf("Load() = %q, %v", got, err)
	}
	if cfg.Radio {
		t.Error("expected radio disabled from the env config")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	cfg.Ports = []int{80, 70000}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for port out of range")
	}
}
