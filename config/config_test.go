package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.URL != "http://127.0.0.1:8000" {
		t.Errorf("expected default server URL http://127.0.0.1:8000, got %s", cfg.Server.URL)
	}
	if cfg.Poll.Interval != Duration(500*time.Millisecond) {
		t.Errorf("expected default poll interval 500ms, got %s", cfg.Poll.Interval)
	}
	if cfg.Log.Retention != 80 {
		t.Errorf("expected default log retention 80, got %d", cfg.Log.Retention)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing server URL",
			modify:  func(c *Config) { c.Server.URL = "" },
			wantErr: true,
		},
		{
			name:    "malformed server URL",
			modify:  func(c *Config) { c.Server.URL = "not a url" },
			wantErr: true,
		},
		{
			name:    "zero poll interval",
			modify:  func(c *Config) { c.Poll.Interval = 0 },
			wantErr: true,
		},
		{
			name:    "negative timeout",
			modify:  func(c *Config) { c.Server.Timeout = Duration(-time.Second) },
			wantErr: true,
		},
		{
			name:    "zero retention",
			modify:  func(c *Config) { c.Log.Retention = 0 },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "liftview.yaml")

	content := `server:
  url: http://elevator.local:9000
poll:
  interval: 250ms
log:
  retention: 40
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Server.URL != "http://elevator.local:9000" {
		t.Errorf("expected overridden URL, got %s", cfg.Server.URL)
	}
	if cfg.Poll.Interval != Duration(250*time.Millisecond) {
		t.Errorf("expected 250ms interval, got %s", cfg.Poll.Interval)
	}
	if cfg.Log.Retention != 40 {
		t.Errorf("expected retention 40, got %d", cfg.Log.Retention)
	}
	// Unspecified fields keep their defaults.
	if cfg.Server.Timeout != Duration(10*time.Second) {
		t.Errorf("expected default timeout, got %s", cfg.Server.Timeout)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	base.Merge(&Config{
		Server: ServerConfig{URL: "http://other:8080"},
		Poll:   PollConfig{Interval: Duration(time.Second)},
	})

	if base.Server.URL != "http://other:8080" {
		t.Errorf("expected merged URL, got %s", base.Server.URL)
	}
	if base.Poll.Interval != Duration(time.Second) {
		t.Errorf("expected merged interval, got %s", base.Poll.Interval)
	}
	// Zero values in the overlay leave the base alone.
	if base.Log.Retention != 80 {
		t.Errorf("expected retention untouched, got %d", base.Log.Retention)
	}

	base.Merge(nil) // must not panic
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "liftview.yaml")

	cfg := DefaultConfig()
	cfg.Poll.Interval = Duration(2 * time.Second)
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.Poll.Interval != Duration(2*time.Second) {
		t.Errorf("expected 2s interval after round trip, got %s", loaded.Poll.Interval)
	}
}

func TestWatcher_ReloadOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "liftview.yaml")

	if err := DefaultConfig().SaveToFile(path); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	w, err := WatchFile(path, nil)
	if err != nil {
		t.Fatalf("WatchFile() error = %v", err)
	}
	defer w.Close()

	updated := DefaultConfig()
	updated.Poll.Interval = Duration(50 * time.Millisecond)
	if err := updated.SaveToFile(path); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-w.Reloads():
		if cfg.Poll.Interval != Duration(50*time.Millisecond) {
			t.Errorf("expected reloaded interval 50ms, got %s", cfg.Poll.Interval)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

func TestWatcher_InvalidConfigSkipped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "liftview.yaml")

	if err := DefaultConfig().SaveToFile(path); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	w, err := WatchFile(path, nil)
	if err != nil {
		t.Fatalf("WatchFile() error = %v", err)
	}
	defer w.Close()

	// An invalid interval must not be delivered.
	if err := os.WriteFile(path, []byte("poll:\n  interval: -1s\n"), 0644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-w.Reloads():
		t.Errorf("unexpected reload delivered: %+v", cfg)
	case <-time.After(1500 * time.Millisecond):
		// Expected: nothing arrives.
	}
}
