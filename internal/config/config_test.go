package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.ListenAddr = "127.0.0.1:9090"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.ListenAddr != "127.0.0.1:9090" {
		t.Errorf("ListenAddr = %q, want %q", loaded.ListenAddr, "127.0.0.1:9090")
	}
	if loaded.TokenSecret != cfg.TokenSecret {
		t.Errorf("TokenSecret not round-tripped")
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadOrInitWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := LoadOrInit(path)
	if err != nil {
		t.Fatalf("LoadOrInit() error = %v", err)
	}
	if cfg.TokenSecret == "" {
		t.Error("default config must generate a token secret")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	// Second call loads the same secret instead of regenerating.
	again, err := LoadOrInit(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.TokenSecret != cfg.TokenSecret {
		t.Error("LoadOrInit must not regenerate an existing secret")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		desc    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults ok", func(*Config) {}, false},
		{"empty listen addr", func(c *Config) { c.ListenAddr = "" }, true},
		{"empty secret", func(c *Config) { c.TokenSecret = "" }, true},
		{"zero ttl", func(c *Config) { c.TokenTTLHours = 0 }, true},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			cfg := Default()
			c.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != c.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func TestSavePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
