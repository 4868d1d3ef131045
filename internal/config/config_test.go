package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

// isolateEnv clears every variable Load reads so the host cannot leak in.
func isolateEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	for _, k := range []string{
		"TODOS_CONFIG", "TODOS_BASE_URL", "TODOS_REFRESH_ON_CREATE", "TODOS_THEME",
		"TODOS_LOG_LEVEL", "TODOS_LOG_FORMAT", "TODOS_LOG_FILE", "TODOS_SERVER_ADDR",
		"TODOS_SERVER_BACKEND", "TODOS_SERVER_DSN", "TODOS_SERVER_TOKEN", "TODOS_CORS_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL: got %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.RefreshOnCreate {
		t.Error("RefreshOnCreate: got true, want false")
	}
	if cfg.Server.Backend != DefaultServerBackend {
		t.Errorf("Server.Backend: got %q, want %q", cfg.Server.Backend, DefaultServerBackend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadPriority(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "todos.toml")
	content := `
base_url = "http://file.example"
theme = "neon"

[log]
level = "debug"

[server]
backend = "json"
cors_origins = ["http://localhost:3000"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TODOS_CONFIG", path)
	t.Setenv("TODOS_THEME", "mono")
	t.Setenv("TODOS_REFRESH_ON_CREATE", "yes")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, []string{"--base-url", "http://flag.example", "ls"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.BaseURL != "http://flag.example" {
		t.Errorf("BaseURL: flag should win, got %q", cfg.BaseURL)
	}
	if cfg.Theme != "mono" {
		t.Errorf("Theme: env should beat file, got %q", cfg.Theme)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level: got %q, want debug", cfg.Log.Level)
	}
	if !cfg.RefreshOnCreate {
		t.Error("RefreshOnCreate: env yes should enable")
	}
	if cfg.Server.Backend != "json" {
		t.Errorf("Server.Backend: got %q", cfg.Server.Backend)
	}
	if len(cfg.Server.CORSOrigins) != 1 {
		t.Errorf("CORSOrigins: got %v", cfg.Server.CORSOrigins)
	}
	if cfg.Path != path {
		t.Errorf("Path: got %q, want %q", cfg.Path, path)
	}
	if got := fs.Args(); len(got) != 1 || got[0] != "ls" {
		t.Errorf("remaining args: got %v", got)
	}
}

func TestLoadBadFile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("base_url = "), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TODOS_CONFIG", path)
	if _, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDotEnv(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TODOS_DOTENV_PROBE=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TODOS_DOTENV_PROBE", "")
	os.Unsetenv("TODOS_DOTENV_PROBE")

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if got := os.Getenv("TODOS_DOTENV_PROBE"); got != "from-dotenv" {
		t.Errorf("got %q", got)
	}
	if err := loadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty base url", func(c *Config) { c.BaseURL = " " }, false},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, false},
		{"json format", func(c *Config) { c.Log.Format = "json" }, true},
		{"bad backend", func(c *Config) { c.Server.Backend = "mongo" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			setDefaults(cfg)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" a, ,b ,", ",")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v", got)
	}
}
