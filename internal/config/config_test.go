package config

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/requery/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.Host != DefaultHost {
		t.Errorf("Host = %q, want %q", cfg.Host, DefaultHost)
	}
	if cfg.App != DefaultApp {
		t.Errorf("App = %q, want %q", cfg.App, DefaultApp)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != DefaultPort || cfg.Path() != "" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_YAML(t *testing.T) {
	tmpDir := t.TempDir()
	configYAML := `name: demo
app: counter
port: 8080
metrics:
  enabled: false
log:
  level: debug
  format: json
`
	if err := os.WriteFile(filepath.Join(tmpDir, "rq.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Name != "demo" || cfg.App != "counter" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Host != DefaultHost {
		t.Errorf("Host = %q, want default", cfg.Host)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false")
	}
	if cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q", cfg.Metrics.Path)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v", cfg.SlogLevel())
	}
}

func TestLoad_JSON(t *testing.T) {
	tmpDir := t.TempDir()
	configJSON := `{"host": "0.0.0.0", "port": 9000, "metrics": {"enabled": true, "namespace": "demo"}}`
	if err := os.WriteFile(filepath.Join(tmpDir, "rq.json"), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Address() != "0.0.0.0:9000" {
		t.Errorf("Address() = %q", cfg.Address())
	}
	if cfg.URL() != "http://0.0.0.0:9000" {
		t.Errorf("URL() = %q", cfg.URL())
	}
	if cfg.Metrics.Namespace != "demo" {
		t.Errorf("Namespace = %q", cfg.Metrics.Namespace)
	}
}

func TestLoad_YAMLTakesPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, "rq.json"), []byte(`{"port": 1}`), 0644)
	os.WriteFile(filepath.Join(tmpDir, "rq.yaml"), []byte("port: 2\n"), 0644)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 2 {
		t.Errorf("Port = %d, want 2", cfg.Port)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := LoadFile(filepath.Join(tmpDir, "rq.yaml"))
	if !stderrors.Is(err, errors.New("E124")) {
		t.Errorf("missing file error = %v, want E124", err)
	}

	bad := filepath.Join(tmpDir, "rq.json")
	os.WriteFile(bad, []byte("{not json"), 0644)
	_, err = LoadFile(bad)
	if !stderrors.Is(err, errors.New("E120")) {
		t.Errorf("parse error = %v, want E120", err)
	}
	if !strings.Contains(err.Error(), "rq.json") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"rq.yaml", "rq.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := New()
			cfg.Name = "saved"
			cfg.Port = 4000
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo() error = %v", err)
			}
			if cfg.Path() != path {
				t.Errorf("Path() = %q", cfg.Path())
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if loaded.Name != "saved" || loaded.Port != 4000 {
				t.Errorf("loaded = %+v", loaded)
			}
		})
	}

	if err := New().Save(); err == nil {
		t.Error("Save() without a path should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		apps   []string
		code   string
	}{
		{"defaults", func(*Config) {}, nil, ""},
		{"port too high", func(c *Config) { c.Port = 70000 }, nil, "E121"},
		{"negative port", func(c *Config) { c.Port = -1 }, nil, "E121"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, nil, "E122"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, nil, "E122"},
		{"known app", func(c *Config) { c.App = "counter" }, []string{"counter", "todos"}, ""},
		{"unknown app", func(c *Config) { c.App = "chess" }, []string{"counter", "todos"}, "E123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate(tt.apps...)
			if tt.code == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !stderrors.Is(err, errors.New(tt.code)) {
				t.Errorf("Validate() error = %v, want %s", err, tt.code)
			}
		})
	}

	cfg := New()
	cfg.Metrics.Path = "metrics"
	if cfg.Validate() == nil {
		t.Error("relative metrics path should fail")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"
	logger := cfg.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "name", "x")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"name":"x"`) {
		t.Errorf("json output = %q", out)
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := FindProjectRoot(nested); err == nil {
		t.Error("expected an error without a config file")
	}

	os.WriteFile(filepath.Join(root, "rq.yml"), []byte("app: counter\n"), 0644)
	found, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.Abs(root)
	if found != want {
		t.Errorf("FindProjectRoot() = %q, want %q", found, want)
	}
	if !Exists(root) || Exists(nested) {
		t.Error("Exists() mismatch")
	}
}
