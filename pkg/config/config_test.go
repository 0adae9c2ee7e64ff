package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Extra string `yaml:"extra"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_ExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "vault")
	p := writeConfig(t, "name: ${SAMPLE_NAME}\nport: 9000\n")

	cfg := sample{Extra: "kept"}
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "vault" || cfg.Port != 9000 || cfg.Extra != "kept" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"malformed", "port: [1\n", "failed to parse"},
		{"invalid", "port: 0\n", "validation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Load(writeConfig(t, tt.content), &sample{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &sample{Port: 1})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestLoadOptional(t *testing.T) {
	cfg := sample{Port: 80}
	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if err := LoadOptional("", &cfg); err != nil {
		t.Fatalf("empty name: %v", err)
	}
	if err := LoadOptional("", &sample{}); err == nil {
		t.Error("defaults should still be validated")
	}

	p := writeConfig(t, "port: 81\n")
	if err := LoadOptional(p, &cfg); err != nil || cfg.Port != 81 {
		t.Errorf("cfg = %+v, err = %v", cfg, err)
	}
}
