package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func (s *sample) Validate() error {
	if s.Count < 0 {
		return errors.New("count must not be negative")
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

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "docs")
	p := writeConfig(t, "name: ${SAMPLE_NAME}\ncount: 3\n")

	var s sample
	if err := Load(p, &s); err != nil {
		t.Fatal(err)
	}
	if s.Name != "docs" || s.Count != 3 {
		t.Errorf("got %+v", s)
	}
}

func TestLoadValidates(t *testing.T) {
	p := writeConfig(t, "count: -1\n")
	var s sample
	if err := Load(p, &s); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &s); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not exist", err)
	}
}

func TestLoadOptionalKeepsDefaults(t *testing.T) {
	s := sample{Name: "default", Count: 1}
	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &s); err != nil {
		t.Fatal(err)
	}
	if s.Name != "default" || s.Count != 1 {
		t.Errorf("got %+v", s)
	}
}

func TestLoadOptionalOverlays(t *testing.T) {
	p := writeConfig(t, "count: 7\n")
	s := sample{Name: "default", Count: 1}
	if err := LoadOptional(p, &s); err != nil {
		t.Fatal(err)
	}
	if s.Name != "default" || s.Count != 7 {
		t.Errorf("got %+v", s)
	}
}
