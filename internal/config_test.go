package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Site.Generator != "auto" {
		t.Errorf("generator = %q, want auto", cfg.Site.Generator)
	}
}

func TestSiteConfig_InvalidGenerator(t *testing.T) {
	cfg := SiteConfig{Generator: "hugo"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown generator should fail validation")
	}
}

func TestSiteConfig_EmptyGeneratorDefaultsAuto(t *testing.T) {
	cfg := SiteConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty generator should default to auto: %v", err)
	}
	if cfg.Generator != "auto" {
		t.Errorf("generator = %q", cfg.Generator)
	}
}

func TestConvertConfig_Bounds(t *testing.T) {
	cases := []struct {
		name string
		mod  func(c *ConvertConfig)
	}{
		{"zero width", func(c *ConvertConfig) { c.DefaultImageWidth = 0 }},
		{"zero workers", func(c *ConvertConfig) { c.Workers = 0 }},
		{"too many workers", func(c *ConvertConfig) { c.Workers = 65 }},
		{"bad severity", func(c *ConvertConfig) { c.Callouts = map[string][]string{"fatal": {"boom"}} }},
		{"duplicate keyword", func(c *ConvertConfig) {
			c.Callouts = map[string][]string{"tip": {"note"}, "info": {"note"}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig().Convert
			tc.mod(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestConvertConfig_CustomMapping(t *testing.T) {
	cfg := NewDefaultConfig().Convert
	cfg.Callouts = map[string][]string{"danger": {"bug"}, "info": {"note"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("custom mapping should pass: %v", err)
	}
	if len(cfg.EngineOptions()) != 5 {
		t.Errorf("engine options = %d, want 5", len(cfg.EngineOptions()))
	}
}
