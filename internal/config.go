package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/kramify/internal/convert"
	"github.com/starford/kramify/internal/pipeline"
	"github.com/starford/kramify/internal/site"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig `yaml:"app"`
	Site        SiteConfig        `yaml:"site"`
	Convert     ConvertConfig     `yaml:"convert"`
	Frontmatter FrontmatterConfig `yaml:"frontmatter"`
	State       StateConfig       `yaml:"state"`
	Auth        AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.Convert.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SiteConfig selects the generator and where its content lives.
type SiteConfig struct {
	Generator    string `yaml:"generator"`
	MkDocsConfig string `yaml:"mkdocs_config"`
	JekyllDir    string `yaml:"jekyll_dir"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	if c.Generator == "" {
		c.Generator = site.Auto
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Generator, validation.Required,
			validation.In(site.Auto, convert.MkDocs.String(), convert.Jekyll.String())),
	)
}

// Options converts the section into site detection options.
func (c *SiteConfig) Options() site.Options {
	return site.Options{
		Generator:    c.Generator,
		MkDocsConfig: c.MkDocsConfig,
		JekyllDir:    c.JekyllDir,
	}
}

// ConvertConfig tunes the conversion engine and the pipeline.
type ConvertConfig struct {
	IndexName         string              `yaml:"index_name"`
	ExcludedSections  []string            `yaml:"excluded_sections"`
	ExcludedWikilinks []string            `yaml:"excluded_wikilinks"`
	DefaultImageWidth int                 `yaml:"default_image_width"`
	Workers           int                 `yaml:"workers"`
	Callouts          map[string][]string `yaml:"callouts"`
}

// Validate validates the conversion configuration.
func (c *ConvertConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultImageWidth, validation.Required, validation.Min(1)),
		validation.Field(&c.Workers, validation.Required, validation.Min(1), validation.Max(64)),
		validation.Field(&c.Callouts, validation.By(func(any) error {
			return c.mapping().Validate()
		})),
	)
}

func (c *ConvertConfig) mapping() convert.CalloutMapping {
	m := make(convert.CalloutMapping, len(c.Callouts))
	for sev, keywords := range c.Callouts {
		m[convert.Severity(sev)] = keywords
	}
	return m
}

// EngineOptions converts the section into engine options.
func (c *ConvertConfig) EngineOptions() []convert.Option {
	opts := []convert.Option{
		convert.WithDefaultImageWidth(c.DefaultImageWidth),
		convert.WithIndexName(c.IndexName),
		convert.WithCalloutMapping(c.mapping()),
	}
	if c.ExcludedSections != nil {
		opts = append(opts, convert.WithExcludedSections(c.ExcludedSections...))
	}
	if c.ExcludedWikilinks != nil {
		opts = append(opts, convert.WithExcludedWikilinks(c.ExcludedWikilinks...))
	}
	return opts
}

// FrontmatterConfig controls header normalization during conversion.
type FrontmatterConfig struct {
	Enabled bool `yaml:"enabled"`
	Force   bool `yaml:"force"`
}

// StateConfig holds the conversion ledger location. An empty path disables
// the ledger.
type StateConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// PipelineConfig builds the pipeline settings for gen.
func (c *Config) PipelineConfig(gen convert.Generator) pipeline.Config {
	return pipeline.Config{
		Generator:        gen,
		Frontmatter:      c.Frontmatter.Enabled,
		ForceFrontmatter: c.Frontmatter.Force,
		Workers:          c.Convert.Workers,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Site: SiteConfig{
			Generator:    site.Auto,
			MkDocsConfig: site.DefaultMkDocsConfig,
			JekyllDir:    site.DefaultJekyllDir,
		},
		Convert: ConvertConfig{
			IndexName:         convert.DefaultIndexName,
			ExcludedSections:  append([]string(nil), convert.DefaultExcludedSections...),
			ExcludedWikilinks: append([]string(nil), convert.DefaultExcludedWikilinks...),
			DefaultImageWidth: convert.DefaultImageWidth,
			Workers:           4,
		},
		State: StateConfig{
			Path: ".kramify.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
