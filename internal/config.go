package internal

import (
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/taskparser/internal/item"
	"github.com/starford/taskparser/internal/query"
	"github.com/starford/taskparser/internal/render"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	Query  QueryConfig       `yaml:"query"`
	Render RenderConfig      `yaml:"render"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Query.Validate(); err != nil {
		return err
	}
	if err := c.Render.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// Request builds the listing request described by the query and render
// sections. Expressions are compiled later by query.Compile.
func (c *Config) Request() (query.Request, error) {
	format, err := render.ParseFormat(c.Query.Output)
	if err != nil {
		return query.Request{}, fmt.Errorf("config: query: %w", err)
	}
	kind := item.KindTask
	if c.Query.Worklogs {
		kind = item.KindWorklog
	}
	return query.Request{
		Kind:    kind,
		Filter:  c.Query.Filter,
		Sort:    c.Query.Sort,
		Tags:    render.ParseTags(c.Query.Tags),
		Format:  format,
		Columns: c.Render.Columns,
	}, nil
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

// VaultConfig holds the root directory that is scanned for Markdown files.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// QueryConfig holds the default listing. Tags is a comma-separated list.
type QueryConfig struct {
	Tags     string `yaml:"tags"`
	Filter   string `yaml:"filter"`
	Sort     string `yaml:"sort"`
	Output   string `yaml:"output"`
	Worklogs bool   `yaml:"worklogs"`
}

// Validate validates the query configuration.
func (c *QueryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Tags, validation.Required, validation.By(func(any) error {
			if len(render.ParseTags(c.Tags)) == 0 {
				return fmt.Errorf("must name at least one tag")
			}
			return nil
		})),
		validation.Field(&c.Output, validation.In(
			"tabular",
			string(render.FormatTable),
			string(render.FormatCSV),
			string(render.FormatJSON),
		)),
	)
}

// RenderConfig holds table rendering options. Zero columns means no
// terminal width is known.
type RenderConfig struct {
	Columns int `yaml:"columns"`
}

// Validate validates the render configuration.
func (c *RenderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Columns, validation.Min(0)),
	)
}

// AuthConfig holds authentication configuration for the HTTP API.
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

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path: ".",
		},
		Query: QueryConfig{
			Tags:   strings.Join(query.DefaultTags, ","),
			Output: string(render.FormatTable),
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
