package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	VersionV1 = "v1"
)

type Config struct {
	Version        string    `yaml:"version"`
	CurrentContext string    `yaml:"current-context,omitempty"`
	Contexts       []Context `yaml:"contexts,omitempty"`
	Settings       Settings  `yaml:"settings,omitempty"`
	Mail           *Mail     `yaml:"mail,omitempty"`
}

// Context names one organization to audit. Tokens are never stored here;
// they live in the token store keyed by the context name.
type Context struct {
	Name       string  `yaml:"name"`
	Endpoint   string  `yaml:"endpoint,omitempty"`
	OrgID      string  `yaml:"org-id"`
	OrgType    string  `yaml:"org-type,omitempty"`
	Rate       float64 `yaml:"rate,omitempty"`
	MaxRetries int     `yaml:"max-retries,omitempty"`
}

type Settings struct {
	OutputFormat string `yaml:"output-format,omitempty"`
	Scope        string `yaml:"scope,omitempty"`
	Color        string `yaml:"color,omitempty"`
	LogDir       string `yaml:"log-dir,omitempty"`
}

// Mail configures SMTP delivery of audit reports.
type Mail struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	From        string `yaml:"from"`
	User        string `yaml:"user,omitempty"`
	PasswordEnv string `yaml:"password-env,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Version: VersionV1,
		Settings: Settings{
			OutputFormat: "table",
			Scope:        "all_users_group",
			Color:        "auto",
		},
	}
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, content, 0o600)
}

func (c *Config) FindContext(name string) (*Context, error) {
	for i := range c.Contexts {
		if c.Contexts[i].Name == name {
			return &c.Contexts[i], nil
		}
	}
	return nil, fmt.Errorf("context not found: %s", name)
}

// SetContext replaces the context with the same name or appends a new one.
func (c *Config) SetContext(ctx Context) {
	for i := range c.Contexts {
		if c.Contexts[i].Name == ctx.Name {
			c.Contexts[i] = ctx
			return
		}
	}
	c.Contexts = append(c.Contexts, ctx)
}

func (c *Config) CurrentContextOrDefault() string {
	if c.CurrentContext != "" {
		return c.CurrentContext
	}
	if len(c.Contexts) > 0 {
		return c.Contexts[0].Name
	}
	return ""
}

func (c *Config) Validate() error {
	if c.Version == "" {
		return errors.New("config version missing")
	}
	for _, ctx := range c.Contexts {
		if strings.TrimSpace(ctx.Name) == "" {
			return errors.New("context name cannot be empty")
		}
		if strings.TrimSpace(ctx.OrgID) == "" {
			return fmt.Errorf("context %s org-id is required", ctx.Name)
		}
		switch ctx.OrgType {
		case "", "standard", "cloud":
		default:
			return fmt.Errorf("context %s org-type must be standard or cloud, got %q", ctx.Name, ctx.OrgType)
		}
		if ctx.Rate < 0 {
			return fmt.Errorf("context %s rate cannot be negative", ctx.Name)
		}
	}
	if c.Mail != nil {
		if strings.TrimSpace(c.Mail.Host) == "" {
			return errors.New("mail host is required when mail is configured")
		}
		if c.Mail.Port <= 0 {
			return errors.New("mail port is required when mail is configured")
		}
		if strings.TrimSpace(c.Mail.From) == "" {
			return errors.New("mail from address is required when mail is configured")
		}
	}
	return nil
}
