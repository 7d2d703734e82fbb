// Package config loads settings for the slidestencil command from a YAML file,
// a .env file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/benjaminschreck/go-slides/internal/dataverse"
	"github.com/benjaminschreck/go-slides/pkg/slides"
)

// DefaultOutputFile is the document name used when splitting is off.
const DefaultOutputFile = "dataverse_report.pptx"

// Config represents the complete application configuration
type Config struct {
	Template  string           `yaml:"template"`
	Output    OutputConfig     `yaml:"output"`
	Render    slides.Config    `yaml:"render"`
	Dataverse dataverse.Config `yaml:"dataverse"`
	Server    ServerConfig     `yaml:"server"`
}

// OutputConfig controls where rendered documents are written.
type OutputConfig struct {
	Dir  string `yaml:"dir"`
	File string `yaml:"file"`
	// Split writes one document per row instead of a single document.
	Split bool `yaml:"split"`
}

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// MaxBodyBytes caps the request body of a render call.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Template: "template.pptx",
		Output: OutputConfig{
			Dir:  ".",
			File: DefaultOutputFile,
		},
		Render: *slides.DefaultConfig(),
		Dataverse: dataverse.Config{
			AuthorityHost: dataverse.DefaultAuthorityHost,
			Timeout:       30 * time.Second,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
			MaxBodyBytes: 32 << 20,
		},
	}
}

// Load builds the configuration. path names an optional YAML file and must exist
// when given. A .env file in the working directory is read if present.
func Load(path string) (*Config, error) {
	return load(path, ".env")
}

func load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// godotenv never overrides variables that are already set.
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.Render = *slides.NewConfigWithDefaults(&cfg.Render)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	c.Template = getEnvOrDefault("PPTX_TEMPLATE", c.Template)
	c.Output.Dir = getEnvOrDefault("SLIDES_OUTPUT_DIR", c.Output.Dir)
	c.Output.File = getEnvOrDefault("SLIDES_OUTPUT_FILE", c.Output.File)
	c.Server.Addr = getEnvOrDefault("SLIDES_ADDR", c.Server.Addr)

	r := &c.Render
	r.TableStyleID = getEnvOrDefault("PPTX_TABLE_STYLE_ID", r.TableStyleID)
	r.ContentField = getEnvOrDefault("SLIDES_CONTENT_FIELD", r.ContentField)
	r.Fallback = getEnvOrDefault("SLIDES_FALLBACK", r.Fallback)
	r.LogLevel = getEnvOrDefault("SLIDES_LOG_LEVEL", r.LogLevel)

	d := &c.Dataverse
	d.AuthorityHost = getEnvOrDefault("DATAVERSE_AUTHORITY_HOST", d.AuthorityHost)
	d.ClientID = getEnvOrDefault("DATAVERSE_CLIENT_ID", d.ClientID)
	d.ClientSecret = getEnvOrDefault("DATAVERSE_CLIENT_SECRET", d.ClientSecret)
	d.TenantID = getEnvOrDefault("DATAVERSE_TENANT_ID", d.TenantID)
	d.ResourceURL = getEnvOrDefault("DATAVERSE_URL", d.ResourceURL)
	d.APIURL = getEnvOrDefault("DATAVERSE_API_URL", d.APIURL)
	d.Entity = getEnvOrDefault("DATAVERSE_ENTITY", d.Entity)
	d.FilterColumn = getEnvOrDefault("DATAVERSE_ENTITY_FILTER_COLUMN", d.FilterColumn)
	if cols := os.Getenv("DATAVERSE_ENTITY_COLUMNS"); cols != "" {
		d.Columns = splitList(cols)
	}

	var err error
	if c.Output.Split, err = getEnvBool("SLIDES_SPLIT", c.Output.Split); err != nil {
		return err
	}
	if r.StrictSchema, err = getEnvBool("SLIDES_STRICT_SCHEMA", r.StrictSchema); err != nil {
		return err
	}
	if r.MaxConcurrency, err = getEnvInt("SLIDES_MAX_CONCURRENCY", r.MaxConcurrency); err != nil {
		return err
	}
	if r.CacheMaxSize, err = getEnvInt("SLIDES_CACHE_MAX_SIZE", r.CacheMaxSize); err != nil {
		return err
	}
	if r.CacheTTL, err = getEnvDuration("SLIDES_CACHE_TTL", r.CacheTTL); err != nil {
		return err
	}
	if d.Timeout, err = getEnvDuration("DATAVERSE_TIMEOUT", d.Timeout); err != nil {
		return err
	}
	return nil
}

// Validate checks the settings every command needs. Dataverse settings are
// checked by the dataverse client when it is used.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Template) == "" {
		return errors.New("template path must not be empty")
	}
	if c.Output.Dir == "" {
		return errors.New("output directory must not be empty")
	}
	if !c.Output.Split && c.Output.File == "" {
		return errors.New("output file must not be empty")
	}
	if c.Server.MaxBodyBytes < 0 {
		return errors.New("server max_body_bytes cannot be negative")
	}
	if err := c.Render.Validate(); err != nil {
		return fmt.Errorf("invalid render config: %w", err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
