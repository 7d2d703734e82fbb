package slides

import (
	"strings"
	"time"

	"github.com/benjaminschreck/go-slides/pkg/slides/content"
	"github.com/benjaminschreck/go-slides/pkg/slides/pptx"
	"github.com/benjaminschreck/go-slides/pkg/slides/render"
)

// Config contains all configuration options for the rendering engine
type Config struct {
	// ContentField is the row field holding the JSON content blob.
	ContentField string `yaml:"content_field"`
	// JobIDKey and JobDateKey name the keys injected into every Content Map.
	JobIDKey   string `yaml:"job_id_key"`
	JobDateKey string `yaml:"job_date_key"`
	// DateLayout formats the job date in NewJob.
	DateLayout string `yaml:"date_layout"`

	// Fallback replaces text tokens with no matching key.
	Fallback string `yaml:"fallback"`

	// TablePrefix and TableSuffix delimit the data key in a table anchor cell.
	TablePrefix string `yaml:"table_prefix"`
	TableSuffix string `yaml:"table_suffix"`
	// TableStyleID is stamped on generated tables. Empty means the PowerPoint default.
	TableStyleID string `yaml:"table_style_id"`
	// TableFontSize applies to generated tables whose anchor carries no size, in points.
	TableFontSize float64 `yaml:"table_font_size"`
	// NoDataText replaces the anchor of a table whose data is missing or empty.
	NoDataText string `yaml:"no_data_text"`
	// NoDataFontSize applies to every cell of such a table, in points.
	NoDataFontSize float64 `yaml:"no_data_font_size"`
	// StrictSchema rejects arrays whose elements do not share the first element's keys.
	StrictSchema bool `yaml:"strict_schema"`

	// MaxConcurrency bounds RenderEach. Zero or less means one worker per CPU.
	MaxConcurrency int `yaml:"max_concurrency"`

	// CacheMaxSize is the maximum number of templates to cache. 0 disables caching.
	CacheMaxSize int `yaml:"cache_max_size"`
	// CacheTTL is the time-to-live for cached templates. 0 means no expiration.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// LogLevel controls the verbosity of NewLogger (debug, info, warn, error, off)
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ContentField:   content.DefaultField,
		JobIDKey:       content.DefaultJobIDKey,
		JobDateKey:     content.DefaultJobDateKey,
		DateLayout:     "2006-01-02 15:04:05",
		Fallback:       "n/a",
		TablePrefix:    "{{table:",
		TableSuffix:    "}}",
		TableStyleID:   pptx.DefaultTableStyleID,
		TableFontSize:  11,
		NoDataText:     "n/a",
		NoDataFontSize: 11,
		CacheMaxSize:   100,
		LogLevel:       "info",
	}
}

// NewConfigWithDefaults creates a new configuration with defaults applied to unset fields
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()
	if overrides == nil {
		return defaults
	}

	config := *overrides

	setString := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	setString(&config.ContentField, defaults.ContentField)
	setString(&config.JobIDKey, defaults.JobIDKey)
	setString(&config.JobDateKey, defaults.JobDateKey)
	setString(&config.DateLayout, defaults.DateLayout)
	setString(&config.Fallback, defaults.Fallback)
	setString(&config.TablePrefix, defaults.TablePrefix)
	setString(&config.TableSuffix, defaults.TableSuffix)
	setString(&config.TableStyleID, defaults.TableStyleID)
	setString(&config.NoDataText, defaults.NoDataText)
	setString(&config.LogLevel, defaults.LogLevel)

	if config.TableFontSize == 0 {
		config.TableFontSize = defaults.TableFontSize
	}
	if config.NoDataFontSize == 0 {
		config.NoDataFontSize = defaults.NoDataFontSize
	}

	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var issues []ValidationIssue
	add := func(field, msg string) {
		issues = append(issues, ValidationIssue{Field: field, Message: msg})
	}

	if c.ContentField == "" {
		add("ContentField", "must not be empty")
	}
	if c.JobIDKey == "" || c.JobDateKey == "" {
		add("JobIDKey", "job keys must not be empty")
	} else if c.JobIDKey == c.JobDateKey {
		add("JobDateKey", "must differ from JobIDKey")
	}
	if c.DateLayout == "" {
		add("DateLayout", "must not be empty")
	}
	if render.HasToken(c.Fallback) {
		add("Fallback", "must not contain a placeholder token")
	}
	if render.HasToken(c.NoDataText) {
		add("NoDataText", "must not contain a placeholder token")
	}
	if c.TablePrefix == "" || c.TableSuffix == "" {
		add("TablePrefix", "table anchor prefix and suffix must not be empty")
	}
	if c.TableStyleID == "" || !strings.HasPrefix(c.TableStyleID, "{") || !strings.HasSuffix(c.TableStyleID, "}") {
		add("TableStyleID", "must be a braced GUID")
	}
	if c.TableFontSize <= 0 {
		add("TableFontSize", "must be positive")
	}
	if c.NoDataFontSize <= 0 {
		add("NoDataFontSize", "must be positive")
	}
	if c.CacheMaxSize < 0 {
		add("CacheMaxSize", "cannot be negative")
	}
	if c.CacheTTL < 0 {
		add("CacheTTL", "cannot be negative")
	}
	if _, ok := logLevels[c.LogLevel]; !ok {
		add("LogLevel", "invalid log level: "+c.LogLevel)
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func (c *Config) normalizer() content.Normalizer {
	return content.Normalizer{
		Field:      c.ContentField,
		JobIDKey:   c.JobIDKey,
		JobDateKey: c.JobDateKey,
	}
}
