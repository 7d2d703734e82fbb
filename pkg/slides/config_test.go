package slides

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.ContentField != "jeschro_content" {
		t.Errorf("DefaultConfig ContentField = %s, want jeschro_content", config.ContentField)
	}
	if config.Fallback != "n/a" {
		t.Errorf("DefaultConfig Fallback = %s, want n/a", config.Fallback)
	}
	if config.TablePrefix != "{{table:" || config.TableSuffix != "}}" {
		t.Errorf("DefaultConfig table markers = %q %q", config.TablePrefix, config.TableSuffix)
	}
	if config.TableStyleID != "{5C22544A-7EE6-4342-B048-85BDC9FD1C3A}" {
		t.Errorf("DefaultConfig TableStyleID = %s", config.TableStyleID)
	}
	if config.NoDataFontSize != 11 || config.TableFontSize != 11 {
		t.Errorf("DefaultConfig font sizes = %v %v, want 11 11", config.NoDataFontSize, config.TableFontSize)
	}
	if config.StrictSchema {
		t.Errorf("DefaultConfig StrictSchema = true, want false")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("DefaultConfig does not validate: %v", err)
	}
}

func TestNewConfigWithDefaults(t *testing.T) {
	config := NewConfigWithDefaults(&Config{
		ContentField:   "payload",
		StrictSchema:   true,
		MaxConcurrency: 3,
	})

	if config.ContentField != "payload" {
		t.Errorf("ContentField = %s, want payload", config.ContentField)
	}
	if !config.StrictSchema || config.MaxConcurrency != 3 {
		t.Errorf("overrides lost: %+v", config)
	}
	if config.JobIDKey != "jobid" || config.Fallback != "n/a" || config.TableFontSize != 11 {
		t.Errorf("defaults not applied: %+v", config)
	}
	if config.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", config.LogLevel)
	}

	if got := NewConfigWithDefaults(nil); got.ContentField != "jeschro_content" {
		t.Errorf("nil overrides should give defaults, got %+v", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"fallback with token", func(c *Config) { c.Fallback = "{{x}}" }, "Fallback"},
		{"no data text with token", func(c *Config) { c.NoDataText = "{{none}}" }, "NoDataText"},
		{"same job keys", func(c *Config) { c.JobDateKey = c.JobIDKey }, "JobDateKey"},
		{"empty content field", func(c *Config) { c.ContentField = "" }, "ContentField"},
		{"style id not braced", func(c *Config) { c.TableStyleID = "5C22544A" }, "TableStyleID"},
		{"negative cache", func(c *Config) { c.CacheMaxSize = -1 }, "CacheMaxSize"},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Second }, "CacheTTL"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "LogLevel"},
		{"zero font", func(c *Config) { c.TableFontSize = 0 }, "TableFontSize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateCollectsIssues(t *testing.T) {
	config := DefaultConfig()
	config.CacheMaxSize = -1
	config.LogLevel = "loud"

	var verr *ValidationError
	if !errors.As(config.Validate(), &verr) {
		t.Fatal("expected *ValidationError")
	}
	if len(verr.Issues) != 2 {
		t.Errorf("got %d issues, want 2: %v", len(verr.Issues), verr)
	}
}
