package slides

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/benjaminschreck/go-slides/pkg/slides/content"
)

// Engine renders PPTX templates. Use New to create one; an Engine is safe for concurrent use.
type Engine struct {
	config *Config
	logger *zap.Logger
	cache  *TemplateCache
	now    func() time.Time
}

// Option represents a configuration option for the engine.
type Option func(*Engine)

// WithConfig sets the engine configuration. Unset fields take their defaults.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		e.config = NewConfigWithDefaults(config)
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithCache shares a template cache between engines.
func WithCache(cache *TemplateCache) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

// WithClock overrides the clock used for job dates.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an engine with the given options and validates its configuration.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		config: DefaultConfig(),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.config.Validate(); err != nil {
		return nil, err
	}
	if e.cache == nil {
		e.cache = NewTemplateCache(e.config.CacheMaxSize, e.config.CacheTTL)
	}
	return e, nil
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() Config {
	return *e.config
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *zap.Logger {
	return e.logger
}

// NewJob returns a job with the given id and the current time formatted with DateLayout.
func (e *Engine) NewJob(id string) content.Job {
	return content.Job{ID: id, Date: e.now().Format(e.config.DateLayout)}
}

// PrepareFile loads a template from a file path.
// The template is cached if caching is enabled in the configuration.
func (e *Engine) PrepareFile(path string) (*Template, error) {
	if tmpl, ok := e.cache.Get(path); ok {
		e.logger.Debug("template cache hit", zap.String("template", path))
		return tmpl, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template file: %w", err)
	}

	tmpl, err := newTemplate(path, data)
	if err != nil {
		return nil, err
	}
	e.cache.Set(path, tmpl)

	e.logger.Debug("template prepared",
		zap.String("template", path),
		zap.Int("slides", tmpl.SlideCount()))
	return tmpl, nil
}

// Prepare loads a template from r. name labels the template in errors and logs.
func (e *Engine) Prepare(r io.Reader, name string) (*Template, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return newTemplate(name, buf.Bytes())
}

// ClearCache removes all templates from the cache.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}
