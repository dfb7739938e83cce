package slides

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Engine provides the main API for working with templates.
// Use New() to create a new engine instance.
type Engine struct {
	config *Config
	cache  *TemplateCache
}

// New creates a new engine with the global configuration.
func New() *Engine {
	return &Engine{
		config: GetGlobalConfig(),
		cache:  defaultCache,
	}
}

// NewWithConfig creates a new engine with custom configuration.
func NewWithConfig(config *Config) *Engine {
	return &Engine{
		config: config,
		cache: NewTemplateCacheWithConfig(CacheConfig{
			MaxSize: config.CacheMaxSize,
			TTL:     config.CacheTTL,
		}),
	}
}

// PrepareFile loads a template from a file path.
// The template is cached if caching is enabled in the configuration.
func (e *Engine) PrepareFile(path string) (*PreparedTemplate, error) {
	// Check cache first if enabled
	if e.config.CacheMaxSize > 0 && e.cache != nil {
		if tmpl, ok := e.cache.Get(path); ok {
			return tmpl, nil
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template file: %w", err)
	}
	defer file.Close()

	tmpl, err := e.Prepare(file)
	if err != nil {
		return nil, WithContext(err, "prepare template", map[string]interface{}{"file": path})
	}

	// Store in cache if enabled
	if e.config.CacheMaxSize > 0 && e.cache != nil {
		e.cache.Set(path, tmpl)
	}

	return tmpl, nil
}

// Prepare loads a template from an io.Reader.
func (e *Engine) Prepare(r io.Reader) (*PreparedTemplate, error) {
	return prepare(r, e.config)
}

// GenerateFile prepares templatePath, generates a deck from records and
// writes it to outputPath.
func (e *Engine) GenerateFile(templatePath string, records []Record, outputPath string) error {
	tmpl, err := e.PrepareFile(templatePath)
	if err != nil {
		return err
	}
	return tmpl.GenerateFile(records, outputPath)
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// SetConfig updates the engine's configuration.
// Templates already in the cache keep the configuration they were prepared
// with.
func (e *Engine) SetConfig(config *Config) {
	e.config = config
}

// Evict drops one template from the cache.
func (e *Engine) Evict(path string) {
	if e.cache != nil {
		e.cache.Remove(path)
	}
}

// ClearCache removes all templates from the cache.
func (e *Engine) ClearCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// Close releases any resources held by the engine.
func (e *Engine) Close() error {
	if e.cache != nil && e.cache != defaultCache {
		return e.cache.Close()
	}
	return nil
}

// Option represents a configuration option for the engine.
type Option func(*Engine)

// WithConfig returns an option that sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		e.config = config
	}
}

// WithCache returns an option that sets the cache size (0 disables caching).
func WithCache(maxSize int) Option {
	return func(e *Engine) {
		config := *e.config
		config.CacheMaxSize = maxSize
		e.config = &config
	}
}

// WithTemplate returns an option that maps a slide kind to a template slide.
func WithTemplate(kind SlideKind, ref string) Option {
	return func(e *Engine) {
		config := *e.config
		config.Templates = make(map[string]string, len(e.config.Templates)+1)
		for k, v := range e.config.Templates {
			config.Templates[k] = v
		}
		config.Templates[string(kind)] = ref
		e.config = &config
	}
}

// WithImportantColor returns an option that sets the color of [[important]]
// text.
func WithImportantColor(color string) Option {
	return func(e *Engine) {
		config := *e.config
		config.ImportantColor = color
		e.config = &config
	}
}

// NewWithOptions creates a new engine with the specified options.
func NewWithOptions(opts ...Option) *Engine {
	engine := New()
	for _, opt := range opts {
		opt(engine)
	}
	if engine.config != GetGlobalConfig() {
		engine.cache = NewTemplateCacheWithConfig(CacheConfig{
			MaxSize: engine.config.CacheMaxSize,
			TTL:     engine.config.CacheTTL,
		})
	}
	return engine
}

// DefaultEngine is the global default engine instance.
// It uses the global configuration.
var DefaultEngine = New()

// Module-level convenience functions that use the default engine.

// PrepareFile loads a template from a file path using the default engine.
func PrepareFile(path string) (*PreparedTemplate, error) {
	return DefaultEngine.PrepareFile(path)
}

// Prepare loads a template from an io.Reader using the default engine.
func Prepare(r io.Reader) (*PreparedTemplate, error) {
	return DefaultEngine.Prepare(r)
}

// ClearCache clears the global template cache.
func ClearCache() {
	DefaultEngine.ClearCache()
}

// SetCacheConfig updates the global cache configuration.
func SetCacheConfig(maxSize int, ttl time.Duration) {
	config := *GetGlobalConfig()
	config.CacheMaxSize = maxSize
	config.CacheTTL = ttl
	SetGlobalConfig(&config)
}
