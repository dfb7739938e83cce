package slides

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mazznoer/csscolorparser"
	"github.com/spf13/viper"
)

// DefaultImportantColor is the foreground color of [[important]] text.
const DefaultImportantColor = "#0E7BCF"

// Column width strategies applied after a table gained columns.
const (
	ColumnResizeFixed        = "fixed"
	ColumnResizeRedistribute = "redistribute"
	ColumnResizeProportional = "proportional"
)

// Config contains all configuration options for the slides engine
type Config struct {
	// CacheMaxSize is the maximum number of templates to cache. 0 disables caching.
	CacheMaxSize int `mapstructure:"cache_max_size"`
	// CacheTTL is the time-to-live for cached templates. 0 means no expiration.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `mapstructure:"log_level"`
	// StrictMode turns record validation issues into errors
	StrictMode bool `mapstructure:"strict_mode"`

	// DeleteExistingSlides removes the slides already in the target before
	// generated slides are appended
	DeleteExistingSlides bool `mapstructure:"delete_existing_slides"`
	// Debug ignores the supplied records and generates the sample deck
	Debug bool `mapstructure:"debug"`
	// SkipMissingTemplates logs and skips records whose template slide is
	// missing instead of failing the run
	SkipMissingTemplates bool `mapstructure:"skip_missing_templates"`
	// ImportantColor is any CSS color; it is written as an sRGB value
	ImportantColor string `mapstructure:"important_color"`
	// ColumnResize is one of fixed, redistribute, proportional
	ColumnResize string `mapstructure:"column_resize"`
	// StyleTableCells also applies inline markup inside table cells
	StyleTableCells bool `mapstructure:"style_table_cells"`
	// Templates maps a slide kind to the name or id of its template slide.
	// Kinds without an entry use the kind name.
	Templates map[string]string `mapstructure:"templates"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func loadGlobalConfig() {
	configOnce.Do(func() {
		config := ConfigFromEnvironment()
		globalConfigMutex.Lock()
		globalConfig = config
		globalConfigMutex.Unlock()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		CacheMaxSize:         100,
		CacheTTL:             0,
		LogLevel:             "info",
		StrictMode:           false,
		DeleteExistingSlides: true,
		Debug:                false,
		SkipMissingTemplates: false,
		ImportantColor:       DefaultImportantColor,
		ColumnResize:         ColumnResizeFixed,
		StyleTableCells:      false,
		Templates:            DefaultTemplates(),
	}
}

// DefaultTemplates maps every kind to a template slide of the same name
func DefaultTemplates() map[string]string {
	templates := make(map[string]string, len(AllSlideKinds))
	for _, kind := range AllSlideKinds {
		templates[string(kind)] = string(kind)
	}
	return templates
}

// newViper returns a viper instance with defaults and SLIDES_* environment
// overrides registered (SLIDES_LOG_LEVEL, SLIDES_TEMPLATES_TABLE, ...)
func newViper() *viper.Viper {
	defaults := DefaultConfig()

	v := viper.New()
	v.SetDefault("cache_max_size", defaults.CacheMaxSize)
	v.SetDefault("cache_ttl", defaults.CacheTTL)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("strict_mode", defaults.StrictMode)
	v.SetDefault("delete_existing_slides", defaults.DeleteExistingSlides)
	v.SetDefault("debug", defaults.Debug)
	v.SetDefault("skip_missing_templates", defaults.SkipMissingTemplates)
	v.SetDefault("important_color", defaults.ImportantColor)
	v.SetDefault("column_resize", defaults.ColumnResize)
	v.SetDefault("style_table_cells", defaults.StyleTableCells)
	for kind, ref := range defaults.Templates {
		v.SetDefault("templates."+kind, ref)
	}

	v.SetEnvPrefix("SLIDES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshalConfig(v *viper.Viper) (*Config, error) {
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return config, nil
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config, err := unmarshalConfig(newViper())
	if err != nil {
		return DefaultConfig()
	}
	return config
}

// LoadConfig reads a YAML, JSON or TOML config file, then applies SLIDES_*
// environment overrides on top. An empty path only reads the environment.
func LoadConfig(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, NewDocumentError("read config", path, err)
		}
	}

	config, err := unmarshalConfig(v)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// NewConfigWithDefaults creates a new configuration with defaults applied to unset fields
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()

	if overrides == nil {
		return defaults
	}

	config := *overrides

	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.ImportantColor == "" {
		config.ImportantColor = defaults.ImportantColor
	}
	if config.ColumnResize == "" {
		config.ColumnResize = defaults.ColumnResize
	}

	templates := DefaultTemplates()
	for kind, ref := range overrides.Templates {
		if ref != "" {
			templates[kind] = ref
		}
	}
	config.Templates = templates

	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.CacheMaxSize < 0 {
		return errors.New("cache max size cannot be negative")
	}

	if c.CacheTTL < 0 {
		return errors.New("cache TTL cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	switch c.ColumnResize {
	case ColumnResizeFixed, ColumnResizeRedistribute, ColumnResizeProportional:
	default:
		return fmt.Errorf("invalid column resize strategy '%s' (must be 'fixed', 'redistribute', or 'proportional')", c.ColumnResize)
	}

	if _, err := ParseColor(c.ImportantColor); err != nil {
		return err
	}

	for kind := range c.Templates {
		if !SlideKind(kind).Valid() {
			return fmt.Errorf("templates: unknown slide kind '%s'", kind)
		}
	}

	return nil
}

// TemplateSet returns the template slide references of the configuration
func (c *Config) TemplateSet() TemplateSet {
	set := TemplateSet{}
	for _, kind := range AllSlideKinds {
		ref := c.Templates[string(kind)]
		if ref == "" {
			ref = string(kind)
		}
		set[kind] = ref
	}
	return set
}

// ParseColor parses any CSS color notation and returns it as the six digit
// upper case hex value DrawingML expects ("0E7BCF")
func ParseColor(value string) (string, error) {
	c, err := csscolorparser.Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid color %q: %w", value, err)
	}
	r, g, b, _ := c.RGBA255()
	return fmt.Sprintf("%02X%02X%02X", r, g, b), nil
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	loadGlobalConfig()

	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	// Return a copy to prevent modification
	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	loadGlobalConfig()

	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Update logger based on new config (outside the lock to avoid deadlock)
	UpdateLoggerFromConfig()
}
