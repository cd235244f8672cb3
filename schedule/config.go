package schedule

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cyp0633/schedrule/recurrence"
	"gopkg.in/yaml.v3"
)

// EngineConfig holds configuration options for the schedule engine
type EngineConfig struct {
	// Cache configuration
	CacheEnabled bool        `yaml:"cache_enabled"`
	CacheConfig  CacheConfig `yaml:"cache"`

	// Level used by callers that build their own handler from this config
	LogLevel slog.Level `yaml:"log_level"`

	// MaxScheduleLength rejects longer schedule texts before parsing (0 = unlimited)
	MaxScheduleLength int `yaml:"max_schedule_length"`

	Logger *slog.Logger            `yaml:"-"`
	Zones  recurrence.ZoneResolver `yaml:"-"`
}

// DefaultEngineConfig provides sensible defaults for production use
var DefaultEngineConfig = EngineConfig{
	CacheEnabled:      true,
	CacheConfig:       DefaultCacheConfig,
	LogLevel:          slog.LevelInfo,
	MaxScheduleLength: 64 * 1024,
}

// HighPerformanceConfig is optimized for high-traffic scenarios
var HighPerformanceConfig = EngineConfig{
	CacheEnabled: true,
	CacheConfig: CacheConfig{
		TTL:             30 * time.Minute, // Longer cache TTL
		MaxEntries:      5000,             // More cache entries
		CleanupInterval: 10 * time.Minute, // Less frequent cleanup
	},
	LogLevel:          slog.LevelWarn,
	MaxScheduleLength: 16 * 1024,
}

// LowMemoryConfig is optimized for memory-constrained environments
var LowMemoryConfig = EngineConfig{
	CacheEnabled: true,
	CacheConfig: CacheConfig{
		TTL:             5 * time.Minute, // Shorter cache TTL
		MaxEntries:      100,             // Fewer cache entries
		CleanupInterval: 2 * time.Minute, // More frequent cleanup
	},
	LogLevel:          slog.LevelInfo,
	MaxScheduleLength: 4 * 1024,
}

// DisabledCacheConfig turns off caching entirely
var DisabledCacheConfig = EngineConfig{
	CacheEnabled: false,
	CacheConfig:  CacheConfig{}, // Not used
	LogLevel:     slog.LevelInfo,
}

var (
	// ErrInvalidConfig is returned when a loaded configuration fails validation
	ErrInvalidConfig = errors.New("invalid engine configuration")
)

// Validate checks the numeric settings of the configuration
func (c EngineConfig) Validate() error {
	if c.MaxScheduleLength < 0 {
		return fmt.Errorf("%w: max_schedule_length must not be negative", ErrInvalidConfig)
	}
	if !c.CacheEnabled {
		return nil
	}
	if c.CacheConfig.TTL < 0 {
		return fmt.Errorf("%w: cache.ttl must not be negative", ErrInvalidConfig)
	}
	if c.CacheConfig.MaxEntries < 0 {
		return fmt.Errorf("%w: cache.max_entries must not be negative", ErrInvalidConfig)
	}
	if c.CacheConfig.CleanupInterval < 0 {
		return fmt.Errorf("%w: cache.cleanup_interval must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ParseConfig reads a YAML document on top of DefaultEngineConfig.
// Keys missing from the document keep their default values.
func ParseConfig(data []byte) (EngineConfig, error) {
	cfg := DefaultEngineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML configuration file
func LoadConfig(path string) (EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// NewEngineWithConfig creates a new schedule engine with custom configuration
func NewEngineWithConfig(config EngineConfig) *Engine {
	var cache *ParseCache
	if config.CacheEnabled {
		cache = NewParseCache(config.CacheConfig)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	zones := config.Zones
	if zones == nil {
		zones = recurrence.PlatformZones
	}

	return &Engine{
		cache:  cache,
		config: config,
		logger: logger,
		zones:  zones,
	}
}
