package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	VCI       ProviderConfig  `yaml:"vci" mapstructure:"vci"`
	TCBS      ProviderConfig  `yaml:"tcbs" mapstructure:"tcbs"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Benchmark BenchmarkConfig `yaml:"benchmark" mapstructure:"benchmark"`
	Mapper    MapperConfig    `yaml:"mapper" mapstructure:"mapper"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ProviderConfig holds one upstream provider's connection settings.
type ProviderConfig struct {
	BaseURL          string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSecond    float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	RateBurst        int     `yaml:"rate_burst" mapstructure:"rate_burst"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	PrimarySource    bool    `yaml:"primary_source" mapstructure:"primary_source"`
	BreakerThreshold int     `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerResetSecs int     `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// FetchConfig tunes the staged dashboard fetch.
type FetchConfig struct {
	CallTimeoutSecs   int `yaml:"call_timeout_secs" mapstructure:"call_timeout_secs"`
	TierConcurrency   int `yaml:"tier_concurrency" mapstructure:"tier_concurrency"`
	PriceLookbackDays int `yaml:"price_lookback_days" mapstructure:"price_lookback_days"`
}

// BenchmarkConfig tunes the peer-group benchmark engine.
type BenchmarkConfig struct {
	MinSamples      int `yaml:"min_samples" mapstructure:"min_samples"`
	MaxPeers        int `yaml:"max_peers" mapstructure:"max_peers"`
	Concurrency     int `yaml:"concurrency" mapstructure:"concurrency"`
	PeerTimeoutSecs int `yaml:"peer_timeout_secs" mapstructure:"peer_timeout_secs"`
}

// MapperConfig points at the field-mapping tables. An empty path uses the
// tables compiled into the binary; operators can override them without a
// release as provider schemas drift.
type MapperConfig struct {
	TablesPath string `yaml:"tables_path" mapstructure:"tables_path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VNMARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("vci.base_url", "https://api.vietcap.com.vn")
	v.SetDefault("vci.rate_per_second", 10)
	v.SetDefault("vci.rate_burst", 10)
	v.SetDefault("vci.timeout_secs", 30)
	v.SetDefault("vci.primary_source", true)
	v.SetDefault("vci.breaker_threshold", 5)
	v.SetDefault("vci.breaker_reset_secs", 30)
	v.SetDefault("tcbs.base_url", "https://apipubaws.tcbs.com.vn")
	v.SetDefault("tcbs.rate_per_second", 10)
	v.SetDefault("tcbs.rate_burst", 10)
	v.SetDefault("tcbs.timeout_secs", 30)
	v.SetDefault("tcbs.breaker_threshold", 5)
	v.SetDefault("tcbs.breaker_reset_secs", 30)
	v.SetDefault("fetch.call_timeout_secs", 30)
	v.SetDefault("fetch.tier_concurrency", 4)
	v.SetDefault("fetch.price_lookback_days", 365)
	v.SetDefault("benchmark.min_samples", 5)
	v.SetDefault("benchmark.max_peers", 50)
	v.SetDefault("benchmark.concurrency", 8)
	v.SetDefault("benchmark.peer_timeout_secs", 15)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration for a given run mode. Modes with no
// extra requirements beyond the shared bounds pass through.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.VCI.BaseURL == "" {
		problems = append(problems, "vci.base_url is required")
	}
	if c.TCBS.BaseURL == "" {
		problems = append(problems, "tcbs.base_url is required")
	}
	if c.Benchmark.MinSamples < 1 {
		problems = append(problems, "benchmark.min_samples must be >= 1")
	}
	if c.Benchmark.Concurrency < 1 || c.Benchmark.Concurrency > 64 {
		problems = append(problems, "benchmark.concurrency must be between 1 and 64")
	}
	if c.Fetch.TierConcurrency < 1 || c.Fetch.TierConcurrency > 32 {
		problems = append(problems, "fetch.tier_concurrency must be between 1 and 32")
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "fetch", "export":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
