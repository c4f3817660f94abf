package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/territory-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Data       DataConfig       `yaml:"data" mapstructure:"data"`
	Allocation AllocationConfig `yaml:"allocation" mapstructure:"allocation"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// DataConfig points at the rep and account input files. CSV and XLSX are
// both accepted; the loader picks a parser by extension.
type DataConfig struct {
	RepsPath     string `yaml:"reps_path" mapstructure:"reps_path"`
	AccountsPath string `yaml:"accounts_path" mapstructure:"accounts_path"`
	SheetName    string `yaml:"sheet_name" mapstructure:"sheet_name"`
}

// AllocationConfig holds the default engine knobs; command flags override
// them per invocation.
type AllocationConfig struct {
	Threshold         int     `yaml:"threshold" mapstructure:"threshold"`
	ARRWeight         float64 `yaml:"arr_weight" mapstructure:"arr_weight"`
	AccountWeight     float64 `yaml:"account_weight" mapstructure:"account_weight"`
	RiskWeight        float64 `yaml:"risk_weight" mapstructure:"risk_weight"`
	GeoMatchBonus     float64 `yaml:"geo_match_bonus" mapstructure:"geo_match_bonus"`
	PreserveBonus     float64 `yaml:"preserve_bonus" mapstructure:"preserve_bonus"`
	HighRiskThreshold float64 `yaml:"high_risk_threshold" mapstructure:"high_risk_threshold"`
}

// Engine converts the configured defaults into the engine's config type.
func (c AllocationConfig) Engine() model.AllocationConfig {
	return model.AllocationConfig{
		Threshold:         c.Threshold,
		ARRWeight:         c.ARRWeight,
		AccountWeight:     c.AccountWeight,
		RiskWeight:        c.RiskWeight,
		GeoMatchBonus:     c.GeoMatchBonus,
		PreserveBonus:     c.PreserveBonus,
		HighRiskThreshold: c.HighRiskThreshold,
	}
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port      int     `yaml:"port" mapstructure:"port"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`
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
	v.SetEnvPrefix("TERRITORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("allocation.threshold", 5000)
	v.SetDefault("allocation.arr_weight", 33)
	v.SetDefault("allocation.account_weight", 33)
	v.SetDefault("allocation.risk_weight", 34)
	v.SetDefault("allocation.geo_match_bonus", 0.05)
	v.SetDefault("allocation.preserve_bonus", 0.05)
	v.SetDefault("allocation.high_risk_threshold", 70)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "territory.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 10)
	v.SetDefault("server.rate_burst", 20)
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
