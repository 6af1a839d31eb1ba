package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the resolved runtime configuration.
type Config struct {
	Log      LogConfig
	Analysis AnalysisConfig
	Server   ServerConfig
	Database DatabaseConfig
}

type LogConfig struct {
	Level string
}

type AnalysisConfig struct {
	Seed        int64
	Trees       int
	Folds       int
	TestRatio   float64
	TopFeatures int
}

type ServerConfig struct {
	Addr string
}

type DatabaseConfig struct {
	URL string
}

// EnvPrefix prefixes every environment override, e.g. TITANIC_LOG_LEVEL.
const EnvPrefix = "TITANIC"

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("analysis.seed", 42)
	v.SetDefault("analysis.trees", 100)
	v.SetDefault("analysis.folds", 5)
	v.SetDefault("analysis.test_ratio", 0.2)
	v.SetDefault("analysis.top_features", 5)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.url", "")
}

// Load resolves defaults, then the optional config file, then .env and the
// environment. An empty path skips the config file.
func Load(path string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Log: LogConfig{Level: v.GetString("log.level")},
		Analysis: AnalysisConfig{
			Seed:        v.GetInt64("analysis.seed"),
			Trees:       v.GetInt("analysis.trees"),
			Folds:       v.GetInt("analysis.folds"),
			TestRatio:   v.GetFloat64("analysis.test_ratio"),
			TopFeatures: v.GetInt("analysis.top_features"),
		},
		Server:   ServerConfig{Addr: v.GetString("server.addr")},
		Database: DatabaseConfig{URL: v.GetString("database.url")},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the analysis cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Analysis.Trees < 1 {
		errs = append(errs, fmt.Errorf("analysis.trees must be positive, got %d", c.Analysis.Trees))
	}
	if c.Analysis.Folds < 2 {
		errs = append(errs, fmt.Errorf("analysis.folds must be at least 2, got %d", c.Analysis.Folds))
	}
	if c.Analysis.TestRatio <= 0 || c.Analysis.TestRatio >= 1 {
		errs = append(errs, fmt.Errorf("analysis.test_ratio must be in (0,1), got %v", c.Analysis.TestRatio))
	}
	if c.Analysis.TopFeatures < 1 {
		errs = append(errs, fmt.Errorf("analysis.top_features must be positive, got %d", c.Analysis.TopFeatures))
	}
	return errors.Join(errs...)
}
