// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads the layered configuration: .env file, base config.yaml under
// configs/, an environment-specific overlay, and environment variables.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // overlay is optional

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// RoutingProvider hands out the current RoutingConfig and supports atomic
// hot reload. The routing core reads through Get at every decision; reloads
// swap the value without touching in-flight decisions.
type RoutingProvider struct {
	current atomic.Value // RoutingConfig
}

// NewRoutingProvider seeds a provider with the given routing config.
func NewRoutingProvider(rc RoutingConfig) *RoutingProvider {
	p := &RoutingProvider{}
	p.current.Store(rc)
	return p
}

// Get returns the routing config as of now.
func (p *RoutingProvider) Get() RoutingConfig {
	return p.current.Load().(RoutingConfig)
}

// Swap atomically replaces the routing config.
func (p *RoutingProvider) Swap(rc RoutingConfig) {
	p.current.Store(rc)
}

// Watch re-reads the routing section whenever the config file changes and
// swaps it into the provider. onReload may be nil.
func (p *RoutingProvider) Watch(v *viper.Viper, onReload func(RoutingConfig)) {
	v.OnConfigChange(func(_ fsnotify.Event) {
		var rc RoutingConfig
		if err := v.UnmarshalKey("routing", &rc); err != nil {
			return
		}
		applyRoutingDefaults(&rc)
		p.Swap(rc)
		if onReload != nil {
			onReload(rc)
		}
	})
	v.WatchConfig()
}

// WatchFile is a convenience wrapper that sets up its own viper instance
// pointed at path and forwards routing-section changes to the provider.
func (p *RoutingProvider) WatchFile(path string, onReload func(RoutingConfig)) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("watch config %s: %w", path, err)
	}
	p.Watch(v, onReload)
	return nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}
	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if godotenv.Load(path) == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		if strVal, ok := v.Get(key).(string); ok {
			if strings.Contains(strVal, "${") {
				if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "routing-service"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.MetricsAddress == "" {
		cfg.Server.MetricsAddress = ":9090"
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 15
	}
	if cfg.Database.Postgres.MaxConnections <= 0 {
		cfg.Database.Postgres.MaxConnections = 20
	}
	if cfg.Database.Postgres.MaxIdle <= 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.AuditIndex == "" {
		cfg.Database.Elasticsearch.AuditIndex = "routing-decisions"
	}
	if cfg.UPC.Timeout <= 0 {
		cfg.UPC.Timeout = 3000
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	applyRoutingDefaults(&cfg.Routing)
}

func applyRoutingDefaults(rc *RoutingConfig) {
	if rc.HeavyWeightThresholdOunces <= 0 {
		rc.HeavyWeightThresholdOunces = 150
	}
	if rc.HighValueBrandRatio <= 0 {
		rc.HighValueBrandRatio = 10
	}
	if len(rc.QuotaTrackedTiers) == 0 {
		rc.QuotaTrackedTiers = []string{"A"}
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Routing.HighValueBrandRatio <= 0 {
		return fmt.Errorf("routing.high_value_brand_ratio must be positive")
	}
	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}
	return nil
}
