// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Routing       RoutingConfig      `mapstructure:"routing"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	UPC           UPCConfig          `mapstructure:"upc"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	MetricsAddress  string `mapstructure:"metrics_address"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	AuditIndex string   `mapstructure:"audit_index"`
}

// --- Routing Config ---

// RoutingConfig is the hot-reloadable decision configuration. It is read
// fresh at every decision through a Provider; the core never caches it.
type RoutingConfig struct {
	HeavyWeightThresholdOunces int      `mapstructure:"heavy_weight_threshold_ounces"`
	HighValueBrandRatio        int      `mapstructure:"high_value_brand_ratio"`
	BlockedAmazonBrands        []string `mapstructure:"blocked_amazon_brands"`
	QuotaTrackedTiers          []string `mapstructure:"quota_tracked_tiers"`
}

// --- Notification Config ---

type NotificationConfig struct {
	ReviewTopicARN string `mapstructure:"review_topic_arn"`
	ReviewEmail    string `mapstructure:"review_email"`
	SenderEmail    string `mapstructure:"sender_email"`
	AWSRegion      string `mapstructure:"aws_region"`
	Enabled        bool   `mapstructure:"enabled"`
}

// --- UPC Lookup Config ---

type UPCConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// --- Logging Config ---

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
