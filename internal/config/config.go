package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig           `mapstructure:"server"`
	Log       LogConfig              `mapstructure:"log"`
	Auth      AuthConfig             `mapstructure:"auth"`
	RateLimit RateLimitConfig        `mapstructure:"rate_limit"`
	ZeroX     ZeroXConfig            `mapstructure:"zerox"`
	Poller    PollerConfig           `mapstructure:"poller"`
	Wallet    WalletConfig           `mapstructure:"wallet"`
	Chains    map[string]ChainConfig `mapstructure:"chains"`
	Swap      SwapDefaults           `mapstructure:"swap"`
	Database  DatabaseConfig         `mapstructure:"database"`
	Redis     RedisConfig            `mapstructure:"redis"`
	Metrics   MetricsConfig          `mapstructure:"metrics"`
	Audit     AuditConfig            `mapstructure:"audit"`
}

type ServerConfig struct {
	Port     string `mapstructure:"port"`
	AltPort  string `mapstructure:"alt_port"`
	Mode     string `mapstructure:"mode"`
	ReadOnly bool   `mapstructure:"read_only"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type AuthConfig struct {
	RequireAPIKey bool   `mapstructure:"require_api_key"`
	APIKey        string `mapstructure:"api_key"`
	AdminKey      string `mapstructure:"admin_key"`
}

type RateLimitConfig struct {
	QPS   float64 `mapstructure:"qps"`
	Burst int     `mapstructure:"burst"`
}

// ZeroXConfig holds the upstream gasless API credentials. They are attached
// to every upstream request and never interpreted.
type ZeroXConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	Version   string `mapstructure:"version"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

func (c ZeroXConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

type PollerConfig struct {
	IntervalMs  int `mapstructure:"interval_ms"`
	MaxAttempts int `mapstructure:"max_attempts"`
}

func (c PollerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

type WalletConfig struct {
	PrivateKey       string `mapstructure:"private_key"`
	VerifySignatures bool   `mapstructure:"verify_signatures"`
}

// ChainConfig overrides catalog settings for one chain, keyed by chain name
// (BASE, POLYGON, ...).
type ChainConfig struct {
	RPCURL string `mapstructure:"rpc_url"`
}

type SwapDefaults struct {
	Recipient string `mapstructure:"recipient"`
	Amount    string `mapstructure:"amount"`
	Chain     string `mapstructure:"chain"`
	SellToken string `mapstructure:"sell_token"`
	BuyToken  string `mapstructure:"buy_token"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr                  string `mapstructure:"addr"`
	Password              string `mapstructure:"password"`
	DB                    int    `mapstructure:"db"`
	RecordTTLSeconds      int    `mapstructure:"record_ttl_seconds"`
	IdempotencyTTLSeconds int    `mapstructure:"idempotency_ttl_seconds"`
	EventsChannel         string `mapstructure:"events_channel"`
	AuditListKey          string `mapstructure:"audit_list_key"`
	AuditListMax          int    `mapstructure:"audit_list_max"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type AuditConfig struct {
	Dir            string `mapstructure:"dir"`
	RetentionHours int    `mapstructure:"retention_hours"`
}

func (c AuditConfig) Retention() time.Duration {
	return time.Duration(c.RetentionHours) * time.Hour
}

// RPCURL returns the configured RPC endpoint for a chain name, or "".
func (c *Config) RPCURL(chainName string) string {
	if c == nil || c.Chains == nil {
		return ""
	}
	// viper lower-cases map keys
	if cc, ok := c.Chains[strings.ToLower(chainName)]; ok {
		return cc.RPCURL
	}
	if cc, ok := c.Chains[chainName]; ok {
		return cc.RPCURL
	}
	return ""
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// Environment variables support
	// e.g. GASLESSGATE_ZEROX_API_KEY
	v.SetEnvPrefix("gaslessgate")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.alt_port", "5000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_only", false)
	v.SetDefault("log.level", "info")

	v.SetDefault("auth.require_api_key", false)
	v.SetDefault("auth.api_key", "")
	v.SetDefault("auth.admin_key", "")
	v.SetDefault("rate_limit.qps", 10)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("zerox.base_url", "https://api.0x.org")
	v.SetDefault("zerox.api_key", "")
	v.SetDefault("zerox.version", "v2")
	v.SetDefault("zerox.timeout_ms", 15000)

	v.SetDefault("poller.interval_ms", 5000)
	v.SetDefault("poller.max_attempts", 10)

	v.SetDefault("wallet.private_key", "")
	v.SetDefault("wallet.verify_signatures", true)

	v.SetDefault("swap.recipient", "0x7eac9f0Dcf81Ed413647D2B1c9b02620DA298A93")
	v.SetDefault("swap.amount", "5.00")
	v.SetDefault("swap.chain", "BASE")
	v.SetDefault("swap.sell_token", "USDC")
	v.SetDefault("swap.buy_token", "DAI")

	v.SetDefault("redis.record_ttl_seconds", 7*86400)
	v.SetDefault("redis.idempotency_ttl_seconds", 86400)
	v.SetDefault("redis.events_channel", "swaps:events")
	v.SetDefault("redis.audit_list_key", "audit_logs")
	v.SetDefault("redis.audit_list_max", 10000)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("audit.dir", "./logs")
	v.SetDefault("audit.retention_hours", 24*30)
}
