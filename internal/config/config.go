package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"giftvault/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logging    logging.Config   `mapstructure:"logging"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Watcher    WatcherConfig    `mapstructure:"watcher"`
	Rates      RatesConfig      `mapstructure:"rates"`
	Index      IndexConfig      `mapstructure:"index"`
	Quotes     QuotesConfig     `mapstructure:"quotes"`
	Withdrawal WithdrawalConfig `mapstructure:"withdrawal"`
	Ledger     LedgerConfig     `mapstructure:"ledger"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Alerting   AlertingConfig   `mapstructure:"alerting"`
	Server     ServerConfig     `mapstructure:"server"`
	Export     ExportConfig     `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity for the quote audit store.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// WatcherConfig governs the alert evaluation cadence.
type WatcherConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	AlignToBucket   bool          `mapstructure:"align_to_bucket"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
}

// TierConfig declares one rate tier in configuration. Amounts and rates are
// decimal strings so they survive YAML round-trips without float drift.
type TierConfig struct {
	Kind   string `mapstructure:"kind"`
	Amount string `mapstructure:"amount"`
	Min    string `mapstructure:"min"`
	Max    string `mapstructure:"max"`
	Rate   string `mapstructure:"rate"`
}

// ActiveRateConfig is a brand's stored base rate entry.
type ActiveRateConfig struct {
	Percentage int64 `mapstructure:"percentage"`
	Enabled    bool  `mapstructure:"enabled"`
}

// RatesConfig carries the tier tables and per-brand active rates.
type RatesConfig struct {
	DefaultTable []TierConfig                `mapstructure:"default_table"`
	Overrides    map[string][]TierConfig     `mapstructure:"overrides"`
	Active       map[string]ActiveRateConfig `mapstructure:"active"`
}

// IndexConfig selects coin-price-index sources.
type IndexConfig struct {
	Baseline int64         `mapstructure:"baseline"`
	Chain    ChainConfig   `mapstructure:"chain"`
	Gateway  GatewayConfig `mapstructure:"gateway"`
}

// ChainConfig covers the on-chain oracle read.
type ChainConfig struct {
	RPCURL         string        `mapstructure:"rpc_url"`
	OracleAddress  string        `mapstructure:"oracle_address"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// GatewayConfig covers the platform HTTP gateway fallback.
type GatewayConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// QuotesConfig tunes quote issuance.
type QuotesConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// WithdrawalConfig bounds the processing window.
type WithdrawalConfig struct {
	MinWait time.Duration `mapstructure:"min_wait"`
	MaxWait time.Duration `mapstructure:"max_wait"`
}

// LedgerConfig controls the local transaction log.
type LedgerConfig struct {
	DataDir    string `mapstructure:"data_dir"`
	MaxEntries int    `mapstructure:"max_entries"`
	IDPrefix   string `mapstructure:"id_prefix"`
}

// CacheConfig sizes the per-principal session cache.
type CacheConfig struct {
	MaxItems int64 `mapstructure:"max_items"`
}

// AlertingConfig defines alert notification routing.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Cooldown time.Duration  `mapstructure:"cooldown"`
	Channels []string       `mapstructure:"channels"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes the Telegram delivery channel.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ServerConfig tunes the local HTTP API.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GIFTVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "giftvault")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("watcher.interval", "1m")
	v.SetDefault("watcher.align_to_bucket", true)
	v.SetDefault("watcher.advisory_lock_key", int64(0x67766c74))
	v.SetDefault("watcher.startup_delay", "0s")

	v.SetDefault("index.baseline", int64(100))
	v.SetDefault("index.chain.request_timeout", "10s")
	v.SetDefault("index.gateway.request_timeout", "10s")
	v.SetDefault("index.gateway.user_agent", "giftvault/1.0")

	v.SetDefault("quotes.ttl", "15m")

	v.SetDefault("withdrawal.min_wait", "5m")
	v.SetDefault("withdrawal.max_wait", "20m")

	v.SetDefault("ledger.data_dir", ".giftvault")
	v.SetDefault("ledger.max_entries", 50)
	v.SetDefault("ledger.id_prefix", "txn")

	v.SetDefault("cache.max_items", int64(4096))

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.cooldown", "30m")
	v.SetDefault("alerting.channels", []string{"telegram"})
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("server.addr", ":8084")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrations_path", "migrations")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Watcher.Interval <= 0 {
		return fmt.Errorf("watcher.interval must be greater than zero")
	}
	if c.Index.Baseline <= 0 {
		return fmt.Errorf("index.baseline must be greater than zero")
	}
	if c.Quotes.TTL <= 0 {
		return fmt.Errorf("quotes.ttl must be greater than zero")
	}
	if c.Withdrawal.MinWait <= 0 || c.Withdrawal.MaxWait <= c.Withdrawal.MinWait {
		return fmt.Errorf("withdrawal window must satisfy 0 < min_wait < max_wait")
	}
	if c.Ledger.MaxEntries <= 0 {
		return fmt.Errorf("ledger.max_entries must be greater than zero")
	}
	if c.Cache.MaxItems <= 0 {
		return fmt.Errorf("cache.max_items must be greater than zero")
	}
	if c.Alerting.Cooldown < 0 {
		return fmt.Errorf("alerting.cooldown cannot be negative")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token is required when telegram is enabled")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
