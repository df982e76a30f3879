package internal

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type Config struct {
	Env          string             `mapstructure:"env"`
	Server       ServerConfig       `mapstructure:"http_server"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Security     SecurityConfig     `mapstructure:"security"`
	Sessions     SessionsConfig     `mapstructure:"sessions"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	TrustedProxies    string        `mapstructure:"trusted_proxies"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

const (
	StorageDriverFile   = "file"
	StorageDriverMemory = "memory"
	StorageDriverSQL    = "sql"
	StorageDriverRedis  = "redis"
)

type StorageConfig struct {
	Driver       string      `mapstructure:"driver"`
	DataDir      string      `mapstructure:"data_dir"`
	SeedDemoUser bool        `mapstructure:"seed_demo_user"`
	SQL          SQLConfig   `mapstructure:"sql"`
	Redis        RedisConfig `mapstructure:"redis"`
}

type SQLConfig struct {
	Dialect         string        `mapstructure:"dialect"`
	Source          string        `mapstructure:"source"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	KeyPrefix  string `mapstructure:"key_prefix"`
	MaxRetries int    `mapstructure:"max_retries"`
}

type SecurityConfig struct {
	TokenSecret           string        `mapstructure:"token_secret"`
	SessionTTL            time.Duration `mapstructure:"session_ttl"`
	BCryptCost            int           `mapstructure:"bcrypt_cost"`
	CookieName            string        `mapstructure:"cookie_name"`
	CookieSecure          bool          `mapstructure:"cookie_secure"`
	EnforceSessionRecords bool          `mapstructure:"enforce_session_records"`
	AcceptLegacyTokens    bool          `mapstructure:"accept_legacy_tokens"`
	LoginRateLimit        float64       `mapstructure:"login_rate_limit"`
	LoginBurst            int           `mapstructure:"login_burst"`
}

type SessionsConfig struct {
	PurgeSchedule string `mapstructure:"purge_schedule"`
}

type NotificationConfig struct {
	Driver     string        `mapstructure:"driver"`
	EmailURL   string        `mapstructure:"email_url"`
	SMSURL     string        `mapstructure:"sms_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxWorkers int           `mapstructure:"max_workers"`
	QueueSize  int           `mapstructure:"queue_size"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Sessions.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("sessions config: %v", err))
	}

	if err := c.Notification.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("notification config: %v", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

// TrustedProxyPrefixes parses trusted_proxies, a comma separated list of
// addresses and CIDR ranges. Forwarding headers are only honoured for
// requests coming from one of them.
func (c *ServerConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, raw := range strings.Split(c.TrustedProxies, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func (c *StorageConfig) Validate() error {
	switch c.Driver {
	case StorageDriverFile:
		if c.DataDir == "" {
			return errors.New("data_dir is required for the file driver")
		}
	case StorageDriverMemory:
	case StorageDriverSQL:
		if c.SQL.Source == "" {
			return errors.New("sql.source is required for the sql driver")
		}
		if c.SQL.Dialect != "postgres" && c.SQL.Dialect != "sqlite" {
			return fmt.Errorf("unsupported sql dialect %q", c.SQL.Dialect)
		}
		if c.SQL.MaxIdleConns > c.SQL.MaxOpenConns {
			return errors.New("max_idle_conns cannot be greater than max_open_conns")
		}
	case StorageDriverRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Driver)
	}
	return nil
}

func (c *SecurityConfig) Validate() error {
	if len(c.TokenSecret) < 32 {
		return errors.New("token secret must be at least 32 characters")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if c.BCryptCost < 4 || c.BCryptCost > 31 {
		return errors.New("bcrypt_cost must be between 4 and 31")
	}
	if c.CookieName == "" {
		return errors.New("cookie_name is required")
	}
	// legacy tokens carry no session reference and cannot be revoked
	if c.AcceptLegacyTokens && c.EnforceSessionRecords {
		return errors.New("accept_legacy_tokens requires enforce_session_records to be false")
	}
	return nil
}

func (c *SessionsConfig) Validate() error {
	if c.PurgeSchedule == "" {
		return nil
	}
	if _, err := cron.ParseStandard(c.PurgeSchedule); err != nil {
		return fmt.Errorf("invalid purge_schedule: %w", err)
	}
	return nil
}

func (c *NotificationConfig) Validate() error {
	switch c.Driver {
	case "", "log":
	case "webhook":
		if c.EmailURL == "" && c.SMSURL == "" {
			return errors.New("webhook driver needs email_url or sms_url")
		}
	default:
		return fmt.Errorf("unknown notification driver %q", c.Driver)
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Level)
	}
	switch c.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("invalid log format %q", c.Format)
	}
	return nil
}
