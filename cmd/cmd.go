package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configDir string
	clearData bool
)

var rootCmd = &cobra.Command{
	Use:   "shiftboard",
	Short: "Shiftboard",
	Long:  `Staff scheduling for restaurants: employees, weekly plannings and payroll exports.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("http_server.port", 8080)
	v.SetDefault("http_server.base_url", "http://localhost:8080")
	v.SetDefault("http_server.allowed_origins", "http://localhost:3000")
	v.SetDefault("http_server.trusted_proxies", "")
	v.SetDefault("http_server.read_header_timeout", 5*time.Second)
	v.SetDefault("http_server.read_timeout", 15*time.Second)
	v.SetDefault("http_server.idle_timeout", 60*time.Second)
	v.SetDefault("http_server.write_timeout", 30*time.Second)

	v.SetDefault("storage.driver", internal.StorageDriverFile)
	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("storage.seed_demo_user", true)
	v.SetDefault("storage.sql.dialect", "postgres")
	v.SetDefault("storage.sql.source", "")
	v.SetDefault("storage.sql.max_open_conns", 10)
	v.SetDefault("storage.sql.max_idle_conns", 5)
	v.SetDefault("storage.sql.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("storage.sql.auto_migrate", false)
	v.SetDefault("storage.redis.addr", "")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.key_prefix", "shiftboard:")
	v.SetDefault("storage.redis.max_retries", 10)

	v.SetDefault("security.token_secret", "")
	v.SetDefault("security.session_ttl", 30*24*time.Hour)
	v.SetDefault("security.bcrypt_cost", 10)
	v.SetDefault("security.cookie_name", "auth-token")
	v.SetDefault("security.cookie_secure", false)
	v.SetDefault("security.enforce_session_records", true)
	v.SetDefault("security.accept_legacy_tokens", false)
	v.SetDefault("security.login_rate_limit", 0.5)
	v.SetDefault("security.login_burst", 10)

	v.SetDefault("sessions.purge_schedule", "@hourly")

	v.SetDefault("notification.driver", "log")
	v.SetDefault("notification.email_url", "")
	v.SetDefault("notification.sms_url", "")
	v.SetDefault("notification.api_key", "")
	v.SetDefault("notification.timeout", 10*time.Second)
	v.SetDefault("notification.max_workers", 4)
	v.SetDefault("notification.queue_size", 100)

	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
}

// loadConfig reads <path>/config.yml when present, then the environment
// (SHIFTBOARD_SECURITY_TOKEN_SECRET and so on). A .env file next to the config
// is loaded into the environment first.
func loadConfig(path string) (*internal.Config, error) {
	if err := godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("SHIFTBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

// setupLogger configures the process logger from cfg and returns it.
func setupLogger(cfg *internal.Config) *slog.Logger {
	return logger.Setup(logger.Options{
		Env:    cfg.Env,
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "c", ".", "directory holding config.yml and .env")

	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(notifyCmd)
}
