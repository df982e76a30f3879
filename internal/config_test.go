package internal_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestInternal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal Suite")
}

func validConfig() internal.Config {
	return internal.Config{
		Env: "development",
		Server: internal.ServerConfig{
			AllowedOrigins:    "http://localhost:3000, https://app.example.fr",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
		},
		Storage: internal.StorageConfig{Driver: internal.StorageDriverFile, DataDir: "data"},
		Security: internal.SecurityConfig{
			TokenSecret:           "0123456789abcdef0123456789abcdef",
			SessionTTL:            30 * 24 * time.Hour,
			BCryptCost:            10,
			CookieName:            "auth-token",
			EnforceSessionRecords: true,
		},
		Sessions:     internal.SessionsConfig{PurgeSchedule: "@hourly"},
		Notification: internal.NotificationConfig{Driver: "log"},
	}
}

var _ = Describe("Config", func() {
	It("accepts the defaults", func() {
		cfg := validConfig()
		Expect(cfg.Validate()).To(Succeed())
	})

	DescribeTable("rejects",
		func(mutate func(*internal.Config), message string) {
			cfg := validConfig()
			mutate(&cfg)
			Expect(cfg.Validate()).To(MatchError(ContainSubstring(message)))
		},
		Entry("a short token secret",
			func(c *internal.Config) { c.Security.TokenSecret = "short" }, "at least 32 characters"),
		Entry("legacy tokens while session records are enforced",
			func(c *internal.Config) { c.Security.AcceptLegacyTokens = true }, "accept_legacy_tokens"),
		Entry("an unknown storage driver",
			func(c *internal.Config) { c.Storage.Driver = "s3" }, `unknown storage driver "s3"`),
		Entry("the sql driver without a source",
			func(c *internal.Config) {
				c.Storage.Driver = internal.StorageDriverSQL
				c.Storage.SQL.Dialect = "postgres"
			}, "sql.source"),
		Entry("an unsupported sql dialect",
			func(c *internal.Config) {
				c.Storage.Driver = internal.StorageDriverSQL
				c.Storage.SQL = internal.SQLConfig{Dialect: "mysql", Source: "x"}
			}, "unsupported sql dialect"),
		Entry("the redis driver without an address",
			func(c *internal.Config) { c.Storage.Driver = internal.StorageDriverRedis }, "redis.addr"),
		Entry("a malformed purge schedule",
			func(c *internal.Config) { c.Sessions.PurgeSchedule = "every tuesday" }, "purge_schedule"),
		Entry("a webhook driver without gateways",
			func(c *internal.Config) { c.Notification.Driver = "webhook" }, "email_url or sms_url"),
		Entry("a malformed trusted proxy",
			func(c *internal.Config) { c.Server.TrustedProxies = "10.0.0.0/8, proxy.local" }, `invalid trusted proxy "proxy.local"`),
		Entry("an unknown log level",
			func(c *internal.Config) { c.Logging.Level = "verbose" }, "invalid log level"),
	)

	It("reports every failing section at once", func() {
		cfg := validConfig()
		cfg.Security.BCryptCost = 2
		cfg.Logging.Format = "xml"

		err := cfg.Validate()
		Expect(err).To(MatchError(ContainSubstring("security config")))
		Expect(err).To(MatchError(ContainSubstring("logging config")))
	})

	It("parses trusted proxies as addresses and ranges", func() {
		cfg := validConfig()
		cfg.Server.TrustedProxies = "10.0.0.0/8, 192.0.2.7"
		Expect(cfg.Validate()).To(Succeed())

		prefixes, err := cfg.Server.TrustedProxyPrefixes()
		Expect(err).NotTo(HaveOccurred())
		Expect(prefixes).To(HaveLen(2))
		Expect(prefixes[1].String()).To(Equal("192.0.2.7/32"))
	})

	It("allows legacy tokens once session records are not enforced", func() {
		cfg := validConfig()
		cfg.Security.AcceptLegacyTokens = true
		cfg.Security.EnforceSessionRecords = false
		Expect(cfg.Validate()).To(Succeed())
	})
})

var _ = Describe("AppError", func() {
	It("matches sentinels by code through wrapping", func() {
		err := fmt.Errorf("publish: %w", internal.ErrScheduleEmpty)

		Expect(errors.Is(err, internal.ErrScheduleEmpty)).To(BeTrue())
		Expect(errors.Is(err, internal.ErrScheduleLocked)).To(BeFalse())

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(409))
	})
})
