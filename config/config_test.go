package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/modelhub-web/config"
)

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Address:         ":3000",
			Environment:     config.EnvDev,
			ReadTimeout:     "15s",
			WriteTimeout:    "60s",
			IdleTimeout:     "60s",
			ShutdownTimeout: "5s",
		},
		Rewrites: []config.RewriteConfig{
			{Source: config.DefaultRewriteSource, Destination: config.DefaultRewriteDestination},
		},
		HealthCheck:    config.HealthCheckConfig{Interval: "10s", Timeout: "3s", Path: "/openapi.json"},
		CircuitBreaker: config.CircuitBreakerConfig{Threshold: 5, ResetTimeout: "30s"},
		RateLimit:      config.RateLimitConfig{RPS: 50, Burst: 100, GlobalRPS: 500, GlobalBurst: 1000},
		Metrics:        config.MetricsConfig{BufferSize: 1024},
		Logging:        config.LoggingConfig{Level: config.LogLevelInfo},
	}
}

var _ = Describe("Config", func() {
	var (
		tempDir string
		origDir string
	)

	BeforeEach(func() {
		var err error
		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tempDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tempDir)
		os.Unsetenv("LOGGING_LEVEL")
		os.Unsetenv("SERVER_ADDRESS")
		os.Unsetenv("SERVER_SHUTDOWN_TIMEOUT")
		os.Unsetenv("RATE_LIMIT_TRUST_FORWARDED_FOR")
		os.Unsetenv("DOTENV_SAMPLE")
	})

	Describe("Load", func() {
		Context("without a config file", func() {
			It("should use defaults", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Address).To(Equal(":3000"))
				Expect(cfg.Server.Environment).To(Equal(config.EnvDev))
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelInfo))
				Expect(cfg.Server.ShutdownTimeout).To(Equal("5s"))
				Expect(cfg.RateLimit.TrustForwardedFor).To(BeFalse())
			})

			It("should declare exactly one rewrite rule", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Rewrites).To(HaveLen(1))
				Expect(cfg.Rewrites[0].Source).To(Equal("/api/:path*"))
				Expect(cfg.Rewrites[0].Destination).To(Equal("http://127.0.0.1:8000/:path*"))
			})

			It("should apply environment overrides", func() {
				os.Setenv("LOGGING_LEVEL", "debug")
				os.Setenv("SERVER_ADDRESS", "127.0.0.1:4000")
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Logging.Level).To(Equal("debug"))
				Expect(cfg.Server.Address).To(Equal("127.0.0.1:4000"))
			})

			It("should read the shutdown timeout and forwarding trust from the environment", func() {
				os.Setenv("SERVER_SHUTDOWN_TIMEOUT", "45s")
				os.Setenv("RATE_LIMIT_TRUST_FORWARDED_FOR", "true")
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(config.Duration(cfg.Server.ShutdownTimeout)).To(Equal(45 * time.Second))
				Expect(cfg.RateLimit.TrustForwardedFor).To(BeTrue())
			})

			It("should reject invalid environment overrides", func() {
				os.Setenv("LOGGING_LEVEL", "verbose")
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})

			It("should load variables from a .env file", func() {
				Expect(os.WriteFile(".env", []byte("DOTENV_SAMPLE=loaded\n"), 0o644)).To(Succeed())
				_, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(os.Getenv("DOTENV_SAMPLE")).To(Equal("loaded"))
			})
		})

		Context("with a config file", func() {
			BeforeEach(func() {
				configContent := `
server:
  address: ":8080"
  environment: "staging"

rewrites:
  - source: "/api/:path*"
    destination: "http://127.0.0.1:9000/:path*"
  - source: "/docs"
    destination: "http://127.0.0.1:9000/docs"

health_check:
  interval: "5s"

logging:
  level: "warn"
`
				err := os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(configContent), 0o644)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should load configuration successfully", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Environment).To(Equal(config.EnvStaging))
				Expect(cfg.HealthCheck.Interval).To(Equal("5s"))
				Expect(cfg.HealthCheck.Path).To(Equal("/openapi.json"))
			})

			It("should replace the default rewrite table", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Rewrites).To(HaveLen(2))
				Expect(cfg.Rewrites[1].Source).To(Equal("/docs"))
			})
		})

		Context("with an explicit config file", func() {
			It("should fail when the file does not exist", func() {
				_, err := config.LoadFile(filepath.Join(tempDir, "missing.yaml"))
				Expect(err).To(HaveOccurred())
			})

			It("should read the given file", func() {
				path := filepath.Join(tempDir, "custom.yaml")
				Expect(os.WriteFile(path, []byte("logging:\n  level: error\n"), 0o644)).To(Succeed())
				cfg, err := config.LoadFile(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelError))
			})
		})
	})

	Describe("Validate", func() {
		var cfg *config.Config

		BeforeEach(func() {
			cfg = validConfig()
		})

		It("should accept a valid configuration", func() {
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should reject an unknown environment", func() {
			cfg.Server.Environment = "qa"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a malformed address", func() {
			cfg.Server.Address = "invalid:host:port"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject an empty rewrite table", func() {
			cfg.Rewrites = nil
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a relative rewrite source", func() {
			cfg.Rewrites[0].Source = "api/:path*"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a non-http destination", func() {
			cfg.Rewrites[0].Destination = "ftp://127.0.0.1:8000/:path*"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a destination without host", func() {
			cfg.Rewrites[0].Destination = "http:///:path*"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a bad health check interval", func() {
			cfg.HealthCheck.Interval = "soon"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a negative duration", func() {
			cfg.CircuitBreaker.ResetTimeout = "-1s"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a relative health check path", func() {
			cfg.HealthCheck.Path = "health"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a missing shutdown timeout", func() {
			cfg.Server.ShutdownTimeout = ""
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a zero burst", func() {
			cfg.RateLimit.Burst = 0
			Expect(cfg.Validate()).NotTo(Succeed())
		})
	})

	Describe("Duration", func() {
		It("should parse validated durations", func() {
			Expect(config.Duration("250ms")).To(Equal(250 * time.Millisecond))
		})
	})
})
