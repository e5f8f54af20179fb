// Package config builds the process configuration from environment variables
// so main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// OTPMode controls whether sendOtp responses include the generated code.
type OTPMode string

const (
	// OTPModeProduction never discloses codes; they leave only via SMS.
	OTPModeProduction OTPMode = "production"
	// OTPModeDemo echoes the code in the response for demos and local
	// development. Deliberately insecure and never the default.
	OTPModeDemo OTPMode = "demo"
)

// Server captures process-level configuration.
type Server struct {
	Addr string

	OTPMode        OTPMode
	OTPTTL         time.Duration
	OTPMaxAttempts int

	JWTSigningKey string
	SessionTTL    time.Duration

	// AdminTokenHash is the bcrypt hash of the admin API token. Empty
	// disables the admin surface entirely.
	AdminTokenHash string

	ElectionSeedPath string

	Redis    RedisConfig
	Postgres PostgresConfig

	KafkaBrokers []string
	AuditTopic   string
}

// RedisConfig configures the OTP challenge store backend. An empty URL means
// the in-memory store is used instead.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the voter and vote stores. An empty URL means
// in-memory stores are used instead.
type PostgresConfig struct {
	URL string
}

// FromEnv builds a Server config from environment variables, with defaults
// safe for local development except where safety demands otherwise (OTP mode
// defaults to production so demo disclosure is always an explicit choice).
func FromEnv() Server {
	cfg := Server{
		Addr:             envOr("VOTEGATE_ADDR", ":8080"),
		OTPMode:          OTPModeProduction,
		OTPTTL:           envDurationOr("VOTEGATE_OTP_TTL", 5*time.Minute),
		OTPMaxAttempts:   envIntOr("VOTEGATE_OTP_MAX_ATTEMPTS", 5),
		JWTSigningKey:    envOr("VOTEGATE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SessionTTL:       envDurationOr("VOTEGATE_SESSION_TTL", 30*time.Minute),
		AdminTokenHash:   os.Getenv("VOTEGATE_ADMIN_TOKEN_HASH"),
		ElectionSeedPath: os.Getenv("VOTEGATE_ELECTION_SEED"),
		Redis: RedisConfig{
			URL:          os.Getenv("VOTEGATE_REDIS_URL"),
			PoolSize:     envIntOr("VOTEGATE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("VOTEGATE_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("VOTEGATE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("VOTEGATE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("VOTEGATE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("VOTEGATE_POSTGRES_URL"),
		},
		AuditTopic: envOr("VOTEGATE_AUDIT_TOPIC", "votegate.audit"),
	}

	if os.Getenv("VOTEGATE_OTP_MODE") == string(OTPModeDemo) {
		cfg.OTPMode = OTPModeDemo
	}
	if brokers := os.Getenv("VOTEGATE_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
