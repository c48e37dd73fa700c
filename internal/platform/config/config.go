package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the engine reads from its environment so main
// stays lean. Every field has a development default; production deployments
// override via SIGVIP_* variables.
type Config struct {
	Addr          string
	JWTSigningKey string

	// PostgresURL selects the PostgreSQL-backed stores when set. Empty
	// means in-memory stores (development, tests).
	PostgresURL string

	// LedgerBackend picks the visit ledger implementation: "memory",
	// "postgres" or "redis". Postgres requires PostgresURL, redis requires
	// Redis.URL.
	LedgerBackend string

	Redis RedisConfig

	// KafkaBrokers enables the Kafka audit publisher when non-empty.
	// Without brokers audit events go to the structured log.
	KafkaBrokers []string
	AuditTopic   string

	// SeedDemo loads the demonstration roster (one establishment, sample
	// inmates and visitors) into the in-memory stores at startup.
	SeedDemo bool

	// RequestTimeout bounds every API request. The evaluate path honors
	// the deadline end to end: if it expires before the inmate lock is
	// taken, nothing is written.
	RequestTimeout time.Duration
}

// RedisConfig carries Redis connection tuning.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	addr := os.Getenv("SIGVIP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("SIGVIP_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	ledgerBackend := os.Getenv("SIGVIP_LEDGER_BACKEND")
	if ledgerBackend == "" {
		ledgerBackend = "memory"
	}

	var brokers []string
	if raw := os.Getenv("SIGVIP_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	auditTopic := os.Getenv("SIGVIP_AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "sigvip.visit-audit"
	}

	requestTimeout := 5 * time.Second
	if raw := os.Getenv("SIGVIP_REQUEST_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			requestTimeout = d
		}
	}

	return Config{
		Addr:           addr,
		JWTSigningKey:  jwtSigningKey,
		PostgresURL:    os.Getenv("SIGVIP_POSTGRES_URL"),
		LedgerBackend:  ledgerBackend,
		Redis:          redisFromEnv(),
		KafkaBrokers:   brokers,
		AuditTopic:     auditTopic,
		SeedDemo:       os.Getenv("SIGVIP_SEED_DEMO") == "true",
		RequestTimeout: requestTimeout,
	}
}

func redisFromEnv() RedisConfig {
	cfg := RedisConfig{
		URL:          os.Getenv("SIGVIP_REDIS_URL"),
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	if raw := os.Getenv("SIGVIP_REDIS_POOL_SIZE"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.PoolSize = n
		}
	}
	return cfg
}
