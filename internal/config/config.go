package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=wallet_engine_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultHTTPAddr = ":8080"
const defaultRedisAddr = "localhost:6379"
const defaultChannelID = "WalletApp"

type Config struct {
	DatabaseDSN   string
	MigrationsDir string
	HTTPAddr      string

	ChannelID string
	// bcrypt hash of the shared channel key; plaintext keys are never kept.
	ChannelKeyHash string

	RedisAddrs    []string
	RedisPassword string
	RedisDB       int

	CacheTTL         time.Duration
	LocalCacheSize   int
	HotKeyWarmLimit  int
	HotKeyWarmPeriod time.Duration

	LeaderboardSize     int
	LeaderboardMaxStale time.Duration

	GraphWindow int

	TransferMaxRetries      int
	BreakerFailureThreshold int
	BreakerRecoveryTimeout  time.Duration

	KafkaBrokers []string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DatabaseDSN:   normalizeConnectionString(envOrDefault("DATABASE_DSN", defaultConnectionString)),
		MigrationsDir: envOrDefault("MIGRATIONS_DIR", filepath.Join("migrations")),
		HTTPAddr:      envOrDefault("HTTP_ADDR", defaultHTTPAddr),

		ChannelID:      envOrDefault("CHANNEL_ID", defaultChannelID),
		ChannelKeyHash: strings.TrimSpace(os.Getenv("CHANNEL_KEY_HASH")),

		RedisAddrs:    splitList(envOrDefault("REDIS_ADDRS", defaultRedisAddr)),
		RedisPassword: strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		RedisDB:       envInt("REDIS_DB", 0),

		CacheTTL:         time.Duration(envInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		LocalCacheSize:   envInt("LOCAL_CACHE_SIZE", 1000),
		HotKeyWarmLimit:  envInt("HOT_KEY_WARM_LIMIT", 100),
		HotKeyWarmPeriod: time.Duration(envInt("HOT_KEY_WARM_SECONDS", 60)) * time.Second,

		LeaderboardSize:     envInt("LEADERBOARD_SIZE", 100),
		LeaderboardMaxStale: time.Duration(envInt("LEADERBOARD_MAX_STALE_SECONDS", 30)) * time.Second,

		GraphWindow: envInt("GRAPH_WINDOW", 500),

		TransferMaxRetries:      envInt("TRANSFER_MAX_RETRIES", 3),
		BreakerFailureThreshold: envInt("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerRecoveryTimeout:  time.Duration(envInt("BREAKER_RECOVERY_SECONDS", 60)) * time.Second,

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeConnectionString(raw string) string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
