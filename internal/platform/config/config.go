// Package config loads process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	pstrings "payout/pkg/platform/strings"
)

// Config is the full process configuration.
type Config struct {
	Server   Server
	Auth     Auth
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Ledger   LedgerConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	LogLevel        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Auth configures bearer token validation.
type Auth struct {
	JWTSigningKey string
	Issuer        string
	Audience      string
}

// DatabaseConfig selects postgres storage when URL is set. Without it the
// ledger runs on in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	TxTimeout       time.Duration
}

// RedisConfig enables the redis-backed epoch oracle when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	EpochKey     string
}

// KafkaConfig enables the audit relay, payout transfer topic and the push
// deposit consumer when Brokers is non-empty.
type KafkaConfig struct {
	Brokers         []string
	ClientID        string
	TopicPrefix     string
	ConsumerGroup   string
	PayoutTopic     string
	DepositsTopic   string
	Partitions      int32
	Replication     int16
	OutboxBatchSize int
	OutboxPoll      time.Duration
}

// LedgerConfig seeds engine settings and roles at first start.
type LedgerConfig struct {
	WithdrawalFrequencyLimit uint64
	ConfirmationsRequired    uint32
	ConfirmationsDeviation   uint32
	OracleAddress            string
	Admin                    string
	Funders                  []string
	FundsManagers            []string
	ProjectsManagers         []string
	RewardsDataProviders     []string
	StartPeriod              uint64
	PayoutRetryInterval      time.Duration
}

// FromEnv builds the Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            getEnv("PAYOUT_ADDR", ":8080"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			RequestTimeout:  getDuration("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Auth: Auth{
			// Use a default for development - should be overridden in production
			JWTSigningKey: getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:        getEnv("JWT_ISSUER", "payout"),
			Audience:      getEnv("JWT_AUDIENCE", "payout-api"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			TxTimeout:       getDuration("DB_TX_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			EpochKey:     getEnv("REDIS_EPOCH_KEY", "payout:epoch"),
		},
		Kafka: KafkaConfig{
			Brokers:         getList("KAFKA_BROKERS"),
			ClientID:        getEnv("KAFKA_CLIENT_ID", "payout"),
			TopicPrefix:     getEnv("KAFKA_TOPIC_PREFIX", "payout.audit"),
			ConsumerGroup:   getEnv("KAFKA_CONSUMER_GROUP", "payout"),
			PayoutTopic:     getEnv("KAFKA_PAYOUT_TOPIC", "payout.transfers"),
			DepositsTopic:   getEnv("KAFKA_DEPOSITS_TOPIC", "payout.deposits"),
			Partitions:      int32(getInt("KAFKA_PARTITIONS", 3)),
			Replication:     int16(getInt("KAFKA_REPLICATION", 1)),
			OutboxBatchSize: getInt("OUTBOX_BATCH_SIZE", 100),
			OutboxPoll:      getDuration("OUTBOX_POLL_INTERVAL", time.Second),
		},
		Ledger: LedgerConfig{
			WithdrawalFrequencyLimit: getUint("WITHDRAWAL_FREQUENCY_LIMIT", 10),
			ConfirmationsRequired:    uint32(getUint("WITHDRAWAL_CONFIRMATIONS", 3)),
			ConfirmationsDeviation:   uint32(getUint("WITHDRAWAL_DEVIATION_BPS", 0)),
			OracleAddress:            os.Getenv("ORACLE_ADDRESS"),
			Admin:                    os.Getenv("LEDGER_ADMIN"),
			Funders:                  getList("LEDGER_FUNDERS"),
			FundsManagers:            getList("LEDGER_FUNDS_MANAGERS"),
			ProjectsManagers:         getList("LEDGER_PROJECTS_MANAGERS"),
			RewardsDataProviders:     getList("LEDGER_REWARDS_DATA_PROVIDERS"),
			StartPeriod:              getUint("EPOCH_START", 0),
			PayoutRetryInterval:      getDuration("PAYOUT_RETRY_INTERVAL", 5*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getUint(key string, fallback uint64) uint64 {
	if v, err := strconv.ParseUint(os.Getenv(key), 10, 64); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

// getList reads a comma separated list; repeated entries are kept once.
func getList(key string) []string {
	return pstrings.SplitList(os.Getenv(key), ",")
}
