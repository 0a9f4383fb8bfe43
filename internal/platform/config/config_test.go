package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, uint64(10), cfg.Ledger.WithdrawalFrequencyLimit)
	assert.Equal(t, uint32(3), cfg.Ledger.ConfirmationsRequired)
	assert.Equal(t, uint32(0), cfg.Ledger.ConfirmationsDeviation)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Database.URL)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("WITHDRAWAL_CONFIRMATIONS", "5")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("WITHDRAWAL_FREQUENCY_LIMIT", "not-a-number")

	cfg := FromEnv()

	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, uint32(5), cfg.Ledger.ConfirmationsRequired)
	assert.Equal(t, 2*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, uint64(10), cfg.Ledger.WithdrawalFrequencyLimit, "invalid values fall back")
}

func TestFromEnv_RoleListsAreDeduplicated(t *testing.T) {
	t.Setenv("LEDGER_REWARDS_DATA_PROVIDERS", "0x01, 0x02,0x01")

	cfg := FromEnv()

	assert.Equal(t, []string{"0x01", "0x02"}, cfg.Ledger.RewardsDataProviders)
}
