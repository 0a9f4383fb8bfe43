//go:build integration

package kafka_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"payout/internal/platform/kafka"
	"payout/internal/platform/kafka/consumer"
	"payout/internal/platform/kafka/producer"
	"payout/pkg/testutil/containers"
)

func TestPublishConsumeRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	broker := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	topic := "payout.test." + uuid.NewString()
	p, err := producer.New(broker.Brokers, "payout-test")
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, kafka.EnsureTopics(ctx, p.Client(), 1, 1, topic))
	require.NoError(t, kafka.EnsureTopics(ctx, p.Client(), 1, 1, topic), "existing topics are accepted")
	require.NoError(t, p.Publish(ctx, topic, []byte("project:1"), []byte(`{"amount":"250"}`)))

	c, err := consumer.New(broker.Brokers, "payout-test-"+uuid.NewString(), []string{topic})
	require.NoError(t, err)
	defer c.Close()

	errDone := errors.New("done")
	var got *consumer.Message
	err = c.Run(ctx, consumer.HandlerFunc(func(_ context.Context, msg *consumer.Message) error {
		got = msg
		return errDone
	}))
	require.ErrorIs(t, err, errDone)
	require.NotNil(t, got)
	require.Equal(t, "project:1", string(got.Key))
	require.JSONEq(t, `{"amount":"250"}`, string(got.Value))
}
