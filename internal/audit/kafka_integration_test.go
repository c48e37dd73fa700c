//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/JIATech/SIGVIP-sub002/internal/audit"
	"github.com/JIATech/SIGVIP-sub002/internal/platform/kafka"
	"github.com/JIATech/SIGVIP-sub002/pkg/testutil/containers"
)

const testTopic = "sigvip.audit.events"

func TestKafkaSinkPublishesEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	redpanda := containers.NewRedpandaContainer(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	producer, err := kafka.NewProducer(ctx, []string{redpanda.Broker}, log)
	require.NoError(t, err)
	defer producer.Close()

	require.NoError(t, producer.EnsureTopic(ctx, testTopic, 1))
	// Re-creating an existing topic must be a no-op.
	require.NoError(t, producer.EnsureTopic(ctx, testTopic, 1))

	sink := audit.NewKafkaSink(producer, testTopic)
	event := audit.Event{
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		Action:    audit.ActionVisitAdmitted,
		Subject:   "inmate=I1 visitor=V1",
		Decision:  "ADMITTED",
		StaffID:   "officer-7",
		RequestID: "req-123",
	}
	require.NoError(t, sink.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Broker),
		kgo.ConsumeTopics(testTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.Empty(t, fetches.Errors())

	records := fetches.Records()
	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0].Key, "records are keyed for downstream dedup")

	var got audit.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, event.Action, got.Action)
	assert.Equal(t, event.Subject, got.Subject)
	assert.Equal(t, event.Decision, got.Decision)
	assert.Equal(t, event.StaffID, got.StaffID)
	assert.Equal(t, event.RequestID, got.RequestID)
	assert.True(t, got.Timestamp.Equal(event.Timestamp))
}
