//go:build integration

package messaging_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}

	return "localhost:6379"
}

func TestRedisStreamRoundTrip(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: getRedisAddr()})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	logger := messaging.NewZapLogger(zap.NewNop())
	topic := "test." + uuid.NewString()

	t.Cleanup(func() { client.Del(context.Background(), topic) })

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client:     client,
		Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
	}, logger)
	require.NoError(t, err)

	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        client,
		Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
		ConsumerGroup: "test-" + uuid.NewString(),
	}, logger)
	require.NoError(t, err)

	received := make(chan *testEvent, 1)
	consumer := messaging.NewConsumer(subscriber, topic, func(_ context.Context, event *testEvent) error {
		received <- event

		return nil
	}, zap.NewNop())

	require.NoError(t, consumer.Start(ctx))
	defer func() {
		_ = consumer.Shutdown()
		_ = subscriber.Close()
	}()

	publish := messaging.NewPublishFunc[testEvent](publisher, topic)
	require.NoError(t, publish(ctx, &testEvent{ID: "abc", Name: "visit"}))

	select {
	case event := <-received:
		assert.Equal(t, "abc", event.ID)
		assert.Equal(t, "visit", event.Name)
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}
