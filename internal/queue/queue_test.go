package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "channel closed")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	require.NoError(t, q.Publish(ctx, Message{Type: "notification", Body: json.RawMessage(`{"title":"a"}`)}))
	require.NoError(t, q.Publish(ctx, Message{Type: "notification", Body: json.RawMessage(`{"title":"b"}`)}))

	assert.JSONEq(t, `{"title":"a"}`, string(receive(t, msgs).Body))
	assert.JSONEq(t, `{"title":"b"}`, string(receive(t, msgs).Body))

	cancel()
	for range msgs {
	}
}

func TestInMemoryPublishHonoursContext(t *testing.T) {
	q := NewInMemory(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.Publish(ctx, Message{Type: "notification"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSerializeRoundTrip(t *testing.T) {
	in := Message{Type: "notification", Body: json.RawMessage(`{"level":"info"}`)}
	s, err := serialize(in)
	require.NoError(t, err)

	out, err := deserialize(s)
	require.NoError(t, err)
	assert.Equal(t, in.Type, out.Type)
	assert.JSONEq(t, string(in.Body), string(out.Body))

	_, err = deserialize("checkin|123")
	assert.Error(t, err)
	_, err = deserialize(`{"body":{}}`)
	assert.Error(t, err)
}

func TestRedisQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewRedisQueue(client, "")
	require.NoError(t, q.Publish(ctx, Message{Type: "notification", Body: json.RawMessage(`{"n":1}`)}))
	require.NoError(t, q.Publish(ctx, Message{Type: "notification", Body: json.RawMessage(`{"n":2}`)}))

	n, err := client.LLen(ctx, "campusride:notifications").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	msgs, err := q.Consume(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(receive(t, msgs).Body))
	assert.JSONEq(t, `{"n":2}`, string(receive(t, msgs).Body))
}
