package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/slimloans/hanami/container"
	"github.com/slimloans/hanami/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider(t *testing.T) {
	mr := miniredis.RunT(t)

	c := container.New("app")
	require.NoError(t, c.RegisterProvider(New(Options{URL: "redis://" + mr.Addr() + "/0"})))

	t.Run("it should register the client on first lookup", func(t *testing.T) {
		client, err := container.Resolve[backend.UniversalClient](c, ClientKey)
		require.NoError(t, err)

		require.NoError(t, client.Set(context.Background(), "greeting", "hello", 0).Err())
		got, err := mr.Get("greeting")
		require.NoError(t, err)
		assert.Equal(t, "hello", got)
	})

	t.Run("it should publish json payloads", func(t *testing.T) {
		client := container.MustResolve[backend.UniversalClient](c, ClientKey)

		sub := client.Subscribe(context.Background(), "books")
		defer sub.Close()
		_, err := sub.Receive(context.Background())
		require.NoError(t, err)

		require.NoError(t, Publish(context.Background(), client, "books", map[string]string{"title": "Dune"}))

		msg := <-sub.Channel()
		assert.JSONEq(t, `{"title":"Dune"}`, msg.Payload)
	})

	t.Run("it should close the client on shutdown", func(t *testing.T) {
		client := container.MustResolve[backend.UniversalClient](c, ClientKey)
		require.NoError(t, c.Shutdown())

		assert.Error(t, client.Ping(context.Background()).Err())
	})
}

func TestInvalid(t *testing.T) {
	t.Run("it should reject invalid urls", func(t *testing.T) {
		err := New(Options{URL: "http://localhost"}).Prepare(nil)
		assert.True(t, errors.Is(err, ErrorInvalidURL))
	})

	t.Run("it should fail to start without a server", func(t *testing.T) {
		c := container.New("app")
		require.NoError(t, c.RegisterProvider(New(Options{URL: "redis://127.0.0.1:1/0"})))

		_, err := c.Resolve(ClientKey)
		assert.True(t, errors.Is(err, ErrorConnection))
	})
}
