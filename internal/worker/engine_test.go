package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/Additional-Code/fleet/internal/config"
	"github.com/Additional-Code/fleet/internal/messaging"
)

// chanClient delivers queued messages to Consume and then blocks until cancelled.
type chanClient struct {
	msgs chan messaging.Message

	mu      sync.Mutex
	results []error
}

func (c *chanClient) Publish(context.Context, []byte, []byte, map[string]string) error {
	return nil
}

func (c *chanClient) Topic() string { return "fleet.events" }

func (c *chanClient) Consume(ctx context.Context, handler messaging.Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-c.msgs:
			err := handler(ctx, msg)
			c.mu.Lock()
			c.results = append(c.results, err)
			c.mu.Unlock()
		}
	}
}

func (c *chanClient) errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]error(nil), c.results...)
}

func engineConfig(enabled bool) config.Config {
	cfg := config.Config{}
	cfg.Messaging.Enabled = enabled
	cfg.Messaging.Workers.Enabled = enabled
	cfg.Messaging.Workers.Concurrency = 2
	return cfg
}

func TestEngine_DispatchesAndStopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)

	client := &chanClient{msgs: make(chan messaging.Message, 4)}
	var mu sync.Mutex
	var seen []string
	engine := NewEngine(Params{
		Client: client,
		Logger: zap.NewNop(),
		Config: engineConfig(true),
		Registrations: []HandlerRegistration{
			{Topic: "fleet.events", Handler: func(_ context.Context, msg messaging.Message) error {
				mu.Lock()
				defer mu.Unlock()
				seen = append(seen, string(msg.Key))
				return nil
			}},
			{Topic: "panics", Handler: func(context.Context, messaging.Message) error {
				panic("boom")
			}},
			{Topic: "", Handler: nil},
		},
	})
	require.Len(t, engine.registrations, 2)

	require.NoError(t, engine.start(context.Background()))
	client.msgs <- messaging.Message{Topic: "fleet.events", Key: []byte("order-O1")}
	client.msgs <- messaging.Message{Topic: "panics"}
	client.msgs <- messaging.Message{Topic: "unknown"}

	require.Eventually(t, func() bool { return len(client.errors()) == 3 }, time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, engine.stop(stopCtx))

	mu.Lock()
	require.Equal(t, []string{"order-O1"}, seen)
	mu.Unlock()

	failures := 0
	for _, err := range client.errors() {
		if err != nil {
			failures++
			require.Contains(t, err.Error(), "handler panic: boom")
		}
	}
	require.Equal(t, 1, failures)
}

func TestEngine_DisabledDoesNotStartWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)

	engine := NewEngine(Params{
		Client:        &chanClient{msgs: make(chan messaging.Message)},
		Logger:        zap.NewNop(),
		Config:        engineConfig(false),
		Registrations: []HandlerRegistration{{Topic: "fleet.events", Handler: func(context.Context, messaging.Message) error { return nil }}},
	})

	require.NoError(t, engine.start(context.Background()))
	require.Nil(t, engine.cancel)
	require.NoError(t, engine.stop(context.Background()))
}
