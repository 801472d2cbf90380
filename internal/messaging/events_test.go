package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/fleet/internal/config"
)

type recordingClient struct {
	keys     []string
	payloads [][]byte
	headers  []map[string]string
	err      error
}

func (r *recordingClient) Publish(_ context.Context, key, value []byte, headers map[string]string) error {
	r.keys = append(r.keys, string(key))
	r.payloads = append(r.payloads, value)
	r.headers = append(r.headers, headers)
	return r.err
}

func (r *recordingClient) Consume(ctx context.Context, _ Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (r *recordingClient) Topic() string { return "fleet.events" }

func TestEventPublisher_Publish(t *testing.T) {
	t.Parallel()

	client := &recordingClient{}
	cfg := config.Config{Messaging: config.Messaging{Enabled: true}}
	pub := NewEventPublisher(client, cfg, zap.NewNop())

	pub.Publish(context.Background(), Event{Type: EventOrderCancelled, OrderID: "O3", RunsheetID: "RS1", Reason: "rejected by customer"})

	require.Equal(t, []string{"order-O3"}, client.keys)
	require.Equal(t, EventOrderCancelled, client.headers[0][HeaderEventType])
	evt, err := DecodeEvent(Message{Value: client.payloads[0]})
	require.NoError(t, err)
	require.NotEmpty(t, evt.EventID)
	require.False(t, evt.OccurredAt.IsZero())
	require.Equal(t, EventOrderCancelled, evt.Type)
	require.Equal(t, "rejected by customer", evt.Reason)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(client.payloads[0], &raw))
	require.Contains(t, raw, "runsheetId")
	require.NotContains(t, raw, "riderId")
}

func TestEventPublisher_DisabledAndFailures(t *testing.T) {
	t.Parallel()

	client := &recordingClient{}
	disabled := NewEventPublisher(client, config.Config{}, zap.NewNop())
	disabled.Publish(context.Background(), Event{Type: EventOrderPacked, OrderID: "O1"})
	require.Empty(t, client.keys)

	failing := &recordingClient{err: errors.New("broker down")}
	pub := NewEventPublisher(failing, config.Config{Messaging: config.Messaging{Enabled: true}}, zap.NewNop())
	require.NotPanics(t, func() {
		pub.Publish(context.Background(), Event{Type: EventRunsheetAccepted, RunsheetID: "RS1"})
	})
	require.Equal(t, []string{"runsheet-RS1"}, failing.keys)

	var nilPub *EventPublisher
	require.NotPanics(t, func() { nilPub.Publish(context.Background(), Event{}) })
}

func TestEvent_Key(t *testing.T) {
	t.Parallel()

	require.Equal(t, "order-O1", Event{OrderID: "O1", RunsheetID: "RS1"}.Key())
	require.Equal(t, "runsheet-RS1", Event{RunsheetID: "RS1", RiderID: "R1"}.Key())
	require.Equal(t, "rider-R1", Event{RiderID: "R1"}.Key())
}
