package notification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/fleet/internal/database/dbtest"
	"github.com/Additional-Code/fleet/internal/entity"
	"github.com/Additional-Code/fleet/internal/messaging"
	notificationrepo "github.com/Additional-Code/fleet/internal/repository/notification"
)

func TestNotifyEventAndList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := notificationrepo.NewRepository(dbtest.New(t))
	svc := NewService(repo, zap.NewNop())

	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("n-%d", seq)
	}

	svc.now = func() time.Time { return now }
	stored, err := svc.NotifyEvent(ctx, messaging.Event{Type: messaging.EventOrderDelivered, OrderID: "O1", RiderID: "R1"})
	require.NoError(t, err)
	require.True(t, stored)

	svc.now = func() time.Time { return now.Add(time.Minute) }
	stored, err = svc.NotifyEvent(ctx, messaging.Event{Type: messaging.EventOrderUndelivered, OrderID: "O2", RiderID: "R1", Reason: "door locked"})
	require.NoError(t, err)
	require.True(t, stored)

	ignored := []messaging.Event{
		{Type: messaging.EventOrderPacked, OrderID: "O3"},
		{Type: messaging.EventRunsheetAccepted, RunsheetID: "RS1"},
		{Type: messaging.EventOrderDelivered, OrderID: "O4"},
	}
	for _, evt := range ignored {
		stored, err := svc.NotifyEvent(ctx, evt)
		require.NoError(t, err)
		require.False(t, stored, evt.Type)
	}

	require.NoError(t, repo.Create(ctx, &entity.Notification{ID: "read", UserID: "R1", Title: "t", Message: "m", Read: true, CreatedAt: now}))
	expired := now.Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, &entity.Notification{ID: "old", UserID: "R1", Title: "t", Message: "m", CreatedAt: now.Add(-48 * time.Hour), ExpiresAt: &expired}))

	svc.now = func() time.Time { return now.Add(time.Hour) }
	got, err := svc.List(ctx, "R1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Delivery not completed", got[0].Title)
	require.Equal(t, "Order O2 was marked undelivered: door locked.", got[0].Message)
	require.Equal(t, "Order delivered", got[1].Title)

	svc.now = func() time.Time { return now.Add(8 * 24 * time.Hour) }
	got, err = svc.List(ctx, "R1")
	require.NoError(t, err)
	require.Empty(t, got)
}
