package runsheet

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/fleet/internal/database/dbtest"
	"github.com/Additional-Code/fleet/internal/entity"
)

func TestRepository_ListByRider(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewRepository(dbtest.New(t))
	base := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)

	sheets := []*entity.Runsheet{
		{ID: "RS1", RiderID: "R1", Status: entity.RunsheetStatusPending, Orders: []string{"O1", "O2"}, AmountCollectable: decimal.RequireFromString("120.50"), CreatedAt: base},
		{ID: "RS2", RiderID: "R1", Status: entity.RunsheetStatusActive, Orders: []string{"O3"}, CreatedAt: base.Add(time.Hour)},
		{ID: "RS3", RiderID: "R1", Status: entity.RunsheetStatusClosed, Orders: []string{"O4"}, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "RS4", RiderID: "R2", Status: entity.RunsheetStatusPending, Orders: []string{"O5"}, CreatedAt: base},
	}
	for _, rs := range sheets {
		require.NoError(t, repo.Create(ctx, rs))
	}

	got, err := repo.ListByRider(ctx, "R1", entity.RunsheetStatusPending, entity.RunsheetStatusActive)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "RS1", got[0].ID)
	require.Equal(t, []string{"O1", "O2"}, got[0].Orders)
	require.True(t, got[0].AmountCollectable.Equal(decimal.RequireFromString("120.5")))
	require.Equal(t, "RS2", got[1].ID)

	none, err := repo.ListByRider(ctx, "R9", entity.RunsheetStatusPending)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestRepository_Accept(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewRepository(dbtest.New(t))
	base := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &entity.Runsheet{ID: "RS1", RiderID: "R1", Status: entity.RunsheetStatusPending, Orders: []string{"O1"}, CreatedAt: base}))

	first := base.Add(time.Hour)
	require.NoError(t, repo.Accept(ctx, "RS1", first))
	second := base.Add(2 * time.Hour)
	require.NoError(t, repo.Accept(ctx, "RS1", second))

	got, err := repo.GetByID(ctx, "RS1")
	require.NoError(t, err)
	require.Equal(t, entity.RunsheetStatusActive, got.Status)
	require.NotNil(t, got.AcceptedAt)
	require.True(t, second.Equal(*got.AcceptedAt))
	require.Equal(t, []string{"O1"}, got.Orders)

	require.NoError(t, repo.Accept(ctx, "ghost", first))
	_, err = repo.GetByID(ctx, "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}
