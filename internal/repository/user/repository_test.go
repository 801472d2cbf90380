package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/fleet/internal/database/dbtest"
	"github.com/Additional-Code/fleet/internal/entity"
)

func TestRepository_CreateAndLookup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewRepository(dbtest.New(t))
	now := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)

	rider := &entity.User{
		ID:           "R1",
		Number:       "9876543210",
		Role:         entity.RoleRider,
		ReviewStatus: entity.ReviewStatusNotSubmitted,
		Documents:    []entity.Document{},
		CreatedAt:    now,
	}
	require.NoError(t, repo.Create(ctx, rider))

	packer := &entity.User{
		ID:           "PK1",
		Role:         entity.RolePacker,
		Email:        "packer@example.com",
		PasswordHash: "$2a$hash",
		ReviewStatus: entity.ReviewStatusApproved,
		CreatedAt:    now,
	}
	require.NoError(t, repo.Create(ctx, packer))

	byNumber, err := repo.GetByNumber(ctx, "9876543210")
	require.NoError(t, err)
	require.Equal(t, "R1", byNumber.ID)
	require.False(t, byNumber.ProfileStatus.Complete())

	byEmail, err := repo.GetByEmail(ctx, "packer@example.com")
	require.NoError(t, err)
	require.Equal(t, "PK1", byEmail.ID)
	require.Equal(t, "$2a$hash", byEmail.PasswordHash)

	_, err = repo.GetByID(ctx, "nobody")
	require.ErrorIs(t, err, ErrNotFound)

	dup := &entity.User{ID: "R2", Number: "9876543210", Role: entity.RoleRider, ReviewStatus: entity.ReviewStatusNotSubmitted, CreatedAt: now}
	require.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicate)
}

func TestRepository_UpdateColumns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewRepository(dbtest.New(t))
	now := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &entity.User{ID: "R1", Number: "9876543210", Role: entity.RoleRider, ReviewStatus: entity.ReviewStatusNotSubmitted, CreatedAt: now}))

	u, err := repo.GetByID(ctx, "R1")
	require.NoError(t, err)
	u.BankDetails = entity.BankDetails{BankName: "State Bank", Acc: "0001", IFSC: "SBIN0000001", Status: entity.VerificationPending}
	u.ProfileStatus.BankDetailsCompleted = true
	u.Number = "should-not-be-written"
	u.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, repo.UpdateColumns(ctx, u, "bank_details", "profile_status", "updated_at"))

	got, err := repo.GetByID(ctx, "R1")
	require.NoError(t, err)
	require.Equal(t, "State Bank", got.BankDetails.BankName)
	require.True(t, got.ProfileStatus.BankDetailsCompleted)
	require.False(t, got.ProfileStatus.PersonalInfoCompleted)
	require.Equal(t, "9876543210", got.Number)

	err = repo.UpdateColumns(ctx, &entity.User{ID: "ghost"}, "updated_at")
	require.ErrorIs(t, err, ErrNotFound)
}
