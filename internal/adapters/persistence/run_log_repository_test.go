package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portscheduler-go/internal/adapters/persistence"
	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
	"github.com/andrescamacho/portscheduler-go/test/helpers"
)

func TestGormRunLogRepository_GetLogs(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	repo := persistence.NewGormRunLogRepository(db, clock)
	ctx := context.Background()

	require.NoError(t, repo.Log(ctx, "run-1", "Docked ship 1", "INFO", map[string]interface{}{"dock_id": 0}))
	clock.Advance(time.Second)
	since := clock.Now()
	clock.Advance(time.Second)
	require.NoError(t, repo.Log(ctx, "run-1", "Search exhausted", "WARNING", nil))
	clock.Advance(time.Second)
	require.NoError(t, repo.Log(ctx, "run-1", "Released dock 0", "INFO", nil))
	require.NoError(t, repo.Log(ctx, "run-2", "other run", "INFO", nil))

	// Act
	all, err := repo.GetLogs(ctx, "run-1", 10, nil, nil)
	require.NoError(t, err)
	level := "WARNING"
	warnings, err := repo.GetLogs(ctx, "run-1", 10, &level, nil)
	require.NoError(t, err)
	recent, err := repo.GetLogs(ctx, "run-1", 10, nil, &since)
	require.NoError(t, err)

	// Assert
	require.Len(t, all, 3)
	assert.Equal(t, "Released dock 0", all[0].Message, "newest first")
	assert.Equal(t, float64(0), all[2].Metadata["dock_id"])
	assert.Nil(t, all[1].Metadata)

	require.Len(t, warnings, 1)
	assert.Equal(t, "Search exhausted", warnings[0].Message)

	assert.Len(t, recent, 2)
}
