package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portscheduler-go/internal/adapters/logging"
	"github.com/andrescamacho/portscheduler-go/internal/adapters/persistence"
	"github.com/andrescamacho/portscheduler-go/internal/application/common"
	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
	"github.com/andrescamacho/portscheduler-go/test/helpers"
)

var epoch = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, common.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, common.LevelWarning, logging.ParseLevel("warn"))
	assert.Equal(t, common.LevelWarning, logging.ParseLevel("warning"))
	assert.Equal(t, common.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, common.LevelInfo, logging.ParseLevel("verbose"))
}

func TestRunLogger_TextFormat(t *testing.T) {
	// Arrange
	var out bytes.Buffer
	logger := logging.NewRunLogger("run-7", logging.Options{Level: "info", Format: "text", Output: &out, Clock: shared.NewMockClock(epoch)})

	// Act
	logger.Log(common.LevelInfo, "Docked ship 1 at dock 0", map[string]interface{}{"timestep": 3, "action": "dock_ship"})
	logger.Log(common.LevelDebug, "Moved 2 cargo items", nil)

	// Assert
	assert.Equal(t, "[2025-03-01T09:30:00Z] [run-7] INFO: Docked ship 1 at dock 0 action=dock_ship timestep=3\n", out.String())
}

func TestRunLogger_JSONFormat(t *testing.T) {
	// Arrange
	var out bytes.Buffer
	logger := logging.NewRunLogger("run-8", logging.Options{Level: "debug", Format: "json", Output: &out, Clock: shared.NewMockClock(epoch)})

	// Act
	logger.Log(common.LevelWarning, "Search exhausted", map[string]interface{}{"dock_id": 2})
	logger.Log(common.LevelDebug, "Deferring search", nil)

	// Assert
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "run-8", entry["run_id"])
	assert.Equal(t, common.LevelWarning, entry["level"])
	assert.Equal(t, map[string]interface{}{"dock_id": float64(2)}, entry["metadata"])

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.NotContains(t, lines[1], "metadata")
}

func TestRunLogger_PersistsEntries(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRunLogRepository(db, nil)
	var out bytes.Buffer
	logger := logging.NewRunLogger("run-9", logging.Options{Level: "warn", Output: &out, Repo: repo})

	// Act
	logger.Log(common.LevelInfo, "filtered out", nil)
	logger.Log(common.LevelError, "Oracle unreachable", map[string]interface{}{"worker": 1})
	logger.Flush()

	// Assert
	entries, err := repo.GetLogs(context.Background(), "run-9", 10, nil, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Oracle unreachable", entries[0].Message)
	assert.Equal(t, common.LevelError, entries[0].Level)
}

func TestRunLogger_PersistLevelOnlyNarrows(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRunLogRepository(db, nil)
	var out bytes.Buffer
	logger := logging.NewRunLogger("run-10", logging.Options{Level: "debug", PersistLevel: "warn", Output: &out, Repo: repo})

	// Act
	logger.Log(common.LevelDebug, "Moved 3 cargo items", nil)
	logger.Log(common.LevelInfo, "Docked ship 1 at dock 0", nil)
	logger.Log(common.LevelWarning, "Dock 0 stalled", nil)
	logger.Flush()

	// Assert
	assert.Equal(t, 3, strings.Count(out.String(), "\n"))
	entries, err := repo.GetLogs(context.Background(), "run-10", 10, nil, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Dock 0 stalled", entries[0].Message)
}

func TestRunLogger_ThroughContext(t *testing.T) {
	var out bytes.Buffer
	ctx := common.WithLogger(context.Background(), logging.NewRunLogger("run-ctx", logging.Options{Output: &out}))

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "hello", nil)

	assert.Contains(t, out.String(), "[run-ctx] INFO: hello")
}
