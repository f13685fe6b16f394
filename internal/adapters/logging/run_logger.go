package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andrescamacho/portscheduler-go/internal/adapters/persistence"
	"github.com/andrescamacho/portscheduler-go/internal/application/common"
	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
)

var levelRank = map[string]int{
	common.LevelDebug:   0,
	common.LevelInfo:    1,
	common.LevelWarning: 2,
	common.LevelError:   3,
}

// ParseLevel maps a configured level (debug, info, warn, error) to a log level
func ParseLevel(level string) string {
	switch strings.ToLower(level) {
	case "debug":
		return common.LevelDebug
	case "warn", "warning":
		return common.LevelWarning
	case "error":
		return common.LevelError
	default:
		return common.LevelInfo
	}
}

// RunLogger writes one line per entry for a run and optionally persists
// entries to the run log repository
type RunLogger struct {
	runID        string
	minLevel     int
	persistLevel int
	json         bool
	out          io.Writer
	repo         persistence.RunLogRepository
	clock        shared.Clock

	mu sync.Mutex
	wg sync.WaitGroup
}

// Options configures a RunLogger
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text, json
	Output io.Writer
	Repo   persistence.RunLogRepository
	Clock  shared.Clock

	// Lowest level sent to Repo; defaults to Level
	PersistLevel string
}

// NewRunLogger creates a logger for one run
func NewRunLogger(runID string, opts Options) *RunLogger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	clock := opts.Clock
	if clock == nil {
		clock = shared.NewRealClock()
	}
	minLevel := levelRank[ParseLevel(opts.Level)]
	persistLevel := minLevel
	if opts.PersistLevel != "" {
		persistLevel = max(minLevel, levelRank[ParseLevel(opts.PersistLevel)])
	}
	return &RunLogger{
		runID:        runID,
		minLevel:     minLevel,
		persistLevel: persistLevel,
		json:         opts.Format == "json",
		out:          out,
		repo:         opts.Repo,
		clock:        clock,
	}
}

// Log implements common.Logger
func (l *RunLogger) Log(level, message string, metadata map[string]interface{}) {
	rank, ok := levelRank[level]
	if !ok {
		rank = levelRank[common.LevelInfo]
	}
	if rank < l.minLevel {
		return
	}

	now := l.clock.Now()

	l.mu.Lock()
	if l.json {
		l.writeJSON(now, level, message, metadata)
	} else {
		l.writeText(now, level, message, metadata)
	}
	l.mu.Unlock()

	if l.repo == nil || rank < l.persistLevel {
		return
	}

	// Persist to database (async to avoid blocking)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := l.repo.Log(ctx, l.runID, message, level, metadata); err != nil {
			// Log error to stdout if DB write fails (but don't block execution)
			fmt.Printf("[%s] [%s] ERROR: Failed to persist log to DB: %v\n",
				time.Now().Format(time.RFC3339),
				l.runID,
				err,
			)
		}
	}()
}

// Flush waits for pending database writes
func (l *RunLogger) Flush() {
	l.wg.Wait()
}

func (l *RunLogger) writeText(now time.Time, level, message string, metadata map[string]interface{}) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s: %s", now.Format(time.RFC3339), l.runID, level, message)

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, metadata[k])
	}
	b.WriteByte('\n')

	_, _ = io.WriteString(l.out, b.String())
}

func (l *RunLogger) writeJSON(now time.Time, level, message string, metadata map[string]interface{}) {
	entry := map[string]interface{}{
		"time":    now.Format(time.RFC3339Nano),
		"run_id":  l.runID,
		"level":   level,
		"message": message,
	}
	if len(metadata) > 0 {
		entry["metadata"] = metadata
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return
	}
	b = append(b, '\n')
	_, _ = l.out.Write(b)
}
