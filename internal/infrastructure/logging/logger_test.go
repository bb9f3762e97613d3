package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
	"github.com/andrescamacho/fabtycoon-go/internal/infrastructure/logging"
)

var epoch = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

type recordingSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *recordingSink) Log(_ context.Context, source, scenarioID, message, level string, _ map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, strings.Join([]string{source, scenarioID, level, message}, "|"))
	return nil
}

func TestLogger_TextFiltersByLevel(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "warn", "text", "daemon", shared.NewMockClock(epoch))

	// Act
	logger.Log("INFO", "tick done", nil)
	logger.Log("WARNING", "autosave failed", map[string]interface{}{"slot": 2, "error": "disk full"})

	// Assert
	assert.Equal(t, `time=2024-01-02T03:04:05.000Z level=WARNING message="autosave failed" source=daemon metadata.error="disk full" metadata.slot=2`+"\n", buf.String())
}

func TestLogger_JSONLines(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "debug", "json", "cli", shared.NewMockClock(epoch))

	logger.Log("debug", "planning", map[string]interface{}{"beam": 4})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "DEBUG", line["level"])
	assert.Equal(t, "planning", line["message"])
	assert.Equal(t, "cli", line["source"])
	assert.Equal(t, float64(4), line["metadata"].(map[string]interface{})["beam"])
}

func TestLogger_SlogSharesHandlerAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "info", "json", "daemon", nil)

	logger.Slog().Debug("hidden")
	logger.Slog().Warn("queue full", "depth", 3)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARNING", line["level"])
	assert.Equal(t, "queue full", line["message"])
	assert.Equal(t, "daemon", line["source"])
	assert.Equal(t, float64(3), line["depth"])
}

func TestLogger_PersistsWarningsOnly(t *testing.T) {
	// Arrange
	sink := &recordingSink{}
	logger := logging.NewWithWriter(&bytes.Buffer{}, "info", "text", "daemon", nil).
		WithSink(sink, func() string { return "classic_1990" })

	// Act
	logger.Log("INFO", "tick done", nil)
	logger.Log("ERROR", "ledger drift", nil)
	logger.Sync()

	// Assert
	assert.Equal(t, []string{"daemon|classic_1990|ERROR|ledger drift"}, sink.lines)
}
