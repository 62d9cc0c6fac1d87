package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, selectLevel(true, false))
	assert.Equal(t, zerolog.WarnLevel, selectLevel(false, true))
	assert.Equal(t, zerolog.InfoLevel, selectLevel(false, false))
}

func TestInitLoggerWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLoggerWithWriter(false, false, &buf)

	logger.Info().Str("task_id", "abc123").Msg("task created")
	logger.Debug().Msg("should be filtered at info level")

	out := buf.String()
	assert.Contains(t, out, "task created")
	assert.NotContains(t, out, "should be filtered")
}

func TestInitLoggerFlagsSensitiveMessages(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLoggerWithWriter(false, false, &buf)

	logger.Info().Msg(`tracker config loaded with api_key: "abcdef1234567890abcdef"`)
	assert.Contains(t, buf.String(), "contains_filtered_data")

	buf.Reset()
	logger.Info().Msg("tracker config loaded")
	assert.NotContains(t, buf.String(), "contains_filtered_data")
}

func TestLogFilePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TASKLEDGER_HOME", home)

	path, err := LogFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs", "taskledger.log"), path)
}
