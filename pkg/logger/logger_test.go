package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"WARN":    zerolog.WarnLevel,
		"unknown": zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestNewWithWriter_EmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Info().Str("run_id", "abc").Msg("payroll run started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "payroll run started", entry["message"])
	assert.Equal(t, "abc", entry["run_id"])
	assert.NotEmpty(t, entry["time"])
}

func TestNewWithWriter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("error", &buf)

	log.Info().Msg("should be filtered")
	assert.Zero(t, buf.Len())

	log.Error().Msg("should pass")
	assert.NotZero(t, buf.Len())
}

func TestComponent_TagsChildLogger(t *testing.T) {
	var buf bytes.Buffer
	log := Component(NewWithWriter("debug", &buf), "orchestrator")

	log.Debug().Msg("classifying")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "orchestrator", entry["component"])
}
