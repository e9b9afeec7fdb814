package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/suchimauz/clinic-scheduling-engine/internal/core/ports/out"
)

func TestConsoleLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	base, err := NewConsoleLoggerWithWriter("UTC", out.LogLevelInfo, &buf)
	require.NoError(t, err)

	log := base.WithModule("Booking").WithFields(out.LogFields{"requestId": "r-1"})
	log.Debug("booking.debug", out.LogFields{})
	assert.Empty(t, buf.String())

	log.Warn("booking.conflict.retry", out.LogFields{"doctorId": "7"})
	output := buf.String()
	assert.Contains(t, output, "[Booking]")
	assert.Contains(t, output, `"event": "booking.conflict.retry"`)
	assert.Contains(t, output, `"requestId": "r-1"`)
	assert.Contains(t, output, `"doctorId": "7"`)
}

func TestConsoleLoggerWithModuleKeepsFields(t *testing.T) {
	var buf bytes.Buffer
	base, err := NewConsoleLoggerWithWriter("Nowhere/Unknown", out.LogLevelDebug, &buf)
	require.NoError(t, err)

	base.WithFields(out.LogFields{"env": "test"}).WithModule("Main").Info("app.starting", nil)
	assert.Contains(t, buf.String(), `"env": "test"`)
	assert.Contains(t, buf.String(), "[Main]")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, out.LogLevelWarn, ParseLevel(" warn "))
	assert.Equal(t, out.LogLevelDebug, ParseLevel("verbose"))
}

func TestZapLoggerWritesEventAndFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := NewZapLoggerFrom(zap.New(core)).WithModule("SchedulingService")

	log.Debug("slots.generate.started", out.LogFields{})
	log.Info("booking.success", out.LogFields{"appointmentId": "42"})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "booking.success", entries[0].Message)
	assert.Equal(t, "SchedulingService", entries[0].LoggerName)
	assert.Equal(t, "42", entries[0].ContextMap()["appointmentId"])
}
