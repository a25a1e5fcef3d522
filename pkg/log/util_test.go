package log

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestToFields(t *testing.T) {
	now := time.Now()
	err := errors.New("boom")

	tests := []struct {
		name     string
		input    []any
		wantKeys []string
	}{
		{"empty input", []any{}, nil},
		{"string-int-bool", []any{"a", "x", "b", 123, "c", true}, []string{"a", "b", "c"}},
		{"time type", []any{"t", now}, []string{"t"}},
		{"float type", []any{"battery", 90.5}, []string{"battery"}},
		{"error only", []any{err}, []string{"error"}},
		{"mixed field types", []any{"msg", "ok", zap.String("x", "y"), "num", 42}, []string{"msg", "x", "num"}},
		{"odd number of args", []any{"key1", "val1", "key2"}, []string{"key1", "arg#2"}},
		{"non-string key", []any{123, "value"}, []string{"invalid_key_1"}},
		{"duration", []any{"dwell", 5 * time.Second}, []string{"dwell"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := toFields(tt.input...)
			keys := make([]string, 0, len(fields))
			for _, f := range fields {
				assert.NotEmpty(t, f.Key)
				keys = append(keys, f.Key)
			}
			if tt.wantKeys == nil {
				assert.Empty(t, keys)
				return
			}
			assert.Equal(t, tt.wantKeys, keys)
		})
	}
}

func TestLoggerWithValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).WithName("vehicle").WithValues("vehicle", 5)

	l.Info("status changed", "status", "loading")
	l.Error(errors.New("publish failed"), "telemetry dropped", "topic", "PTIN2023/CAR/UPDATESTATUS")

	require.Equal(t, 2, logs.Len())
	entries := logs.All()

	assert.Equal(t, "status changed", entries[0].Message)
	assert.Equal(t, "vehicle", entries[0].LoggerName)
	ctx := entries[0].ContextMap()
	assert.EqualValues(t, 5, ctx["vehicle"])
	assert.Equal(t, "loading", ctx["status"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "publish failed", entries[1].ContextMap()["error"])
}

func TestOptionsValidate(t *testing.T) {
	o := NewOptions()
	assert.Empty(t, o.Validate())

	o.Level = "loud"
	o.Format = "xml"
	assert.Len(t, o.Validate(), 2)
}
