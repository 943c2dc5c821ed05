package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitSetsLevel(t *testing.T) {
	prev := zapLog
	t.Cleanup(func() { zapLog = prev })

	require.NoError(t, Init(zapcore.WarnLevel))
	assert.False(t, L().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, L().Core().Enabled(zapcore.WarnLevel))
}

func TestWrappersReportCaller(t *testing.T) {
	prev := zapLog
	t.Cleanup(func() { zapLog = prev })

	core, logs := observer.New(zapcore.DebugLevel)
	zapLog = zap.New(core, zap.AddCaller())

	Info("using config file", zap.String("path", "featureset-utils.yaml"))
	Debug("no .env loaded")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "using config file", entries[0].Message)
	assert.Equal(t, "featureset-utils.yaml", entries[0].ContextMap()["path"])
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Contains(t, entries[0].Caller.File, "logging_test.go")
}
