package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level       string
		development bool
		enabled     zapcore.Level
		disabled    zapcore.Level
	}{
		{"debug", true, zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"info", false, zapcore.InfoLevel, zapcore.DebugLevel},
		{"warn", false, zapcore.WarnLevel, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := New(tt.level, tt.development)
			require.NoError(t, err)
			defer zap.ReplaceGlobals(zap.NewNop())

			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.disabled))
			assert.Same(t, logger, zap.L())
		})
	}
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New("loud", false)
	assert.Error(t, err)
}
