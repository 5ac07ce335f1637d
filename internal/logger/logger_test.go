package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
}

func TestContextCarriesRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := &Logger{SugaredLogger: zap.New(core).Sugar()}

	ctx := NewContext(context.Background(), base.With("request_id", "r-1"))
	FromContext(ctx, Nop()).Info("answer evaluated", "correct", true)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "answer evaluated", entry.Message)
	assert.Equal(t, "r-1", entry.ContextMap()["request_id"])
	assert.Equal(t, true, entry.ContextMap()["correct"])

	assert.NotNil(t, FromContext(context.Background(), nil))
}

func TestNewBuildsBothModes(t *testing.T) {
	for _, mode := range []string{"production", "development"} {
		l, err := New(mode, "debug")
		require.NoError(t, err, mode)
		l.Debug("hello")
	}
}
