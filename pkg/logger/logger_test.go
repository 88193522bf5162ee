package logger

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHelpersWriteThroughSetLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	defer Set(zap.NewNop())

	Info("room %s read by %s", "r1", "u1")
	Warn("push failed: %v", "timeout")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "room r1 read by u1", entries[0].Message)
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	}
}

func TestInitFallsBackToInfo(t *testing.T) {
	defer Set(zap.NewNop())

	assert.NoError(t, Init("development", "not-a-level"))
	assert.True(t, L().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, L().Core().Enabled(zapcore.DebugLevel))
}

func TestFatalFlushesBeforeExit(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	defer Set(zap.NewNop())

	var code int
	exit = func(c int) {
		code = c
		assert.Len(t, logs.All(), 1, "entry written before exit")
	}
	defer func() { exit = os.Exit }()

	Fatal("Failed to create Firestore client: %v", "denied")

	assert.Equal(t, 1, code)
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "Failed to create Firestore client: denied", entries[0].Message)
	}
}
