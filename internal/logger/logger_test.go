package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	l, err := New(true, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New(false, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestTruncateForLog(t *testing.T) {
	assert.Equal(t, "abc", TruncateForLog("  abc  ", 10))
	assert.Equal(t, "ab...", TruncateForLog("abcdef", 2))
	assert.Equal(t, "", TruncateForLog("abc", 0))
	assert.Equal(t, "héé...", TruncateForLog("héééé", 3))
}

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  gemini  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)
	require.Len(t, fields, 1)
	assert.Equal(t, "provider", fields[0].Key)
	assert.Equal(t, "gemini", fields[0].String)
}

func TestWithProvider(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	WithProvider(zap.New(core), "openai", "deepseek-chat").Info("call")

	entries := observed.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "openai", ctx[FieldProvider])
	assert.Equal(t, "deepseek-chat", ctx[FieldModel])
}

func TestWithFieldsNil(t *testing.T) {
	assert.NotNil(t, WithFields(nil))
	assert.NotPanics(t, func() { WithFields(nil, zap.String("a", "b")).Info("x") })
}

func TestClaimField(t *testing.T) {
	f := ClaimField(strings.Repeat("x", 200))
	assert.Equal(t, FieldClaim, f.Key)
	assert.Len(t, f.String, 83)
}
