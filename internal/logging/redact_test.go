package logging

import (
	"context"
	"testing"
	"time"

	"github.com/fyrsmithlabs/projectdeck/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSecretMarshaler(t *testing.T) {
	secret := config.Secret("super-secret-value")

	core, observed := observer.New(zapcore.InfoLevel)
	logger := &Logger{zap: zap.New(core), config: NewDefaultConfig()}

	logger.Info(context.Background(), "test secret", Secret("token", secret))

	logs := observed.All()
	require.Len(t, logs, 1)

	var found bool
	for _, field := range logs[0].Context {
		if field.Key != "token" {
			continue
		}
		enc, ok := field.Interface.(zapcore.ObjectMarshaler)
		require.True(t, ok)
		m := zapcore.NewMapObjectEncoder()
		require.NoError(t, enc.MarshalLogObject(m))
		assert.Equal(t, "[REDACTED:18]", m.Fields["token"])
		found = true
	}
	assert.True(t, found, "token field not found")
}

func TestRedactedString(t *testing.T) {
	field := RedactedString("authorization", "Bearer abc.def")
	assert.Equal(t, "[REDACTED:14]", field.String)
}

func encode(t *testing.T, enc zapcore.Encoder, fields ...zap.Field) string {
	t.Helper()
	buf, err := enc.EncodeEntry(zapcore.Entry{
		Level:   zapcore.InfoLevel,
		Time:    time.Unix(0, 0),
		Message: "msg",
	}, fields)
	require.NoError(t, err)
	defer buf.Free()
	return buf.String()
}

func TestRedactingEncoder_FieldNames(t *testing.T) {
	enc, err := NewRedactingEncoder(newEncoder("json"), NewDefaultConfig().Redaction)
	require.NoError(t, err)

	out := encode(t, enc,
		zap.String("password", "hunter2"),
		zap.String("Token", "abc"),
		zap.Binary("private_key", []byte("k")),
		zap.Any("credential", map[string]string{"u": "p"}),
		zap.String("slug", "deck"))

	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, `"abc"`)
	assert.NotContains(t, out, `"u":"p"`)
	assert.Contains(t, out, `"slug":"deck"`)
}

func TestRedactingEncoder_Patterns(t *testing.T) {
	enc, err := NewRedactingEncoder(newEncoder("json"), NewDefaultConfig().Redaction)
	require.NoError(t, err)

	out := encode(t, enc, zap.String("header", "Bearer eyJhbGciOi"))
	assert.Contains(t, out, "[REDACTED:pattern]")
	assert.NotContains(t, out, "eyJhbGciOi")
}

func TestRedactingEncoder_WithFields(t *testing.T) {
	enc, err := NewRedactingEncoder(newEncoder("json"), NewDefaultConfig().Redaction)
	require.NoError(t, err)

	clone := enc.Clone()
	clone.AddString("secret", "s")
	out := encode(t, clone)
	assert.Contains(t, out, `"secret":"[REDACTED]"`)
}

func TestRedactingEncoder_Disabled(t *testing.T) {
	enc, err := NewRedactingEncoder(newEncoder("json"), RedactionConfig{Enabled: false})
	require.NoError(t, err)

	out := encode(t, enc, zap.String("password", "visible"))
	assert.Contains(t, out, "visible")
}

func TestRedactingEncoder_InvalidPattern(t *testing.T) {
	_, err := NewRedactingEncoder(newEncoder("json"), RedactionConfig{
		Enabled:  true,
		Patterns: []string{"(unclosed"},
	})
	assert.Error(t, err)
}
