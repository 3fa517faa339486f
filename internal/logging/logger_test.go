package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func newTestLogger(level zapcore.Level) (Logger, *zaptest.Buffer) {
	buf := &zaptest.Buffer{}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return NewLoggerFromCore(zapcore.NewCore(enc, buf, level)), buf
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)

	l, err = NewLogger(LogConfig{OutputPaths: []string{}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestLogger_WritesFields(t *testing.T) {
	l, buf := newTestLogger(zapcore.DebugLevel)

	l.Named("render").With(String("mode", "share")).Info("rendered",
		Int("features", 3),
		Float64("max", 0.4),
		Bool("cached", false),
		Err(errors.New("boom")),
	)

	out := buf.String()
	assert.Contains(t, out, `"logger":"render"`)
	assert.Contains(t, out, `"mode":"share"`)
	assert.Contains(t, out, `"features":3`)
	assert.Contains(t, out, `"max":0.4`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestLogger_RespectsLevel(t *testing.T) {
	l, buf := newTestLogger(zapcore.WarnLevel)
	l.Info("quiet")
	l.Warn("loud")

	lines := buf.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "loud")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestDefault(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	l, buf := newTestLogger(zapcore.InfoLevel)
	SetDefault(l)
	SetDefault(nil)
	Default().Info("hello")
	assert.Contains(t, buf.String(), "hello")

	NewNopLogger().With(String("k", "v")).Named("x").Error("ignored")
}
