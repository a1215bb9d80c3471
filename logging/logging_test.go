package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", DebugLevel.String())
	assert.Equal(t, "INFO", InfoLevel.String())
	assert.Equal(t, "WARN", WarnLevel.String())
	assert.Equal(t, "ERROR", ErrorLevel.String())
}

func TestFormatMessage(t *testing.T) {
	d := NewDefaultLogger()

	msg := d.formatMessage(InfoLevel, nil, "calibrated")
	assert.Equal(t, "[INFO] calibrated", msg)

	msg = d.formatMessage(ErrorLevel, errors.New("device busy"), "open failed")
	assert.Equal(t, "[ERROR] open failed: device busy", msg)

	msg = d.formatMessage(InfoLevel, nil, "started", Fields{"session": "abc"})
	assert.Contains(t, msg, "session:abc")
}

func TestWithFieldsInheritsAndOverrides(t *testing.T) {
	base := NewDefaultLogger().WithFields(Fields{"session": "abc", "rate": 44100})
	child := base.WithFields(Fields{"rate": 48000})

	d, ok := child.(*DefaultLogger)
	assert.True(t, ok)

	msg := d.formatMessage(InfoLevel, nil, "x")
	assert.Contains(t, msg, "session:abc")
	assert.Contains(t, msg, "rate:48000")
}

func TestContextFields(t *testing.T) {
	ctx := WithContextFields(context.Background(), Fields{"session": "abc"})
	assert.NotNil(t, FromContext(ctx))

	// a bare context falls back to the global logger
	assert.Equal(t, GetGlobalLogger(), FromContext(context.Background()))
}
