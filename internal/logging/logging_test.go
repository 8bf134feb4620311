package logging

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(New(&buf, tt.level))
			assert.Equal(t, tt.wantLog, buf.Len() > 0)
		})
	}
}

func TestFromConfigUnknownLevel(t *testing.T) {
	l := FromConfig("chatty")
	assert.Equal(t, log.InfoLevel, l.GetLevel())
	assert.Equal(t, log.DebugLevel, FromConfig("DEBUG").GetLevel())
}

func TestOr(t *testing.T) {
	assert.NotNil(t, Or(nil))
	l := Discard()
	assert.Same(t, l, Or(l))
}
