package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerOrNop(t *testing.T) {
	l := LoggerOrNop(nil)
	assert.NotNil(t, l)
	assert.False(t, l.DebugEnabled())
	l.Infof("dropped %d", 1)

	d := NewDefaultLogger("test", false)
	assert.Same(t, d, LoggerOrNop(d))
}

func TestDefaultLoggerDebugToggle(t *testing.T) {
	l := NewDefaultLogger("", false)
	assert.False(t, l.DebugEnabled())
	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
}
