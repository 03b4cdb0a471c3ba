package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", " INFO "} {
		l, err := New(Options{Level: level, Stderr: true})
		require.NoError(t, err, level)
		require.NotNil(t, l)
	}

	_, err := New(Options{Level: "verbose"})
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := Nop()
	assert.Same(t, l, OrNop(l))
	assert.NotPanics(t, func() { OrNop(nil).With("k", "v").Info("msg", "a", 1) })
}
