package debug

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLogWritesWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EnableWith(zapcore.AddSync(&buf)))
	defer Disable()

	Log("sched", "note %d", 60)
	out := buf.String()
	assert.Contains(t, out, "Debug logging started")
	assert.Contains(t, out, "note 60")
	assert.Contains(t, out, `"category": "sched"`)
}

func TestLogDisabledIsSilent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EnableWith(zapcore.AddSync(&buf)))
	Disable()
	buf.Reset()

	Log("sched", "dropped")
	assert.Empty(t, buf.String())
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EnableWith(zapcore.AddSync(&buf)))
	defer Disable()

	for i := 0; i < 10; i++ {
		LogEvery(5, "tick", "busy loop")
	}
	assert.Equal(t, 2, strings.Count(buf.String(), "busy loop"))
}
