package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitializeWithWriter(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
		logInfo    bool
	}{
		{name: "console default hides info", jsonOutput: false, verbosity: 0, logInfo: false},
		{name: "console -v shows info", jsonOutput: false, verbosity: 1, logInfo: true},
		{name: "json -vv shows info", jsonOutput: true, verbosity: 2, logInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, InitializeWithWriter(&buf, tt.jsonOutput, tt.verbosity))
			t.Cleanup(func() { Logger = nil; _ = InitializeWithWriter(&bytes.Buffer{}, false, 0) })

			assert.Equal(t, tt.jsonOutput, JSONOutput)

			Infow("hello", FieldCount, 3)
			Cleanup()

			if tt.logInfo {
				assert.Contains(t, buf.String(), "hello")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestJSONOutputIsStructured(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitializeWithWriter(&buf, true, 0))

	Warnw("bulk chunk rejected", FieldIndex, "kpis", FieldFailed, 2)
	Cleanup()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "bulk chunk rejected", entry["msg"])
	assert.Equal(t, "kpis", entry[FieldIndex])
	assert.EqualValues(t, 2, entry[FieldFailed])
}

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(-1))
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(VerbosityUser))
	assert.Equal(t, zapcore.InfoLevel, VerbosityToLevel(VerbosityInfo))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(VerbosityDebug))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(7))

	assert.False(t, ShouldLogTrace(VerbosityDebug))
	assert.True(t, ShouldLogTrace(VerbosityTrace))
	assert.Equal(t, "Info (-v)", LevelName(1))
}

func TestFieldsFromContext(t *testing.T) {
	ctx := WithComponent(WithJobID(context.Background(), "job-1"), "importer")

	fields := FieldsFromContext(ctx)
	assert.Equal(t, []interface{}{FieldJobID, "job-1", FieldComponent, "importer"}, fields)

	assert.Empty(t, FieldsFromContext(context.Background()))
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitializeWithWriter(&buf, true, 0))
	t.Cleanup(func() { _ = InitializeWithWriter(&bytes.Buffer{}, false, 0) })

	ctx := WithComponent(WithJobID(context.Background(), "job-9"), "import")
	LoggerFromContext(ctx).Warnw("Metrics push failed", FieldError, "timeout")
	Cleanup()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "job-9", entry[FieldJobID])
	assert.Equal(t, "import", entry[FieldComponent])
	assert.Equal(t, "timeout", entry[FieldError])
}
