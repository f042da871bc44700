package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: WarnLevel, Format: TextFormat, Output: &buf})

	l.Debug("should not appear")
	l.Info("should not appear either")
	l.Warn("this one shows")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "this one shows")
}

func TestJSONFormatShape(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: DebugLevel, Format: JSONFormat, Output: &buf, Component: "splitter"})

	l.Info("hello", map[string]any{"part": 3})

	var entry Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry.Message)
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "splitter", entry.Fields["component"])
	assert.Equal(t, float64(3), entry.Fields["part"])
}

func TestWithComponentDoesNotMutateParent(t *testing.T) {
	l := New(DefaultConfig())
	child := l.WithComponent("traversal")
	assert.Empty(t, l.component)
	assert.Equal(t, "traversal", child.component)
}

func TestConfigureFromSettingsValidation(t *testing.T) {
	_, err := ConfigureFromSettings("bogus", "text", "console", "")
	assert.Error(t, err)

	_, err = ConfigureFromSettings("info", "text", "file", "")
	assert.Error(t, err, "file output requires a filename")

	l, err := ConfigureFromSettings("debug", "json", "console", "")
	require.NoError(t, err)
	assert.Equal(t, DebugLevel, l.level)
	assert.Equal(t, JSONFormat, l.format)
}

func TestParseLevelCaseInsensitive(t *testing.T) {
	l, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, WarnLevel, l)

	_, err = ParseLevel("nope")
	assert.Error(t, err)
}

func TestFormatTextIncludesFields(t *testing.T) {
	entry := Entry{Level: "INFO", Message: "msg", Fields: map[string]any{"k": "v"}}
	out := formatText(entry)
	assert.True(t, strings.Contains(out, "msg"))
	assert.True(t, strings.Contains(out, "k=v"))
}
