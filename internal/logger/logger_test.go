package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := New("forum-eda", "debug", &buf)

	l.Component("weekly").WithField("windows", 3).Info("aggregated")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "aggregated", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "forum-eda", entry["app"])
	assert.Equal(t, "weekly", entry["component"])
	assert.EqualValues(t, 3, entry["windows"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewLogger_Levels(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"":      logrus.InfoLevel,
		"loud":  logrus.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, New("x", in, &bytes.Buffer{}).GetLevel(), in)
	}
}

func TestWithRunID(t *testing.T) {
	var buf bytes.Buffer
	l := New("forum-eda", "info", &buf)

	l.WithRunID("r-1").Info("start")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "r-1", entry["run_id"])
}
