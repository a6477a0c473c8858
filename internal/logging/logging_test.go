package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw     string
		want    zapcore.Level
		wantErr bool
	}{
		{raw: "", want: zapcore.WarnLevel},
		{raw: "debug", want: zapcore.DebugLevel},
		{raw: " INFO ", want: zapcore.InfoLevel},
		{raw: "warning", want: zapcore.WarnLevel},
		{raw: "error", want: zapcore.ErrorLevel},
		{raw: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseLevel(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewJSONWritesStructuredLines(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "bank.log")
	logger, err := New(Config{Level: "info", Format: "json", OutputPaths: []string{out}})
	require.NoError(t, err)

	Component(logger, "service").Info("account opened", zap.Int64("account_id", 3))
	logger.Debug("suppressed")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "account opened", entry["msg"])
	assert.Equal(t, "service", entry["component"])
	assert.EqualValues(t, 3, entry["account_id"])
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Format: "xml"})
	require.ErrorContains(t, err, "log format")

	_, err = New(Config{Level: "chatty"})
	require.ErrorContains(t, err, "log level")
}

func TestComponentTagsEntries(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	Component(zap.New(core), "cache").Debug("miss")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "cache", logs.All()[0].ContextMap()["component"])
	assert.NotNil(t, Component(nil, "x"))
}
