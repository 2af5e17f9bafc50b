// SPDX-License-Identifier: Apache-2.0

package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgkit/dbsync/pkg/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"DEBUG", zerolog.DebugLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"WARNING", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"ERROR", zerolog.ErrorLevel},
		{" info ", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, logging.ParseLevel(tt.input), "input %q", tt.input)
	}
}

func TestNewWritesToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dbsync.log")
	logger := logging.New(path, "DEBUG")

	logger.Info().Str("table", "users").Msg("inserted rows")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "inserted rows")
	assert.Contains(t, string(data), `"table":"users"`)
}

func TestNewHonorsLevel(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dbsync.log")
	logger := logging.New(path, "ERROR")

	logger.Info().Msg("should be filtered")
	logger.Error().Msg("should appear")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "should be filtered")
	assert.Contains(t, string(data), "should appear")
}
