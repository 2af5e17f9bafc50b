// SPDX-License-Identifier: Apache-2.0

// Package logging configures the rotating run log. The console stays the
// domain of pterm; everything a run does is additionally appended to a
// size-rotated log file for later inspection.
package logging

import (
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultFilename is the log file appended during a run.
const DefaultFilename = "dbsync.log"

// maxSizeMB is the rotation threshold of the run log.
const maxSizeMB = 1

// ParseLevel maps a LOG_LEVEL setting to a zerolog level,
// case-insensitively. Unknown values fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO", "":
		return zerolog.InfoLevel
	case "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New returns a logger appending to the given file, rotating at 1 MB.
// Write failures are swallowed by zerolog, so losing the log never aborts
// a reconciliation.
func New(filename, level string) zerolog.Logger {
	sink := &lumberjack.Logger{
		Filename: filename,
		MaxSize:  maxSizeMB,
	}
	return zerolog.New(sink).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}
