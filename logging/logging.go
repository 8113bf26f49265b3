// Copyright 2024 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2024 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultLevel = "info"

	logFileMaxSizeMB  = 100
	logFileMaxBackups = 5
	logFileMaxAgeDays = 60
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel converts a configured level name into a zerolog level.
// An empty name means DefaultLevel.
func ParseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		name = DefaultLevel
	}
	lev, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %s: %w", name, err)
	}
	return lev, nil
}

// NewRunID creates a unique identifier of an analysis run
func NewRunID() string {
	return uuid.New().String()
}

// SetupLogging configures the global logger. With an empty logPath,
// a human readable output to stderr is used. Otherwise, JSON records
// are written to a rotated log file. The returned closer should be
// called once the application is done.
func SetupLogging(logPath string, level string, runID string) (io.Closer, error) {
	lev, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(lev)
	var out io.Writer
	var closer io.Closer = nopCloser{}
	if logPath != "" {
		lj := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
			MaxAge:     logFileMaxAgeDays,
			Compress:   true,
		}
		out = lj
		closer = lj

	} else {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	ctx := zerolog.New(out).With().Timestamp()
	if runID != "" {
		ctx = ctx.Str("runId", runID)
	}
	log.Logger = ctx.Logger()
	return closer, nil
}
