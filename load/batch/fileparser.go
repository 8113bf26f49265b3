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

// fileparser reads an access log line by line and passes parsed
// records to a processor. Reading stops at the first line which
// cannot be parsed.

package batch

import (
	"alogstat/load/accesslog"
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

const (
	maxLineSize = 1024 * 1024

	// ctxCheckInterval specifies how often (in lines) the parser
	// tests whether it should stop
	ctxCheckInterval = 4096
)

// LineProcessor is an object handling individual parsed lines.
// The raw line is passed along with the parsed record (without
// the trailing newline).
type LineProcessor interface {
	ProcLine(rawLine string, rec *accesslog.Request) error
}

// Parser parses a single file represented by fr Scanner.
type Parser struct {
	fr               *bufio.Scanner
	fileName         string
	lineParser       *accesslog.LineParser
	progressInterval int64
}

// Parse processes all the lines of the file. It returns the number
// of processed lines. In case of a malformed line, *accesslog.FormatError
// is returned.
func (p *Parser) Parse(ctx context.Context, proc LineProcessor) (int64, error) {
	var lineNum int64
	for p.fr.Scan() {
		lineNum++
		if lineNum%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return lineNum - 1, fmt.Errorf("processing of %s interrupted: %w", p.fileName, err)
			}
		}
		line := p.fr.Text()
		if !utf8.ValidString(line) {
			line = strings.ToValidUTF8(line, string(utf8.RuneError))
		}
		rec, err := p.lineParser.ParseLine(line, lineNum)
		if err != nil {
			return lineNum, err
		}
		if err := proc.ProcLine(line, rec); err != nil {
			return lineNum, fmt.Errorf("failed to process line %d of %s: %w", lineNum, p.fileName, err)
		}
		if p.progressInterval > 0 && lineNum%p.progressInterval == 0 {
			log.Debug().Str("file", p.fileName).Int64("lines", lineNum).Msg("processing log")
		}
	}
	if err := p.fr.Err(); err != nil {
		return lineNum, fmt.Errorf("failed to read %s: %w", p.fileName, err)
	}
	return lineNum, nil
}

// NewParser creates a parser reading from an arbitrary reader
func NewParser(r io.Reader, name string, progressInterval int64) *Parser {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Parser{
		fr:               sc,
		fileName:         name,
		lineParser:       accesslog.NewLineParser(),
		progressInterval: progressInterval,
	}
}

// ParseFile opens a log file and processes all of its lines
func ParseFile(ctx context.Context, path string, progressInterval int64, proc LineProcessor) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()
	p := NewParser(f, filepath.Base(f.Name()), progressInterval)
	return p.Parse(ctx, proc)
}
