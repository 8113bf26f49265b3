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

package batch

import (
	"alogstat/load/accesslog"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validLine = `199.72.81.55 - - [01/Jul/1995:00:00:01 -0400] "GET /history/apollo/ HTTP/1.0" 200 6245`

type recorder struct {
	raw  []string
	recs []*accesslog.Request
	err  error
}

func (r *recorder) ProcLine(rawLine string, rec *accesslog.Request) error {
	r.raw = append(r.raw, rawLine)
	r.recs = append(r.recs, rec)
	return r.err
}

func TestParseAllLines(t *testing.T) {
	data := validLine + "\r\n" + validLine + "\n"
	rec := &recorder{}
	n, err := NewParser(strings.NewReader(data), "test", 0).Parse(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, []string{validLine, validLine}, rec.raw)
	assert.Equal(t, "199.72.81.55", rec.recs[1].Host)
}

func TestStopOnFirstMalformedLine(t *testing.T) {
	data := validLine + "\nfoo\n" + validLine + "\n"
	rec := &recorder{}
	n, err := NewParser(strings.NewReader(data), "test", 0).Parse(context.Background(), rec)
	var fmtErr *accesslog.FormatError
	require.True(t, errors.As(err, &fmtErr))
	assert.Equal(t, int64(2), fmtErr.LineNumber)
	assert.Equal(t, int64(2), n)
	assert.Len(t, rec.raw, 1)
}

func TestProcessorErrorIsPropagated(t *testing.T) {
	procErr := errors.New("sink failure")
	rec := &recorder{err: procErr}
	_, err := NewParser(strings.NewReader(validLine), "test", 0).Parse(context.Background(), rec)
	assert.ErrorIs(t, err, procErr)
}

func TestInvalidUTF8IsReplaced(t *testing.T) {
	line := strings.Replace(validLine, "apollo", "apo\xffllo", 1)
	rec := &recorder{}
	_, err := NewParser(strings.NewReader(line), "test", 0).Parse(context.Background(), rec)
	require.NoError(t, err)
	assert.Contains(t, rec.recs[0].Request, "apo�llo")
}

func TestCancelledContext(t *testing.T) {
	data := strings.Repeat(validLine+"\n", ctxCheckInterval+10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &recorder{}
	n, err := NewParser(strings.NewReader(data), "test", 0).Parse(ctx, rec)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(ctxCheckInterval-1), n)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	require.NoError(t, os.WriteFile(path, []byte(validLine+"\n"), 0644))
	rec := &recorder{}
	n, err := ParseFile(context.Background(), path, 1, rec)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.log"), 0, rec)
	assert.Error(t, err)
}
