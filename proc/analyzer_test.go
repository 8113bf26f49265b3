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

package proc

import (
	"alogstat/load/accesslog"
	"alogstat/load/batch"
	"alogstat/scripting"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLog = `h1 - - [01/Jul/1995:00:00:01 -0400] "GET /a HTTP/1.0" 200 100
h2 - - [01/Jul/1995:00:00:02 -0400] "POST /login HTTP/1.0" 401 10
h2 - - [01/Jul/1995:00:00:03 -0400] "POST /login HTTP/1.0" 401 10
h2 - - [01/Jul/1995:00:00:04 -0400] “POST /login HTTP/1.0” 401 10
h2 - - [01/Jul/1995:00:00:05 -0400] "POST /login HTTP/1.0" 200 10
h3 - - [01/Jul/1995:00:00:06 -0400] "GET" 400 -
h1 - - [01/Jul/1995:00:00:07 -0400] "GET /b HTTP/1.0" 200 -
h2 - - [01/Jul/1995:00:06:00 -0400] "POST /login HTTP/1.0" 200 10
h1 - - [01/Jul/1995:01:00:10 -0400] "GET /a HTTP/1.0" 200 50
`

type memorySink struct {
	lines []string
}

func (s *memorySink) WriteBlocked(rawLine string) error {
	s.lines = append(s.lines, rawLine)
	return nil
}

func newTestAnalyzer(t *testing.T, sink BlockedSink) *Analyzer {
	conf := &Conf{}
	conf.ApplyDefaults()
	require.NoError(t, conf.Validate())
	matcher, err := scripting.NewLoginMatcher(conf.Login)
	require.NoError(t, err)
	return NewAnalyzer(conf, matcher, sink)
}

func runTestLog(t *testing.T, data string) (*Result, *memorySink) {
	sink := &memorySink{}
	a := newTestAnalyzer(t, sink)
	p := batch.NewParser(strings.NewReader(data), "test.log", 0)
	_, err := p.Parse(context.Background(), a)
	require.NoError(t, err)
	return a.Finalize(), sink
}

func TestTopHostsAndResources(t *testing.T) {
	res, _ := runTestLog(t, testLog)
	require.Len(t, res.TopHosts, 3)
	assert.Equal(t, "h2", res.TopHosts[0].Key)
	assert.Equal(t, int64(5), res.TopHosts[0].Count)
	assert.Equal(t, "h1", res.TopHosts[1].Key)
	assert.Equal(t, "h3", res.TopHosts[2].Key)

	require.Len(t, res.TopResources, 3)
	assert.Equal(t, "/a", res.TopResources[0].Key)
	assert.Equal(t, int64(150), res.TopResources[0].Count)
	assert.Equal(t, "/login", res.TopResources[1].Key)
	assert.Equal(t, "/b", res.TopResources[2].Key)
}

func TestBlockedRequests(t *testing.T) {
	res, sink := runTestLog(t, testLog)
	require.Len(t, sink.lines, 1)
	assert.Equal(t,
		`h2 - - [01/Jul/1995:00:00:05 -0400] "POST /login HTTP/1.0" 200 10`, sink.lines[0])
	assert.Equal(t, int64(1), res.State.TotalBlocked)
	assert.Equal(t, int64(5), res.State.TotalLoginAttempt)
	require.Len(t, res.BlockedHosts, 1)
	assert.Equal(t, "h2", res.BlockedHosts[0].Key)
}

func TestTopHours(t *testing.T) {
	res, _ := runTestLog(t, testLog)
	require.Len(t, res.TopHours, 9)
	assert.Equal(t, 8, res.TopHours[0].Count)
	assert.Equal(t, "01/Jul/1995:00:00:01 -0400", res.TopHours[0].Start.Format(accesslog.DatetimeLayout))
	assert.Equal(t, 7, res.TopHours[1].Count)
	assert.Equal(t, 1, res.TopHours[len(res.TopHours)-1].Count)
}

func TestSessionSummary(t *testing.T) {
	res, _ := runTestLog(t, testLog)
	assert.Equal(t, 4, res.Sessions.Count)
	assert.Equal(t, 358*time.Second, res.Sessions.Max)
	avg, err := res.Sessions.Average()
	require.NoError(t, err)
	assert.Equal(t, 91*time.Second, avg)
}

func TestPassState(t *testing.T) {
	res, _ := runTestLog(t, testLog)
	assert.Equal(t, int64(9), res.State.TotalProcessed)
	assert.Equal(t, int64(1), res.State.TotalBadRequests)
	assert.Equal(t, int64(0), res.State.TotalUnsplittable)
}

func TestReportBeforeFinalize(t *testing.T) {
	a := newTestAnalyzer(t, &memorySink{})
	p := batch.NewParser(strings.NewReader(testLog), "test.log", 0)
	_, err := p.Parse(context.Background(), a)
	require.NoError(t, err)

	report := a.Report()
	assert.Equal(t, int64(9), report["totalProcessed"])
	assert.Equal(t, 3, report["numHosts"])
	assert.Equal(t, int64(9), report["hostRequests"])
	assert.Equal(t, 3, report["numResources"])
	assert.Equal(t, int64(200), report["resourceBytes"])
	assert.Equal(t, 7, report["hourBucketsClosed"])
	assert.Equal(t, 2, report["hourBucketsPending"])
	assert.Equal(t, 7, report["hourBucketsRetained"])
	assert.Equal(t, 10, report["hourBucketsCapacity"])
	assert.Equal(t, 0, report["loginFailingHosts"])
	assert.Equal(t, 0, report["loginBlockList"])
	assert.Equal(t, 1, report["loginNumBlocks"])
	assert.Equal(t, 3, report["activeSessions"])

	a.Finalize()
	report = a.Report()
	assert.Equal(t, 0, report["hourBucketsPending"])
	assert.Equal(t, 9, report["hourBucketsClosed"])
	assert.Equal(t, 0, report["activeSessions"])
}

func TestUnsplittableRequestStillCounted(t *testing.T) {
	res, _ := runTestLog(t,
		`h9 - - [01/Jul/1995:00:00:01 -0400] "GARBAGE" 200 1000`+"\n")
	assert.Equal(t, int64(1), res.State.TotalUnsplittable)
	require.Len(t, res.TopHosts, 1)
	assert.Empty(t, res.TopResources)
	assert.Len(t, res.TopHours, 1)
	assert.Equal(t, 1, res.Sessions.Count)
}

func TestMalformedLineAborts(t *testing.T) {
	sink := &memorySink{}
	a := newTestAnalyzer(t, sink)
	data := testLog + "this is not a log line\n"
	p := batch.NewParser(strings.NewReader(data), "test.log", 0)
	n, err := p.Parse(context.Background(), a)
	var fmtErr *accesslog.FormatError
	require.True(t, errors.As(err, &fmtErr))
	assert.Equal(t, int64(10), fmtErr.LineNumber)
	assert.Equal(t, int64(10), n)
}

func TestEmptyLog(t *testing.T) {
	res, sink := runTestLog(t, "")
	assert.Empty(t, sink.lines)
	assert.Empty(t, res.TopHosts)
	assert.Empty(t, res.TopHours)
	_, err := res.Sessions.Average()
	assert.Error(t, err)
}
