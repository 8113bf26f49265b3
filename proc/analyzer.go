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
	"alogstat/analysis"
	"alogstat/analysis/counting"
	"alogstat/analysis/hourly"
	"alogstat/analysis/loginguard"
	"alogstat/analysis/sessions"
	"alogstat/load/accesslog"
	"alogstat/scripting"
	"fmt"
	"time"
)

// BlockedSink receives raw lines of blocked requests
// in the order they were read.
type BlockedSink interface {
	WriteBlocked(rawLine string) error
}

// HourBucket is a closed sliding window along with the number
// of requests it contained
type HourBucket struct {
	Start time.Time
	Count int
}

// Result contains all the data needed to produce final reports
type Result struct {
	TopHosts     []counting.Item[string]
	TopHours     []HourBucket
	TopResources []counting.Item[string]
	BlockedHosts []counting.Item[string]
	Sessions     sessions.Summary
	State        analysis.PassState
}

// Analyzer performs all the analyses in a single pass. Each line
// is fully processed before the next one is accepted.
type Analyzer struct {
	topN         int
	hosts        *counting.Counter[string]
	resources    *counting.Counter[string]
	blockedHosts *counting.Counter[string]
	window       *hourly.Window
	sessions     *sessions.Tracker
	guard        *loginguard.Guard
	matcher      scripting.LoginMatcher
	blocked      BlockedSink
	state        analysis.PassState
}

// ProcLine processes a single parsed log line. The order of
// analyses is fixed: counters and hourly window, sessions and
// (for login attempts only) the login guard.
func (a *Analyzer) ProcLine(rawLine string, rec *accesslog.Request) error {
	a.state.Register(rec.Time)
	a.hosts.Inc(rec.Host)
	a.window.Advance(rec.Time)
	a.sessions.Log(rec.Host, rec.Time)

	if rec.IsBadRequest() {
		a.state.TotalBadRequests++
		return nil
	}
	method, resource, ok := rec.SplitRequest()
	if !ok {
		a.state.TotalUnsplittable++
		return nil
	}
	a.resources.Add(resource, rec.Bytes)
	a.state.TotalBytes += rec.Bytes

	isLogin, err := a.matcher.IsLoginAttempt(method, resource)
	if err != nil {
		return fmt.Errorf("failed to test login attempt: %w", err)
	}
	if !isLogin {
		return nil
	}
	a.state.TotalLoginAttempt++
	success, err := a.matcher.IsLoginSuccess(rec.Status)
	if err != nil {
		return fmt.Errorf("failed to test login result: %w", err)
	}
	if a.guard.Handle(rec.Host, rec.Time, success) {
		a.state.TotalBlocked++
		a.blockedHosts.Inc(rec.Host)
		if err := a.blocked.WriteBlocked(rawLine); err != nil {
			return fmt.Errorf("failed to write blocked request: %w", err)
		}
	}
	return nil
}

// Report returns statistics of the pass and of the internal state
// of individual analyses. It is intended for debug logging and it
// should be called before Finalize to see pending buckets and
// active sessions.
func (a *Analyzer) Report() map[string]any {
	ans := a.state.Report()
	ans["numHosts"] = a.hosts.Len()
	ans["hostRequests"] = a.hosts.Total()
	ans["numResources"] = a.resources.Len()
	ans["resourceBytes"] = a.resources.Total()
	ans["hourBucketsClosed"] = a.window.NumClosed()
	ans["hourBucketsPending"] = a.window.Pending()
	ans["hourBucketsRetained"] = a.window.Top().Len()
	ans["hourBucketsCapacity"] = a.window.Top().Cap()
	ans["loginFailingHosts"] = a.guard.NumFailing()
	ans["loginBlockList"] = a.guard.NumBlocked()
	ans["loginNumBlocks"] = a.guard.NumBlocks()
	ans["activeSessions"] = a.sessions.NumActive()
	return ans
}

// Finalize closes all the pending hour buckets and sessions
// and returns the results. It should be called once the whole
// log has been processed.
func (a *Analyzer) Finalize() *Result {
	a.window.Flush()
	ans := &Result{
		TopHosts:     a.hosts.Top(a.topN),
		TopResources: a.resources.Top(a.topN),
		BlockedHosts: a.blockedHosts.Top(-1),
		Sessions:     a.sessions.Finalize(),
		State:        a.state,
	}
	for start, count := range a.window.Top().Snapshot() {
		ans.TopHours = append(ans.TopHours, HourBucket{Start: start, Count: count})
	}
	return ans
}

func NewAnalyzer(conf *Conf, matcher scripting.LoginMatcher, blocked BlockedSink) *Analyzer {
	return &Analyzer{
		topN:         conf.TopN,
		hosts:        counting.NewCounter[string](),
		resources:    counting.NewCounter[string](),
		blockedHosts: counting.NewCounter[string](),
		window:       hourly.NewWindow(time.Duration(conf.HourWindowSecs)*time.Second, conf.TopN),
		sessions:     sessions.NewTracker(conf.Sessions),
		guard:        loginguard.NewGuard(conf.LoginGuard),
		matcher:      matcher,
		blocked:      blocked,
	}
}
