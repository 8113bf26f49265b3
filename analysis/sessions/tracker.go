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

package sessions

import (
	"errors"
	"time"
)

const (
	DefaultInactiveLimitSecs = 1800
	DefaultClearInterval     = 100000
)

var (
	// ErrEmptySessionSet is returned when a statistic requiring
	// at least one session is requested on an empty set
	ErrEmptySessionSet = errors.New("no sessions observed")
)

// Conf configures session reconstruction
type Conf struct {

	// InactiveLimitSecs is a minimum gap between two requests of a host
	// which splits them into two different sessions
	InactiveLimitSecs int `json:"inactiveLimitSecs" yaml:"inactiveLimitSecs"`

	// ClearInterval specifies how often (in number of logged requests)
	// inactive sessions are removed from memory
	ClearInterval int `json:"clearInterval" yaml:"clearInterval"`
}

func (conf *Conf) ApplyDefaults() {
	if conf.InactiveLimitSecs == 0 {
		conf.InactiveLimitSecs = DefaultInactiveLimitSecs
	}
	if conf.ClearInterval == 0 {
		conf.ClearInterval = DefaultClearInterval
	}
}

func (conf *Conf) Validate() error {
	if conf.InactiveLimitSecs <= 0 {
		return errors.New("failed to validate sessions: inactiveLimitSecs must be > 0")
	}
	if conf.ClearInterval <= 0 {
		return errors.New("failed to validate sessions: clearInterval must be > 0")
	}
	return nil
}

// Summary contains aggregated statistics of closed sessions
type Summary struct {
	Count int
	Total time.Duration
	Max   time.Duration
}

// Average returns mean session duration
func (s Summary) Average() (time.Duration, error) {
	if s.Count == 0 {
		return 0, ErrEmptySessionSet
	}
	return s.Total / time.Duration(s.Count), nil
}

type session struct {
	start    time.Time
	lastSeen time.Time
}

func (s session) duration() time.Duration {
	return s.lastSeen.Sub(s.start)
}

// Tracker reconstructs sessions of individual hosts from
// a chronologically ordered stream of requests. Only currently
// active sessions are kept in memory, closed ones are just
// added to the running totals.
type Tracker struct {
	inactiveLimit time.Duration
	clearInterval int
	active        map[string]*session
	sinceCleared  int
	summary       Summary
}

func (tr *Tracker) save(s *session) {
	d := s.duration()
	tr.summary.Count++
	tr.summary.Total += d
	if d > tr.summary.Max {
		tr.summary.Max = d
	}
}

// clearInactive closes all the sessions which cannot be extended
// anymore as of time t. It is a memory optimization only, each of
// the sessions would be closed by a later Log or by Finalize anyway.
func (tr *Tracker) clearInactive(t time.Time) int {
	inactive := make([]string, 0, len(tr.active)/4)
	for host, s := range tr.active {
		if t.Sub(s.lastSeen) >= tr.inactiveLimit {
			inactive = append(inactive, host)
		}
	}
	for _, host := range inactive {
		tr.save(tr.active[host])
		delete(tr.active, host)
	}
	return len(inactive)
}

// Log registers a request of a host at the time t
func (tr *Tracker) Log(host string, t time.Time) {
	tr.sinceCleared++
	if tr.sinceCleared > tr.clearInterval {
		tr.clearInactive(t)
		tr.sinceCleared = 0
	}

	s, ok := tr.active[host]
	if !ok {
		tr.active[host] = &session{start: t, lastSeen: t}
		return
	}
	if t.Sub(s.lastSeen) >= tr.inactiveLimit {
		tr.save(s)
		s.start = t
	}
	s.lastSeen = t
}

// NumActive returns the number of sessions kept in memory
func (tr *Tracker) NumActive() int {
	return len(tr.active)
}

// Finalize closes all the active sessions (each ends with its last
// request) and returns the totals. Calling it repeatedly is safe -
// the sessions are closed only once.
func (tr *Tracker) Finalize() Summary {
	for _, s := range tr.active {
		tr.save(s)
	}
	clear(tr.active)
	return tr.summary
}

func NewTracker(conf Conf) *Tracker {
	return &Tracker{
		inactiveLimit: time.Duration(conf.InactiveLimitSecs) * time.Second,
		clearInterval: conf.ClearInterval,
		active:        make(map[string]*session),
	}
}
