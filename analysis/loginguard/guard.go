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

package loginguard

import (
	"time"

	"github.com/gammazero/deque"
)

// Guard keeps track of failed login attempts and decides whether
// a login attempt of a host should be blocked. A host is either
// blocked or it has a (possibly empty) history of recent failures,
// never both.
type Guard struct {
	failLimit int
	failTime  time.Duration
	blockTime time.Duration

	// blocking maps currently blocked hosts to the time they were blocked
	blocking map[string]time.Time

	// failures maps not-yet-blocked hosts to their recent failed
	// login times (oldest first)
	failures map[string]*deque.Deque[time.Time]

	numBlocks int
}

// Handle processes a login attempt and returns true if the attempt
// should be blocked. Please note that the failure which triggers
// blocking is not blocked itself - blocking applies to subsequent
// attempts.
func (g *Guard) Handle(host string, t time.Time, success bool) bool {
	if since, ok := g.blocking[host]; ok {
		if t.Sub(since) > g.blockTime {
			delete(g.blocking, host)

		} else {
			return true
		}
	}

	if success {
		delete(g.failures, host)
		return false
	}

	failures, ok := g.failures[host]
	if !ok {
		failures = new(deque.Deque[time.Time])
		g.failures[host] = failures
	}
	for failures.Len() > 0 && t.Sub(failures.Front()) > g.failTime {
		failures.PopFront()
	}
	failures.PushBack(t)
	if failures.Len() >= g.failLimit {
		g.blocking[host] = t
		delete(g.failures, host)
		g.numBlocks++
	}
	return false
}

// isBlocked tells whether the host is blocked at the time t
// without recording any attempt.
func (g *Guard) isBlocked(host string, t time.Time) bool {
	since, ok := g.blocking[host]
	return ok && t.Sub(since) <= g.blockTime
}

// NumFailing returns the number of hosts with a non-empty
// history of recent failures.
func (g *Guard) NumFailing() int {
	return len(g.failures)
}

// NumBlocked returns the number of hosts currently kept in the block list
// (including the ones with an already expired block which have not
// attempted to log in since)
func (g *Guard) NumBlocked() int {
	return len(g.blocking)
}

// NumBlocks returns how many times any host has been blocked.
func (g *Guard) NumBlocks() int {
	return g.numBlocks
}

func NewGuard(conf Conf) *Guard {
	return &Guard{
		failLimit: conf.FailLimit,
		failTime:  conf.FailTime(),
		blockTime: conf.BlockTime(),
		blocking:  make(map[string]time.Time),
		failures:  make(map[string]*deque.Deque[time.Time]),
	}
}
