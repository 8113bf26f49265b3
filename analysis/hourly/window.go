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

package hourly

import (
	"alogstat/analysis/topk"
	"time"

	"github.com/gammazero/deque"
)

const (
	DefaultSpan = time.Hour
)

// Window is a sliding window over chronologically ordered request
// timestamps. Each time the oldest timestamp leaves the window,
// a bucket starting at that timestamp is closed and offered
// (along with the number of requests it contained) to a top-k map.
//
// Please note that buckets are not aligned to calendar hours - a bucket
// is identified by the first request it contains.
type Window struct {
	span    time.Duration
	pending deque.Deque[time.Time]
	top     *topk.BoundedMap[time.Time, int]
	closed  int
}

// Advance closes all the buckets which are older than
// the span relative to `t` and then adds `t` to the window.
func (w *Window) Advance(t time.Time) {
	for w.pending.Len() > 0 && t.Sub(w.pending.Front()) > w.span {
		w.closeOldest()
	}
	w.pending.PushBack(t)
}

// Flush closes all the remaining buckets. It is expected
// to be called once the input stream is exhausted.
func (w *Window) Flush() {
	for w.pending.Len() > 0 {
		w.closeOldest()
	}
}

func (w *Window) closeOldest() {
	count := w.pending.Len()
	start := w.pending.PopFront()
	w.top.Offer(start, count)
	w.closed++
}

// Pending returns the number of timestamps currently in the window
func (w *Window) Pending() int {
	return w.pending.Len()
}

// NumClosed returns the number of buckets closed so far
func (w *Window) NumClosed() int {
	return w.closed
}

func (w *Window) Top() *topk.BoundedMap[time.Time, int] {
	return w.top
}

func NewWindow(span time.Duration, topN int) *Window {
	if span <= 0 {
		span = DefaultSpan
	}
	return &Window{
		span: span,
		top:  topk.NewOrdered[time.Time, int](topN),
	}
}
