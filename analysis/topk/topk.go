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

package topk

import (
	"cmp"
	"container/heap"
	"iter"
	"sort"
)

type entry[K comparable, V any] struct {
	key   K
	value V
	seq   uint64
	index int
}

// minHeap keeps the weakest entry at the root. Among equal values
// the entry inserted first is considered weaker.
type minHeap[K comparable, V any] struct {
	items   []*entry[K, V]
	compare func(a, b V) int
}

func (h *minHeap[K, V]) Len() int {
	return len(h.items)
}

func (h *minHeap[K, V]) Less(i, j int) bool {
	c := h.compare(h.items[i].value, h.items[j].value)
	if c == 0 {
		return h.items[i].seq < h.items[j].seq
	}
	return c < 0
}

func (h *minHeap[K, V]) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

func (h *minHeap[K, V]) Push(x any) {
	e := x.(*entry[K, V])
	e.index = len(h.items)
	h.items = append(h.items, e)
}

func (h *minHeap[K, V]) Pop() any {
	last := len(h.items) - 1
	e := h.items[last]
	h.items[last] = nil
	h.items = h.items[:last]
	e.index = -1
	return e
}

// BoundedMap stores at most k unique keys along with their values,
// keeping the k greatest values offered so far. A stored value is
// only ever replaced by a strictly greater one.
//
// When the map is full and several entries share the minimum value,
// the one inserted first is evicted.
type BoundedMap[K comparable, V any] struct {
	k       int
	compare func(a, b V) int
	data    map[K]*entry[K, V]
	order   minHeap[K, V]
	nextSeq uint64
}

// Offer proposes a value for a key. It returns true if the map
// has changed.
func (bm *BoundedMap[K, V]) Offer(key K, value V) bool {
	if bm.k <= 0 {
		return false
	}
	if curr, ok := bm.data[key]; ok {
		if bm.compare(value, curr.value) > 0 {
			curr.value = value
			heap.Fix(&bm.order, curr.index)
			return true
		}
		return false
	}
	if len(bm.data) < bm.k {
		bm.insert(key, value)
		return true
	}
	weakest := bm.order.items[0]
	if bm.compare(value, weakest.value) <= 0 {
		return false
	}
	heap.Pop(&bm.order)
	delete(bm.data, weakest.key)
	bm.insert(key, value)
	return true
}

func (bm *BoundedMap[K, V]) insert(key K, value V) {
	e := &entry[K, V]{key: key, value: value, seq: bm.nextSeq}
	bm.nextSeq++
	bm.data[key] = e
	heap.Push(&bm.order, e)
}

// Get returns a stored value for the key
func (bm *BoundedMap[K, V]) Get(key K) (V, bool) {
	e, ok := bm.data[key]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (bm *BoundedMap[K, V]) Len() int {
	return len(bm.data)
}

func (bm *BoundedMap[K, V]) Cap() int {
	return bm.k
}

// Snapshot returns stored pairs ordered by value (descending). Equal values
// keep their insertion order. The sequence reflects the map state at the
// moment iteration starts, so it can be consumed repeatedly.
func (bm *BoundedMap[K, V]) Snapshot() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		items := make([]entry[K, V], 0, len(bm.order.items))
		for _, e := range bm.order.items {
			items = append(items, *e)
		}
		sort.Slice(items, func(i, j int) bool {
			c := bm.compare(items[i].value, items[j].value)
			if c == 0 {
				return items[i].seq < items[j].seq
			}
			return c > 0
		})
		for _, item := range items {
			if !yield(item.key, item.value) {
				return
			}
		}
	}
}

// New creates a bounded map ordering values by the provided
// comparison function (negative: a < b, zero: a == b, positive: a > b).
func New[K comparable, V any](k int, compare func(a, b V) int) *BoundedMap[K, V] {
	k = max(k, 0)
	return &BoundedMap[K, V]{
		k:       k,
		compare: compare,
		data:    make(map[K]*entry[K, V], k),
		order: minHeap[K, V]{
			items:   make([]*entry[K, V], 0, k),
			compare: compare,
		},
	}
}

// NewOrdered creates a bounded map for naturally ordered values.
func NewOrdered[K comparable, V cmp.Ordered](k int) *BoundedMap[K, V] {
	return New[K, V](k, cmp.Compare[V])
}
