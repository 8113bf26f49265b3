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

package counting

import (
	"cmp"
	"slices"
)

// Item is a key along with its accumulated count
type Item[K cmp.Ordered] struct {
	Key   K
	Count int64
}

// Counter is an exact frequency accumulator
type Counter[K cmp.Ordered] struct {
	data  map[K]int64
	total int64
}

func (c *Counter[K]) Add(key K, n int64) {
	c.data[key] += n
	c.total += n
}

func (c *Counter[K]) Inc(key K) {
	c.Add(key, 1)
}

func (c *Counter[K]) Get(key K) int64 {
	return c.data[key]
}

// Len returns the number of distinct keys
func (c *Counter[K]) Len() int {
	return len(c.data)
}

func (c *Counter[K]) Total() int64 {
	return c.total
}

// Top returns at most n items with the highest counts. Items with
// equal counts are ordered by their keys (ascending).
func (c *Counter[K]) Top(n int) []Item[K] {
	items := make([]Item[K], 0, len(c.data))
	for k, v := range c.data {
		items = append(items, Item[K]{Key: k, Count: v})
	}
	slices.SortFunc(items, func(a, b Item[K]) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if n >= 0 && n < len(items) {
		items = items[:n]
	}
	return items
}

func NewCounter[K cmp.Ordered]() *Counter[K] {
	return &Counter[K]{data: make(map[K]int64)}
}
