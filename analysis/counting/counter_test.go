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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopOrdering(t *testing.T) {
	c := NewCounter[string]()
	c.Inc("b")
	c.Inc("a")
	c.Inc("c")
	c.Inc("c")
	c.Add("d", 0)
	top := c.Top(3)
	assert.Equal(t, []Item[string]{{"c", 2}, {"a", 1}, {"b", 1}}, top)
	assert.Equal(t, int64(4), c.Total())
	assert.Equal(t, 4, c.Len())
}

func TestTopLargerThanData(t *testing.T) {
	c := NewCounter[string]()
	c.Add("/x", 100)
	c.Add("/y", 50)
	c.Add("/x", 1)
	top := c.Top(10)
	assert.Len(t, top, 2)
	assert.Equal(t, "/x", top[0].Key)
	assert.Equal(t, int64(101), c.Get("/x"))
}

func TestEmptyCounter(t *testing.T) {
	c := NewCounter[string]()
	assert.Empty(t, c.Top(10))
}
