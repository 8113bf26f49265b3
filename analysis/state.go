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

package analysis

import (
	"time"
)

// PassState is mainly for debugging and/or reporting
// purposes. It summarizes a single pass over a log.
type PassState struct {
	FirstRecord       time.Time `json:"firstRecord"`
	LastRecord        time.Time `json:"lastRecord"`
	TotalProcessed    int64     `json:"totalProcessed"`
	TotalBadRequests  int64     `json:"totalBadRequests"`
	TotalUnsplittable int64     `json:"totalUnsplittable"`
	TotalLoginAttempt int64     `json:"totalLoginAttempts"`
	TotalBlocked      int64     `json:"totalBlocked"`
	TotalBytes        int64     `json:"totalBytes"`
}

// Register updates the time range of the processed records
func (state *PassState) Register(t time.Time) {
	if state.FirstRecord.IsZero() {
		state.FirstRecord = t
	}
	state.LastRecord = t
	state.TotalProcessed++
}

func (state *PassState) Report() map[string]any {
	ans := make(map[string]any)
	ans["firstRecord"] = state.FirstRecord
	ans["lastRecord"] = state.LastRecord
	ans["totalProcessed"] = state.TotalProcessed
	ans["totalBadRequests"] = state.TotalBadRequests
	ans["totalUnsplittable"] = state.TotalUnsplittable
	ans["totalLoginAttempts"] = state.TotalLoginAttempt
	ans["totalBlocked"] = state.TotalBlocked
	ans["totalBytes"] = state.TotalBytes
	return ans
}
