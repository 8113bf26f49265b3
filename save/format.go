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

package save

import (
	"alogstat/analysis/counting"
	"alogstat/analysis/sessions"
	"alogstat/load/accesslog"
	"alogstat/proc"
	"errors"
	"fmt"
	"io"
)

const (
	notAvailable = "n/a"
)

func RenderHosts(w io.Writer, items []counting.Item[string]) error {
	for _, item := range items {
		if _, err := fmt.Fprintf(w, "%s,%d\n", item.Key, item.Count); err != nil {
			return err
		}
	}
	return nil
}

func RenderHours(w io.Writer, buckets []proc.HourBucket) error {
	for _, b := range buckets {
		if _, err := fmt.Fprintf(w, "%s,%d\n", b.Start.Format(accesslog.DatetimeLayout), b.Count); err != nil {
			return err
		}
	}
	return nil
}

// RenderResources writes resource names only
func RenderResources(w io.Writer, items []counting.Item[string]) error {
	for _, item := range items {
		if _, err := fmt.Fprintf(w, "%s\n", item.Key); err != nil {
			return err
		}
	}
	return nil
}

// RenderSessions writes session statistics. In case there are no
// sessions, the average is reported as "n/a".
func RenderSessions(w io.Writer, summary sessions.Summary) error {
	avg := notAvailable
	avgDur, err := summary.Average()
	if err == nil {
		avg = fmt.Sprintf("%.1f", avgDur.Seconds())

	} else if !errors.Is(err, sessions.ErrEmptySessionSet) {
		return err
	}
	_, err = fmt.Fprintf(
		w,
		"total sessions: %d\naverage session: %s\nmaximum session: %.1f\n",
		summary.Count, avg, summary.Max.Seconds(),
	)
	return err
}
