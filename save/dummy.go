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
	"alogstat/proc"
	"fmt"
	"io"
)

// PrintingBlockedLog writes blocked requests directly to
// a writer. It is used in the dry-run mode.
type PrintingBlockedLog struct {
	w        io.Writer
	numLines int64
}

func (pl *PrintingBlockedLog) WriteBlocked(rawLine string) error {
	pl.numLines++
	_, err := fmt.Fprintf(pl.w, "[%s] %s\n", ReportBlocked, rawLine)
	return err
}

func (pl *PrintingBlockedLog) NumLines() int64 {
	return pl.numLines
}

func NewPrintingBlockedLog(w io.Writer) *PrintingBlockedLog {
	return &PrintingBlockedLog{w: w}
}

type section struct {
	name   string
	render func(w io.Writer) error
}

// PrintReports writes all the reports (except for the blocked requests
// which are printed during the processing) to a single writer.
// It is used in the dry-run mode.
func PrintReports(w io.Writer, res *proc.Result, summary *RunSummary) error {
	sections := []section{
		{ReportHosts, func(w io.Writer) error { return RenderHosts(w, res.TopHosts) }},
		{ReportHours, func(w io.Writer) error { return RenderHours(w, res.TopHours) }},
		{ReportResources, func(w io.Writer) error { return RenderResources(w, res.TopResources) }},
		{ReportSessions, func(w io.Writer) error { return RenderSessions(w, res.Sessions) }},
	}
	if summary != nil {
		sections = append(sections, section{ReportSummary, summary.Render})
	}
	for _, s := range sections {
		if _, err := fmt.Fprintf(w, "[%s]\n", s.name); err != nil {
			return err
		}
		if err := s.render(w); err != nil {
			return fmt.Errorf("failed to print %s report: %w", s.name, err)
		}
	}
	return nil
}
