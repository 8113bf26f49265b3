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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	ReportHosts     = "hosts"
	ReportHours     = "hours"
	ReportResources = "resources"
	ReportBlocked   = "blocked"
	ReportSessions  = "sessions"
	ReportSummary   = "summary"
)

// ReportPaths specifies where individual reports are written.
// All the paths except for Summary are required.
type ReportPaths struct {
	Hosts     string `json:"hosts" yaml:"hosts"`
	Hours     string `json:"hours" yaml:"hours"`
	Resources string `json:"resources" yaml:"resources"`
	Blocked   string `json:"blocked" yaml:"blocked"`
	Sessions  string `json:"sessions" yaml:"sessions"`

	// Summary is an optional path of a JSON run summary
	Summary string `json:"summary" yaml:"summary"`
}

func (rp *ReportPaths) Validate() error {
	if rp.Hosts == "" || rp.Hours == "" || rp.Resources == "" || rp.Blocked == "" || rp.Sessions == "" {
		return errors.New("failed to validate reports: all of hosts, hours, resources, blocked and sessions must be set")
	}
	return nil
}

type pendingFile struct {
	report  string
	tmpPath string
	target  string
}

func removeAll(files []pendingFile) {
	for _, f := range files {
		if f.tmpPath == "" {
			continue
		}
		if err := os.Remove(f.tmpPath); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", f.tmpPath).Msg("failed to remove temporary report file")
		}
	}
}

func createTemp(target string) (*os.File, error) {
	return os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
}

// writeTemp renders a report into a temporary file located in the
// same directory as the target so the final rename is atomic.
func writeTemp(report, target string, render func(w io.Writer) error) (pendingFile, error) {
	f, err := createTemp(target)
	if err != nil {
		return pendingFile{}, fmt.Errorf("failed to create %s report: %w", report, err)
	}
	ans := pendingFile{report: report, tmpPath: f.Name(), target: target}
	bw := bufio.NewWriter(f)
	err = render(bw)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return ans, fmt.Errorf("failed to write %s report: %w", report, err)
	}
	return ans, nil
}

// BlockedLog stores raw lines of blocked requests. Lines are
// streamed to a temporary file which becomes the final report
// only once all the other reports are ready.
type BlockedLog struct {
	file     *os.File
	w        *bufio.Writer
	target   string
	numLines int64
	done     bool
}

func (bl *BlockedLog) WriteBlocked(rawLine string) error {
	if _, err := bl.w.WriteString(rawLine); err != nil {
		return err
	}
	bl.numLines++
	return bl.w.WriteByte('\n')
}

func (bl *BlockedLog) NumLines() int64 {
	return bl.numLines
}

func (bl *BlockedLog) finish() (pendingFile, error) {
	ans := pendingFile{report: ReportBlocked, tmpPath: bl.file.Name(), target: bl.target}
	if bl.done {
		return ans, errors.New("blocked requests log already closed")
	}
	bl.done = true
	err := bl.w.Flush()
	if cerr := bl.file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return ans, fmt.Errorf("failed to write %s report: %w", ReportBlocked, err)
	}
	return ans, nil
}

// Discard removes all the data written so far. It is used
// in case the analysis fails.
func (bl *BlockedLog) Discard() {
	if !bl.done {
		bl.done = true
		bl.file.Close()
	}
	removeAll([]pendingFile{{tmpPath: bl.file.Name()}})
}

func NewBlockedLog(target string) (*BlockedLog, error) {
	f, err := createTemp(target)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s report: %w", ReportBlocked, err)
	}
	return &BlockedLog{file: f, w: bufio.NewWriter(f), target: target}, nil
}

// WriteReports writes all the reports. Reports are rendered
// concurrently into temporary files and renamed to their final
// names only after all of them have been successfully written.
// In case of an error, no report is created or replaced (and
// the blocked requests log is discarded).
func WriteReports(
	ctx context.Context,
	paths ReportPaths,
	res *proc.Result,
	blocked *BlockedLog,
	summary *RunSummary,
) ([]ConfirmMsg, error) {
	blockedFile, err := blocked.finish()
	if err != nil {
		blocked.Discard()
		return nil, err
	}

	type job struct {
		report string
		target string
		render func(w io.Writer) error
	}
	jobs := []job{
		{ReportHosts, paths.Hosts, func(w io.Writer) error { return RenderHosts(w, res.TopHosts) }},
		{ReportHours, paths.Hours, func(w io.Writer) error { return RenderHours(w, res.TopHours) }},
		{ReportResources, paths.Resources, func(w io.Writer) error { return RenderResources(w, res.TopResources) }},
		{ReportSessions, paths.Sessions, func(w io.Writer) error { return RenderSessions(w, res.Sessions) }},
	}
	if paths.Summary != "" && summary != nil {
		jobs = append(jobs, job{ReportSummary, paths.Summary, summary.Render})
	}

	pending := make([]pendingFile, len(jobs)+1)
	pending[len(jobs)] = blockedFile
	eg, egCtx := errgroup.WithContext(ctx)
	for i, j := range jobs {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			pf, err := writeTemp(j.report, j.target, j.render)
			pending[i] = pf
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		removeAll(pending)
		return nil, err
	}

	if err := commit(pending); err != nil {
		return nil, err
	}
	ans := make([]ConfirmMsg, 0, len(pending))
	for _, pf := range pending {
		ans = append(ans, ConfirmMsg{Report: pf.report, FilePath: pf.target})
	}
	return ans, nil
}

// committedFile is a report moved to its final location.
// The backup is empty if there was no previous version of the report.
type committedFile struct {
	target string
	backup string
}

func backupPath(target string) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.bak")
	if err != nil {
		return "", err
	}
	name := f.Name()
	f.Close()
	return name, nil
}

// restore reverts committed files in reverse order, i.e. it puts
// back previous versions of reports or removes the new ones.
func restore(done []committedFile) {
	for i := len(done) - 1; i >= 0; i-- {
		var err error
		if done[i].backup != "" {
			err = os.Rename(done[i].backup, done[i].target)

		} else {
			err = os.Remove(done[i].target)
		}
		if err != nil {
			log.Error().Err(err).Str("file", done[i].target).Msg("failed to restore report file")
		}
	}
}

// commit moves temporary files to their targets. Either all the targets
// are replaced or, in case of an error, the previous state is restored
// and all the temporary files are removed.
func commit(pending []pendingFile) error {
	done := make([]committedFile, 0, len(pending))
	fail := func(i int, err error) error {
		restore(done)
		removeAll(pending[i:])
		return fmt.Errorf("failed to finalize %s report: %w", pending[i].report, err)
	}
	for i, pf := range pending {
		cf := committedFile{target: pf.target}
		if _, err := os.Lstat(pf.target); err == nil {
			bak, err := backupPath(pf.target)
			if err != nil {
				return fail(i, err)
			}
			if err := os.Rename(pf.target, bak); err != nil {
				os.Remove(bak)
				return fail(i, err)
			}
			cf.backup = bak

		} else if !os.IsNotExist(err) {
			return fail(i, err)
		}
		if err := os.Rename(pf.tmpPath, pf.target); err != nil {
			if cf.backup != "" {
				done = append(done, cf)
			}
			return fail(i, err)
		}
		done = append(done, cf)
	}
	for _, cf := range done {
		if cf.backup == "" {
			continue
		}
		if err := os.Remove(cf.backup); err != nil {
			log.Warn().Err(err).Str("file", cf.backup).Msg("failed to remove report backup")
		}
	}
	return nil
}
