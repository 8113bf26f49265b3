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

package main

import (
	"alogstat/config"
	"alogstat/load/accesslog"
	"alogstat/load/batch"
	"alogstat/proc"
	"alogstat/save"
	"alogstat/scripting"
	"context"
	"errors"
	"os"
	"time"

	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog/log"
)

// ProcessOptions contains options provided via CLI flags
type ProcessOptions struct {
	dryRun   bool
	logLevel string
}

func openGeoDB(conf *config.Main) *geoip2.Reader {
	if !conf.HasGeoIP() {
		return nil
	}
	geoDB, err := geoip2.Open(conf.GeoIPDbPath)
	if err != nil {
		log.Warn().Err(err).Msg("failed to open GeoIP database, countries won't be resolved")
		return nil
	}
	return geoDB
}

type blockedOutput interface {
	proc.BlockedSink
	NumLines() int64
}

func runAnalyzeAction(ctx context.Context, conf *config.Main, options *ProcessOptions, runID string) {
	matcher, err := scripting.NewLoginMatcher(conf.Analysis.Login)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create login matcher")
	}
	defer matcher.Close()

	var blocked blockedOutput
	var blockedLog *save.BlockedLog
	if options.dryRun {
		log.Warn().Msg("using dry-run mode, output goes to stdout")
		blocked = save.NewPrintingBlockedLog(os.Stdout)

	} else {
		blockedLog, err = save.NewBlockedLog(conf.Reports.Blocked)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to run analysis")
		}
		blocked = blockedLog
	}

	analyzer := proc.NewAnalyzer(&conf.Analysis, matcher, blocked)
	t0 := time.Now()
	log.Info().Str("file", conf.SrcPath).Msg("starting log analysis")
	numLines, err := batch.ParseFile(ctx, conf.SrcPath, conf.ProgressInterval, analyzer)
	if err != nil {
		if blockedLog != nil {
			blockedLog.Discard()
		}
		var fmtErr *accesslog.FormatError
		if errors.As(err, &fmtErr) {
			log.Fatal().
				Err(err).
				Int64("lineNumber", fmtErr.LineNumber).
				Msg("malformed log line, no report has been written")
		}
		log.Fatal().Err(err).Msg("failed to run analysis, no report has been written")
	}
	log.Debug().Any("report", analyzer.Report()).Msg("state report")
	res := analyzer.Finalize()
	procTime := time.Since(t0)

	if _, err := res.Sessions.Average(); err != nil {
		log.Warn().Err(err).Msg("no sessions found, average session length is not available")
	}
	var linesPerSec float64
	if procTime > 0 {
		linesPerSec = float64(numLines) / procTime.Seconds()
	}
	log.Info().
		Int64("lines", numLines).
		Float64("seconds", procTime.Seconds()).
		Float64("linesPerSec", linesPerSec).
		Int64("blockedRequests", blocked.NumLines()).
		Msg("log analysis finished")

	var locator save.GeoLocator
	if geoDB := openGeoDB(conf); geoDB != nil {
		defer geoDB.Close()
		locator = geoDB
	}
	summary := save.NewRunSummary(runID, conf.SrcPath, procTime, res, locator)

	if options.dryRun {
		if err := save.PrintReports(os.Stdout, res, summary); err != nil {
			log.Fatal().Err(err).Msg("failed to print reports")
		}
		return
	}
	confirms, err := save.WriteReports(ctx, conf.Reports, res, blockedLog, summary)
	for _, confirm := range confirms {
		if confirm.Error != nil {
			log.Error().Err(confirm.Error).Str("report", confirm.Report).Msg("failed to write report")

		} else {
			log.Info().Str("report", confirm.Report).Str("file", confirm.FilePath).Msg("report written")
		}
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to write reports")
	}
}
