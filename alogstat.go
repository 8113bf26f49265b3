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
	"alogstat/logging"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
)

var (
	version   string
	buildDate string
	gitCommit string
)

func setup(conf *config.Main, options *ProcessOptions, runID string) func() {
	if options.logLevel != "" {
		conf.LogLevel = options.logLevel
	}
	closer, err := logging.SetupLogging(conf.LogPath, conf.LogLevel, runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %s\n", err)
		os.Exit(1)
	}
	if err := config.Validate(conf); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	return func() {
		closer.Close()
	}
}

func loadConfig(path string) *config.Main {
	conf, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
	return conf
}

func main() {
	options := new(ProcessOptions)
	flag.BoolVar(&options.dryRun, "dry-run", false, "print reports to stdout instead of writing them to files")
	flag.StringVar(&options.logLevel, "log-level", "", "logging level (debug, info, warn, error); overrides the configured one")
	confPath := flag.String("conf", "", "an optional configuration file with analysis parameters (for the run action)")
	flag.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"alogstat - a single pass access log analyzer\n\nUsage:\n\t%s [options] %s config.(json|yaml)\n\t%s [options] %s log hosts hours resources blocked sessions\n\t%s %s [action]\n\nAvailable actions:\n\t%s\n\nOptions:\n",
			filepath.Base(os.Args[0]), config.ActionAnalyze,
			filepath.Base(os.Args[0]), config.ActionRun,
			filepath.Base(os.Args[0]), config.ActionHelp,
			strings.Join([]string{config.ActionAnalyze, config.ActionRun, config.ActionHelp, config.ActionVersion}, ", "),
		)
		flag.PrintDefaults()
	}
	flag.Parse()
	action := flag.Arg(0)

	var conf *config.Main
	switch action {
	case config.ActionHelp:
		help(flag.Arg(1))
		return
	case config.ActionVersion:
		fmt.Printf("alogstat %s\nbuild date: %s\nlast commit: %s\n", version, buildDate, gitCommit)
		return
	case config.ActionAnalyze:
		if flag.Arg(1) == "" {
			fmt.Fprintln(os.Stderr, "config path not specified")
			os.Exit(1)
		}
		conf = loadConfig(flag.Arg(1))
	case config.ActionRun:
		var base *config.Main
		if *confPath != "" {
			base = loadConfig(*confPath)
		}
		var err error
		conf, err = config.FromArgs(flag.Args()[1:], base)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s. Try -h for help\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown action [%s]. Try -h for help\n", action)
		os.Exit(1)
	}

	runID := logging.NewRunID()
	cleanup := setup(conf, options, runID)
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runAnalyzeAction(ctx, conf, options, runID)
}
