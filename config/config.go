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

package config

import (
	"alogstat/common"
	"alogstat/proc"
	"alogstat/save"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/czcorpus/cnc-gokit/fs"
	"gopkg.in/yaml.v3"
)

const (
	ActionAnalyze = "analyze"
	ActionRun     = "run"
	ActionHelp    = "help"
	ActionVersion = "version"

	DefaultProgressInterval = 1000000

	// NumRunArgs is the number of positional arguments of the `run` action
	// (log, hosts, hours, resources, blocked, sessions)
	NumRunArgs = 6
)

// Main describes alogstat's configuration
type Main struct {
	SrcPath          string           `json:"srcPath" yaml:"srcPath"`
	Reports          save.ReportPaths `json:"reports" yaml:"reports"`
	Analysis         proc.Conf        `json:"analysis" yaml:"analysis"`
	GeoIPDbPath      string           `json:"geoIpDbPath" yaml:"geoIpDbPath"`
	ProgressInterval int64            `json:"progressInterval" yaml:"progressInterval"`
	LogPath          string           `json:"logPath" yaml:"logPath"`
	LogLevel         string           `json:"logLevel" yaml:"logLevel"`
}

// HasGeoIP tests whether a GeoIP database is configured
func (c *Main) HasGeoIP() bool {
	return c.GeoIPDbPath != ""
}

func (c *Main) ApplyDefaults() {
	if c.ProgressInterval == 0 {
		c.ProgressInterval = DefaultProgressInterval
	}
	c.Analysis.ApplyDefaults()
}

func testFile(path, desc string) error {
	isf, err := fs.IsFile(path)
	if err != nil {
		return fmt.Errorf("failed to test %s: %w", desc, err)
	}
	if !isf {
		return fmt.Errorf("invalid %s: '%s'", desc, path)
	}
	return nil
}

// Validate checks for essential config properties and fills
// in default values for the missing optional ones.
func Validate(conf *Main) error {
	conf.ApplyDefaults()
	if conf.SrcPath == "" {
		return errors.New("missing srcPath")
	}
	if err := testFile(conf.SrcPath, "srcPath"); err != nil {
		return err
	}
	if err := conf.Reports.Validate(); err != nil {
		return err
	}
	if err := conf.Analysis.Validate(); err != nil {
		return err
	}
	if conf.HasGeoIP() {
		if err := testFile(conf.GeoIPDbPath, "geoIpDbPath"); err != nil {
			return err
		}
	}
	if conf.Analysis.Login.ScriptPath != "" {
		if path, ok := common.LocalResourcePath(conf.Analysis.Login.ScriptPath); ok {
			if err := testFile(path, "login.scriptPath"); err != nil {
				return err
			}
		}
	}
	if conf.ProgressInterval < 0 {
		return errors.New("progressInterval must be >= 0")
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load loads main configuration (either from a local fs or via http(s)).
// Files with the .yaml/.yml suffix are decoded as YAML, everything
// else as JSON.
func Load(path string) (*Main, error) {
	rawData, err := common.LoadSupportedResource(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	var conf Main
	if isYAML(path) {
		err = yaml.Unmarshal(rawData, &conf)

	} else {
		err = json.Unmarshal(rawData, &conf)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration %s: %w", path, err)
	}
	return &conf, nil
}

// FromArgs creates a configuration from positional arguments
// (log, hosts, hours, resources, blocked, sessions). An optional base
// configuration may be provided to set analysis parameters.
func FromArgs(args []string, base *Main) (*Main, error) {
	if len(args) != NumRunArgs {
		return nil, fmt.Errorf("expected %d arguments, got %d", NumRunArgs, len(args))
	}
	var conf Main
	if base != nil {
		conf = *base
	}
	conf.SrcPath = args[0]
	conf.Reports.Hosts = args[1]
	conf.Reports.Hours = args[2]
	conf.Reports.Resources = args[3]
	conf.Reports.Blocked = args[4]
	conf.Reports.Sessions = args[5]
	return &conf, nil
}
