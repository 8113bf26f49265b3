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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "conf.json", `{
		"srcPath": "/var/log/access.log",
		"reports": {"hosts": "hosts.txt", "summary": "summary.json"},
		"analysis": {
			"topN": 5,
			"loginGuard": {"failLimit": 4},
			"login": {"path": "/signin"}
		},
		"logLevel": "debug"
	}`)
	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/log/access.log", conf.SrcPath)
	assert.Equal(t, "hosts.txt", conf.Reports.Hosts)
	assert.Equal(t, "summary.json", conf.Reports.Summary)
	assert.Equal(t, 5, conf.Analysis.TopN)
	assert.Equal(t, 4, conf.Analysis.LoginGuard.FailLimit)
	assert.Equal(t, "/signin", conf.Analysis.Login.Path)
	assert.Equal(t, "debug", conf.LogLevel)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "conf.yml", `
srcPath: /var/log/access.log
reports:
  blocked: blocked.txt
analysis:
  hourWindowSecs: 600
  sessions:
    inactiveLimitSecs: 900
geoIpDbPath: /usr/share/geoip/city.mmdb
progressInterval: 500
`)
	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "blocked.txt", conf.Reports.Blocked)
	assert.Equal(t, 600, conf.Analysis.HourWindowSecs)
	assert.Equal(t, 900, conf.Analysis.Sessions.InactiveLimitSecs)
	assert.True(t, conf.HasGeoIP())
	assert.Equal(t, int64(500), conf.ProgressInterval)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(writeFile(t, dir, "conf.json", `{"srcPath": `))
	assert.Error(t, err)
	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestFromArgs(t *testing.T) {
	base := &Main{LogLevel: "warn"}
	base.Analysis.TopN = 3
	conf, err := FromArgs([]string{"log", "h", "hr", "r", "b", "s"}, base)
	require.NoError(t, err)
	assert.Equal(t, "log", conf.SrcPath)
	assert.Equal(t, "h", conf.Reports.Hosts)
	assert.Equal(t, "hr", conf.Reports.Hours)
	assert.Equal(t, "r", conf.Reports.Resources)
	assert.Equal(t, "b", conf.Reports.Blocked)
	assert.Equal(t, "s", conf.Reports.Sessions)
	assert.Equal(t, 3, conf.Analysis.TopN)
	assert.Equal(t, "warn", conf.LogLevel)
	assert.Equal(t, "", base.SrcPath)

	_, err = FromArgs([]string{"log"}, nil)
	assert.Error(t, err)
}

func validConf(t *testing.T) *Main {
	dir := t.TempDir()
	conf, err := FromArgs([]string{
		writeFile(t, dir, "access.log", ""),
		filepath.Join(dir, "hosts.txt"),
		filepath.Join(dir, "hours.txt"),
		filepath.Join(dir, "resources.txt"),
		filepath.Join(dir, "blocked.txt"),
		filepath.Join(dir, "sessions.txt"),
	}, nil)
	require.NoError(t, err)
	return conf
}

func TestValidateAppliesDefaults(t *testing.T) {
	conf := validConf(t)
	require.NoError(t, Validate(conf))
	assert.Equal(t, int64(DefaultProgressInterval), conf.ProgressInterval)
	assert.Equal(t, 10, conf.Analysis.TopN)
	assert.Equal(t, 3600, conf.Analysis.HourWindowSecs)
	assert.Equal(t, 3, conf.Analysis.LoginGuard.FailLimit)
	assert.Equal(t, 1800, conf.Analysis.Sessions.InactiveLimitSecs)
	assert.Equal(t, "POST", conf.Analysis.Login.Method)
	assert.Equal(t, "/login", conf.Analysis.Login.Path)
}

func TestValidateRejectsMissingSource(t *testing.T) {
	conf := validConf(t)
	conf.SrcPath = filepath.Join(t.TempDir(), "missing.log")
	assert.Error(t, Validate(conf))

	conf.SrcPath = ""
	assert.Error(t, Validate(conf))
}

func TestValidateRejectsMissingReport(t *testing.T) {
	conf := validConf(t)
	conf.Reports.Sessions = ""
	assert.Error(t, Validate(conf))
}

func TestValidateRejectsInvalidAnalysis(t *testing.T) {
	conf := validConf(t)
	conf.Analysis.TopN = -1
	assert.Error(t, Validate(conf))
}

func TestValidateOptionalFiles(t *testing.T) {
	conf := validConf(t)
	conf.GeoIPDbPath = filepath.Join(t.TempDir(), "missing.mmdb")
	assert.Error(t, Validate(conf))

	conf = validConf(t)
	conf.Analysis.Login.ScriptPath = t.TempDir()
	assert.Error(t, Validate(conf))
}

func TestValidateScriptLocations(t *testing.T) {
	conf := validConf(t)
	script := writeFile(t, t.TempDir(), "login.lua", "")
	conf.Analysis.Login.ScriptPath = "file://" + script
	assert.NoError(t, Validate(conf))

	conf.Analysis.Login.ScriptPath = "file:///nonexistent/login.lua"
	assert.Error(t, Validate(conf))

	// remote scripts are checked once they are loaded
	conf.Analysis.Login.ScriptPath = "https://example.com/login.lua"
	assert.NoError(t, Validate(conf))
}
