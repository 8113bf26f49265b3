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

package proc

import (
	"alogstat/analysis/loginguard"
	"alogstat/analysis/sessions"
	"alogstat/scripting"
	"errors"
	"fmt"
)

const (
	DefaultTopN           = 10
	DefaultHourWindowSecs = 3600
)

// Conf contains all the parameters of the log analysis
type Conf struct {

	// TopN specifies how many items the top hosts, hours and
	// resources reports contain
	TopN int `json:"topN" yaml:"topN"`

	// HourWindowSecs is the length of the sliding window used for
	// the busiest periods report
	HourWindowSecs int `json:"hourWindowSecs" yaml:"hourWindowSecs"`

	LoginGuard loginguard.Conf     `json:"loginGuard" yaml:"loginGuard"`
	Sessions   sessions.Conf       `json:"sessions" yaml:"sessions"`
	Login      scripting.LoginConf `json:"login" yaml:"login"`
}

func (conf *Conf) ApplyDefaults() {
	if conf.TopN == 0 {
		conf.TopN = DefaultTopN
	}
	if conf.HourWindowSecs == 0 {
		conf.HourWindowSecs = DefaultHourWindowSecs
	}
	conf.LoginGuard.ApplyDefaults()
	conf.Sessions.ApplyDefaults()
	conf.Login.ApplyDefaults()
}

func (conf *Conf) Validate() error {
	if conf.TopN <= 0 {
		return errors.New("failed to validate analysis: topN must be > 0")
	}
	if conf.HourWindowSecs <= 0 {
		return errors.New("failed to validate analysis: hourWindowSecs must be > 0")
	}
	if err := conf.LoginGuard.Validate(); err != nil {
		return fmt.Errorf("failed to validate analysis: %w", err)
	}
	if err := conf.Sessions.Validate(); err != nil {
		return fmt.Errorf("failed to validate analysis: %w", err)
	}
	return nil
}
