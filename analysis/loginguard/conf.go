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

package loginguard

import (
	"errors"
	"time"
)

const (
	DefaultFailLimit     = 3
	DefaultFailTimeSecs  = 20
	DefaultBlockTimeSecs = 300
)

// Conf defines how strict the brute-force login detection is.
type Conf struct {

	// FailLimit specifies how many failed logins within FailTimeSecs
	// trigger blocking of the host
	FailLimit int `json:"failLimit" yaml:"failLimit"`

	// FailTimeSecs is the interval in which failures are counted
	FailTimeSecs int `json:"failTimeSecs" yaml:"failTimeSecs"`

	// BlockTimeSecs specifies how long all the login attempts of a blocked
	// host are rejected
	BlockTimeSecs int `json:"blockTimeSecs" yaml:"blockTimeSecs"`
}

func (conf *Conf) FailTime() time.Duration {
	return time.Duration(conf.FailTimeSecs) * time.Second
}

func (conf *Conf) BlockTime() time.Duration {
	return time.Duration(conf.BlockTimeSecs) * time.Second
}

// ApplyDefaults sets default values for all the zero items
func (conf *Conf) ApplyDefaults() {
	if conf.FailLimit == 0 {
		conf.FailLimit = DefaultFailLimit
	}
	if conf.FailTimeSecs == 0 {
		conf.FailTimeSecs = DefaultFailTimeSecs
	}
	if conf.BlockTimeSecs == 0 {
		conf.BlockTimeSecs = DefaultBlockTimeSecs
	}
}

func (conf *Conf) Validate() error {
	if conf.FailLimit <= 0 {
		return errors.New("failed to validate login guard: failLimit must be > 0")
	}
	if conf.FailTimeSecs < 0 {
		return errors.New("failed to validate login guard: failTimeSecs must be >= 0")
	}
	if conf.BlockTimeSecs < 0 {
		return errors.New("failed to validate login guard: blockTimeSecs must be >= 0")
	}
	return nil
}
