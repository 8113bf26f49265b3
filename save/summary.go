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
	"alogstat/analysis"
	"alogstat/proc"
	"encoding/json"
	"io"
	"net"
	"time"

	"github.com/czcorpus/cnc-gokit/datetime"
	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog/log"
)

type BlockedHost struct {
	Host     string `json:"host"`
	Requests int64  `json:"requests"`
	Country  string `json:"country,omitempty"`
}

// RunSummary is an optional machine readable overview
// of a single analysis run
type RunSummary struct {
	RunID        string             `json:"runId"`
	Generated    string             `json:"generated"`
	SrcPath      string             `json:"srcPath"`
	ProcTimeSecs float64            `json:"procTimeSecs"`
	State        analysis.PassState `json:"state"`
	NumSessions  int                `json:"numSessions"`
	BlockedHosts []BlockedHost      `json:"blockedHosts"`
}

func (rs *RunSummary) Render(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rs)
}

// GeoLocator resolves geographical data of IP addresses.
// *geoip2.Reader is the production implementation.
type GeoLocator interface {
	City(ip net.IP) (*geoip2.City, error)
}

// hostCountry returns country name for hosts represented by IP address.
// For domain names, an empty string is returned.
func hostCountry(host string, db GeoLocator) string {
	ip := net.ParseIP(host)
	if ip == nil {
		return ""
	}
	city, err := db.City(ip)
	if err != nil {
		log.Error().Err(err).Msgf("Failed to fetch GeoIP data for IP %s.", ip.String())
		return ""
	}
	return city.Country.Names["en"]
}

// NewRunSummary creates a summary of finished analysis. The geoDB
// argument is optional - with nil, no countries are resolved.
func NewRunSummary(
	runID string,
	srcPath string,
	procTime time.Duration,
	res *proc.Result,
	geoDB GeoLocator,
) *RunSummary {
	ans := &RunSummary{
		RunID:        runID,
		Generated:    datetime.FormatDatetime(time.Now()),
		SrcPath:      srcPath,
		ProcTimeSecs: procTime.Seconds(),
		State:        res.State,
		NumSessions:  res.Sessions.Count,
		BlockedHosts: make([]BlockedHost, 0, len(res.BlockedHosts)),
	}
	for _, item := range res.BlockedHosts {
		bh := BlockedHost{Host: item.Key, Requests: item.Count}
		if geoDB != nil {
			bh.Country = hostCountry(item.Key, geoDB)
		}
		ans.BlockedHosts = append(ans.BlockedHosts, bh)
	}
	return ans
}
