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

package accesslog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	hostSeparator = " - - ["

	// datetimeLen is the length of e.g. `01/Jul/1995:00:00:01`
	datetimeLen = 20

	// zoneLen is the length of e.g. `-0400`
	zoneLen = 5

	// DatetimeLayout is a time.Format layout matching the timestamp
	// as written in the log (including the zone offset)
	DatetimeLayout = "02/Jan/2006:15:04:05 -0700"

	// LoggedStatusBadRequest marks requests the server was unable
	// to parse
	LoggedStatusBadRequest = 400
)

var months = map[string]time.Month{
	"Jan": time.January,
	"Feb": time.February,
	"Mar": time.March,
	"Apr": time.April,
	"May": time.May,
	"Jun": time.June,
	"Jul": time.July,
	"Aug": time.August,
	"Sep": time.September,
	"Oct": time.October,
	"Nov": time.November,
	"Dec": time.December,
}

// FormatError informs that a line does not match the expected
// access log format.
type FormatError struct {
	LineNumber   int64
	RecordPrefix string
	Message      string
}

func (m *FormatError) Error() string {
	return fmt.Sprintf("%s: FormatError at line %d (\"%s...\")", m.Message, m.LineNumber, m.RecordPrefix)
}

// NewFormatError is a constructor for FormatError
func NewFormatError(lineNumber int64, line string, message string) *FormatError {
	var sample string
	if len(line) > 35 {
		sample = line[:35]

	} else {
		sample = line
	}
	return &FormatError{LineNumber: lineNumber, RecordPrefix: sample, Message: message}
}

// Request represents a single parsed access log line
type Request struct {
	Host string
	Time time.Time

	// Request is the raw HTTP request line without quotes
	// (e.g. `GET /history/apollo/ HTTP/1.0`)
	Request string
	Status  int

	// Bytes is the size of the response body (`-` in the log is imported as 0)
	Bytes int64
}

// SplitRequest extracts HTTP method and resource from the request line.
// In case the request line does not contain at least two whitespace
// separated items, ok is false.
func (r *Request) SplitRequest() (method, resource string, ok bool) {
	items := strings.Fields(r.Request)
	if len(items) < 2 {
		return "", "", false
	}
	return items[0], items[1], true
}

// IsBadRequest tells whether the server refused the request
// as malformed (status 400)
func (r *Request) IsBadRequest() bool {
	return r.Status == LoggedStatusBadRequest
}

func (r *Request) FormatTime() string {
	return r.Time.Format(DatetimeLayout)
}

// parseFixedInt parses a short unsigned decimal number without
// any allocations
func parseFixedInt(s string) (int, bool) {
	if len(s) == 0 {
		return 0, false
	}
	ans := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		ans = ans*10 + int(c-'0')
	}
	return ans, true
}

// LineParser parses lines of the "common log format" style access log, e.g.:
//
//	199.72.81.55 - - [01/Jul/1995:00:00:01 -0400] "GET /history/apollo/ HTTP/1.0" 200 6245
//
// The request may be enclosed either in straight or in curly quotes.
// The parser caches time zones so all the times with the same offset share
// the same *time.Location (which makes them comparable via ==).
type LineParser struct {
	zones map[string]*time.Location
}

func (lp *LineParser) zone(offset string) (*time.Location, bool) {
	if loc, ok := lp.zones[offset]; ok {
		return loc, true
	}
	if offset[0] != '+' && offset[0] != '-' {
		return nil, false
	}
	hh, ok := parseFixedInt(offset[1:3])
	if !ok {
		return nil, false
	}
	mm, ok := parseFixedInt(offset[3:5])
	if !ok || mm > 59 {
		return nil, false
	}
	secs := hh*3600 + mm*60
	if offset[0] == '-' {
		secs = -secs
	}
	loc := time.FixedZone(offset, secs)
	lp.zones[offset] = loc
	return loc, true
}

// parseTimestamp parses timestamp in format `02/Jan/2006:15:04:05`
// using fixed positions of individual items. It is considerably faster
// than time.Parse.
func (lp *LineParser) parseTimestamp(value string, offset string) (time.Time, error) {
	if len(value) != datetimeLen || value[2] != '/' || value[6] != '/' ||
		value[11] != ':' || value[14] != ':' || value[17] != ':' {
		return time.Time{}, fmt.Errorf("invalid datetime format %s", value)
	}
	day, ok1 := parseFixedInt(value[0:2])
	month, ok2 := months[value[3:6]]
	year, ok3 := parseFixedInt(value[7:11])
	hour, ok4 := parseFixedInt(value[12:14])
	minute, ok5 := parseFixedInt(value[15:17])
	sec, ok6 := parseFixedInt(value[18:20])
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		return time.Time{}, fmt.Errorf("invalid datetime %s", value)
	}
	if day < 1 || hour > 23 || minute > 59 || sec > 59 {
		return time.Time{}, fmt.Errorf("datetime out of range %s", value)
	}
	loc, ok := lp.zone(offset)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid time zone offset %s", offset)
	}
	ans := time.Date(year, month, day, hour, minute, sec, 0, loc)
	// time.Date normalizes e.g. 31/Feb to 03/Mar
	if ans.Day() != day || ans.Month() != month {
		return time.Time{}, fmt.Errorf("datetime out of range %s", value)
	}
	return ans, nil
}

func trimOpenQuote(s string) (string, bool) {
	if strings.HasPrefix(s, "\"") {
		return s[1:], true
	}
	if strings.HasPrefix(s, "“") {
		return s[len("“"):], true
	}
	return s, false
}

func trimCloseQuote(s string) (string, bool) {
	if strings.HasSuffix(s, "\"") {
		return s[:len(s)-1], true
	}
	if strings.HasSuffix(s, "”") {
		return s[:len(s)-len("”")], true
	}
	return s, false
}

// ParseLine parses a single access log line. Any deviation from
// the expected format produces *FormatError.
func (lp *LineParser) ParseLine(s string, lineNum int64) (*Request, error) {
	line := strings.TrimRight(s, "\r\n")
	sepIdx := strings.Index(line, hostSeparator)
	if sepIdx <= 0 {
		return nil, NewFormatError(lineNum, line, "missing host")
	}
	ans := &Request{Host: line[:sepIdx]}

	rest := line[sepIdx+len(hostSeparator):]
	// datetime, space, zone, closing bracket, space
	if len(rest) < datetimeLen+zoneLen+3 || rest[datetimeLen] != ' ' ||
		rest[datetimeLen+zoneLen+1] != ']' || rest[datetimeLen+zoneLen+2] != ' ' {
		return nil, NewFormatError(lineNum, line, "invalid datetime block")
	}
	var err error
	ans.Time, err = lp.parseTimestamp(rest[:datetimeLen], rest[datetimeLen+1:datetimeLen+1+zoneLen])
	if err != nil {
		return nil, NewFormatError(lineNum, line, err.Error())
	}
	rest = rest[datetimeLen+zoneLen+3:]

	bytesIdx := strings.LastIndexByte(rest, ' ')
	if bytesIdx < 0 {
		return nil, NewFormatError(lineNum, line, "missing response size")
	}
	rawBytes := rest[bytesIdx+1:]
	rest = rest[:bytesIdx]
	statusIdx := strings.LastIndexByte(rest, ' ')
	if statusIdx < 0 {
		return nil, NewFormatError(lineNum, line, "missing status code")
	}
	rawStatus := rest[statusIdx+1:]
	rest = rest[:statusIdx]

	rest, ok := trimOpenQuote(rest)
	if !ok {
		return nil, NewFormatError(lineNum, line, "missing opening quote of the request")
	}
	rest, ok = trimCloseQuote(rest)
	if !ok {
		return nil, NewFormatError(lineNum, line, "missing closing quote of the request")
	}
	if rest == "" {
		return nil, NewFormatError(lineNum, line, "empty request")
	}
	ans.Request = rest

	ans.Status, err = strconv.Atoi(rawStatus)
	if err != nil {
		return nil, NewFormatError(lineNum, line, fmt.Sprintf("invalid status code %s", rawStatus))
	}
	if rawBytes == "-" {
		ans.Bytes = 0

	} else {
		ans.Bytes, err = strconv.ParseInt(rawBytes, 10, 64)
		if err != nil || ans.Bytes < 0 {
			return nil, NewFormatError(lineNum, line, fmt.Sprintf("invalid response size %s", rawBytes))
		}
	}
	return ans, nil
}

func NewLineParser() *LineParser {
	return &LineParser{zones: make(map[string]*time.Location)}
}
