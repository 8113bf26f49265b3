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

package common

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	httpLoadTimeout = 30 * time.Second
)

func loadHTTPResource(url string) ([]byte, error) {
	client := http.Client{Timeout: httpLoadTimeout}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("resource loading error: %s (url: %s)", resp.Status, url)
	}
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LocalResourcePath returns a filesystem path of a local resource
// (a plain path or a file:// URI). For http(s) resources, false
// is returned.
func LocalResourcePath(uri string) (string, bool) {
	switch {
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return "", false
	case strings.HasPrefix(uri, "file:/localhost/"):
		return uri[len("file:/localhost/")-1:], true
	case strings.HasPrefix(uri, "file:///"):
		return uri[len("file:///")-1:], true
	default: // we assume a common fs path
		return uri, true
	}
}

// LoadSupportedResource loads raw byte data of a configuration
// or a script. Allowed formats are:
// 1) http://..., https://...
// 2) file:/localhost/..., file:///...
// 3) /abs/fs/path, rel/fs/path
func LoadSupportedResource(uri string) ([]byte, error) {
	if uri == "" {
		return nil, fmt.Errorf("no resource (http, file) specified")
	}
	var rawData []byte
	var err error
	if path, ok := LocalResourcePath(uri); ok {
		rawData, err = os.ReadFile(path)

	} else {
		rawData, err = loadHTTPResource(uri)
	}
	if err != nil {
		return nil, err
	}
	return rawData, nil
}
