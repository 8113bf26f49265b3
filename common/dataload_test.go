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
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocalResource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"topN": 5}`), 0o644))

	data, err := LoadSupportedResource(path)
	assert.NoError(t, err)
	assert.Equal(t, `{"topN": 5}`, string(data))

	data, err = LoadSupportedResource("file://" + path)
	assert.NoError(t, err)
	assert.Equal(t, `{"topN": 5}`, string(data))

	data, err = LoadSupportedResource("file:/localhost" + path)
	assert.NoError(t, err)
	assert.Equal(t, `{"topN": 5}`, string(data))
}

func TestLoadEmptyURI(t *testing.T) {
	_, err := LoadSupportedResource("")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadSupportedResource(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadHTTPResource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/conf.yaml" {
			fmt.Fprint(w, "topN: 3\n")
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	data, err := LoadSupportedResource(srv.URL + "/conf.yaml")
	assert.NoError(t, err)
	assert.Equal(t, "topN: 3\n", string(data))

	_, err = LoadSupportedResource(srv.URL + "/missing")
	assert.Error(t, err)
}

func TestLocalResourcePath(t *testing.T) {
	path, ok := LocalResourcePath("/etc/alogstat/login.lua")
	assert.True(t, ok)
	assert.Equal(t, "/etc/alogstat/login.lua", path)

	path, ok = LocalResourcePath("file:///etc/alogstat/login.lua")
	assert.True(t, ok)
	assert.Equal(t, "/etc/alogstat/login.lua", path)

	path, ok = LocalResourcePath("file:/localhost/etc/alogstat/login.lua")
	assert.True(t, ok)
	assert.Equal(t, "/etc/alogstat/login.lua", path)

	_, ok = LocalResourcePath("https://example.com/login.lua")
	assert.False(t, ok)
}
