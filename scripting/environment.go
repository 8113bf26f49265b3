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

package scripting

import (
	"alogstat/common"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// prepareScript loads a script from a local path or a http(s) URL
// and runs it
func prepareScript(env *lua.LState, srcPath string) error {
	src, err := common.LoadSupportedResource(srcPath)
	if err != nil {
		return fmt.Errorf("failed to load customization script %s: %w", srcPath, err)
	}
	if err := env.DoString(string(src)); err != nil {
		return fmt.Errorf("failed to process customization script %s: %w", srcPath, err)
	}
	return nil
}

func newEnvironment(conf LoginConf) (*lua.LState, error) {
	L := lua.NewState()
	registerLoginConf(L, conf)
	if err := LoadEmbeddedScript(L, helpersScript); err != nil {
		L.Close()
		return nil, err
	}
	return L, nil
}

// CreateEnvironment creates a Lua state with registered login
// configuration and helper functions and runs the script found
// at conf.ScriptPath (a local path or a http(s) URL).
func CreateEnvironment(conf LoginConf) (*lua.LState, error) {
	L, err := newEnvironment(conf)
	if err != nil {
		return nil, err
	}
	if err := prepareScript(L, conf.ScriptPath); err != nil {
		L.Close()
		return nil, err
	}
	return L, nil
}

// CreateEnvironmentFromString is like CreateEnvironment but the
// script is passed directly as a source code.
func CreateEnvironmentFromString(conf LoginConf, sourceCode string) (*lua.LState, error) {
	L, err := newEnvironment(conf)
	if err != nil {
		return nil, err
	}
	if err := L.DoString(sourceCode); err != nil {
		L.Close()
		return nil, fmt.Errorf("failed to process customization source code: %w", err)
	}
	return L, nil
}
