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
	"embed"
	"fmt"
	"io/fs"

	lua "github.com/yuin/gopher-lua"
)

const (
	helpersScript = "lua/helpers.lua"
)

//go:embed lua/*.lua
var luaScripts embed.FS

// LoadEmbeddedScript runs a script bundled with the application
func LoadEmbeddedScript(L *lua.LState, scriptPath string) error {
	content, err := fs.ReadFile(luaScripts, scriptPath)
	if err != nil {
		return fmt.Errorf("failed to load embedded script %s: %w", scriptPath, err)
	}
	if err := L.DoString(string(content)); err != nil {
		return fmt.Errorf("failed to execute embedded script %s: %w", scriptPath, err)
	}
	return nil
}
