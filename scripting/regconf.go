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
	lua "github.com/yuin/gopher-lua"
)

const (
	loginConfName = "conf"
)

/*
here we push login detection configuration so Lua scripts can read it
*/

func registerLoginConf(env *lua.LState, conf LoginConf) {
	val := new(lua.LTable)
	val.RawSetString("method", lua.LString(conf.Method))
	val.RawSetString("path", lua.LString(conf.Path))
	val.RawSetString("successStatus", lua.LNumber(conf.SuccessStatus))
	env.SetGlobal(loginConfName, val)
}
