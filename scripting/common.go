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
	"errors"
	"fmt"
	"reflect"

	lua "github.com/yuin/gopher-lua"
)

var (
	ErrFailedTypeAssertion = errors.New("failed type assertion")
)

// LuaValueToBool converts a value returned from a script into
// a Go boolean. Only Lua booleans are accepted.
func LuaValueToBool(val lua.LValue) (bool, error) {
	tv, ok := val.(lua.LBool)
	if !ok {
		return false, fmt.Errorf("%w: expected boolean, got %s", ErrFailedTypeAssertion, reflect.TypeOf(val))
	}
	return tv == lua.LTrue, nil
}
