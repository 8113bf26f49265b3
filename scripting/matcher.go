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
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

const (
	DefaultLoginMethod   = "POST"
	DefaultLoginPath     = "/login"
	DefaultSuccessStatus = 200

	loginAttemptFn = "is_login_attempt"
	loginSuccessFn = "is_login_success"
)

// LoginConf specifies how login attempts are recognized
// among logged requests.
type LoginConf struct {
	Method        string `json:"method" yaml:"method"`
	Path          string `json:"path" yaml:"path"`
	SuccessStatus int    `json:"successStatus" yaml:"successStatus"`

	// ScriptPath is an optional path to a Lua script defining function
	// `is_login_attempt(method, resource)` and optionally also
	// `is_login_success(status)`.
	ScriptPath string `json:"scriptPath" yaml:"scriptPath"`
}

func (conf *LoginConf) ApplyDefaults() {
	if conf.Method == "" {
		conf.Method = DefaultLoginMethod
	}
	if conf.Path == "" {
		conf.Path = DefaultLoginPath
	}
	if conf.SuccessStatus == 0 {
		conf.SuccessStatus = DefaultSuccessStatus
	}
}

// LoginMatcher recognizes login attempts and their results
type LoginMatcher interface {
	IsLoginAttempt(method, resource string) (bool, error)
	IsLoginSuccess(status int) (bool, error)
	Close()
}

// StaticLoginMatcher recognizes login attempts by comparing
// HTTP method and requested resource with configured values.
type StaticLoginMatcher struct {
	conf LoginConf
}

func (m *StaticLoginMatcher) IsLoginAttempt(method, resource string) (bool, error) {
	return method == m.conf.Method && resource == m.conf.Path, nil
}

func (m *StaticLoginMatcher) IsLoginSuccess(status int) (bool, error) {
	return status == m.conf.SuccessStatus, nil
}

func (m *StaticLoginMatcher) Close() {}

// LuaLoginMatcher delegates login recognition to a Lua script.
// In case the script does not define `is_login_success`, the
// static rule is applied.
type LuaLoginMatcher struct {
	L      *lua.LState
	static *StaticLoginMatcher
}

func (m *LuaLoginMatcher) callBool(fnName string, args ...lua.LValue) (bool, error) {
	fnObj := m.L.GetGlobal(fnName)
	err := m.L.CallByParam(
		lua.P{
			Fn:      fnObj,
			NRet:    1,
			Protect: true,
		},
		args...,
	)
	if err != nil {
		return false, fmt.Errorf("failed to execute %s() function using a Lua script: %w", fnName, err)
	}
	ret := m.L.Get(-1)
	m.L.Pop(1)
	ans, err := LuaValueToBool(ret)
	if err != nil {
		return false, fmt.Errorf("failed to execute %s() function using a Lua script: %w", fnName, err)
	}
	return ans, nil
}

func (m *LuaLoginMatcher) IsLoginAttempt(method, resource string) (bool, error) {
	return m.callBool(loginAttemptFn, lua.LString(method), lua.LString(resource))
}

func (m *LuaLoginMatcher) IsLoginSuccess(status int) (bool, error) {
	if m.L.GetGlobal(loginSuccessFn) == lua.LNil {
		return m.static.IsLoginSuccess(status)
	}
	return m.callBool(loginSuccessFn, lua.LNumber(status))
}

func (m *LuaLoginMatcher) Close() {
	m.L.Close()
}

func newLuaLoginMatcher(env *lua.LState, conf LoginConf) (*LuaLoginMatcher, error) {
	if env.GetGlobal(loginAttemptFn) == lua.LNil {
		env.Close()
		return nil, fmt.Errorf("invalid login matcher script: missing `%s` function", loginAttemptFn)
	}
	return &LuaLoginMatcher{L: env, static: &StaticLoginMatcher{conf: conf}}, nil
}

// NewLuaLoginMatcherFromString creates a Lua based matcher
// from a source code
func NewLuaLoginMatcherFromString(conf LoginConf, sourceCode string) (*LuaLoginMatcher, error) {
	env, err := CreateEnvironmentFromString(conf, sourceCode)
	if err != nil {
		return nil, err
	}
	return newLuaLoginMatcher(env, conf)
}

// NewLoginMatcher creates a proper matcher based on the configuration
func NewLoginMatcher(conf LoginConf) (LoginMatcher, error) {
	if conf.ScriptPath == "" {
		return &StaticLoginMatcher{conf: conf}, nil
	}
	env, err := CreateEnvironment(conf)
	if err != nil {
		return nil, err
	}
	return newLuaLoginMatcher(env, conf)
}
