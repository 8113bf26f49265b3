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

package main

import (
	"alogstat/config"
	"fmt"
)

var helpTexts = map[string]string{
	config.ActionAnalyze: `Analyze an access log file described by a JSON or YAML configuration
(files with the .yaml/.yml suffix are read as YAML). The configuration
may be also loaded via http(s):// or file:// URI.

{
    "srcPath": "/var/log/nginx/access.log",
    "reports": {
        "hosts": "/tmp/hosts.txt",
        "hours": "/tmp/hours.txt",
        "resources": "/tmp/resources.txt",
        "blocked": "/tmp/blocked.txt",
        "sessions": "/tmp/sessions.txt",
        "summary": "/tmp/summary.json"
    },
    "analysis": {
        "topN": 10,
        "hourWindowSecs": 3600,
        "loginGuard": {"failLimit": 3, "failTimeSecs": 20, "blockTimeSecs": 300},
        "sessions": {"inactiveLimitSecs": 1800, "clearInterval": 100000},
        "login": {"method": "POST", "path": "/login", "scriptPath": ""}
    },
    "geoIpDbPath": "/path/to/GeoLite2-City.mmdb",
    "progressInterval": 1000000,
    "logPath": "",
    "logLevel": "info"
}

All the reports are written only if the whole file is processed
successfully. A malformed line stops the processing.
`,
	config.ActionRun: `Analyze an access log file using paths given as positional arguments:

    alogstat run access.log hosts.txt hours.txt resources.txt blocked.txt sessions.txt

Analysis parameters can be loaded from a configuration file specified
via the -conf option (any paths in the file are overridden).
`,
	"login": `Login attempts are recognized by an HTTP method and a resource path
("POST" and "/login" by default). A Lua script (login.scriptPath, either
a local path or a http(s):// URL) can define a custom rule:

    function is_login_attempt(method, resource)
        return method == "POST" and string.find(resource, "^/login") ~= nil
    end

    -- optional; by default, the status from conf.successStatus is tested
    function is_login_success(status)
        return status == 200 or status == 302
    end

The configured login values are available to the script via the global
"conf" table (conf.method, conf.path, conf.successStatus).
`,
}

func help(topic string) {
	if topic == "" {
		fmt.Printf("Missing topic to help with. Select one of the:\n\t%s, %s, login\n",
			config.ActionAnalyze, config.ActionRun)
		return
	}
	fmt.Printf("\n[%s]\n\n", topic)
	text, ok := helpTexts[topic]
	if !ok {
		fmt.Println("- no information available -")

	} else {
		fmt.Println(text)
	}
	fmt.Println()
}
