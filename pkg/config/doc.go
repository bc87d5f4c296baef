// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package config loads and validates the colsync run configuration.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	  +-------------+--+----------+-------------+
	  |             |             |             |
	+-+----+    +---+---+    +----+---+    +----+----+
	| YAML |    |  HCL  |    |  JSON  |    |   Env   |
	+------+    +-------+    +--------+    +---------+

🎯 Purpose:
- Parses the config file with the parser registered for its extension
- Fills the gaps from environment variables and an optional .env file
- Applies defaults and validates the result

🔄 Precedence:
1. Command line flags
2. Config file
3. Environment
4. Defaults

🔐 Secrets (POSTMAN_API_KEY, GITHUB_TOKEN) are only read from the environment.
*/
package config
