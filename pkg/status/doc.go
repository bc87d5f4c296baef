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
Package status writes generated files and reports what changed.

	  content ──▶ +-----------------+ ──▶ temp file ──▶ rename
	              |  WriteOutput    |
	  previous ─▶ | checksum + diff | ──▶ FileInfo{new|modified|unchanged}
	              +-----------------+

🎯 Purpose:
- Writes the generated collection to its output path atomically
- Only accepts .json output paths
- Skips the write when the content is unchanged
- Summarizes line changes against the previous file

🤝 Interfaces:
- FileFormatter: renders outcomes for structured logs
- FormatFileLine: renders outcomes for the console
*/
package status
