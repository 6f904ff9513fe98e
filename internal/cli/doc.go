// Copyright 2025 Tom Barlow
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
Package cli provides the root command of the circuitview CLI.

The command tree is:

	circuitview
	├── trace     Trace a call log into an execution path
	├── watch     Re-trace a call log whenever it changes
	├── kinds     Show how operation names are classified
	├── version   Show version
	└── help      Show help, optionally as JSON

# Global Flags

	--verbose, -v    Log at debug level
	--quiet, -q      Log errors only
	--json           JSON output for help, kinds, version and errors
	--config         Path to config file

# Exit Codes

  - 0: success
  - 1: the trace aborted
  - 2: invalid call log, flags or configuration
  - 3: the program is not in the call log
*/
package cli
