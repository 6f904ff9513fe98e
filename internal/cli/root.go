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

package cli

import (
	"github.com/spf13/cobra"

	"github.com/tombee/circuitview/internal/commands/kinds"
	"github.com/tombee/circuitview/internal/commands/shared"
	"github.com/tombee/circuitview/internal/commands/trace"
	versioncmd "github.com/tombee/circuitview/internal/commands/version"
	"github.com/tombee/circuitview/internal/commands/watch"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "circuitview",
		Short: "circuitview - execution path tracer for quantum programs",
		Long: `circuitview turns the call notifications of a quantum program run into
a circuit: a flat list of gates on qubit and classical registers, exported
as JSON for a circuit visualizer.

Runs are replayed from call logs. Run 'circuitview trace --help' to start.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	verbose, quiet, json, config := shared.RegisterFlagPointers()

	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Log at debug level")
	cmd.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "Log errors only")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: ~/.config/circuitview/config.yaml)")

	cmd.AddCommand(trace.NewCommand())
	cmd.AddCommand(watch.NewCommand())
	cmd.AddCommand(kinds.NewCommand())
	cmd.AddCommand(versioncmd.NewVersionCommand())
	cmd.SetHelpCommand(NewHelpCommand(cmd))

	return cmd
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError prints err and exits with its exit code
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
