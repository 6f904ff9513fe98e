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

// Package trace implements the trace command: replay a call log through the
// execution path tracer and print the resulting circuit.
package trace

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/tombee/circuitview/internal/commands/shared"
)

// NewCommand creates the trace command
func NewCommand() *cobra.Command {
	var opts Options

	cmd := &cobra.Command{
		Use:   "trace <call-log|glob> [program]",
		Short: "Trace a call log into an execution path",
		Annotations: map[string]string{
			"group": "tracing",
		},
		Long: `Trace replays a recorded call log and prints the circuit it describes.

Only calls at the render depth become operations: depth 1 draws the
operations called directly by the program, depth 2 the operations those
call, and so on. Container operations such as ApplyToEach are looked through
and do not count towards the depth.

The program argument may be omitted when the call log holds one program.
A glob (e.g. "logs/**/*.yaml") traces every matching file in order.

Output formats:
  json     the execution path (default)
  message  a render_execution_path message carrying the path
  html     the placeholder element the visualizer renders into
  text     a one-line-per-operation listing

Exit codes:
  0  success
  1  the trace aborted
  2  invalid call log, flags or configuration
  3  the program is not in the call log`,
		Example: `  circuitview trace bell.yaml
  circuitview trace teleport.yaml Teleport --depth 2 --pretty
  circuitview trace bell.yaml --query '[.operations[].gate]'
  circuitview trace bell.yaml --metrics --otel console`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				opts.Program = args[1]
			}
			opts.DepthSet = cmd.Flags().Changed("depth")
			opts.PrettySet = cmd.Flags().Changed("pretty")

			err := Run(cmd.Context(), args[0], opts, cmd)
			if err != nil && shared.GetJSON() {
				_ = shared.EmitJSONError(cmd.ErrOrStderr(), "trace", err)
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&opts.Depth, "depth", "d", 1, "Render depth (1 draws the calls made by the program)")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", false, "Indent JSON output (default: on for terminals)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: json, message, html, text")
	cmd.Flags().StringVar(&opts.Query, "query", "", "Filter the exported JSON with a jq expression")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "Print Prometheus metrics to stderr after tracing")
	cmd.Flags().StringVar(&opts.Exporter, "otel", "", "Export call spans: console, otlp, otlp-http")

	return cmd
}

// Run traces every call log matching pattern. All files are traced even if
// one fails; the first error is returned.
func Run(ctx context.Context, pattern string, opts Options, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}

	sources, err := Sources(pattern)
	if err != nil {
		return err
	}

	runner, err := NewRunner(ctx, cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	var errs []error
	for _, source := range sources {
		if err := runner.TraceFile(ctx, source); err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
		}
	}
	if err := runner.Close(ctx); err != nil {
		errs = append(errs, shared.NewTraceError("failed to flush telemetry", err))
	}

	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	// The exit code follows the first failure.
	return &shared.ExitError{
		Code:    shared.ExitCode(errs[0]),
		Message: "some call logs failed",
		Cause:   errors.Join(errs...),
	}
}
