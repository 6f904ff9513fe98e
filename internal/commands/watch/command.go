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

// Package watch implements the watch command: re-trace a call log every
// time it changes.
package watch

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/circuitview/internal/commands/shared"
	"github.com/tombee/circuitview/internal/commands/trace"
	"github.com/tombee/circuitview/internal/log"
	filewatch "github.com/tombee/circuitview/internal/watch"
)

// NewCommand creates the watch command
func NewCommand() *cobra.Command {
	var (
		opts     trace.Options
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <call-log> [program]",
		Short: "Re-trace a call log whenever it changes",
		Annotations: map[string]string{
			"group": "tracing",
		},
		Long: `Watch traces a call log, then traces it again every time the file is
saved, printing one execution path per run. A run that fails is reported
and the watch continues. Stop with Ctrl-C.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				opts.Program = args[1]
			}
			opts.DepthSet = cmd.Flags().Changed("depth")
			opts.PrettySet = cmd.Flags().Changed("pretty")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, args[0], opts, debounce, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Depth, "depth", "d", 1, "Render depth (1 draws the calls made by the program)")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", false, "Indent JSON output (default: on for terminals)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: json, message, html, text")
	cmd.Flags().StringVar(&opts.Query, "query", "", "Filter the exported JSON with a jq expression")
	cmd.Flags().DurationVar(&debounce, "debounce", filewatch.DefaultDebounce, "Quiet period before re-tracing")

	return cmd
}

// Run watches source until ctx is done.
func Run(ctx context.Context, source string, opts trace.Options, debounce time.Duration, cmd *cobra.Command) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}

	runner, err := trace.NewRunner(ctx, cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer runner.Close(context.Background())

	w, err := filewatch.NewWatcher(source, debounce)
	if err != nil {
		return shared.NewInvalidCallLogError("cannot watch call log", err)
	}
	w.WithLogger(log.WithComponent(log.New(cfg.LoggerConfig()), "watch"))

	if !shared.GetQuiet() {
		cmd.PrintErrln(shared.RenderLabel("watching " + w.Path()))
	}

	return w.Run(ctx, func(ctx context.Context, path string) error {
		err := runner.TraceFile(ctx, path)
		if err != nil {
			shared.WriteError(cmd.ErrOrStderr(), err)
		}
		return err
	})
}
