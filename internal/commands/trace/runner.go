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

package trace

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/tombee/circuitview/internal/commands/shared"
	"github.com/tombee/circuitview/internal/config"
	"github.com/tombee/circuitview/internal/jq"
	"github.com/tombee/circuitview/internal/log"
	"github.com/tombee/circuitview/internal/replay"
	"github.com/tombee/circuitview/internal/telemetry"
	"github.com/tombee/circuitview/internal/view"
	"github.com/tombee/circuitview/pkg/callable"
	"github.com/tombee/circuitview/pkg/circuit"
	"github.com/tombee/circuitview/pkg/pathtracer"
)

// Options are the command line overrides of a trace. Unset fields fall back
// to the configuration.
type Options struct {
	// Program names the program to trace. Empty selects the only program.
	Program string

	// Depth overrides render_depth when DepthSet is true.
	Depth    int
	DepthSet bool

	// Pretty overrides output.pretty when PrettySet is true.
	Pretty    bool
	PrettySet bool

	// Format overrides output.format when not empty.
	Format string

	// Query filters the exported JSON through a jq expression.
	Query string

	// Metrics dumps Prometheus metrics to the error stream on Close.
	Metrics bool

	// Exporter overrides telemetry.exporter when not empty.
	Exporter string
}

// Runner traces call logs and writes their execution paths. One Runner
// serves every file of a glob and every re-trace of a watch.
type Runner struct {
	opts       Options
	depth      int
	format     string
	pretty     bool
	classifier *callable.Classifier
	logger     *slog.Logger
	provider   *telemetry.Provider
	query      *jq.Query
	session    *view.Session
	stdout     io.Writer
	stderr     io.Writer
}

// NewRunner resolves cfg and opts into a runner writing paths to stdout and
// diagnostics to stderr.
func NewRunner(ctx context.Context, cfg *config.Config, opts Options, stdout, stderr io.Writer) (*Runner, error) {
	if opts.DepthSet {
		if opts.Depth < 0 {
			return nil, shared.NewInvalidCallLogError("invalid flags", fmt.Errorf("--depth must not be negative, got %d", opts.Depth))
		}
		cfg.RenderDepth = opts.Depth
	}
	if opts.Format != "" {
		cfg.Output.Format = strings.ToLower(opts.Format)
	}
	if opts.Exporter != "" {
		cfg.Telemetry.Exporter = strings.ToLower(opts.Exporter)
	}
	if err := cfg.Validate(); err != nil {
		return nil, shared.Classify("invalid configuration", err)
	}

	classifier, err := cfg.Classifier()
	if err != nil {
		return nil, shared.Classify("invalid configuration", err)
	}

	logCfg := cfg.LoggerConfig()
	logCfg.Output = stderr
	switch {
	case shared.GetQuiet():
		logCfg.Level = "error"
	case shared.GetVerbose() && log.ParseLevel(logCfg.Level) > slog.LevelDebug:
		logCfg.Level = "debug"
	}

	r := &Runner{
		opts:       opts,
		depth:      cfg.RenderDepth,
		format:     cfg.Output.Format,
		classifier: classifier,
		logger:     log.WithComponent(log.New(logCfg), "trace"),
		session:    view.NewSession(),
		stdout:     stdout,
		stderr:     stderr,
	}

	switch {
	case opts.PrettySet:
		r.pretty = opts.Pretty
	case cfg.Output.Pretty != nil:
		r.pretty = *cfg.Output.Pretty
	default:
		r.pretty = shared.IsTerminal(stdout)
	}

	if opts.Query != "" {
		q, err := jq.Compile(opts.Query)
		if err != nil {
			return nil, shared.NewInvalidCallLogError("invalid --query", err)
		}
		r.query = q
	}

	if opts.Metrics || cfg.Telemetry.Exporter != config.ExporterNone {
		version, _, _ := shared.GetVersion()
		provider, err := telemetry.NewProvider(ctx, telemetry.Config{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: version,
			Exporter: telemetry.ExporterConfig{
				Type:     cfg.Telemetry.Exporter,
				Endpoint: cfg.Telemetry.Endpoint,
				Headers:  cfg.Telemetry.Headers,
				Insecure: cfg.Telemetry.Insecure,
				Timeout:  time.Duration(cfg.Telemetry.TimeoutSeconds) * time.Second,
				Writer:   stderr,
			},
		})
		if err != nil {
			return nil, shared.Classify("failed to start telemetry", err)
		}
		r.provider = provider
	}

	return r, nil
}

// Depth returns the effective render depth.
func (r *Runner) Depth() int {
	return r.depth
}

// Format returns the effective output format.
func (r *Runner) Format() string {
	return r.format
}

// Sources expands pattern into call log paths. A pattern without glob
// meta characters is returned as is, so a missing file is reported by the
// load that follows.
func Sources(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[{") {
		return []string{pattern}, nil
	}
	paths, err := replay.Glob(pattern)
	if err != nil {
		return nil, shared.NewInvalidCallLogError("no call logs", err)
	}
	return paths, nil
}

// TraceFile traces the selected program of the call log at source and
// writes its execution path.
func (r *Runner) TraceFile(ctx context.Context, source string) error {
	doc, err := replay.Load(source)
	if err != nil {
		return shared.NewInvalidCallLogError("invalid call log", err)
	}

	root, err := doc.Resolve(r.opts.Program)
	if err != nil {
		return shared.Classify(source, err)
	}
	name := r.opts.Program
	if name == "" {
		name = doc.Names()[0]
	}

	path, err := r.Trace(ctx, name, source, root)
	if err != nil {
		return shared.Classify("trace failed", err)
	}
	return r.Write(ctx, path)
}

// Trace replays root through a fresh tracer and returns the path it built.
// On error the partial path is returned with the error.
func (r *Runner) Trace(ctx context.Context, name, source string, root *replay.Call) (circuit.ExecutionPath, error) {
	traceID := replay.NewTraceID()
	ctx = replay.ContextWithTraceID(ctx, traceID)

	logger := log.WithTraceContext(r.logger, traceID.String(), name)
	if source != "" {
		logger = log.WithSource(logger, source)
	}

	tracer := pathtracer.New(r.depth).WithClassifier(r.classifier).WithLogger(logger)
	if r.provider != nil {
		tracer.WithElisionHook(r.provider.Metrics().ElisionHook(ctx))
	}

	var (
		listeners replay.Multi
		spans     *telemetry.SpanListener
	)
	if r.provider != nil {
		spans = telemetry.NewSpanListener(ctx, r.provider.Tracer(), r.classifier).WithTraceID(traceID.String())
		listeners = append(listeners, spans, r.provider.Metrics().Listener(ctx, r.classifier))
		r.provider.Metrics().RecordRunStart(ctx, traceID.String(), name)
	}
	listeners = append(listeners, tracer)

	var path circuit.ExecutionPath
	start := time.Now()
	req := &log.TraceRequest{Program: name, Depth: r.depth, Source: source}
	err := log.NewTraceMiddleware(logger).Handler(req, func(sum *log.TraceSummary) error {
		exec := replay.NewExecutor(listeners).WithLogger(logger)
		runErr := exec.Run(ctx, root)

		path = tracer.GetExecutionPath()
		stats := exec.Stats()
		sum.Operations = len(path.Operations)
		sum.Qubits = len(path.Qubits)
		sum.Calls = stats.Calls
		sum.MaxDepth = stats.MaxDepth
		return runErr
	})

	if r.provider != nil {
		status := telemetry.StatusCompleted
		if err != nil {
			status = telemetry.StatusFailed
			logger.Debug("closing open spans", slog.Int("open", spans.Open()))
			spans.Abort(err)
		}
		r.provider.Metrics().RecordRunComplete(ctx, traceID.String(), name, status,
			len(path.Operations), len(path.Qubits), time.Since(start))

		// Export each run as it finishes; a watch may run for a long time
		// before Close.
		if flushErr := r.provider.ForceFlush(ctx); flushErr != nil {
			logger.Warn("failed to flush telemetry", log.Error(flushErr))
		}
	}

	return path, err
}

// Write renders path in the configured format, or the results of the
// query when one is set.
func (r *Runner) Write(ctx context.Context, path circuit.ExecutionPath) error {
	if r.query != nil {
		results, err := r.query.Run(ctx, path)
		if err != nil {
			return shared.NewTraceError("query failed", err)
		}
		return jq.WriteResults(r.stdout, results, r.pretty)
	}

	switch r.format {
	case config.FormatMessage:
		content, err := view.NewContent(path, r.session.NextID())
		if err != nil {
			return err
		}
		return view.NewMessage(content).Write(r.stdout)

	case config.FormatHTML:
		_, err := fmt.Fprintln(r.stdout, view.EncodeHTML(view.Displayable{ID: r.session.NextID()}))
		return err

	case config.FormatText:
		styles := view.PlainStyles()
		if shared.IsTerminal(r.stdout) {
			styles = view.DefaultStyles()
		}
		return view.WriteText(r.stdout, path, styles)

	default:
		return path.WriteJSON(r.stdout, r.pretty)
	}
}

// Close flushes telemetry and dumps metrics when requested.
func (r *Runner) Close(ctx context.Context) error {
	if r.provider == nil {
		return nil
	}
	var err error
	if r.opts.Metrics {
		err = r.provider.WriteMetrics(r.stderr)
	}
	if shutdownErr := r.provider.Shutdown(ctx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}
