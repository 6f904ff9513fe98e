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

package replay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tombee/circuitview/pkg/callable"
	cverrors "github.com/tombee/circuitview/pkg/errors"
	"github.com/tombee/circuitview/pkg/pathtracer"
)

// Stats summarizes a replayed run.
type Stats struct {
	// Calls is the number of start notifications delivered.
	Calls int

	// MaxDepth is the deepest raw nesting reached, counting the root as 1.
	MaxDepth int
}

// Executor replays recorded calls to a listener.
type Executor struct {
	listener pathtracer.Listener
	logger   *slog.Logger
	stats    Stats
}

// NewExecutor creates an executor notifying listener.
func NewExecutor(listener pathtracer.Listener) *Executor {
	return &Executor{
		listener: listener,
		logger:   slog.Default(),
	}
}

// WithLogger sets a custom logger for the executor.
func (e *Executor) WithLogger(logger *slog.Logger) *Executor {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// Stats returns the counters of the last run.
func (e *Executor) Stats() Stats {
	return e.stats
}

// Run replays root and its calls depth first. It stops at the first listener
// error or when ctx is cancelled; no further notifications are delivered
// after that.
func (e *Executor) Run(ctx context.Context, root *Call) error {
	if root == nil {
		return fmt.Errorf("nothing to run")
	}
	e.stats = Stats{}

	e.logger.Debug("replay started",
		slog.String("trace_id", TraceIDFromContext(ctx).String()),
		slog.String("operation", root.Op.String()),
		slog.Int("calls", root.Size()))

	if err := e.run(ctx, root, 1); err != nil {
		return err
	}

	e.logger.Debug("replay finished",
		slog.Int("calls", e.stats.Calls),
		slog.Int("max_depth", e.stats.MaxDepth))
	return nil
}

func (e *Executor) run(ctx context.Context, c *Call, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.stats.Calls++
	e.stats.MaxDepth = max(e.stats.MaxDepth, depth)

	if err := e.listener.OnOperationStart(c.Op, c.Args); err != nil {
		return cverrors.Wrapf(err, "%s (line %d)", c.Op, c.Line)
	}
	for _, child := range c.Calls {
		if err := e.run(ctx, child, depth+1); err != nil {
			return err
		}
	}
	if err := e.listener.OnOperationEnd(c.Op, c.Result); err != nil {
		return cverrors.Wrapf(err, "%s (line %d)", c.Op, c.Line)
	}
	return nil
}

// Multi fans notifications out to several listeners in order. The first
// error stops delivery to the remaining listeners.
type Multi []pathtracer.Listener

var _ pathtracer.Listener = Multi(nil)

// OnOperationStart implements pathtracer.Listener.
func (m Multi) OnOperationStart(op *callable.Descriptor, args callable.Value) error {
	for _, l := range m {
		if err := l.OnOperationStart(op, args); err != nil {
			return err
		}
	}
	return nil
}

// OnOperationEnd implements pathtracer.Listener.
func (m Multi) OnOperationEnd(op *callable.Descriptor, result callable.Value) error {
	for _, l := range m {
		if err := l.OnOperationEnd(op, result); err != nil {
			return err
		}
	}
	return nil
}
