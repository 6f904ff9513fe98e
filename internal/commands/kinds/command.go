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

// Package kinds implements the kinds command.
package kinds

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/circuitview/internal/commands/shared"
	"github.com/tombee/circuitview/pkg/callable"
)

// KindInfo is one kind and its name patterns.
type KindInfo struct {
	Kind     string   `json:"kind"`
	Patterns []string `json:"patterns"`
}

// Classification is the kind an operation name resolves to.
type Classification struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Transparent bool   `json:"transparent,omitempty"`
}

// KindsResponse is the JSON output of the kinds command.
type KindsResponse struct {
	shared.JSONResponse
	Kinds           []KindInfo       `json:"kinds"`
	Classifications []Classification `json:"classifications,omitempty"`
}

// NewCommand creates the kinds command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kinds [operation...]",
		Short: "Show how operation names are classified",
		Annotations: map[string]string{
			"group": "configuration",
		},
		Long: `Kinds lists the name patterns that select special handling while tracing:
transparent containers, CNOT-like and CCNOT-like gates, measurements and
resets. Patterns come from the kinds section of the config file.

Given operation names, kinds prints the kind each one is traced as.`,
		Example: `  circuitview kinds
  circuitview kinds Microsoft.Quantum.Intrinsic.M ApplyToEachCA Rx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := shared.LoadConfig()
			if err != nil {
				return err
			}
			classifier, err := cfg.Classifier()
			if err != nil {
				return shared.Classify("invalid kinds", err)
			}

			resp := KindsResponse{
				JSONResponse:    shared.NewResponse("kinds"),
				Kinds:           describe(cfg.Kinds),
				Classifications: classify(classifier, args),
			}

			if shared.GetJSON() {
				return shared.EmitJSON(cmd.OutOrStdout(), resp)
			}
			return writeText(cmd.OutOrStdout(), resp)
		},
	}

	return cmd
}

func describe(set callable.KindSet) []KindInfo {
	groups := set.Groups()
	out := make([]KindInfo, 0, len(groups))
	for _, g := range groups {
		patterns := g.Patterns
		if patterns == nil {
			patterns = []string{}
		}
		out = append(out, KindInfo{Kind: g.Kind.String(), Patterns: patterns})
	}
	return out
}

func classify(c *callable.Classifier, names []string) []Classification {
	var out []Classification
	for _, name := range names {
		op := callable.Op(name)
		out = append(out, Classification{
			Name:        name,
			Kind:        c.Classify(op).String(),
			Transparent: c.IsTransparent(op),
		})
	}
	return out
}

func writeText(w io.Writer, resp KindsResponse) error {
	if len(resp.Classifications) > 0 {
		width := 0
		for _, c := range resp.Classifications {
			width = max(width, len(c.Name))
		}
		for _, c := range resp.Classifications {
			if _, err := fmt.Fprintf(w, "%-*s  %s\n", width, c.Name, c.Kind); err != nil {
				return err
			}
		}
		return nil
	}

	for _, k := range resp.Kinds {
		patterns := shared.RenderLabel("(none)")
		if len(k.Patterns) > 0 {
			patterns = strings.Join(k.Patterns, ", ")
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", shared.Header.Render(k.Kind+":"), patterns); err != nil {
			return err
		}
	}
	return nil
}
