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

package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tombee/circuitview/pkg/circuit"
)

// Styles controls how the text listing is decorated.
type Styles struct {
	Header  lipgloss.Style
	Index   lipgloss.Style
	Gate    lipgloss.Style
	Measure lipgloss.Style
	Label   lipgloss.Style
}

// DefaultStyles returns the styles used on a terminal.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Index:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Gate:    lipgloss.NewStyle().Bold(true),
		Measure: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Header: plain, Index: plain, Gate: plain, Measure: plain, Label: plain}
}

// WriteText writes a one-line-per-operation listing of path:
//
//	qubits: q0 q1(1)
//	  0  H        targets q0
//	  1  X        controls q0  targets q1
//	  2  measure  controls q0  targets c0.0
func WriteText(w io.Writer, path circuit.ExecutionPath, styles Styles) error {
	var b strings.Builder

	decls := make([]string, 0, len(path.Qubits))
	for _, q := range path.Qubits {
		if q.NumChildren > 0 {
			decls = append(decls, fmt.Sprintf("q%d(%d)", q.ID, q.NumChildren))
		} else {
			decls = append(decls, fmt.Sprintf("q%d", q.ID))
		}
	}
	b.WriteString(styles.Header.Render("qubits:"))
	if len(decls) > 0 {
		b.WriteString(" " + strings.Join(decls, " "))
	}
	b.WriteString("\n")

	width := 0
	labels := make([]string, len(path.Operations))
	for i, op := range path.Operations {
		labels[i] = GateLabel(op)
		width = max(width, len(labels[i]))
	}

	for i, op := range path.Operations {
		gateStyle := styles.Gate
		if op.Gate == "measure" {
			gateStyle = styles.Measure
		}
		fmt.Fprintf(&b, "%s  %s",
			styles.Index.Render(fmt.Sprintf("%3d", i)),
			gateStyle.Render(fmt.Sprintf("%-*s", width, labels[i])))
		if len(op.Controls) > 0 {
			b.WriteString("  " + styles.Label.Render("controls") + " " + registers(op.Controls))
		}
		if len(op.Targets) > 0 {
			b.WriteString("  " + styles.Label.Render("targets") + " " + registers(op.Targets))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// GateLabel renders the gate name with its argument string, prefixed by its
// functor variants, e.g. "Controlled Adjoint Rx(0.5)".
func GateLabel(op circuit.Operation) string {
	label := op.Gate + op.ArgStr
	if op.Adjoint {
		label = "Adjoint " + label
	}
	if op.Controlled {
		label = "Controlled " + label
	}
	return label
}

func registers(regs []circuit.Register) string {
	parts := make([]string, len(regs))
	for i, r := range regs {
		parts[i] = r.String()
	}
	return strings.Join(parts, " ")
}
