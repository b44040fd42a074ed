package wizard

import (
	"strings"

	"github.com/enetx/g"
)

// ToDOT generates a DOT language string representation of the wizard for
// visualization: one node per step, the terminal phases, answer edges, back
// edges and the retry loop. The current step, or the current phase once the
// engine stopped collecting, is highlighted.
func (e *Engine[R]) ToDOT() g.String {
	e.mu.RLock()
	defer e.mu.RUnlock()

	b := g.NewBuilder()

	b.WriteString("digraph Wizard {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString(
		"  node [shape=box, style=\"rounded,filled\", fillcolor=\"#f8f8f8\", color=\"#444444\", fontname=\"Helvetica\"];\n",
	)
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	b.WriteString("  __start [shape=point, style=invis];\n")
	b.WriteString(g.Format("  __start -> \"{}\" [label=\" start\"];\n\n", e.steps.At(1).ID))

	collecting := e.phase.current == PhaseCollecting

	for i, step := range e.steps.All() {
		var attrs g.Slice[g.String]
		attrs.Push(g.Format("label=\"{}. {}\"", i+1, step.ID))

		if collecting && i+1 == e.index {
			attrs.Push("fillcolor=\"#90ee90\"", "penwidth=2")
		}

		if _, answered := e.answers[step.ID]; answered {
			attrs.Push("color=\"#1f77b4\"")
		}

		if step.Prompt != "" {
			attrs.Push(g.Format("tooltip=\"{}\"", strings.ReplaceAll(string(step.Prompt), `"`, "'")))
		}

		b.WriteString(g.Format("  \"{}\" [{}];\n", step.ID, attrs.Join(", ")))
	}

	for phase := range phases().Iter() {
		if phase == PhaseCollecting {
			continue
		}

		var attrs g.Slice[g.String]
		attrs.Push(g.Format("label=\"{}\"", phase), "shape=doublecircle")

		switch {
		case phase == e.phase.current:
			attrs.Push("fillcolor=\"#90ee90\"")
		case phase.Terminal():
			attrs.Push("fillcolor=\"#d3d3d3\"")
		}

		b.WriteString(g.Format("  \"{}\" [{}];\n", phase, attrs.Join(", ")))
	}

	b.WriteByte('\n')

	last := e.steps.Len()

	for i := 1; i < last; i++ {
		from, to := e.steps.At(i).ID, e.steps.At(i+1).ID
		b.WriteString(g.Format("  \"{}\" -> \"{}\" [label=\" answer \"];\n", from, to))
		b.WriteString(g.Format("  \"{}\" -> \"{}\" [label=\" back \", style=dashed, color=gray];\n", to, from))
	}

	b.WriteString(g.Format("  \"{}\" -> \"{}\" [label=\" answer \"];\n", e.steps.At(last).ID, PhaseProcessing))
	b.WriteString(g.Format("  \"{}\" -> \"{}\" [label=\" resolve \"];\n", PhaseProcessing, PhaseComplete))
	b.WriteString(g.Format("  \"{}\" -> \"{}\" [label=\" reject \", color=red];\n", PhaseProcessing, PhaseFailed))
	b.WriteString(g.Format("  \"{}\" -> \"{}\" [label=\" retry \", style=dashed];\n", PhaseFailed, PhaseProcessing))

	b.WriteString("\n  subgraph cluster_legend {\n")
	b.WriteString("    label = \"Legend\";\n")
	b.WriteString("    style = dashed;\n")
	b.WriteString(`    key [label=<
      <table border="0" cellpadding="4" cellspacing="0" cellborder="0">
        <tr><td align="right">▭</td><td>Step</td></tr>
        <tr><td align="right"><font color="green">◎</font></td><td>Current step or phase</td></tr>
        <tr><td align="right"><font color="gray">◎</font></td><td>Terminal phase</td></tr>
        <tr><td align="right"><font color="gray">⇢</font></td><td>Back navigation</td></tr>
      </table>
    >, shape=none];`)

	b.WriteString("  }\n")
	b.WriteString("}\n")

	return b.String()
}
