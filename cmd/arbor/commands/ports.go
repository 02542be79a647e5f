package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/arbor/pkg/engine"
	"github.com/Sumatoshi-tech/arbor/pkg/ordtree"
	"github.com/Sumatoshi-tech/arbor/pkg/session"
)

// consoleFeedback writes outcome messages to out, colored by severity.
type consoleFeedback struct {
	out io.Writer
}

func newConsoleFeedback(out io.Writer, noColor bool) *consoleFeedback {
	if noColor {
		color.NoColor = true
	}

	return &consoleFeedback{out: out}
}

func (f *consoleFeedback) Feedback(outcome engine.Outcome, severity engine.Severity) {
	printer := severityColor(severity)
	printer.Fprintln(f.out, outcome.Message())
}

func severityColor(severity engine.Severity) *color.Color {
	switch severity {
	case engine.SeverityWarn:
		return color.New(color.FgYellow)
	case engine.SeverityErr:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgGreen)
	}
}

// snapshotSink retains the last rendered snapshot so the repl can show
// the tree on demand without re-walking the arena.
type snapshotSink struct {
	views []ordtree.NodeView
	mode  ordtree.Mode
}

func (s *snapshotSink) Render(snapshot []ordtree.NodeView, mode ordtree.Mode) {
	s.views = snapshot
	s.mode = mode
}

// treeList renders the snapshot as an indented connected list, BST
// children ordered left then right.
func treeList(views []ordtree.NodeView, mode ordtree.Mode) string {
	if len(views) == 0 {
		return "(empty tree)"
	}

	byID := make(map[uint32]ordtree.NodeView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}

	writer := list.NewWriter()
	writer.SetStyle(list.StyleConnectedRounded)

	// Snapshot is level order, so views[0] is the root.
	appendSubtree(writer, byID, views[0].ID)

	return writer.Render() + "\n" + modeFooter(mode, len(views))
}

func appendSubtree(writer list.Writer, byID map[uint32]ordtree.NodeView, id uint32) {
	view, ok := byID[id]
	if !ok {
		return
	}

	writer.AppendItem(fmt.Sprintf("%d", view.Value))

	if view.Left == 0 && view.Right == 0 {
		return
	}

	writer.Indent()

	if view.Left != 0 {
		appendSubtree(writer, byID, view.Left)
	}

	if view.Right != 0 {
		appendSubtree(writer, byID, view.Right)
	}

	writer.UnIndent()
}

func modeFooter(mode ordtree.Mode, count int) string {
	noun := "node"
	if count != 1 {
		noun = "nodes"
	}

	return fmt.Sprintf("%s, %s %s", mode, humanize.Comma(int64(count)), noun)
}

// statsTable renders session counters as a two-column table. Reading
// the counters needs an uncompressed arena, so a hibernated session is
// woken first and the Hibernated row reports the post-wake state.
func statsTable(sess *session.Session) string {
	sess.Wake()

	tree := sess.Tree()
	alloc := tree.Allocator()

	writer := table.NewWriter()
	writer.SetStyle(table.StyleLight)
	writer.AppendHeader(table.Row{"Metric", "Value"})

	writer.AppendRow(table.Row{"Session", sess.Name()})
	writer.AppendRow(table.Row{"Mode", tree.Mode().String()})

	if tree.Mode() == ordtree.ModeHeap {
		writer.AppendRow(table.Row{"Polarity", tree.Polarity().String()})
	}

	writer.AppendRow(table.Row{"Nodes", humanize.Comma(int64(tree.Len()))})
	writer.AppendRow(table.Row{"Arena slots", humanize.Comma(int64(alloc.Size()))})
	writer.AppendRow(table.Row{"Arena used", humanize.Comma(int64(alloc.Used()))})
	writer.AppendRow(table.Row{"Hibernated", fmt.Sprintf("%t", sess.Hibernated())})

	switch tree.Mode() {
	case ordtree.ModeBST:
		if minValue, ok := tree.Min(); ok {
			writer.AppendRow(table.Row{"Min", fmt.Sprintf("%d", minValue)})
		}

		if maxValue, ok := tree.Max(); ok {
			writer.AppendRow(table.Row{"Max", fmt.Sprintf("%d", maxValue)})
		}
	case ordtree.ModeHeap:
		if rootValue, ok := tree.PeekRoot(); ok {
			writer.AppendRow(table.Row{"Root", fmt.Sprintf("%d", rootValue)})
		}
	}

	return writer.Render()
}

// traversalLine formats traversal output as "order: v1 v2 v3".
func traversalLine(order ordtree.Order, values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}

	return fmt.Sprintf("%s: [%s]", order, strings.Join(parts, " "))
}
