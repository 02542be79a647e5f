package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/arbor/pkg/engine"
	"github.com/Sumatoshi-tech/arbor/pkg/ordtree"
	"github.com/Sumatoshi-tech/arbor/pkg/session"
)

const (
	chartWidth  = "1200px"
	chartHeight = "700px"
)

// RenderCommand builds a tree from raw values and renders it.
type RenderCommand struct {
	configPath string
	mode       string
	polarity   string
	htmlPath   string
	noColor    bool
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	rc := &RenderCommand{}

	cmd := &cobra.Command{
		Use:   "render <value>...",
		Short: "Insert values and render the resulting tree",
		Long: `Insert the given values into a fresh tree and print it. With --html
the tree is also written as an interactive chart. Values are raw text
and pass through input validation, so invalid ones produce warnings
instead of aborting the render.`,
		Args: cobra.MinimumNArgs(1),
		RunE: rc.run,
	}

	cmd.Flags().StringVarP(&rc.configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVarP(&rc.mode, "mode", "m", "", "Tree mode override: bst or heap")
	cmd.Flags().StringVar(&rc.polarity, "polarity", "", "Heap polarity override: min or max")
	cmd.Flags().StringVarP(&rc.htmlPath, "html", "o", "", "Write an HTML tree chart to this path")
	cmd.Flags().BoolVar(&rc.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func (rc *RenderCommand) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := NewRuntime(ctx, rc.configPath)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(context.Background()) }()

	if rc.mode != "" {
		rt.Config.Session.Mode = rc.mode
	}

	if rc.polarity != "" {
		rt.Config.Session.Polarity = rc.polarity
	}

	out := cmd.OutOrStdout()
	sink := &snapshotSink{}
	feedback := newConsoleFeedback(out, rc.noColor)

	sessOpts, err := rt.SessionOptions(sink, feedback)
	if err != nil {
		return err
	}

	sess := session.New("render", sessOpts)

	for _, raw := range args {
		_, commitErr := sess.Commit(ctx, engine.OpInsert, raw)
		if commitErr != nil {
			return fmt.Errorf("insert %q: %w", raw, commitErr)
		}
	}

	fmt.Fprintln(out, treeList(sess.Tree().Snapshot(), sess.Tree().Mode()))
	fmt.Fprintln(out, statsTable(sess))

	if rc.htmlPath == "" {
		return nil
	}

	err = writeTreeChart(rc.htmlPath, sess.Tree())
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Chart written to %s\n", rc.htmlPath)

	return nil
}

// writeTreeChart renders the tree as a top-down echarts tree diagram.
func writeTreeChart(path string, tree *ordtree.Tree) error {
	chart := charts.NewTree()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("arbor %s, %d nodes", tree.Mode(), tree.Len()),
			Subtitle: "level-order snapshot",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	chart.AddSeries("tree", []opts.TreeData{chartData(tree)}).
		SetSeriesOptions(
			charts.WithTreeOpts(opts.TreeChart{
				Orient:           "TB",
				InitialTreeDepth: -1,
			}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer file.Close()

	err = chart.Render(file)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	return nil
}

func chartData(tree *ordtree.Tree) opts.TreeData {
	views := tree.Snapshot()
	if len(views) == 0 {
		return opts.TreeData{Name: "(empty)"}
	}

	byID := make(map[uint32]ordtree.NodeView, len(views))
	for _, view := range views {
		byID[view.ID] = view
	}

	return chartNode(byID, views[0].ID)
}

func chartNode(byID map[uint32]ordtree.NodeView, id uint32) opts.TreeData {
	view := byID[id]
	data := opts.TreeData{Name: fmt.Sprintf("%d", view.Value)}

	if view.Left != 0 {
		child := chartNode(byID, view.Left)
		data.Children = append(data.Children, &child)
	}

	if view.Right != 0 {
		child := chartNode(byID, view.Right)
		data.Children = append(data.Children, &child)
	}

	return data
}
