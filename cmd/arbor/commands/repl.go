package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/arbor/pkg/engine"
	"github.com/Sumatoshi-tech/arbor/pkg/ordtree"
	"github.com/Sumatoshi-tech/arbor/pkg/session"
)

// ErrUnknownReplCommand indicates an unrecognized repl verb.
var ErrUnknownReplCommand = errors.New("unknown command")

// ReplCommand holds configuration for the interactive repl.
type ReplCommand struct {
	configPath  string
	sessionName string
	mode        string
	noColor     bool
}

// NewReplCommand creates the interactive repl command.
func NewReplCommand() *cobra.Command {
	rc := &ReplCommand{}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Drive a tree session interactively",
		Long: `Read commands from stdin, one per line:

  insert <value>    Insert a value into the tree
  search <value>    Search for a value
  delete <value>    Delete a value
  clear             Remove all nodes
  show              Print the current tree
  traverse <order>  Print a traversal (pre, in, post, level)
  stats             Print session counters
  hibernate         Compress the arena while idle
  help              Show this list
  quit              Exit the repl

Values pass through input validation exactly as typed, so "7.5" or
"abc" exercise the error feedback path rather than failing the parse
up front.`,
		Args: cobra.NoArgs,
		RunE: rc.run,
	}

	cmd.Flags().StringVarP(&rc.configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVarP(&rc.sessionName, "session", "s", "default", "Session name")
	cmd.Flags().StringVarP(&rc.mode, "mode", "m", "", "Tree mode override: bst or heap")
	cmd.Flags().BoolVar(&rc.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func (rc *ReplCommand) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rt, err := NewRuntime(ctx, rc.configPath)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(context.Background()) }()

	if rc.mode != "" {
		rt.Config.Session.Mode = rc.mode
	}

	out := cmd.OutOrStdout()
	sink := &snapshotSink{}
	feedback := newConsoleFeedback(out, rc.noColor)

	opts, err := rt.SessionOptions(sink, feedback)
	if err != nil {
		return err
	}

	manager := session.NewManager(rt.Config.Session.MaxSessions, opts)

	sess, err := manager.Open(rc.sessionName)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "arbor repl, session %q (%s). Type 'help' for commands.\n", sess.Name(), sess.Tree().Mode())

	return rc.loop(ctx, cmd, sess, sink)
}

func (rc *ReplCommand) loop(ctx context.Context, cmd *cobra.Command, sess *session.Session, sink *snapshotSink) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		verb, rest, _ := strings.Cut(line, " ")

		done, err := rc.dispatch(ctx, out, sess, sink, strings.ToLower(verb), strings.TrimSpace(rest))
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}

		if done {
			return nil
		}
	}

	return scanner.Err()
}

//nolint:cyclop // flat verb table, one case per repl command.
func (rc *ReplCommand) dispatch(
	ctx context.Context,
	out io.Writer,
	sess *session.Session,
	sink *snapshotSink,
	verb, rest string,
) (done bool, err error) {
	switch verb {
	case "insert", "search", "delete", "clear":
		op, parseErr := engine.ParseOp(verb)
		if parseErr != nil {
			return false, parseErr
		}

		_, err = sess.Commit(ctx, op, rest)

		return false, err
	case "show":
		fmt.Fprintln(out, treeList(sink.views, sess.Tree().Mode()))

		return false, nil
	case "traverse":
		order, parseErr := ordtree.ParseOrder(rest)
		if parseErr != nil {
			return false, parseErr
		}

		sess.Wake()
		fmt.Fprintln(out, traversalLine(order, sess.Tree().Traverse(order)))

		return false, nil
	case "stats":
		fmt.Fprintln(out, statsTable(sess))

		return false, nil
	case "hibernate":
		if sess.Hibernate() {
			fmt.Fprintln(out, "Arena hibernated.")
		} else {
			fmt.Fprintln(out, "Session busy or arena below hibernation threshold.")
		}

		return false, nil
	case "help":
		fmt.Fprintln(out, "Commands: insert N, search N, delete N, clear, show, traverse ORDER, stats, hibernate, quit")

		return false, nil
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownReplCommand, verb)
	}
}
