package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/arbor/pkg/engine"
	"github.com/Sumatoshi-tech/arbor/pkg/ordtree"
	"github.com/Sumatoshi-tech/arbor/pkg/session"
)

// Script errors.
var (
	ErrScriptInvalid = errors.New("script does not match schema")
	ErrScriptEmpty   = errors.New("script has no operations")
)

// scriptSchema validates JSON scripts before they reach the engine, so
// a malformed file fails with field-level messages instead of a
// zero-valued struct.
const scriptSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["ops"],
  "properties": {
    "mode": {"type": "string", "enum": ["bst", "heap"]},
    "polarity": {"type": "string", "enum": ["min", "max"]},
    "parse_policy": {"type": "string", "enum": ["reject", "truncate"]},
    "ops": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["op"],
        "properties": {
          "op": {"type": "string", "enum": ["insert", "search", "delete", "clear"]},
          "value": {"type": "string"}
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`

// Script is a replayable sequence of tree operations.
type Script struct {
	Mode        string     `yaml:"mode"         json:"mode,omitempty"`
	Polarity    string     `yaml:"polarity"     json:"polarity,omitempty"`
	ParsePolicy string     `yaml:"parse_policy" json:"parse_policy,omitempty"`
	Ops         []ScriptOp `yaml:"ops"          json:"ops"`
}

// ScriptOp is a single scripted operation. Value stays raw text so
// scripted input passes through the same validation as typed input.
type ScriptOp struct {
	Op    string `yaml:"op"    json:"op"`
	Value string `yaml:"value" json:"value,omitempty"`
}

// LoadScript reads a YAML or JSON script from path. JSON scripts are
// schema-validated first.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	var script Script

	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = validateScriptJSON(data)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(data, &script)
	} else {
		err = yaml.Unmarshal(data, &script)
	}

	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}

	if len(script.Ops) == 0 {
		return nil, ErrScriptEmpty
	}

	return &script, nil
}

func validateScriptJSON(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(scriptSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validate script: %w", err)
	}

	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		messages = append(messages, desc.String())
	}

	return fmt.Errorf("%w: %s", ErrScriptInvalid, strings.Join(messages, "; "))
}

// ScriptCommand holds configuration for script replay.
type ScriptCommand struct {
	configPath  string
	sessionName string
	noColor     bool
	showTree    bool
}

// NewScriptCommand creates the script replay command.
func NewScriptCommand() *cobra.Command {
	sc := &ScriptCommand{}

	cmd := &cobra.Command{
		Use:   "script <file>",
		Short: "Run an operation script from a YAML or JSON file",
		Long: `Replay a scripted sequence of insert/search/delete/clear operations
against a fresh session. The script may override the configured tree
mode, heap polarity and parse policy.`,
		Args: cobra.ExactArgs(1),
		RunE: sc.run,
	}

	cmd.Flags().StringVarP(&sc.configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVarP(&sc.sessionName, "session", "s", "script", "Session name")
	cmd.Flags().BoolVar(&sc.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&sc.showTree, "show-tree", true, "Print the final tree after replay")

	return cmd
}

func (sc *ScriptCommand) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	script, err := LoadScript(args[0])
	if err != nil {
		return err
	}

	rt, err := NewRuntime(ctx, sc.configPath)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(context.Background()) }()

	applyScriptOverrides(rt, script)

	out := cmd.OutOrStdout()
	sink := &snapshotSink{}
	feedback := newConsoleFeedback(out, sc.noColor)

	opts, err := rt.SessionOptions(sink, feedback)
	if err != nil {
		return err
	}

	manager := session.NewManager(rt.Config.Session.MaxSessions, opts)

	sess, err := manager.Open(sc.sessionName)
	if err != nil {
		return err
	}

	err = replay(ctx, sess, script)
	if err != nil {
		return err
	}

	if sc.showTree {
		fmt.Fprintln(out, treeList(sess.Tree().Snapshot(), sess.Tree().Mode()))
		fmt.Fprintln(out, traversalLine(ordtree.InOrder, sess.Tree().Traverse(ordtree.InOrder)))
	}

	return nil
}

func applyScriptOverrides(rt *Runtime, script *Script) {
	if script.Mode != "" {
		rt.Config.Session.Mode = script.Mode
	}

	if script.Polarity != "" {
		rt.Config.Session.Polarity = script.Polarity
	}

	if script.ParsePolicy != "" {
		rt.Config.Session.ParsePolicy = script.ParsePolicy
	}
}

// replay commits each scripted op in order. Validation and duplicate
// warnings flow through the feedback port; only session-level failures
// (busy controller, full session) abort the run.
func replay(ctx context.Context, sess *session.Session, script *Script) error {
	for idx, scriptOp := range script.Ops {
		op, err := engine.ParseOp(scriptOp.Op)
		if err != nil {
			return fmt.Errorf("op %d: %w", idx, err)
		}

		_, err = sess.Commit(ctx, op, scriptOp.Value)
		if err != nil {
			return fmt.Errorf("op %d (%s %q): %w", idx, scriptOp.Op, scriptOp.Value, err)
		}
	}

	return nil
}
