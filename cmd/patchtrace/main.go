// patchtrace is a CLI tool that frames the editscript package over
// JSON files, the way psltool frames the PSL parser over flags and
// file paths. Parsing source text into trees and computing node
// correspondences are external collaborators: this tool accepts their
// output as JSON files rather than reimplementing either. It has no
// command for the runtimecompare package.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/creachadair/mds/mdiff"
	"github.com/natefinch/atomic"
	"github.com/xinyinghou/python-fix-explainer/internal/editscript"
	"github.com/xinyinghou/python-fix-explainer/internal/tree"
)

func main() {
	root := &command.C{
		Name:  filepath.Base(os.Args[0]),
		Usage: "command [flags] ...\nhelp [command]",
		Help:  "A command-line tool to run the tree-diff engine over JSON tree/mapping files.",
		Commands: []*command.C{
			{
				Name:  "generate",
				Usage: "<source.json> <dest.json> <mapping.json>",
				Help: `Generate the edit script that transforms source into dest.

mapping.json holds the node-correspondence pairs as produced by a
mapping oracle: {"pairs": [["src_id","dst_id"], ...]}. Prints the
generated script, donor set and rename maps as JSON to stdout.`,
				SetFlags: command.Flags(flax.MustBind, &generateArgs),
				Run:      command.Adapt(runGenerate),
			},
			{
				Name:  "apply",
				Usage: "<source.json> <result.json>",
				Help: `Replay an edit script against a fresh clone of source.

result.json is the output of the "generate" command. Prints the
resulting tree as JSON to stdout, or with -d, a unified diff of the
resulting tree against a reference tree instead of the tree itself.`,
				SetFlags: command.Flags(flax.MustBind, &applyArgs),
				Run:      command.Adapt(runApply),
			},
			{
				Name: "debug",
				Commands: []*command.C{
					{
						Name:     "dump",
						Usage:    "<tree.json>",
						Help:     "Print a debug dump of a tree file in its canonical printable form.",
						SetFlags: command.Flags(flax.MustBind, &debugDumpArgs),
						Run:      command.Adapt(runDebugDump),
					},
				},
			},

			command.HelpCommand(nil),
			command.VersionCommand(),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	env := root.NewEnv(nil).SetContext(ctx).MergeFlags(true)
	command.RunOrFail(env, os.Args[1:])
}

var generateArgs struct {
	Out string `flag:"o,Write result JSON to this path instead of stdout"`
}

type mappingFile struct {
	Pairs [][2]string `json:"pairs"`
}

func readTree(path string) (*tree.Node, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tree file %q: %w", path, err)
	}
	var n tree.Node
	if err := json.Unmarshal(bs, &n); err != nil {
		return nil, fmt.Errorf("parsing tree file %q: %w", path, err)
	}
	return &n, nil
}

func readMapping(path string) (*editscript.Mapping, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping file %q: %w", path, err)
	}
	var mf mappingFile
	if err := json.Unmarshal(bs, &mf); err != nil {
		return nil, fmt.Errorf("parsing mapping file %q: %w", path, err)
	}
	return editscript.NewMapping(mf.Pairs...), nil
}

func runGenerate(env *command.Env, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: generate <source.json> <dest.json> <mapping.json>")
	}
	source, err := readTree(args[0])
	if err != nil {
		return err
	}
	dest, err := readTree(args[1])
	if err != nil {
		return err
	}
	mapping, err := readMapping(args[2])
	if err != nil {
		return err
	}

	result, err := editscript.Generate(source, dest, mapping)
	if err != nil {
		var pc editscript.PostConditionError
		if errors.As(err, &pc) {
			return fmt.Errorf("generate failed post-condition check:\n%s", pc.Error())
		}
		return err
	}

	bs, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if generateArgs.Out != "" {
		return atomic.WriteFile(generateArgs.Out, bytes.NewReader(bs))
	}
	_, err = env.Write(append(bs, '\n'))
	return err
}

var applyArgs struct {
	Diff string `flag:"d,Path to a reference tree.json; print a unified diff against it instead of dumping the applied tree"`
}

func runApply(env *command.Env, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: apply <source.json> <result.json>")
	}
	sourcePath, resultPath := args[0], args[1]
	source, err := readTree(sourcePath)
	if err != nil {
		return err
	}
	bs, err := os.ReadFile(resultPath)
	if err != nil {
		return fmt.Errorf("reading result file %q: %w", resultPath, err)
	}
	var result editscript.Result
	if err := json.Unmarshal(bs, &result); err != nil {
		return fmt.Errorf("parsing result file %q: %w", resultPath, err)
	}

	applied, err := editscript.Apply(source, result.Script, result.Donors)
	if err != nil {
		return err
	}

	if applyArgs.Diff != "" {
		ref, err := readTree(applyArgs.Diff)
		if err != nil {
			return err
		}
		lhs := splitLines(tree.Printable(applied))
		rhs := splitLines(tree.Printable(ref))
		diff := mdiff.New(lhs, rhs).AddContext(3)
		mdiff.FormatUnified(env, diff, &mdiff.FileInfo{Left: "applied", Right: applyArgs.Diff})
		return nil
	}

	out, err := json.MarshalIndent(applied, "", "  ")
	if err != nil {
		return err
	}
	_, err = env.Write(append(out, '\n'))
	return err
}

var debugDumpArgs struct {
	Format string `flag:"f,default=ast,Format to dump in, one of 'ast' or 'json'"`
}

func runDebugDump(env *command.Env, path string) error {
	n, err := readTree(path)
	if err != nil {
		return err
	}
	switch debugDumpArgs.Format {
	case "ast":
		_, err = env.Write(tree.Printable(n))
		return err
	case "json":
		bs, err := json.MarshalIndent(n, "", "  ")
		if err != nil {
			return err
		}
		_, err = env.Write(append(bs, '\n'))
		return err
	default:
		return fmt.Errorf("unknown dump format %q", debugDumpArgs.Format)
	}
}

func splitLines(bs []byte) []string {
	var out []string
	start := 0
	for i, b := range bs {
		if b == '\n' {
			out = append(out, string(bs[start:i]))
			start = i + 1
		}
	}
	if start < len(bs) {
		out = append(out, string(bs[start:]))
	}
	return out
}
