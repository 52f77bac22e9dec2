// Command mirc is the CLI driver for the backend: it loads an IR module
// from disk, runs it through internal/pipeline, and emits the resulting
// assembly. main is split into a doMain(stdOut, stdErr) entry point so it's
// unit-testable without os.Exit, built on cobra/pflag for subcommands and
// flags.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/nkucc/mirbackend/internal/emit"
	"github.com/nkucc/mirbackend/internal/ir"
	"github.com/nkucc/mirbackend/internal/pipeline"
	"github.com/nkucc/mirbackend/internal/regalloc"
	"github.com/nkucc/mirbackend/internal/target"

	// Blank-imported for its init() self-registration with
	// target.RegisterFactory, the same pattern image/png etc. use.
	_ "github.com/nkucc/mirbackend/internal/isa/arm64"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(doMain(os.Args[1:], os.Stdout, os.Stderr))
}

// doMain builds and runs the cobra command tree against args, writing
// normal output to stdOut and diagnostics to stdErr. Kept separate from
// main so tests can drive it without touching process exit state.
func doMain(args []string, stdOut, stdErr io.Writer) int {
	root := newRootCmd(stdOut, stdErr)
	root.SetArgs(args)
	root.SetOut(stdOut)
	root.SetErr(stdErr)
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(stdOut, stdErr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "mirc",
		Short:         "mirc lowers an optimized IR module to target assembly",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newCompileCmd(stdOut, stdErr))
	root.AddCommand(newTargetsCmd(stdOut))
	return root
}

func newCompileCmd(stdOut, stdErr io.Writer) *cobra.Command {
	var (
		targetName string
		raName     string
		outPath    string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "compile <ir-file>",
		Short: "Lower an IR module (JSON) to target assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			ra, err := parseStrategy(raName)
			if err != nil {
				return err
			}

			mod, err := ir.LoadModule(posArgs[0])
			if err != nil {
				return err
			}

			lowered, err := pipeline.Run(mod, pipeline.Options{
				Target:     targetName,
				RAStrategy: ra,
				Verbose:    verbose,
			})
			if err != nil {
				return err
			}

			bt, ok := target.Lookup(targetName)
			if !ok {
				return fmt.Errorf("unknown target %q", targetName)
			}
			asm := emit.Module(lowered, bt)

			if outPath == "" || outPath == "-" {
				_, err = io.WriteString(stdOut, asm)
				return err
			}
			return os.WriteFile(outPath, []byte(asm), 0o644)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&targetName, "target", "aarch64", "backend target triple/name")
	flags.StringVar(&raName, "ra", "linear-scan", "register allocation strategy: linear-scan|graph-coloring")
	flags.StringVarP(&outPath, "output", "o", "", "output file (default: stdout)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug-level diagnostics logging")
	return cmd
}

func newTargetsCmd(stdOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List registered backend target names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range target.Names() {
				fmt.Fprintln(stdOut, name)
			}
			return nil
		},
	}
}

func parseStrategy(s string) (regalloc.Strategy, error) {
	switch s {
	case "linear-scan", "":
		return regalloc.LinearScan, nil
	case "graph-coloring":
		return regalloc.GraphColoring, nil
	default:
		return 0, fmt.Errorf("unknown register allocation strategy %q (want linear-scan|graph-coloring)", s)
	}
}
