// Command glintc is the Glint compiler driver: run a program through the
// tree-walking interpreter, compile it to a WebAssembly module (binary or
// text), or dump its internal IR. It keeps the teacher's stderr+exit-code
// convention for failures while fronting the command tree with cobra,
// following the same CLI shape the rest of the retrieved Go compiler/VM
// corpus converges on.
package main

import (
	"fmt"
	"os"

	"github.com/kr/pretty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/module"
	"github.com/glintlang/glint/internal/parser"
	"github.com/glintlang/glint/internal/value"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				fmt.Fprintf(os.Stderr, "glintc: internal error: %+v\n", err)
			} else {
				fmt.Fprintf(os.Stderr, "glintc: internal error: %v\n", r)
			}
			os.Exit(2)
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "glintc: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "glintc",
		Short:   "glintc - the Glint language compiler",
		Version: version,
	}

	var target string
	var out string
	var debugDumpIR bool

	runCmd := &cobra.Command{
		Use:   "run <file.glint>",
		Short: "Parse, build, and interpret main() directly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModule(args[0])
			if err != nil {
				return err
			}
			if debugDumpIR {
				fmt.Fprintf(cmd.OutOrStdout(), "%# v\n", pretty.Formatter(m.Funcs))
			}
			result, err := m.Exec("main", nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatResult(result))
			return nil
		},
	}

	buildCmd := &cobra.Command{
		Use:   "build <file.glint>",
		Short: "Compile to a WebAssembly module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModule(args[0])
			if err != nil {
				return err
			}

			var output []byte
			switch target {
			case "wasm":
				output = m.ToWASM()
			case "wat":
				output = []byte(m.ToWAT())
			default:
				return errors.Errorf("unknown --target %q (want wasm or wat)", target)
			}

			if out == "" || out == "-" {
				_, err := cmd.OutOrStdout().Write(output)
				return err
			}
			return os.WriteFile(out, output, 0o644)
		},
	}
	buildCmd.Flags().StringVar(&target, "target", "wasm", "output target: wasm or wat")
	buildCmd.Flags().StringVar(&out, "out", "", "output file (default: stdout)")

	irCmd := &cobra.Command{
		Use:   "ir <file.glint>",
		Short: "Dump the stable textual IR for every function",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModule(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), m.DumpIRString())
			return nil
		},
	}

	astCmd := &cobra.Command{
		Use:   "ast <file.glint>",
		Short: "Parse and dump the syntax tree, without building or running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			p := parser.New(string(src))
			defs := p.Parse()
			if err := p.Diagnostics().AsError(args[0]); err != nil {
				return err
			}
			for _, def := range defs {
				fmt.Fprint(cmd.OutOrStdout(), ast.Print(def))
			}
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&debugDumpIR, "debug-dump-ir", false, "print a structural dump of the built IR before running")
	root.AddCommand(runCmd, buildCmd, irCmd, astCmd)
	return root
}

func loadModule(path string) (*module.Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	m, err := module.FromSource(path, string(src))
	if err != nil {
		return nil, err
	}
	return m, nil
}

func formatResult(v value.Value) string {
	switch v.Type() {
	case value.I32:
		return fmt.Sprintf("%d", v.AsI32())
	case value.F64:
		return fmt.Sprintf("%g", v.AsF64())
	case value.Bool:
		return fmt.Sprintf("%t", v.AsBool())
	default:
		return "()"
	}
}
