// Package main provides the sysmel-asg diagnostic CLI. It loads a syntax graph
// document, runs expand-and-typecheck over it and reports the semantic errors.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/funvibe/sysmel/internal/analyzer"
	"github.com/funvibe/sysmel/internal/config"
	"github.com/funvibe/sysmel/internal/diagnostics"
	"github.com/funvibe/sysmel/internal/pipeline"
	"github.com/funvibe/sysmel/internal/prettyprinter"
	"github.com/funvibe/sysmel/internal/syntaxfile"
)

// Version is the current sysmel-asg version
var Version = "0.3.0"

var (
	targetName string
	targetFile string
	dotOutput  string
	printTree  bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:     "sysmel-asg",
	Short:   "Sysmel ASG semantic core",
	Long:    `sysmel-asg expands and typechecks Sysmel syntax graphs and reports semantic errors.`,
	Version: Version,
}

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Expand and typecheck a syntax graph document",
	Long: `Expand and typecheck a syntax graph document.

Examples:
  sysmel-asg check script.yaml                    # Report semantic errors
  sysmel-asg check script.yaml --target wasm32    # Analyze for a 32-bit target
  sysmel-asg check script.yaml --dot script.dot   # Also write the analyzed graph`,
	Args:         cobra.ExactArgs(1),
	RunE:         runCheck,
	SilenceUsage: true,
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the built-in compilation targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range config.TargetNames() {
			target, _ := config.TargetNamed(name)
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s pointer size %d, alignment %d\n", name, target.PointerSize, target.PointerAlignment)
		}
		return nil
	},
}

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the syntax node kinds a document may use",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range syntaxfile.SyntaxKindNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVarP(&targetName, "target", "t", config.DefaultTargetName, "Built-in compilation target")
	checkCmd.Flags().StringVar(&targetFile, "target-file", "", "YAML or TOML file describing the compilation target")
	checkCmd.Flags().StringVar(&dotOutput, "dot", "", "Write the analyzed graph in Graphviz dot format")
	checkCmd.Flags().BoolVar(&printTree, "tree", false, "Print the analyzed graph as a tree")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every expansion step")

	rootCmd.AddCommand(checkCmd, targetsCmd, kindsCmd)
}

func newLogger() (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

func resolveTarget() (config.CompilationTarget, error) {
	if targetFile != "" {
		return config.LoadTarget(targetFile)
	}
	return config.TargetNamed(targetName)
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	input, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	target, err := resolveTarget()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := pipeline.NewPipelineContext(string(input)).WithLogger(logger).WithFile(path)
	ctx.Target = target

	processors := []pipeline.Processor{
		&syntaxfile.LoaderProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
		&prettyprinter.DotProcessor{Path: dotOutput},
	}
	if printTree {
		processors = append(processors, &prettyprinter.TreeProcessor{Out: cmd.OutOrStdout()})
	}
	ctx = pipeline.New(processors...).Run(ctx)

	printDiagnostics(cmd.ErrOrStderr(), ctx.Errors)
	if ctx.Fatal != nil {
		if verbose {
			return fmt.Errorf("%+v", ctx.Fatal)
		}
		return ctx.Fatal
	}
	if len(ctx.Errors) > 0 {
		return errors.Errorf("%d semantic error(s) in %s", len(ctx.Errors), path)
	}
	if ctx.Result != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, result type %s\n", path, ctx.Result.Type().PrettyString())
	}
	return nil
}

func useColor(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func printDiagnostics(w io.Writer, errs []*diagnostics.DiagnosticError) {
	color := useColor(w)
	for _, err := range errs {
		if color {
			fmt.Fprintf(w, "\033[31m%s\033[0m\n", err.Error())
		} else {
			fmt.Fprintln(w, err.Error())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
