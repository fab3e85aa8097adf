package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samochreno/ace-sub002/internal/diag"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.ace>",
	Short: "Parse, resolve, check, lower, and monomorphize a source file",
	Long:  `check drives a single file through the ace middle-end and reports any diagnostics`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("skip-mono", false, "stop after HIR lowering, skipping monomorphization")
}

func runCheck(cmd *cobra.Command, args []string) error {
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	skipMono, err := cmd.Flags().GetBool("skip-mono")
	if err != nil {
		return fmt.Errorf("failed to get skip-mono flag: %w", err)
	}

	opts, err := commonPipelineOptions(cmd)
	if err != nil {
		return err
	}
	opts.SkipMono = skipMono

	res, err := runPipeline(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}

	if res.Bag != nil && res.Bag.Len() > 0 {
		res.Bag.Sort()
		fmt.Fprint(cmd.OutOrStdout(), diag.FormatGoldenDiagnostics(res.Bag.Items(), res.FileSet, withNotes))
	}

	if res.Bag != nil && res.Bag.HasErrors() {
		os.Exit(1)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}

// commonPipelineOptions reads the persistent flags shared by every pipeline
// subcommand.
func commonPipelineOptions(cmd *cobra.Command) (pipelineOptions, error) {
	root := cmd.Root()
	maxDiagnostics, err := root.PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return pipelineOptions{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	noStd, err := root.PersistentFlags().GetBool("no-std")
	if err != nil {
		return pipelineOptions{}, fmt.Errorf("failed to get no-std flag: %w", err)
	}
	monoMaxDepth, err := root.PersistentFlags().GetInt("mono-max-depth")
	if err != nil {
		return pipelineOptions{}, fmt.Errorf("failed to get mono-max-depth flag: %w", err)
	}
	monoDCE, err := root.PersistentFlags().GetBool("mono-dce")
	if err != nil {
		return pipelineOptions{}, fmt.Errorf("failed to get mono-dce flag: %w", err)
	}
	return pipelineOptions{
		MaxDiagnostics: maxDiagnostics,
		NoStd:          noStd,
		MonoMaxDepth:   monoMaxDepth,
		MonoDCE:        monoDCE,
	}, nil
}
