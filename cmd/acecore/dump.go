package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/samochreno/ace-sub002/internal/mono"
	"github.com/samochreno/ace-sub002/internal/symbols"
)

var dumpSymbolsCmd = &cobra.Command{
	Use:   "dump-symbols <file.ace>",
	Short: "Resolve a file and print its symbol table",
	Args:  cobra.ExactArgs(1),
	RunE:  runDumpSymbols,
}

var dumpMonoCmd = &cobra.Command{
	Use:   "dump-mono <file.ace>",
	Short: "Check a file and print its monomorphized HIR and instantiation map",
	Args:  cobra.ExactArgs(1),
	RunE:  runDumpMono,
}

func init() {
	dumpMonoCmd.Flags().Bool("headers-only", false, "print only function/type headers")
}

func runDumpSymbols(cmd *cobra.Command, args []string) error {
	opts, err := commonPipelineOptions(cmd)
	if err != nil {
		return err
	}
	opts.SkipMono = true

	res, err := runPipeline(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}
	if res.Bag != nil && res.Bag.HasErrors() {
		res.Bag.Sort()
		for _, d := range res.Bag.Items() {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", d.Severity, d.Message)
		}
		os.Exit(1)
	}
	if res.SymbolRes == nil || res.SymbolRes.Table == nil {
		return fmt.Errorf("no symbol table produced for %s", args[0])
	}
	printSymbolTable(cmd.OutOrStdout(), res.SymbolRes.Table)
	return nil
}

// printSymbolTable renders every declared symbol as "id kind name receiver".
// No dedicated symbols-dump primitive exists elsewhere in the tree (unlike
// mono, which has DumpMonoModule/Dump), so this is a small, self-contained
// printer grounded on the same Symbols arena walk resolveMethodSymbol uses.
func printSymbolTable(w io.Writer, table *symbols.Table) {
	if table == nil || table.Symbols == nil {
		return
	}
	data := table.Symbols.Data()
	for i := range data {
		sym := &data[i]
		name := "<anon>"
		if table.Strings != nil {
			if s, ok := table.Strings.Lookup(sym.Name); ok {
				name = s
			}
		}
		id := symbols.SymbolID(i + 1) //nolint:gosec // bounded by arena size
		if sym.ReceiverKey != "" {
			fmt.Fprintf(w, "%d\t%s\t%s\t(%s)\n", id, sym.Kind, name, sym.ReceiverKey)
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", id, sym.Kind, name)
	}
}

func runDumpMono(cmd *cobra.Command, args []string) error {
	headersOnly, err := cmd.Flags().GetBool("headers-only")
	if err != nil {
		return fmt.Errorf("failed to get headers-only flag: %w", err)
	}
	opts, err := commonPipelineOptions(cmd)
	if err != nil {
		return err
	}

	res, err := runPipeline(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}
	if res.Bag != nil && res.Bag.HasErrors() {
		res.Bag.Sort()
		for _, d := range res.Bag.Items() {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", d.Severity, d.Message)
		}
		os.Exit(1)
	}
	if res.MonoMod == nil {
		return fmt.Errorf("no monomorphized module produced for %s", args[0])
	}

	out := cmd.OutOrStdout()
	if err := mono.DumpMonoModule(out, res.MonoMod, mono.MonoDumpOptions{HeadersOnly: headersOnly}); err != nil {
		return fmt.Errorf("failed to dump mono module: %w", err)
	}
	if res.InstMap != nil && res.SymbolRes != nil {
		if err := mono.Dump(out, res.InstMap, res.FileSet, res.SymbolRes, res.Strings, res.TypesIn, mono.DumpOptions{}); err != nil {
			return fmt.Errorf("failed to dump instantiation map: %w", err)
		}
	}
	return nil
}
