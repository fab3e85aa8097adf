package main

import (
	"context"
	"fmt"

	"github.com/samochreno/ace-sub002/internal/ast"
	"github.com/samochreno/ace-sub002/internal/diag"
	"github.com/samochreno/ace-sub002/internal/hir"
	"github.com/samochreno/ace-sub002/internal/lexer"
	"github.com/samochreno/ace-sub002/internal/mono"
	"github.com/samochreno/ace-sub002/internal/parser"
	"github.com/samochreno/ace-sub002/internal/sema"
	"github.com/samochreno/ace-sub002/internal/source"
	"github.com/samochreno/ace-sub002/internal/symbols"
	"github.com/samochreno/ace-sub002/internal/types"
)

// pipelineResult carries every artefact produced while driving a single file
// through the middle-end, so subcommands can print whichever stage they need
// without re-running earlier ones.
type pipelineResult struct {
	FileSet *source.FileSet
	FileID  source.FileID
	Strings *source.Interner
	Arenas  *ast.Builder
	AST     ast.FileID

	SymbolRes *symbols.Result
	SemaRes   sema.Result
	Module    *hir.Module

	InstMap *mono.InstantiationMap
	MonoMod *mono.MonoModule
	TypesIn *types.Interner
	Bag     *diag.Bag
}

// pipelineOptions configures how far the pipeline runs and how it reports
// diagnostics.
type pipelineOptions struct {
	MaxDiagnostics int
	NoStd          bool
	MonoMaxDepth   int
	MonoDCE        bool
	SkipMono       bool
}

// runPipeline parses, resolves, checks, lowers, and (unless skipped)
// monomorphizes a single ace source file, stopping early and returning
// whatever stages completed if an earlier stage fails outright.
func runPipeline(ctx context.Context, path string, opts pipelineOptions) (*pipelineResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	file := fs.Get(fileID)
	if file == nil {
		return nil, fmt.Errorf("failed to load %s", path)
	}

	strs := source.NewInterner()
	bag := diag.NewBag(opts.MaxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}

	arenas := ast.NewBuilder(ast.Hints{}, strs)
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	parseRes := parser.ParseFile(ctx, fs, lx, arenas, parser.Options{
		MaxErrors: uint(opts.MaxDiagnostics), //nolint:gosec // flag-bounded, always non-negative
		Reporter:  reporter,
	})

	res := &pipelineResult{
		FileSet: fs,
		FileID:  fileID,
		Strings: strs,
		Arenas:  arenas,
		AST:     parseRes.File,
		Bag:     bag,
	}
	if bag.HasErrors() {
		return res, nil
	}

	symTable := symbols.NewTable(symbols.Hints{}, strs)
	symResult := symbols.ResolveFile(arenas, parseRes.File, &symbols.ResolveOptions{
		Table:    symTable,
		Reporter: reporter,
		NoStd:    opts.NoStd,
	})
	res.SymbolRes = &symResult
	if bag.HasErrors() {
		return res, nil
	}

	typesIn := types.NewInterner()
	instMap := mono.NewInstantiationMap()
	semaRes := sema.Check(ctx, arenas, parseRes.File, sema.Options{
		Reporter:       reporter,
		Symbols:        &symResult,
		Types:          typesIn,
		Instantiations: mono.NewInstantiationMapRecorder(instMap),
		Bag:            bag,
	})
	res.SemaRes = semaRes
	res.TypesIn = typesIn
	res.InstMap = instMap
	if bag.HasErrors() {
		return res, nil
	}

	mod, err := hir.Lower(ctx, arenas, parseRes.File, &semaRes, &symResult)
	if err != nil {
		return res, fmt.Errorf("hir lowering failed: %w", err)
	}
	res.Module = mod
	if bag.HasErrors() || opts.SkipMono {
		return res, nil
	}

	maxDepth := opts.MonoMaxDepth
	if maxDepth <= 0 {
		maxDepth = 64
	}
	mm, err := mono.MonomorphizeModule(mod, instMap, &semaRes, mono.Options{
		MaxDepth:  maxDepth,
		EnableDCE: opts.MonoDCE,
	})
	if err != nil {
		return res, fmt.Errorf("monomorphization failed: %w", err)
	}
	res.MonoMod = mm
	return res, nil
}
