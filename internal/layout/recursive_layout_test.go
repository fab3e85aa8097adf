package layout_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samochreno/ace-sub002/internal/ast"
	"github.com/samochreno/ace-sub002/internal/diag"
	"github.com/samochreno/ace-sub002/internal/layout"
	"github.com/samochreno/ace-sub002/internal/lexer"
	"github.com/samochreno/ace-sub002/internal/parser"
	"github.com/samochreno/ace-sub002/internal/sema"
	"github.com/samochreno/ace-sub002/internal/source"
	"github.com/samochreno/ace-sub002/internal/symbols"
	"github.com/samochreno/ace-sub002/internal/types"
)

// diagnoseResult bundles the pipeline artefacts a layout test needs to
// inspect: the resolved symbol table and the sema results built on top of it.
type diagnoseResult struct {
	Bag     *diag.Bag
	FileID  ast.FileID
	Symbols *symbols.Result
	Sema    *sema.Result
}

func TestLayoutEngine_RecursiveOptionStructReportsError(t *testing.T) {
	sourceCode := `type Node = { next: Node? }

@entrypoint
fn main() -> int { return 0; }
`
	res := diagnoseSemaFromSource(t, sourceCode, true)
	if res.Bag == nil || !res.Bag.HasErrors() {
		t.Fatal("expected sema error for recursive type, got none")
	}
	if !bagHasCode(res.Bag, diag.SemaRecursiveUnsized) {
		t.Fatalf("expected %v diagnostic, got %+v", diag.SemaRecursiveUnsized, res.Bag.Items())
	}
	nodeType := resolveTypeSymbol(t, res, "Node")

	// Ensure Node? was lowered through Option<T> tag union (Some<T> | nothing), not a special pointer type.
	nodeInfo, ok := res.Sema.TypeInterner.StructInfo(nodeType)
	if !ok || nodeInfo == nil || len(nodeInfo.Fields) != 1 {
		t.Fatalf("expected Node to be a struct with 1 field, got %+v", nodeInfo)
	}
	optType := nodeInfo.Fields[0].Type
	unionInfo, ok := res.Sema.TypeInterner.UnionInfo(optType)
	if !ok || unionInfo == nil {
		t.Fatalf("expected Node.next to be a union type (Option<Node>), got type#%d", optType)
	}
	if unionInfo.Name != res.Symbols.Table.Strings.Intern("Option") {
		gotName, _ := res.Symbols.Table.Strings.Lookup(unionInfo.Name)
		t.Fatalf("expected union name Option, got %q", gotName)
	}
	someName := res.Symbols.Table.Strings.Intern("Some")
	seenSome := false
	seenNothing := false
	for _, m := range unionInfo.Members {
		switch m.Kind {
		case types.UnionMemberNothing:
			seenNothing = true
		case types.UnionMemberTag:
			if m.TagName == someName && len(m.TagArgs) == 1 && m.TagArgs[0] == nodeType {
				seenSome = true
			}
		}
	}
	if !seenSome || !seenNothing {
		t.Fatalf("expected Option<Node> members Some(Node) and nothing, got %+v", unionInfo.Members)
	}

	le := layout.New(layout.X86_64LinuxGNU(), res.Sema.TypeInterner)
	_, err := le.LayoutOf(nodeType)
	if err == nil {
		t.Fatal("expected recursive layout error, got nil")
	}
	var lerr *layout.LayoutError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *layout.LayoutError, got %T (%v)", err, err)
	}
	if lerr.Kind != layout.LayoutErrRecursiveUnsized {
		t.Fatalf("expected LayoutErrRecursiveUnsized, got kind=%d (%v)", lerr.Kind, lerr)
	}
	if len(lerr.Cycle) == 0 {
		t.Fatalf("expected non-empty cycle path, got %+v", lerr)
	}
}

func TestLayoutEngine_RecursiveReferenceStructIsSized(t *testing.T) {
	sourceCode := `type Node = { next: &Node }

@entrypoint
fn main() -> int { return 0; }
`
	res := diagnoseSemaFromSource(t, sourceCode, false)
	nodeType := resolveTypeSymbol(t, res, "Node")

	le := layout.New(layout.X86_64LinuxGNU(), res.Sema.TypeInterner)
	l, err := le.LayoutOf(nodeType)
	if err != nil {
		t.Fatalf("unexpected layout error: %v", err)
	}
	if l.Size != 8 || l.Align != 8 {
		t.Fatalf("expected Node layout size=8 align=8, got size=%d align=%d", l.Size, l.Align)
	}
}

func diagnoseSemaFromSource(t *testing.T, sourceCode string, allowErrors bool) *diagnoseResult {
	t.Helper()

	fs := source.NewFileSet()
	fileID := fs.AddVirtual("layout_recursive.sg", []byte(sourceCode))
	file := fs.Get(fileID)

	bag := diag.NewBag(100)
	lx := lexer.New(file, lexer.Options{Reporter: (&lexer.ReporterAdapter{Bag: bag}).Reporter()})
	builder := ast.NewBuilder(ast.Hints{}, nil)

	parseRes := parser.ParseFile(context.Background(), fs, lx, builder, parser.Options{
		Reporter:  &diag.BagReporter{Bag: bag},
		MaxErrors: 100,
	})
	if parseRes.File == 0 {
		t.Fatal("parse failed")
	}

	symbolsRes := symbols.ResolveFile(builder, parseRes.File, &symbols.ResolveOptions{
		Reporter:   &diag.BagReporter{Bag: bag},
		Validate:   true,
		ModulePath: "test",
		FilePath:   "layout_recursive.sg",
	})

	semaRes := sema.Check(context.Background(), builder, parseRes.File, sema.Options{
		Reporter: &diag.BagReporter{Bag: bag},
		Symbols:  &symbolsRes,
		Types:    types.NewInterner(),
		Bag:      bag,
	})

	if bag.HasErrors() && !allowErrors {
		var sb strings.Builder
		for _, d := range bag.Items() {
			sb.WriteString(d.Message)
			sb.WriteString("\n")
		}
		t.Fatalf("unexpected sema errors:\n%s", sb.String())
	}
	if semaRes.TypeInterner == nil {
		t.Fatal("missing type interner")
	}
	if symbolsRes.Table == nil || symbolsRes.Table.Strings == nil || symbolsRes.Table.Symbols == nil {
		t.Fatal("missing symbols table")
	}

	return &diagnoseResult{
		Bag:     bag,
		FileID:  parseRes.File,
		Symbols: &symbolsRes,
		Sema:    &semaRes,
	}
}

func resolveTypeSymbol(t *testing.T, res *diagnoseResult, name string) types.TypeID {
	t.Helper()

	if res == nil || res.Symbols == nil || res.Symbols.Table == nil || res.Symbols.Table.Strings == nil || res.Symbols.Table.Symbols == nil {
		t.Fatal("missing symbols table")
	}
	if res.Sema == nil || res.Sema.TypeInterner == nil {
		t.Fatal("missing sema/type interner")
	}

	nameID := res.Symbols.Table.Strings.Intern(name)
	resolver := symbols.NewResolver(res.Symbols.Table, res.Symbols.FileScope, symbols.ResolverOptions{})
	symID, ok := resolver.LookupOne(nameID, symbols.SymbolType.Mask())
	if !ok {
		t.Fatalf("type symbol %s not found", name)
	}
	sym := res.Symbols.Table.Symbols.Get(symID)
	if sym == nil || sym.Type == types.NoTypeID {
		t.Fatalf("invalid type symbol %s", name)
	}
	return sym.Type
}

func bagHasCode(bag *diag.Bag, code diag.Code) bool {
	if bag == nil {
		return false
	}
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}
