package mono

import (
	"fmt"
	"strings"

	"github.com/samochreno/ace-sub002/internal/hir"
	"github.com/samochreno/ace-sub002/internal/source"
	"github.com/samochreno/ace-sub002/internal/symbols"
	"github.com/samochreno/ace-sub002/internal/types"
)

// pendingBody is a generic function instantiation whose placeholder is
// registered (so its InstanceSym is stable and other call sites can
// reference it) but whose body has not yet been cloned and rewritten.
type pendingBody struct {
	out     *MonoFunc
	origSym symbols.SymbolID
	args    []types.TypeID
	stack   []MonoKey
}

// createInstantiated registers the MonoFunc placeholder for (origSym,
// typeArgs), deferring body construction to finishBodyDeferment. Calling it
// again for the same key returns the existing (possibly still-pending)
// instance instead of creating a duplicate.
func (b *monoBuilder) createInstantiated(origSym symbols.SymbolID, typeArgs []types.TypeID, stack []MonoKey) (*MonoFunc, error) {
	if b == nil || !origSym.IsValid() {
		return nil, nil
	}
	if b.types == nil {
		return nil, fmt.Errorf("mono: missing types interner")
	}

	normalized := NormalizeTypeArgs(b.types, typeArgs)
	expectedTypeArgs := b.symbolTypeParamCount(origSym)
	switch {
	case expectedTypeArgs == 0 && len(normalized) > 0:
		return nil, fmt.Errorf("mono: non-generic symbol %d cannot be instantiated with type args", origSym)
	case expectedTypeArgs > 0 && len(normalized) != expectedTypeArgs:
		return nil, fmt.Errorf("mono: symbol %d expects %d type args, got %d", origSym, expectedTypeArgs, len(normalized))
	}
	if len(normalized) > 0 && !typeArgsAreConcrete(b.types, normalized) {
		name := b.monoName(origSym, nil)
		args := "<?>"
		if b.mod != nil && b.mod.Symbols != nil && b.mod.Symbols.Table != nil && b.mod.Symbols.Table.Strings != nil {
			args = formatTypeArgs(b.types, b.mod.Symbols.Table.Strings, normalized)
		}
		stackMsg := ""
		if len(stack) > 0 {
			parts := make([]string, 0, len(stack))
			for _, k := range stack {
				parts = append(parts, fmt.Sprintf("%s[%s]", b.monoName(k.Sym, nil), k.ArgsKey))
			}
			stackMsg = " stack=" + strings.Join(parts, " -> ")
		}
		return nil, fmt.Errorf("mono: non-concrete type args for %s (sym=%d args=%s)%s", name, origSym, args, stackMsg)
	}

	key := MonoKey{Sym: origSym, ArgsKey: argsKeyFromTypes(normalized)}
	if existing := b.mm.Funcs[key]; existing != nil {
		return existing, nil
	}
	if len(stack) >= b.opt.MaxDepth {
		return nil, fmt.Errorf("mono: instantiation depth exceeded (%d)", b.opt.MaxDepth)
	}

	instanceSym := b.allocInstanceSym()
	out := &MonoFunc{
		Key:         key,
		InstanceSym: instanceSym,
		OrigSym:     origSym,
		TypeArgs:    normalized,
	}
	b.mm.Funcs[key] = out
	b.mm.FuncBySym[instanceSym] = out

	origFn := b.origFuncBySym[origSym]
	if origFn == nil {
		// Imported/intrinsic function without HIR body: nothing to defer.
		return out, nil
	}
	if origFn.IsGeneric() {
		if len(normalized) == 0 {
			return nil, fmt.Errorf("mono: missing type args for generic function %s", origFn.Name)
		}
		if len(normalized) != len(origFn.GenericParams) {
			return nil, fmt.Errorf("mono: generic function %s expects %d type args, got %d", origFn.Name, len(origFn.GenericParams), len(normalized))
		}
	}

	b.deferred = append(b.deferred, &pendingBody{
		out:     out,
		origSym: origSym,
		args:    normalized,
		stack:   append(append([]MonoKey(nil), stack...), key),
	})
	return out, nil
}

// deferredInstances returns the instantiations still awaiting a built body.
// Exposed for debug/introspection; finishBodyDeferment is what actually
// drains it.
func (b *monoBuilder) deferredInstances() []*MonoFunc {
	if b == nil || len(b.deferred) == 0 {
		return nil
	}
	out := make([]*MonoFunc, 0, len(b.deferred))
	for _, job := range b.deferred {
		out = append(out, job.out)
	}
	return out
}

// finishBodyDeferment drains the deferred-body queue: each job clones its
// original function, applies its type substitution, and rewrites the calls
// and func-value references it contains. Rewriting a call may itself call
// createInstantiated for a referenced generic callee, pushing a new job onto
// the same queue, so this loops until the queue is empty rather than
// recursing — self- and mutually-recursive generic instantiations terminate
// because createInstantiated returns the same (still-pending) MonoFunc
// instead of re-registering it.
func (b *monoBuilder) finishBodyDeferment() error {
	if b == nil {
		return nil
	}
	for len(b.deferred) > 0 {
		job := b.deferred[0]
		b.deferred = b.deferred[1:]
		if job.out.Func != nil {
			continue // already built via another path
		}
		if err := b.buildDeferredBody(job); err != nil {
			return err
		}
	}
	return nil
}

// buildDeferredBody performs the actual clone+substitute+rewrite work for a
// single deferred instantiation job.
func (b *monoBuilder) buildDeferredBody(job *pendingBody) error {
	origFn := b.origFuncBySym[job.origSym]
	if origFn == nil {
		return nil
	}

	clone := cloneFunc(origFn)
	clone.ID = b.allocFuncID()
	clone.SymbolID = job.out.InstanceSym
	clone.Name = b.monoName(job.origSym, job.args)
	clone.GenericParams = nil
	clone.Borrow = nil
	clone.MovePlan = nil

	var subst *Subst
	if len(job.args) > 0 {
		subst = &Subst{
			Types:    b.types,
			OwnerSym: job.origSym,
			TypeArgs: job.args,
		}
		if b.mod != nil && b.mod.Symbols != nil && b.mod.Symbols.Table != nil && b.mod.Symbols.Table.Symbols != nil {
			if owner := b.mod.Symbols.Table.Symbols.Get(job.origSym); owner != nil && len(owner.TypeParams) == len(job.args) {
				subst.NameArgs = make(map[source.StringID]types.TypeID, len(job.args))
				for i, name := range owner.TypeParams {
					if name != source.NoStringID && job.args[i] != types.NoTypeID {
						subst.NameArgs[name] = job.args[i]
					}
				}
			}
		}
		if recvSym := b.receiverTypeSymbol(job.origSym); recvSym.IsValid() && recvSym != job.origSym {
			subst.OwnerSyms = append(subst.OwnerSyms, recvSym)
		}
		if err := subst.ApplyFunc(clone); err != nil {
			return err
		}
	}

	if err := b.instantiateReferencedMonos(clone, job.origSym, subst, job.stack); err != nil {
		return err
	}

	job.out.Func = clone
	return nil
}

// instantiateReferencedMonos rewrites every call and func-value reference
// inside fn so they point at the concrete instantiations their callees
// require, instantiating (deferring) those callees as it goes.
func (b *monoBuilder) instantiateReferencedMonos(fn *hir.Func, callerSym symbols.SymbolID, subst *Subst, stack []MonoKey) error {
	if err := b.rewriteCallsInFunc(fn, callerSym, subst, stack); err != nil {
		return err
	}
	return b.rewriteFuncValuesInFunc(fn, callerSym, subst, stack)
}
