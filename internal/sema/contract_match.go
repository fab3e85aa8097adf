package sema

import (
	"fmt"

	"github.com/samochreno/ace-sub002/internal/ast"
	"github.com/samochreno/ace-sub002/internal/diag"
	"github.com/samochreno/ace-sub002/internal/source"
	"github.com/samochreno/ace-sub002/internal/symbols"
	"github.com/samochreno/ace-sub002/internal/trace"
	"github.com/samochreno/ace-sub002/internal/types"
)

type traitRequirements struct {
	fields     map[source.StringID]types.TypeID
	fieldAttrs map[source.StringID][]source.StringID
	methods    map[source.StringID][]methodRequirement
}

type methodRequirement struct {
	name   source.StringID
	params []types.TypeID
	result types.TypeID
	span   source.Span
	attrs  []source.StringID
	pub    bool
	async  bool
}

type methodSignature struct {
	params []types.TypeID
	result types.TypeID
	attrs  []source.StringID
	pub    bool
	async  bool
}

type bindingInfo struct {
	typ  types.TypeID
	span source.Span
	sym  symbols.SymbolID
}

func (tc *typeChecker) checkTraitSatisfaction(target types.TypeID, bound symbols.BoundInstance, hintSpan source.Span, typeName string) bool {
	// Трассировка проверки контракта
	var span *trace.Span
	if tc.tracer != nil && tc.tracer.Level() >= trace.LevelDebug {
		span = trace.Begin(tc.tracer, trace.ScopeNode, "check_trait_satisfaction", 0)
		span.WithExtra("type", tc.typeLabel(target))
	}
	defer func() {
		if span != nil {
			span.End("")
		}
	}()

	if target == types.NoTypeID || !bound.Trait.IsValid() || tc.builder == nil {
		return false
	}
	traitSym := tc.symbolFromID(bound.Trait)
	if traitSym == nil || traitSym.Kind != symbols.SymbolTrait {
		return false
	}
	var traitDecl *ast.TraitDecl
	okTrait := false
	if tc.builder != nil {
		traitDecl, okTrait = tc.builder.Items.Trait(traitSym.Decl.Item)
	}
	args := bound.GenericArgs
	if len(traitSym.TypeParams) > 0 && len(args) != len(traitSym.TypeParams) {
		tc.report(diag.SemaTypeMismatch, bound.Span, "%s expects %d type argument(s), got %d", tc.lookupName(traitSym.Name), len(traitSym.TypeParams), len(args))
		return false
	}
	reportSpan := hintSpan
	if reportSpan == (source.Span{}) {
		reportSpan = bound.Span
	}
	if reportSpan == (source.Span{}) {
		reportSpan = traitSym.Span
	}

	typeLabel := typeName
	if typeLabel == "" {
		typeLabel = tc.traitTypeLabel(target)
	}

	scope := tc.scopeForItem(traitSym.Decl.Item)
	pushed := false
	if len(traitSym.TypeParams) > 0 {
		paramSpecs := specsFromSymbolParams(traitSym.TypeParamSymbols)
		pushed = tc.pushTypeParams(bound.Trait, paramSpecs, args)
	}
	if pushed {
		defer tc.popTypeParams()
	}

	var (
		reqs   traitRequirements
		okReqs bool
	)
	switch {
	case traitSym.Trait != nil:
		reqs = tc.instantiateTraitRequirements(traitSym, traitSym.Trait, args)
		okReqs = true
	case okTrait && traitDecl != nil:
		reqs, okReqs = tc.traitRequirementSet(traitDecl, scope)
	default:
		return false
	}
	ok := okReqs

	fields := tc.collectTypeFields(target)
	fieldAttrs := tc.collectFieldAttrs(target)
	var missingFields []string
	fieldCount := 0
	for name, expected := range reqs.fields {
		fieldCount++
		actual, exists := fields[name]
		if !exists {
			missingFields = append(missingFields, tc.lookupName(name))
			continue
		}
		if !tc.traitTypesEqual(expected, actual) {
			tc.report(diag.SemaTraitFieldTypeError, reportSpan, "type %s field '%s' has type %s, expected %s (trait %s)", typeLabel, tc.lookupName(name), tc.typeLabel(actual), tc.typeLabel(expected), tc.lookupName(traitSym.Name))
			ok = false
			continue
		}
		if !tc.attrSetsEqual(reqs.fieldAttrs[name], fieldAttrs[name]) {
			tc.report(diag.SemaTraitFieldAttrMismatch, reportSpan, "type %s field '%s' attributes differ from trait %s: expected [%s], got [%s]", typeLabel, tc.lookupName(name), tc.lookupName(traitSym.Name), joinAttrNames(tc, reqs.fieldAttrs[name]), joinAttrNames(tc, fieldAttrs[name]))
			ok = false
		}
	}
	if len(missingFields) > 0 {
		fieldLabel := "field"
		if len(missingFields) > 1 {
			fieldLabel = "fields"
		}
		tc.report(diag.SemaTraitMissingField, reportSpan, "type `%s` missing required %s by trait `%s`: %s", typeLabel, fieldLabel, tc.lookupName(traitSym.Name), joinNames(missingFields))
		ok = false
	}

	var missingMethods []string
	var mismatchedMethods []string
	var attrMismatchedMethods []string
	methodCount := 0
	for name, methods := range reqs.methods {
		for idx := range methods {
			methodCount++
			req := &methods[idx]
			switch tc.ensureMethodSatisfies(target, name, req, reportSpan, tc.lookupName(traitSym.Name)) {
			case -1:
				missingMethods = append(missingMethods, tc.lookupName(name))
				ok = false
			case 0:
				mismatchedMethods = append(mismatchedMethods, tc.lookupName(name))
				ok = false
			case -2:
				attrMismatchedMethods = append(attrMismatchedMethods, tc.lookupName(name))
				ok = false
			}
		}
	}
	if span != nil {
		span.WithExtra("fields_checked", fmt.Sprintf("%d", fieldCount))
		span.WithExtra("methods_checked", fmt.Sprintf("%d", methodCount))
	}

	if len(missingMethods) > 0 {
		methodLabel := "method"
		if len(missingMethods) > 1 {
			methodLabel = "methods"
		}
		tc.report(diag.SemaTraitMissingMethod, reportSpan, "type `%s` missing required %s by trait `%s`: %s", typeLabel, methodLabel, tc.lookupName(traitSym.Name), joinNames(missingMethods))
	}
	if len(mismatchedMethods) > 0 {
		methodLabel := "method"
		if len(mismatchedMethods) > 1 {
			methodLabel = "methods"
		}
		tc.report(diag.SemaTraitMethodMismatch, reportSpan, "type `%s` has incompatible %s for trait `%s`: %s", typeLabel, methodLabel, tc.lookupName(traitSym.Name), joinNames(mismatchedMethods))
	}
	if len(attrMismatchedMethods) > 0 {
		methodLabel := "method"
		if len(attrMismatchedMethods) > 1 {
			methodLabel = "methods"
		}
		tc.report(diag.SemaTraitMethodAttrMismatch, reportSpan, "type `%s` has attribute/modifier mismatch for %s in trait `%s`: %s", typeLabel, methodLabel, tc.lookupName(traitSym.Name), joinNames(attrMismatchedMethods))
	}

	return ok
}

func (tc *typeChecker) traitRequirementSet(traitDecl *ast.TraitDecl, scope symbols.ScopeID) (traitRequirements, bool) {
	reqs := traitRequirements{
		fields:     make(map[source.StringID]types.TypeID),
		fieldAttrs: make(map[source.StringID][]source.StringID),
		methods:    make(map[source.StringID][]methodRequirement),
	}
	if traitDecl == nil {
		return reqs, false
	}
	ok := true
	members := tc.builder.Items.GetTraitItemIDs(traitDecl)
	for _, cid := range members {
		member := tc.builder.Items.TraitItem(cid)
		if member == nil {
			continue
		}
		switch member.Kind {
		case ast.TraitItemField:
			field := tc.builder.Items.TraitField(ast.TraitFieldID(member.Payload))
			if field == nil {
				continue
			}
			fieldType := tc.resolveTypeExprWithScope(field.Type, scope)
			if fieldType == types.NoTypeID {
				ok = false
				continue
			}
			reqs.fields[field.Name] = fieldType
			reqs.fieldAttrs[field.Name] = tc.attrNames(field.AttrStart, field.AttrCount)
		case ast.TraitItemFn:
			fn := tc.builder.Items.TraitFn(ast.TraitFnID(member.Payload))
			if fn == nil {
				continue
			}
			if req, okMethod := tc.traitMethodRequirement(fn, scope); okMethod {
				reqs.methods[fn.Name] = append(reqs.methods[fn.Name], req)
			} else {
				ok = false
			}
		}
	}
	return reqs, ok
}

func (tc *typeChecker) traitMethodRequirement(fn *ast.TraitFnReq, scope symbols.ScopeID) (methodRequirement, bool) {
	req := methodRequirement{}
	if fn == nil {
		return req, false
	}
	req.name = fn.Name
	req.span = fn.Span
	req.attrs = tc.attrNames(fn.AttrStart, fn.AttrCount)
	req.pub = fn.Flags&ast.FnModifierPublic != 0
	req.async = fn.Flags&ast.FnModifierAsync != 0

	paramIDs := tc.getTraitFnParamIDs(fn)
	req.params = make([]types.TypeID, 0, len(paramIDs))
	ok := true
	for _, pid := range paramIDs {
		param := tc.builder.Items.FnParam(pid)
		if param == nil {
			req.params = append(req.params, types.NoTypeID)
			ok = false
			continue
		}
		paramType := tc.resolveTypeExprWithScope(param.Type, scope)
		req.params = append(req.params, paramType)
		if paramType == types.NoTypeID {
			ok = false
		}
	}
	req.result = tc.types.Builtins().Nothing
	if fn.ReturnType.IsValid() {
		req.result = tc.resolveTypeExprWithScope(fn.ReturnType, scope)
		if req.result == types.NoTypeID {
			ok = false
		}
	}
	return req, ok
}

func requirementsFromSpec(spec *symbols.TraitSpec) traitRequirements {
	reqs := traitRequirements{
		fields:     make(map[source.StringID]types.TypeID),
		fieldAttrs: make(map[source.StringID][]source.StringID),
		methods:    make(map[source.StringID][]methodRequirement),
	}
	if spec == nil {
		return reqs
	}
	for name, ty := range spec.Fields {
		reqs.fields[name] = ty
	}
	for name, attrs := range spec.FieldAttrs {
		reqs.fieldAttrs[name] = append([]source.StringID(nil), attrs...)
	}
	for name, methods := range spec.Methods {
		for _, m := range methods {
			reqs.methods[name] = append(reqs.methods[name], methodRequirement{
				name:   m.Name,
				params: append([]types.TypeID(nil), m.Params...),
				result: m.Result,
				span:   m.Span,
				attrs:  append([]source.StringID(nil), m.Attrs...),
				pub:    m.Public,
				async:  m.Async,
			})
		}
	}
	return reqs
}

func (tc *typeChecker) instantiateTraitRequirements(sym *symbols.Symbol, spec *symbols.TraitSpec, args []types.TypeID) traitRequirements {
	reqs := requirementsFromSpec(spec)
	if tc == nil || sym == nil || spec == nil {
		return reqs
	}
	if len(args) == 0 || len(sym.TypeParams) == 0 {
		return reqs
	}
	bindings := make(map[source.StringID]bindingInfo, len(sym.TypeParams))
	for idx, name := range sym.TypeParams {
		if idx >= len(args) {
			break
		}
		if name == source.NoStringID || args[idx] == types.NoTypeID {
			continue
		}
		bindings[name] = bindingInfo{typ: args[idx]}
	}
	if len(bindings) == 0 {
		return reqs
	}
	for name, ty := range reqs.fields {
		reqs.fields[name] = tc.substituteTypeParamByName(ty, bindings)
	}
	for mname, methods := range reqs.methods {
		for idx := range methods {
			for i := range methods[idx].params {
				methods[idx].params[i] = tc.substituteTypeParamByName(methods[idx].params[i], bindings)
			}
			methods[idx].result = tc.substituteTypeParamByName(methods[idx].result, bindings)
		}
		reqs.methods[mname] = methods
	}
	return reqs
}
