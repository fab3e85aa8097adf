package parser

import (
	"github.com/samochreno/ace-sub002/internal/ast"
	"github.com/samochreno/ace-sub002/internal/diag"
	"github.com/samochreno/ace-sub002/internal/fix"
	"github.com/samochreno/ace-sub002/internal/source"
	"github.com/samochreno/ace-sub002/internal/token"
)

// parseImplItem parses `impl Type { ... }` (an inherent impl) or
// `impl Trait for Type { ... }` (a trait impl).
func (p *Parser) parseImplItem(attrs []ast.Attr, attrSpan source.Span) (ast.ItemID, bool) {
	implTok := p.advance()

	startSpan := implTok.Span
	if attrSpan.End > attrSpan.Start {
		startSpan = attrSpan.Cover(startSpan)
	}

	firstType, ok := p.parseTypePrefix()
	if !ok {
		p.resyncUntil(token.LBrace, token.RBrace, token.KwImpl, token.KwFn)
		if !p.at(token.LBrace) {
			return ast.NoItemID, false
		}
	}

	var trait, target ast.TypeID
	var forSpan source.Span
	if p.at(token.KwFor) {
		forTok := p.advance()
		forSpan = forTok.Span
		trait = firstType
		target, ok = p.parseTypePrefix()
		if !ok {
			p.resyncUntil(token.LBrace, token.RBrace, token.KwImpl, token.KwFn)
			if !p.at(token.LBrace) {
				return ast.NoItemID, false
			}
		}
	} else {
		trait = ast.NoTypeID
		target = firstType
	}

	if _, ok = p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' to start impl block"); !ok {
		p.resyncUntil(token.RBrace, token.KwImpl)
		return ast.NoItemID, false
	}

	members, okMembers := p.parseImplMembers()

	closeTok, ok := p.expect(
		token.RBrace,
		diag.SynUnclosedBrace,
		"expected '}' to close impl block",
		func(b *diag.ReportBuilder) {
			if b == nil {
				return
			}
			insertSpan := p.lastSpan.ZeroideToEnd()
			fixID := fix.MakeFixID(diag.SynUnclosedBrace, insertSpan)
			suggestion := fix.InsertText(
				"insert '}' to close impl block",
				insertSpan,
				"}",
				"",
				fix.WithID(fixID),
				fix.WithKind(diag.FixKindRefactor),
				fix.WithApplicability(diag.FixApplicabilityAlwaysSafe),
			)
			b.WithFixSuggestion(suggestion)
			b.WithNote(insertSpan, "insert missing closing brace for impl block")
		},
	)
	if !ok {
		return ast.NoItemID, false
	}
	if !okMembers {
		return ast.NoItemID, false
	}

	itemSpan := startSpan.Cover(closeTok.Span)
	itemID := p.arenas.NewImpl(trait, target, attrs, members, implTok.Span, forSpan, itemSpan)
	return itemID, true
}

func (p *Parser) parseImplMembers() ([]ast.ImplMemberSpec, bool) {
	members := make([]ast.ImplMemberSpec, 0)
	hasFatalError := false

	for !p.at(token.RBrace) && !p.at(token.EOF) {
		memberAttrs, attrSpan, ok := p.parseAttributes()
		if !ok {
			hasFatalError = true
			p.resyncImplMember()
			continue
		}

		mods := p.parseFnModifiers()
		if !p.at(token.KwFn) {
			tok := p.lx.Peek()
			p.emitDiagnostic(
				diag.SynIllegalItemInImpl,
				diag.SevError,
				tok.Span,
				"only function declarations are allowed inside impl blocks",
				nil,
			)
			hasFatalError = true
			if !p.at(token.EOF) {
				p.advance()
			}
			p.resyncImplMember()
			continue
		}

		fnData, ok := p.parseFnDefinition(attrSpan, mods)
		if !ok {
			hasFatalError = true
			p.resyncImplMember()
			continue
		}

		fnPayload := p.arenas.NewExternFn(
			fnData.name,
			fnData.nameSpan,
			fnData.generics,
			fnData.genericCommas,
			fnData.genericsTrailing,
			fnData.genericsSpan,
			fnData.typeParams,
			fnData.params,
			fnData.paramCommas,
			fnData.paramsTrailing,
			fnData.fnKwSpan,
			fnData.paramsSpan,
			fnData.returnSpan,
			fnData.semicolonSpan,
			fnData.returnType,
			fnData.body,
			fnData.flags,
			memberAttrs,
			fnData.span,
		)
		members = append(members, ast.ImplMemberSpec{
			Kind: ast.ImplMemberFn,
			Fn:   fnPayload,
			Span: fnData.span,
		})
	}

	return members, !hasFatalError
}

func (p *Parser) resyncImplMember() {
	p.resyncUntil(token.RBrace, token.KwFn, token.KwPub, token.KwAsync, token.At)
}
