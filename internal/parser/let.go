package parser

import (
	"fmt"

	"github.com/samochreno/ace-sub002/internal/ast"
	"github.com/samochreno/ace-sub002/internal/diag"
	"github.com/samochreno/ace-sub002/internal/fix"
	"github.com/samochreno/ace-sub002/internal/source"
	"github.com/samochreno/ace-sub002/internal/token"
)

// LetBinding represents a parsed let binding: [mut] name : Type? = Expr?
// Reused for let items, for-loop initializers, and let statements.
type LetBinding struct {
	Name     source.StringID
	NameSpan source.Span
	Type     ast.TypeID
	Value    ast.ExprID
	IsMut    bool
	Span     source.Span
}

// parseLetBinding parses a let binding's body, shared by let items and let statements.
func (p *Parser) parseLetBinding() (LetBinding, bool) {
	startSpan := p.lx.Peek().Span

	var isMut bool
	if p.at(token.KwMut) {
		isMut = true
		p.advance()
	}

	nameID, ok := p.parseIdent()
	if !ok {
		return LetBinding{}, false
	}
	nameSpan := p.lastSpan

	typeID, ok := p.parseTypeExpr()
	if !ok {
		return LetBinding{}, false
	}

	var valueID ast.ExprID = ast.NoExprID
	if p.at(token.Assign) {
		tokAssign := p.advance()
		var okValue bool
		valueID, okValue = p.parseExpr()
		if !okValue {
			p.emitDiagnostic(
				diag.SynExpectExpression,
				diag.SevError,
				tokAssign.Span,
				"expected expression after '='",
				func(b *diag.ReportBuilder) {
					if b == nil {
						return
					}
					fixID := fmt.Sprintf("%s-%d-%d", diag.SynExpectExpression.ID(), tokAssign.Span.File, tokAssign.Span.Start)
					suggestion := fix.DeleteSpan(
						"remove '=' to simplify the let binding",
						tokAssign.Span,
						"",
						fix.WithID(fixID),
						fix.WithKind(diag.FixKindRefactor),
						fix.WithApplicability(diag.FixApplicabilityAlwaysSafe),
					)
					b.WithFixSuggestion(suggestion)
					b.WithNote(tokAssign.Span, "remove '=' to simplify the let binding")
				},
			)
			return LetBinding{}, false
		}
	}

	if typeID == ast.NoTypeID && valueID == ast.NoExprID {
		spanWhereShouldBeColon := p.lastSpan.ZeroideToEnd()
		spanWhereUnexpectedIdent := p.currentErrorSpan()
		combinedSpan := spanWhereShouldBeColon.Cover(spanWhereUnexpectedIdent)
		p.emitDiagnostic(
			diag.SynExpectColon,
			diag.SevError,
			combinedSpan,
			"let binding must have either type annotation or initializer",
			func(b *diag.ReportBuilder) {
				if b == nil {
					return
				}
				fixIDInsertColon := fmt.Sprintf(
					"%s-%d-%d",
					diag.SynExpectColon.ID(),
					spanWhereShouldBeColon.File,
					spanWhereShouldBeColon.Start,
				)
				suggestionInsertColon := fix.InsertText(
					"insert colon to add type annotation",
					spanWhereShouldBeColon,
					":",
					"",
					fix.WithID(fixIDInsertColon),
					fix.WithKind(diag.FixKindRefactor),
					fix.WithApplicability(diag.FixApplicabilityAlwaysSafe),
					fix.Preferred(),
				)
				b.WithFixSuggestion(suggestionInsertColon)
				fixIDDeleteIdent := fmt.Sprintf(
					"%s-%d-%d",
					diag.SynExpectType.ID(),
					spanWhereUnexpectedIdent.File,
					spanWhereUnexpectedIdent.Start,
				)
				suggestionDeleteIdent := fix.DeleteSpan(
					"remove ident to simplify the let binding",
					spanWhereUnexpectedIdent,
					"",
					fix.WithID(fixIDDeleteIdent),
					fix.WithKind(diag.FixKindRefactor),
					fix.WithApplicability(diag.FixApplicabilityAlwaysSafe),
				)
				b.WithFixSuggestion(suggestionDeleteIdent)
				b.WithNote(spanWhereUnexpectedIdent, "insert colon to add type annotation or remove ident to simplify the let binding")
			},
		)
		return LetBinding{}, false
	}

	binding := LetBinding{
		Name:     nameID,
		NameSpan: nameSpan,
		Type:     typeID,
		Value:    valueID,
		IsMut:    isMut,
		Span:     startSpan.Cover(p.lastSpan),
	}

	return binding, true
}

// parseLetItem parses a top-level let item with default (private) visibility.
func (p *Parser) parseLetItem() (ast.ItemID, bool) {
	return p.parseLetItemWithVisibility(nil, source.Span{}, ast.VisPrivate, source.Span{}, false)
}

// parseLetItemWithVisibility parses a top-level let item:
//
//	[pub] let [mut] name: Type = Expr;
//	[pub] let [mut] name: Type;
//	[pub] let [mut] name = Expr;
func (p *Parser) parseLetItemWithVisibility(attrs []ast.Attr, attrSpan source.Span, visibility ast.Visibility, prefixSpan source.Span, hasPrefix bool) (ast.ItemID, bool) {
	letTok := p.advance() // KwLet
	startSpan := letTok.Span
	if attrSpan.End > attrSpan.Start {
		startSpan = attrSpan.Cover(startSpan)
	}
	if hasPrefix {
		startSpan = prefixSpan.Cover(startSpan)
	}

	binding, ok := p.parseLetBinding()
	if !ok {
		return ast.NoItemID, false
	}

	insertPos := p.lastSpan.ZeroideToEnd()

	semiTok, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected semicolon after let item", func(b *diag.ReportBuilder) {
		if b == nil {
			return
		}
		fixID := fmt.Sprintf("%s-%d-%d", diag.SynExpectSemicolon.ID(), insertPos.File, insertPos.Start)
		suggestion := fix.InsertText(
			"insert semicolon after let item",
			insertPos,
			";",
			"",
			fix.WithID(fixID),
			fix.WithKind(diag.FixKindRefactor),
			fix.WithApplicability(diag.FixApplicabilityAlwaysSafe),
			fix.Preferred(),
		)
		b.WithFixSuggestion(suggestion)
		b.WithNote(insertPos, "insert missing semicolon")
	})
	if !ok {
		p.resyncTop()
		return ast.NoItemID, false
	}

	finalSpan := startSpan.Cover(semiTok.Span)
	itemID := p.arenas.Items.NewLet(
		binding.Name,
		binding.NameSpan,
		binding.Type,
		binding.Value,
		binding.IsMut,
		attrs,
		visibility,
		finalSpan,
	)

	return itemID, true
}
