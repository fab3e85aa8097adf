package parser

import (
	"github.com/samochreno/ace-sub002/internal/ast"
	"github.com/samochreno/ace-sub002/internal/diag"
	"github.com/samochreno/ace-sub002/internal/fix"
	"github.com/samochreno/ace-sub002/internal/source"
	"github.com/samochreno/ace-sub002/internal/token"
)

// fnDefinition holds the pieces of a parsed function signature and optional body,
// shared by top-level functions, extern functions, and trait function requirements.
type fnDefinition struct {
	name             source.StringID
	nameSpan         source.Span
	generics         []source.StringID
	genericCommas    []source.Span
	genericsTrailing bool
	genericsSpan     source.Span
	typeParams       []ast.TypeParamSpec
	params           []ast.FnParam
	paramCommas      []source.Span
	paramsTrailing   bool
	fnKwSpan         source.Span
	paramsSpan       source.Span
	returnSpan       source.Span
	semicolonSpan    source.Span
	returnType       ast.TypeID
	body             ast.StmtID
	flags            ast.FnModifier
	span             source.Span
}

// parseFnDefinition parses everything from the 'fn' keyword through the function body
// or terminating ';'. attrSpan/mods describe attributes and modifiers the caller already
// consumed before the 'fn' keyword.
func (p *Parser) parseFnDefinition(attrSpan source.Span, mods fnModifiers) (fnDefinition, bool) {
	def := fnDefinition{flags: mods.flags, returnType: ast.NoTypeID}

	fnTok := p.advance() // KwFn
	def.fnKwSpan = fnTok.Span
	startSpan := fnTok.Span
	if mods.hasSpan {
		startSpan = mods.span.Cover(startSpan)
	}
	if attrSpan.End > attrSpan.Start {
		startSpan = attrSpan.Cover(startSpan)
	}

	nameID, ok := p.parseIdent()
	if !ok {
		p.resyncUntil(token.LParen, token.LBrace, token.Semicolon)
		return def, false
	}
	def.name = nameID
	def.nameSpan = p.lastSpan

	typeParams, generics, genericCommas, genericsTrailing, genericsSpan, ok := p.parseFnGenerics()
	if !ok {
		p.resyncUntil(token.LParen, token.LBrace, token.Semicolon)
		return def, false
	}
	def.typeParams = typeParams
	def.generics = generics
	def.genericCommas = genericCommas
	def.genericsTrailing = genericsTrailing
	def.genericsSpan = genericsSpan

	openTok, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after function name")
	if !ok {
		p.resyncUntil(token.LBrace, token.Semicolon)
		return def, false
	}

	params, paramCommas, paramsTrailing, closeSpan, ok := p.parseFnParams()
	if !ok {
		return def, false
	}
	def.params = params
	def.paramCommas = paramCommas
	def.paramsTrailing = paramsTrailing
	def.paramsSpan = openTok.Span.Cover(closeSpan)

	if p.at(token.Arrow) {
		arrowTok := p.advance()
		if p.at(token.LBrace) {
			p.emitDiagnostic(
				diag.SynUnexpectedToken,
				diag.SevError,
				arrowTok.Span,
				"expected type after '->' in function signature",
				func(b *diag.ReportBuilder) {
					if b == nil {
						return
					}
					fixID := fix.MakeFixID(diag.SynUnexpectedToken, arrowTok.Span)
					suggestion := fix.DeleteSpan(
						"remove '->' to simplify the function signature",
						arrowTok.Span,
						"",
						fix.WithID(fixID),
					)
					b.WithFixSuggestion(suggestion)
					b.WithNote(arrowTok.Span, "remove '->' to simplify the function signature")
				},
			)
			p.resyncUntil(token.LBrace, token.Semicolon)
			return def, false
		}
		returnType, okType := p.parseTypePrefix()
		if !okType {
			p.resyncUntil(token.LBrace, token.Semicolon)
			return def, false
		}
		def.returnType = returnType
		def.returnSpan = arrowTok.Span.Cover(p.arenas.Types.Get(returnType).Span)
	}

	switch {
	case p.at(token.LBrace):
		bodyStmtID, okBody := p.parseBlock()
		if !okBody {
			return def, false
		}
		def.body = bodyStmtID
		if stmt := p.arenas.Stmts.Get(bodyStmtID); stmt != nil {
			def.span = startSpan.Cover(stmt.Span)
		} else {
			def.span = startSpan.Cover(p.lastSpan)
		}
	case p.at(token.Semicolon):
		semiTok := p.advance()
		def.semicolonSpan = semiTok.Span
		def.span = startSpan.Cover(semiTok.Span)
	default:
		_, okSemi := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after function signature", func(b *diag.ReportBuilder) {
			if b == nil {
				return
			}
			insertSpan := p.lastSpan.ZeroideToEnd()
			fixID := fix.MakeFixID(diag.SynExpectSemicolon, insertSpan)
			suggestion := fix.InsertText(
				"insert ';' after function signature",
				insertSpan,
				";",
				"",
				fix.WithID(fixID),
				fix.WithKind(diag.FixKindRefactor),
				fix.WithApplicability(diag.FixApplicabilityAlwaysSafe),
			)
			b.WithFixSuggestion(suggestion)
			b.WithNote(insertSpan, "insert ';' after function signature")
		})
		if !okSemi {
			return def, false
		}
		def.semicolonSpan = p.lastSpan
		def.span = startSpan.Cover(p.lastSpan)
	}

	return def, true
}

// parseFnItem parses a top-level function item: modifiers, 'fn' name, signature, body|';'.
func (p *Parser) parseFnItem(attrs []ast.Attr, attrSpan source.Span, mods fnModifiers) (ast.ItemID, bool) {
	def, ok := p.parseFnDefinition(attrSpan, mods)
	if !ok {
		return ast.NoItemID, false
	}

	itemID := p.arenas.NewFn(
		def.name,
		def.nameSpan,
		def.generics,
		def.genericCommas,
		def.genericsTrailing,
		def.genericsSpan,
		def.typeParams,
		def.params,
		def.paramCommas,
		def.paramsTrailing,
		def.fnKwSpan,
		def.paramsSpan,
		def.returnSpan,
		def.semicolonSpan,
		def.returnType,
		def.body,
		def.flags,
		attrs,
		def.span,
	)
	return itemID, true
}
