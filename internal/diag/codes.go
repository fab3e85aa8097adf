package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical (owned by the lexer; reserved range).
	LexInfo                     Code = 1000
	LexUnknownChar               Code = 1001
	LexUnterminatedString        Code = 1002
	LexUnterminatedBlockComment  Code = 1003
	LexBadNumber                 Code = 1004
	LexTokenTooLong              Code = 1005

	// Syntax (owned by the parser; reserved range).
	SynInfo                    Code = 2000
	SynUnexpectedToken         Code = 2001
	SynUnclosedDelimiter       Code = 2002
	SynUnclosedBlockComment    Code = 2003
	SynUnclosedString          Code = 2004
	SynUnclosedChar            Code = 2005
	SynUnclosedParen           Code = 2006
	SynUnclosedBrace           Code = 2007
	SynUnclosedBracket         Code = 2008
	SynUnclosedSquareBracket   Code = 2009
	SynUnclosedAngleBracket    Code = 2010
	SynUnclosedCurlyBracket    Code = 2011
	SynExpectSemicolon         Code = 2012
	SynForMissingIn            Code = 2013
	SynForBadHeader            Code = 2014
	SynModifierNotAllowed      Code = 2015
	SynAttributeNotAllowed     Code = 2016
	SynAsyncNotAllowed         Code = 2017
	SynTypeExpectEquals        Code = 2018
	SynTypeExpectBody          Code = 2019
	SynTypeExpectUnionMember   Code = 2020
	SynTypeFieldConflict       Code = 2021
	SynTypeDuplicateMember     Code = 2022
	SynTypeNotAllowed          Code = 2023
	SynEnumExpectBody          Code = 2024
	SynEnumExpectRBrace        Code = 2025
	SynIllegalItemInExtern     Code = 2026
	SynVisibilityReduction     Code = 2027
	SynFatArrowOutsideParallel Code = 2028
	SynPragmaPosition          Code = 2029
	SynFnNotAllowed            Code = 2030
	SynIllegalItemInImpl       Code = 2031

	SynInfoImportGroup    Code = 2100
	SynUnexpectedTopLevel Code = 2101
	SynExpectIdentifier   Code = 2102
	SynExpectModuleSeg    Code = 2103
	SynExpectItemAfterDbl Code = 2104
	SynExpectIdentAfterAs Code = 2105
	SynEmptyImportGroup   Code = 2106

	SynInfoTypeExpr       Code = 2200
	SynExpectRightBracket Code = 2201
	SynExpectType         Code = 2202
	SynExpectExpression   Code = 2203
	SynExpectColon        Code = 2204
	SynUnexpectedModifier Code = 2205
	SynInvalidTupleIndex  Code = 2206
	SynVariadicMustBeLast Code = 2207

	// Semantic: declaration and scope (3000-3019).
	SemaInfo                 Code = 3000
	SemaError                Code = 3001
	SemaDuplicateSymbol      Code = 3002
	SemaScopeMismatch        Code = 3003
	SemaShadowSymbol         Code = 3004
	SemaUnresolvedSymbol     Code = 3005
	SemaFnOverride           Code = 3006
	SemaIntrinsicBadContext  Code = 3007
	SemaIntrinsicBadName     Code = 3008
	SemaIntrinsicHasBody     Code = 3009
	SemaAmbiguousCtorOrFn    Code = 3010
	SemaFnNameStyle          Code = 3011
	SemaTagNameStyle         Code = 3012
	SemaModuleMemberNotFound Code = 3013
	SemaModuleMemberNotPublic Code = 3014
	SemaHiddenPublic         Code = 3015
	SemaInaccessibleSymbol   Code = 3016
	SemaWildcardValue        Code = 3017
	SemaWildcardMut          Code = 3018
	SemaNoStdlib             Code = 3019

	// Semantic: typing and operators (3020-3059).
	SemaTypeMismatch          Code = 3020
	SemaInvalidBinaryOperands Code = 3021
	SemaInvalidUnaryOperand   Code = 3022
	SemaExpectTypeOperand     Code = 3023
	SemaConstNotConstant      Code = 3024
	SemaConstCycle            Code = 3025
	SemaNoOverload            Code = 3026
	SemaAmbiguousOverload     Code = 3027
	SemaInvalidBoolContext    Code = 3028
	SemaMissingReturn         Code = 3029
	SemaNonexhaustiveMatch    Code = 3030
	SemaRedundantFinally      Code = 3031
	SemaRecursiveUnsized      Code = 3032
	SemaDeprecatedUsage       Code = 3033
	SemaIntLiteralOutOfRange  Code = 3034
	SemaRawPointerNotAllowed  Code = 3035
	SemaTrivialRecursion      Code = 3036
	SemaUnreachableCode       Code = 3037
	SemaIteratorNotImplemented Code = 3038
	SemaRangeTypeMismatch     Code = 3039
	SemaIndexOutOfBounds      Code = 3040
	SemaNoConversion          Code = 3041
	SemaAmbiguousConversion   Code = 3042
	SemaBorrowNonAddressable  Code = 3043
	SemaBorrowImmutable       Code = 3044
	SemaTypeNotClonable       Code = 3045
	SemaUseAfterMove          Code = 3046
	SemaUnusedBinding         Code = 3047
	SemaLayoutCycle           Code = 3048

	// Semantic: enums (3050-3059).
	SemaEnumVariantNotFound   Code = 3050
	SemaEnumValueOverflow     Code = 3051
	SemaEnumValueTypeMismatch Code = 3052
	SemaEnumDuplicateVariant  Code = 3053
	SemaEnumInvalidBaseType   Code = 3054

	// Semantic: traits and impl blocks (3060-3099).
	SemaTraitDuplicateField     Code = 3060
	SemaTraitDuplicateMethod    Code = 3061
	SemaTraitMethodBody         Code = 3062
	SemaTraitSelfType           Code = 3063
	SemaTraitUnusedTypeParam    Code = 3064
	SemaTraitUnknownAttr        Code = 3065
	SemaTraitBoundNotFound      Code = 3066
	SemaTraitBoundNotTrait      Code = 3067
	SemaTraitBoundDuplicate     Code = 3068
	SemaTraitBoundTypeError     Code = 3069
	SemaTraitMissingField       Code = 3070
	SemaTraitFieldTypeError     Code = 3071
	SemaTraitMissingMethod      Code = 3072
	SemaTraitMethodMismatch     Code = 3073
	SemaTraitFieldAttrMismatch  Code = 3074
	SemaTraitMethodAttrMismatch Code = 3075
	SemaExternDuplicateField    Code = 3076
	SemaExternUnknownAttr       Code = 3077
	SemaAttrConflict            Code = 3078
	SemaAttrSealedExtend        Code = 3079
	SemaAttrReadonlyWrite       Code = 3080
	SemaAttrMissingParameter    Code = 3081
	SemaAttrInvalidParameter    Code = 3082
	SemaImplTargetNotFound      Code = 3083
	SemaImplDuplicateMethod     Code = 3084
	SemaImplMethodNotInTrait    Code = 3085
	SemaUnsatisfiedConstraint   Code = 3086
	SemaUnsizedTypeArgument     Code = 3087
	SemaDynIneligibleMethod     Code = 3088
	SemaDynUnimplementedSuper   Code = 3089
	SemaNotObjectSafe           Code = 3090

	// Semantic: leftover concurrency diagnostics kept for the older
	// task-escape lint, which still applies to a value stored past its
	// owning scope even without a scheduler.
	SemaTaskEscapesScope Code = 3095
	SemaTaskNotAwaited   Code = 3096
	SemaLockRequiresNotHeld Code = 3097
	SemaLockDoubleAcquire   Code = 3098
	SemaLockReleaseNotHeld  Code = 3099

	// I/O.
	IOLoadFileError Code = 4001

	// Reserved for not-yet-implemented surface features.
	FutSignalNotSupported         Code = 7000
	FutMacroNotSupported          Code = 7002
	FutNullCoalescingNotSupported Code = 7005
	FutNestedFnNotSupported       Code = 7006
)

var codeDescription = map[Code]string{
	UnknownCode:                  "Unknown error",
	LexInfo:                      "Lexical information",
	LexUnknownChar:               "Unknown character",
	LexUnterminatedString:        "Unterminated string",
	LexUnterminatedBlockComment:  "Unterminated block comment",
	LexBadNumber:                 "Bad number",
	LexTokenTooLong:              "Token too long",
	SynInfo:                      "Syntax information",
	SynUnexpectedToken:           "Unexpected token",
	SynUnclosedDelimiter:         "Unclosed delimiter",
	SynUnclosedBlockComment:      "Unclosed block comment",
	SynUnclosedString:            "Unclosed string",
	SynUnclosedChar:              "Unclosed char",
	SynUnclosedParen:             "Unclosed parenthesis",
	SynUnclosedBrace:             "Unclosed brace",
	SynUnclosedBracket:           "Unclosed bracket",
	SynUnclosedSquareBracket:     "Unclosed square bracket",
	SynUnclosedAngleBracket:      "Unclosed angle bracket",
	SynUnclosedCurlyBracket:      "Unclosed curly bracket",
	SynExpectSemicolon:           "Expect semicolon",
	SynForMissingIn:              "Missing 'in' in for-in loop",
	SynForBadHeader:              "Malformed for-loop header",
	SynModifierNotAllowed:        "Modifier not allowed here",
	SynAttributeNotAllowed:       "Attribute not allowed here",
	SynAsyncNotAllowed:           "'async' not allowed here",
	SynTypeExpectEquals:          "Expected '=' in type declaration",
	SynTypeExpectBody:            "Expected type body",
	SynTypeExpectUnionMember:     "Expected union member",
	SynTypeFieldConflict:         "Duplicate field in type",
	SynTypeDuplicateMember:       "Duplicate union member",
	SynTypeNotAllowed:            "Type declaration is not allowed here",
	SynEnumExpectBody:            "Expected '{' for enum body",
	SynEnumExpectRBrace:          "Expected '}' after enum body",
	SynIllegalItemInExtern:       "Illegal item inside extern block",
	SynIllegalItemInImpl:         "Illegal item inside impl block",
	SynVisibilityReduction:       "Visibility reduction is not allowed",
	SynFatArrowOutsideParallel:   "Fat arrow is only allowed in compare arms or select arms",
	SynPragmaPosition:            "Pragma must appear at the top of the file",
	SynFnNotAllowed:              "Function declaration is not allowed here",
	SynInfoImportGroup:           "Import group information",
	SynUnexpectedTopLevel:        "Unexpected top level",
	SynExpectIdentifier:          "Expect identifier",
	SynExpectModuleSeg:           "Expect module segment",
	SynExpectItemAfterDbl:        "Expect item after double colon",
	SynExpectIdentAfterAs:        "Expect identifier after as",
	SynEmptyImportGroup:          "Empty import group",
	SynInfoTypeExpr:              "Type expression information",
	SynExpectRightBracket:        "Expect right bracket",
	SynExpectType:                "Expect type",
	SynExpectExpression:          "Expect expression",
	SynExpectColon:               "Expect colon",
	SynUnexpectedModifier:        "Unexpected modifier",
	SynInvalidTupleIndex:         "Invalid tuple index",
	SynVariadicMustBeLast:        "Variadic parameter must be last",

	SemaInfo:                  "Semantic information",
	SemaError:                 "Semantic error",
	SemaDuplicateSymbol:       "Duplicate symbol",
	SemaScopeMismatch:         "Scope stack mismatch",
	SemaShadowSymbol:          "Shadowed symbol",
	SemaUnresolvedSymbol:      "Unresolved symbol",
	SemaFnOverride:            "Invalid function override",
	SemaIntrinsicBadContext:   "Intrinsic declaration outside allowed module",
	SemaIntrinsicBadName:      "Invalid intrinsic name",
	SemaIntrinsicHasBody:      "Intrinsic must not have a body",
	SemaAmbiguousCtorOrFn:     "Ambiguous constructor or function call",
	SemaFnNameStyle:           "Function name style warning",
	SemaTagNameStyle:          "Tag name style warning",
	SemaModuleMemberNotFound:  "Module member not found",
	SemaModuleMemberNotPublic: "Module member is not public",
	SemaHiddenPublic:          "@hidden conflicts with pub",
	SemaInaccessibleSymbol:    "Symbol is not accessible from this scope",
	SemaWildcardValue:         "Wildcard used as value",
	SemaWildcardMut:           "Wildcard mutability",
	SemaNoStdlib:              "stdlib not available in no_std module",

	SemaTypeMismatch:           "Type mismatch",
	SemaInvalidBinaryOperands:  "Invalid operands for binary operator",
	SemaInvalidUnaryOperand:    "Invalid operand for unary operator",
	SemaExpectTypeOperand:      "Expected type operand",
	SemaConstNotConstant:       "Const initializer is not constant",
	SemaConstCycle:             "Const cycle detected",
	SemaNoOverload:             "No matching overload found",
	SemaAmbiguousOverload:      "Ambiguous overload resolution",
	SemaInvalidBoolContext:     "Invalid boolean context",
	SemaMissingReturn:          "Missing return in function",
	SemaNonexhaustiveMatch:     "Non-exhaustive pattern match",
	SemaRedundantFinally:       "Redundant finally clause",
	SemaRecursiveUnsized:       "Recursive value type has infinite size",
	SemaDeprecatedUsage:        "Usage of deprecated element",
	SemaIntLiteralOutOfRange:   "Integer literal out of range for target type",
	SemaRawPointerNotAllowed:   "Raw pointer types are backend-only",
	SemaTrivialRecursion:       "Obvious infinite recursion cycle",
	SemaUnreachableCode:        "Unreachable code",
	SemaIteratorNotImplemented: "Type does not implement iterator",
	SemaRangeTypeMismatch:      "Range operands have incompatible types",
	SemaIndexOutOfBounds:       "Index out of bounds",
	SemaNoConversion:           "No conversion from source to target type",
	SemaAmbiguousConversion:    "Ambiguous conversion from source to target type",
	SemaBorrowNonAddressable:   "Expression is not addressable",
	SemaBorrowImmutable:        "Cannot take a mutable reference to an immutable value",
	SemaTypeNotClonable:        "Type does not implement the copy glue required here",
	SemaUseAfterMove:           "Use of moved value",
	SemaUnusedBinding:          "Binding is never read",
	SemaLayoutCycle:            "Type layout depends on itself",

	SemaEnumVariantNotFound:   "Enum variant not found",
	SemaEnumValueOverflow:     "Enum value overflow",
	SemaEnumValueTypeMismatch: "Enum value type mismatch",
	SemaEnumDuplicateVariant:  "Duplicate enum variant name",
	SemaEnumInvalidBaseType:   "Invalid base type for enum",

	SemaTraitDuplicateField:     "Duplicate field in trait",
	SemaTraitDuplicateMethod:    "Duplicate method in trait",
	SemaTraitMethodBody:         "Trait method must not have a body",
	SemaTraitSelfType:           "Trait method self parameter mismatch",
	SemaTraitUnusedTypeParam:    "Unused trait type parameter",
	SemaTraitUnknownAttr:        "Unknown trait attribute",
	SemaTraitBoundNotFound:      "Trait in bound not found",
	SemaTraitBoundNotTrait:      "Identifier in bound is not a trait",
	SemaTraitBoundDuplicate:     "Duplicate trait in bounds",
	SemaTraitBoundTypeError:     "Invalid trait type argument",
	SemaTraitMissingField:       "Missing required trait field",
	SemaTraitFieldTypeError:     "Trait field type mismatch",
	SemaTraitMissingMethod:      "Missing required trait method",
	SemaTraitMethodMismatch:     "Trait method signature mismatch",
	SemaTraitFieldAttrMismatch:  "Trait field attribute mismatch",
	SemaTraitMethodAttrMismatch: "Trait method attribute mismatch",
	SemaExternDuplicateField:    "Duplicate extern field",
	SemaExternUnknownAttr:       "Unsupported extern attribute",
	SemaAttrConflict:            "Attribute conflict",
	SemaAttrSealedExtend:        "Cannot extend @sealed type",
	SemaAttrReadonlyWrite:       "Cannot write to @readonly field",
	SemaAttrMissingParameter:    "Attribute parameter missing",
	SemaAttrInvalidParameter:    "Invalid attribute parameter",
	SemaImplTargetNotFound:      "Impl target type not found",
	SemaImplDuplicateMethod:     "Duplicate method in impl block",
	SemaImplMethodNotInTrait:    "Method is not a member of the implemented trait",
	SemaUnsatisfiedConstraint:   "Type argument does not satisfy trait bound",
	SemaUnsizedTypeArgument:     "Type argument is unsized where a sized type is required",
	SemaDynIneligibleMethod:     "Trait method is not eligible for dynamic dispatch",
	SemaDynUnimplementedSuper:   "dyn pointer's trait has an unimplemented supertrait",
	SemaNotObjectSafe:           "Trait is not object-safe",

	SemaTaskEscapesScope:    "Value stored past its owning scope without an explicit strong reference",
	SemaTaskNotAwaited:      "Pending computation neither awaited nor returned",
	SemaLockRequiresNotHeld: "Calling function that requires a lock without holding it",
	SemaLockDoubleAcquire:   "Attempting to acquire a lock already held",
	SemaLockReleaseNotHeld:  "Attempting to release a lock not currently held",

	IOLoadFileError: "I/O load file error",

	FutSignalNotSupported:         "'signal' is not supported yet, reserved for future use",
	FutMacroNotSupported:          "'macro' is planned for a future release",
	FutNullCoalescingNotSupported: "null coalescing '??' is not supported yet",
	FutNestedFnNotSupported:       "nested function declarations are not supported yet",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("FUT%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
