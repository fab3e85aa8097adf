package ast

import "github.com/samochreno/ace-sub002/internal/source"

// Attr describes a user-facing attribute of the form `@name(args...)`.
type Attr struct {
	Name source.StringID
	Args []ExprID
	Span source.Span
}
