package typegen

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// TypeRef is a resolved GraphQL type reference. List levels chain through
// Elem; the innermost level carries the named type. Nullability is recorded
// per level, so [String!] and [String]! stay distinct.
type TypeRef struct {
	Elem     *TypeRef `json:"elem,omitempty" yaml:"elem,omitempty"`
	Nullable bool     `json:"nullable" yaml:"nullable"`

	// Leaf only.
	Named  string             `json:"named,omitempty" yaml:"named,omitempty"`
	Kind   ast.DefinitionKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	GoType GoType             `json:"goType,omitempty" yaml:"goType,omitempty"`
}

// IsList reports whether this level is a list.
func (t *TypeRef) IsList() bool {
	return t.Elem != nil
}

// Leaf returns the innermost (named) level.
func (t *TypeRef) Leaf() *TypeRef {
	for t.Elem != nil {
		t = t.Elem
	}
	return t
}

// Depth is the number of list levels wrapping the named type.
func (t *TypeRef) Depth() int {
	n := 0
	for ; t.Elem != nil; t = t.Elem {
		n++
	}
	return n
}

func (t *TypeRef) levels() []*TypeRef {
	var levels []*TypeRef
	for cur := t; cur != nil; cur = cur.Elem {
		levels = append(levels, cur)
	}
	return levels
}

// String renders the reference in GraphQL notation, e.g. "[[String!]]!".
func (t *TypeRef) String() string {
	levels := t.levels()
	leaf := levels[len(levels)-1]
	s := leaf.Named
	for i := len(levels) - 1; i >= 0; i-- {
		if i < len(levels)-1 {
			s = "[" + s + "]"
		}
		if !levels[i].Nullable {
			s += "!"
		}
	}
	return s
}

// GoString renders the reference as a Go type expression. Nullable levels
// become pointers, except for interface and union types, which are nilable
// already.
func (t *TypeRef) GoString() string {
	levels := t.levels()
	leaf := levels[len(levels)-1]
	s := leaf.GoType.String()
	if leaf.GoType.Path != "" {
		s = leaf.GoType.Path[strings.LastIndex(leaf.GoType.Path, "/")+1:] + "." + leaf.GoType.Name
	}
	for i := len(levels) - 1; i >= 0; i-- {
		if i < len(levels)-1 {
			s = "[]" + s
		}
		if levels[i].Nullable && !(levels[i] == leaf && isAbstract(leaf.Kind)) {
			s = "*" + s
		}
	}
	return s
}

func isAbstract(kind ast.DefinitionKind) bool {
	return kind == ast.Interface || kind == ast.Union
}

// Resolve converts a schema type reference into a TypeRef, generating the
// declaration of the named type first if it has not been generated yet.
func Resolve(ctx *Context, t *ast.Type) (*TypeRef, error) {
	return ctx.resolve(t, "", "")
}

func (c *Context) resolve(t *ast.Type, parent, field string) (*TypeRef, error) {
	named := t
	for named.Elem != nil {
		named = named.Elem
	}

	def := c.schema.Types[named.NamedType]
	if def == nil {
		return nil, c.unresolved(named.NamedType, parent, field, named.Position)
	}

	leaf := &TypeRef{Named: def.Name, Kind: def.Kind}
	if def.Kind == ast.Scalar {
		leaf.GoType = c.mapScalar(def.Name)
	} else {
		name, err := c.ensure(def)
		if err != nil {
			return nil, err
		}
		leaf.GoType = GoType{Name: name}
	}
	return wrap(t, leaf), nil
}

// wrap applies the list and non-null modifiers of t around leaf, innermost
// first.
func wrap(t *ast.Type, leaf *TypeRef) *TypeRef {
	var levels []*ast.Type
	for cur := t; cur != nil; cur = cur.Elem {
		levels = append(levels, cur)
	}
	leaf.Nullable = !levels[len(levels)-1].NonNull
	ref := leaf
	for i := len(levels) - 2; i >= 0; i-- {
		ref = &TypeRef{Elem: ref, Nullable: !levels[i].NonNull}
	}
	return ref
}
