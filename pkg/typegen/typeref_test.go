package typegen_test

import (
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/samwightt/gqlbind/pkg/typegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
)

var typeRefSchema = heredoc.Doc(`
	scalar DateTime

	interface Node {
	  id: ID!
	}

	type User implements Node {
	  id: ID!
	}

	type Query {
	  a: [[String!]]!
	  b: [String!]
	  c: [String]!
	  d: Int
	  e: [[[Int!]!]]
	  node: Node
	  nodes: [Node]!
	  at: DateTime
	  user: User!
	}
`)

func TestResolve_RoundTrip(t *testing.T) {
	ctx := newContext(t, typeRefSchema, typegen.Config{CustomScalars: map[string]string{"DateTime": "time.Time"}})
	query := ctx.Schema().Query

	tests := []struct {
		field  string
		goType string
	}{
		{"a", "[]*[]string"},
		{"b", "*[]string"},
		{"c", "[]*string"},
		{"d", "*int32"},
		{"e", "*[]*[][]int32"},
		{"node", "Node"},
		{"nodes", "[]Node"},
		{"at", "*time.Time"},
		{"user", "User"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			field := query.Fields.ForName(tt.field)
			require.NotNil(t, field)

			ref, err := typegen.Resolve(ctx, field.Type)
			require.NoError(t, err)
			assert.Equal(t, field.Type.String(), ref.String())
			assert.Equal(t, tt.goType, ref.GoString())
		})
	}
}

func TestResolve_PerLevelNullability(t *testing.T) {
	ctx := newContext(t, typeRefSchema, typegen.Config{})
	query := ctx.Schema().Query

	nullableList, err := typegen.Resolve(ctx, query.Fields.ForName("b").Type)
	require.NoError(t, err)
	nonNullList, err := typegen.Resolve(ctx, query.Fields.ForName("c").Type)
	require.NoError(t, err)

	// [String!]
	assert.True(t, nullableList.IsList())
	assert.True(t, nullableList.Nullable)
	assert.False(t, nullableList.Elem.Nullable)

	// [String]!
	assert.True(t, nonNullList.IsList())
	assert.False(t, nonNullList.Nullable)
	assert.True(t, nonNullList.Elem.Nullable)

	assert.NotEqual(t, nullableList.GoString(), nonNullList.GoString())
}

func TestResolve_GeneratesNamedTypes(t *testing.T) {
	ctx := newContext(t, typeRefSchema, typegen.Config{})

	ref, err := typegen.Resolve(ctx, ctx.Schema().Query.Fields.ForName("user").Type)
	require.NoError(t, err)

	leaf := ref.Leaf()
	assert.Equal(t, "User", leaf.Named)
	assert.Equal(t, ast.Object, leaf.Kind)
	assert.Equal(t, 0, ref.Depth())

	user, ok := ctx.Declaration("User")
	require.True(t, ok)
	assert.Equal(t, []string{"Node"}, user.Implements)
	_, ok = ctx.Declaration("Node")
	assert.True(t, ok)
}

func TestResolve_DeepNesting(t *testing.T) {
	ctx := newContext(t, typeRefSchema, typegen.Config{})

	const depth = 64
	typ := ast.NonNullNamedType("Int", nil)
	for i := 0; i < depth; i++ {
		typ = &ast.Type{Elem: typ, NonNull: i%3 == 0}
	}

	ref, err := typegen.Resolve(ctx, typ)
	require.NoError(t, err)
	assert.Equal(t, depth, ref.Depth())
	assert.Equal(t, typ.String(), ref.String())
	assert.Equal(t, "Int", ref.Leaf().Named)
	assert.False(t, ref.Leaf().Nullable)
}

func TestResolve_UnknownType(t *testing.T) {
	ctx := newContext(t, typeRefSchema, typegen.Config{})

	_, err := typegen.Resolve(ctx, ast.NamedType("Usr", nil))
	require.ErrorIs(t, err, typegen.ErrUnresolvedType)
	assert.ErrorContains(t, err, "did you mean 'User'?")
}
