package typegen_test

import (
	"errors"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/samwightt/gqlbind/pkg/typegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamingPolicy_Identifier(t *testing.T) {
	tests := []struct {
		policy typegen.NamingPolicy
		in     string
		want   string
	}{
		{typegen.NamingPreserve, "User", "User"},
		{typegen.NamingPreserve, "user_profile", "User_profile"},
		{typegen.NamingPreserve, "_internal", "Internal"},
		{typegen.NamingPreserve, "9lives", "T9lives"},
		{typegen.NamingPreserve, "héllo", "Hllo"},
		{typegen.NamingPreserve, "", "T"},
		{typegen.NamingCamel, "user_profile", "UserProfile"},
		{typegen.NamingCamel, "UserProfile", "UserProfile"},
		{typegen.NamingCamel, "minPrice", "MinPrice"},
		{typegen.NamingCamel, "__typename", "Typename"},
		{typegen.NamingCamel, "id", "ID"},
		{typegen.NamingCamel, "userId", "UserID"},
		{typegen.NamingCamel, "api_url", "APIURL"},
		{typegen.NamingCamel, "ids", "Ids"},
		{typegen.NamingCamel, "USER_PROFILE", "USERPROFILE"},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy)+"/"+tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Identifier(tt.in))
		})
	}
}

func TestRegistry_AssignIsIdempotent(t *testing.T) {
	r := typegen.NewRegistry(typegen.NamingPreserve, typegen.CollisionSuffix, 0)

	assert.False(t, r.IsAssigned("User"))
	first, err := r.Assign("User")
	require.NoError(t, err)
	second, err := r.Assign("User")
	require.NoError(t, err)

	assert.Equal(t, "User", first)
	assert.Equal(t, first, second)
	assert.True(t, r.IsAssigned("User"))
	assert.Equal(t, 1, r.Len())

	name, ok := r.Lookup("User")
	assert.True(t, ok)
	assert.Equal(t, "User", name)
	_, ok = r.Lookup("Post")
	assert.False(t, ok)
}

func TestRegistry_SuffixPolicy(t *testing.T) {
	r := typegen.NewRegistry(typegen.NamingCamel, typegen.CollisionSuffix, 0)

	names := make(map[string]string)
	for _, schemaName := range []string{"UserProfile", "user_profile", "userProfile"} {
		name, err := r.Assign(schemaName)
		require.NoError(t, err)
		names[schemaName] = name
	}

	assert.Equal(t, map[string]string{
		"UserProfile":  "UserProfile",
		"user_profile": "UserProfile2",
		"userProfile":  "UserProfile3",
	}, names)
}

func TestRegistry_FailPolicy(t *testing.T) {
	r := typegen.NewRegistry(typegen.NamingCamel, typegen.CollisionFail, 0)

	_, err := r.Assign("UserProfile")
	require.NoError(t, err)
	_, err = r.Assign("user_profile")
	require.ErrorIs(t, err, typegen.ErrNameConflict)

	var conflict *typegen.NameConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "user_profile", conflict.SchemaName)
	assert.Equal(t, "UserProfile", conflict.Candidate)
	assert.Equal(t, "UserProfile", conflict.Owner)
	assert.False(t, r.IsAssigned("user_profile"))
}

func TestRegistry_MaxAttemptsExhausted(t *testing.T) {
	r := typegen.NewRegistry(typegen.NamingPreserve, typegen.CollisionSuffix, 2)

	_, err := r.AssignCandidate("a", "Name")
	require.NoError(t, err)
	second, err := r.AssignCandidate("b", "Name")
	require.NoError(t, err)
	assert.Equal(t, "Name2", second)

	_, err = r.AssignCandidate("c", "Name")
	require.ErrorIs(t, err, typegen.ErrNameConflict)

	var conflict *typegen.NameConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, 2, conflict.Attempts)
	assert.Equal(t, "Name2", conflict.Candidate)
	assert.Equal(t, "b", conflict.Owner)
}

func TestRegistry_Reserve(t *testing.T) {
	r := typegen.NewRegistry(typegen.NamingPreserve, typegen.CollisionSuffix, 0)

	require.NoError(t, r.Reserve("String"))
	name, err := r.Assign("String")
	require.NoError(t, err)
	assert.Equal(t, "String2", name)

	// A name already held by a schema type cannot be reserved afterwards.
	assert.ErrorIs(t, r.Reserve("String2"), typegen.ErrNameConflict)
}

func TestRegistry_Bijection(t *testing.T) {
	ctx := newContext(t, heredoc.Doc(`
		type UserProfile { id: ID! }
		type user_profile { id: ID! }
		type userProfile { id: ID! }
		type USER_PROFILE { id: ID! }
		type Query {
		  a: UserProfile
		  b: user_profile
		  c: userProfile
		  d: USER_PROFILE
		}
	`), typegen.Config{Naming: typegen.NamingCamel})

	res, err := typegen.GenerateSchema(ctx)
	require.NoError(t, err)
	require.Len(t, res.Declarations, 4)

	seen := make(map[string]string)
	for _, d := range res.Declarations {
		owner, dup := seen[d.Name]
		assert.False(t, dup, "%s and %s share Go name %s", owner, d.SchemaName, d.Name)
		seen[d.Name] = d.SchemaName

		again, err := ctx.Registry().Assign(d.SchemaName)
		require.NoError(t, err)
		assert.Equal(t, d.Name, again)
	}

	// Sorted schema names claim candidates first.
	assert.Equal(t, "UserProfile", res.Lookup("UserProfile").SchemaName)
}
