package cmd_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/samwightt/gqlbind/cmd"
	"github.com/samwightt/gqlbind/pkg/typegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var typesTestSchema = heredoc.Doc(`
	"A user in the system"
	type User implements Node {
	  id: ID!
	  name: String!
	  status: Status!
	}

	"Input for creating a user"
	input CreateUserInput {
	  name: String!
	}

	"Possible statuses"
	enum Status {
	  ACTIVE
	  INACTIVE
	}

	"A node interface"
	interface Node {
	  id: ID!
	}

	"Search result union"
	union SearchResult = User

	type Query {
	  user(id: ID!): User
	  search(term: String!): [SearchResult!]!
	}

	type Mutation {
	  createUser(input: CreateUserInput!): User!
	}
`)

func setupTypesTestSchema(t *testing.T) string {
	t.Helper()
	return writeTypesTestSchema(t, typesTestSchema)
}

func writeTypesTestSchema(t *testing.T, schema string) string {
	t.Helper()
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.graphql")
	err := os.WriteFile(schemaPath, []byte(schema), 0644)
	require.NoError(t, err)
	return schemaPath
}

func TestTypes_TextFormat(t *testing.T) {
	schemaPath := setupTypesTestSchema(t)

	stdout, _, err := cmd.ExecuteWithArgs([]string{"types", "-s", schemaPath, "-f", "text"})
	require.NoError(t, err)

	assert.Contains(t, stdout, "object User # A user in the system")
	assert.Contains(t, stdout, "input CreateUserInput # Input for creating a user")
	assert.Contains(t, stdout, "enum Status # Possible statuses")
	assert.Contains(t, stdout, "interface Node = User # A node interface")
	assert.Contains(t, stdout, "union SearchResult = User # Search result union")

	// Root types are not generated by default
	assert.NotContains(t, stdout, "Query")
	assert.NotContains(t, stdout, "Mutation")
}

func TestTypes_Order(t *testing.T) {
	schemaPath := setupTypesTestSchema(t)

	stdout, _, err := cmd.ExecuteWithArgs([]string{"types", "-s", schemaPath, "-f", "text"})
	require.NoError(t, err)

	// Names are assigned in schema name order, depth first.
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		names = append(names, strings.Fields(line)[1])
	}
	assert.Equal(t, []string{"CreateUserInput", "Node", "User", "Status", "SearchResult"}, names)
}

func TestTypes_JSONFormat(t *testing.T) {
	schemaPath := setupTypesTestSchema(t)

	stdout, _, err := cmd.ExecuteWithArgs([]string{"types", "-s", schemaPath, "-f", "json"})
	require.NoError(t, err)

	var decls []cmd.DeclarationInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &decls))
	require.Len(t, decls, 5)

	byName := make(map[string]cmd.DeclarationInfo)
	for _, d := range decls {
		byName[d.Name] = d
	}
	assert.Equal(t, "object", byName["User"].Kind)
	assert.Equal(t, []string{"Node"}, byName["User"].Implements)
	assert.Equal(t, "A user in the system", byName["User"].Description)
	assert.Equal(t, []string{"User"}, byName["SearchResult"].Variants)
	assert.Equal(t, "union", byName["SearchResult"].Kind)
}

func TestTypes_YAMLFormat(t *testing.T) {
	schemaPath := setupTypesTestSchema(t)

	stdout, _, err := cmd.ExecuteWithArgs([]string{"types", "-s", schemaPath, "-f", "yaml", "--kind", "enum"})
	require.NoError(t, err)

	assert.Contains(t, stdout, "- name: Status")
	assert.Contains(t, stdout, "kind: enum")
	assert.NotContains(t, stdout, "name: User")
}

func TestTypes_PrettyFormat(t *testing.T) {
	schemaPath := setupTypesTestSchema(t)

	stdout, _, err := cmd.ExecuteWithArgs([]string{"types", "-s", schemaPath, "-f", "pretty"})
	require.NoError(t, err)

	// Pretty format should have table borders
	assert.Contains(t, stdout, "─")
	assert.Contains(t, stdout, "│")

	assert.Contains(t, stdout, "kind")
	assert.Contains(t, stdout, "graphql")
	assert.Contains(t, stdout, "variants")
	assert.Contains(t, stdout, "SearchResult")
	assert.Contains(t, stdout, "interface")
}

func TestTypes_IncludeRoot(t *testing.T) {
	schemaPath := setupTypesTestSchema(t)

	stdout, _, err := cmd.ExecuteWithArgs([]string{"types", "-s", schemaPath, "-f", "text", "--include-root"})
	require.NoError(t, err)

	assert.Contains(t, stdout, "object Query")
	assert.Contains(t, stdout, "object Mutation")
}

func TestTypes_NonExistentSchema(t *testing.T) {
	_, _, err := cmd.ExecuteWithArgs([]string{"types", "-s", "/nonexistent/schema.graphql"})
	assert.ErrorContains(t, err, "schema file does not exist")
}

func TestTypes_KindFilter_Single(t *testing.T) {
	schemaPath := setupTypesTestSchema(t)

	stdout, _, err := cmd.ExecuteWithArgs([]string{"types", "-s", schemaPath, "-f", "text", "--kind", "enum"})
	require.NoError(t, err)

	assert.Equal(t, "enum Status # Possible statuses\n", stdout)
}

func TestTypes_KindFilter_Multiple(t *testing.T) {
	schemaPath := setupTypesTestSchema(t)

	stdout, _, err := cmd.ExecuteWithArgs([]string{"types", "-s", schemaPath, "-f", "text", "--kind", "type", "--kind", "input"})
	require.NoError(t, err)

	assert.Contains(t, stdout, "object User")
	assert.Contains(t, stdout, "input CreateUserInput")
	assert.NotContains(t, stdout, "enum")
	assert.NotContains(t, stdout, "union")
}

func TestTypes_KindFilter_CaseInsensitive(t *testing.T) {
	schemaPath := setupTypesTestSchema(t)

	stdout, _, err := cmd.ExecuteWithArgs([]string{"types", "-s", schemaPath, "-f", "text", "--kind", "UNION"})
	require.NoError(t, err)

	assert.Contains(t, stdout, "union SearchResult")
}

func TestTypes_KindFilter_Invalid(t *testing.T) {
	schemaPath := setupTypesTestSchema(t)

	_, _, err := cmd.ExecuteWithArgs([]string{"types", "-s", schemaPath, "--kind", "scalar"})
	assert.ErrorContains(t, err, "invalid kind 'scalar'")
}

func TestTypes_ImplementsFilter(t *testing.T) {
	schemaPath := writeTypesTestSchema(t, heredoc.Doc(`
		interface Node {
		  id: ID!
		}

		type User implements Node {
		  id: ID!
		}

		type Post implements Node {
		  id: ID!
		}

		type Comment {
		  id: ID!
		}

		type Query {
		  node: Node
		}
	`))

	stdout, _, err := cmd.ExecuteWithArgs([]string{"types", "-s", schemaPath, "-f", "text", "--implements", "Node"})
	require.NoError(t, err)

	assert.Contains(t, stdout, "object User")
	assert.Contains(t, stdout, "object Post")
	assert.NotContains(t, stdout, "Comment")
	assert.NotContains(t, stdout, "interface Node")
}

func TestTypes_ImplementsFilter_Union(t *testing.T) {
	schemaPath := setupTypesTestSchema(t)

	stdout, _, err := cmd.ExecuteWithArgs([]string{"types", "-s", schemaPath, "-f", "text", "--implements", "SearchResult"})
	require.NoError(t, err)

	assert.Equal(t, "object User # A user in the system\n", stdout)
}

func TestTypes_ImplementsFilter_DidYouMean(t *testing.T) {
	schemaPath := setupTypesTestSchema(t)

	_, _, err := cmd.ExecuteWithArgs([]string{"types", "-s", schemaPath, "--implements", "Nod"})
	assert.ErrorContains(t, err, "interface 'Nod' was not generated, did you mean 'Node'?")
}

func TestTypes_Operations(t *testing.T) {
	schemaPath := setupTypesTestSchema(t)
	opPath := filepath.Join(t.TempDir(), "user.graphql")
	require.NoError(t, os.WriteFile(opPath, []byte(`query GetUser($id: ID!) { user(id: $id) { id status } }`), 0644))

	stdout, _, err := cmd.ExecuteWithArgs([]string{"types", "-s", schemaPath, "-f", "text", opPath})
	require.NoError(t, err)

	assert.Contains(t, stdout, "input GetUserVariables (GetUser)")
	assert.Contains(t, stdout, "object GetUserQuery (Query)")
	assert.Contains(t, stdout, "object GetUserQueryUser (User)")
	assert.Contains(t, stdout, "enum Status")
	assert.NotContains(t, stdout, "CreateUserInput")
	assert.NotContains(t, stdout, "SearchResult")
}

func TestTypes_Operations_ValidationError(t *testing.T) {
	schemaPath := setupTypesTestSchema(t)
	opPath := filepath.Join(t.TempDir(), "bad.graphql")
	require.NoError(t, os.WriteFile(opPath, []byte("query Bad { user(id: \"1\") { nme } }"), 0644))

	_, stderr, err := cmd.ExecuteWithArgs([]string{"types", "-s", schemaPath, opPath})
	require.ErrorIs(t, err, cmd.ErrValidationFailed)

	assert.Contains(t, stderr, "bad.graphql has 1 error")
	assert.Contains(t, stderr, `Cannot query field "nme" on type "User"`)
	assert.Contains(t, stderr, "did you mean `name`?")
}

func TestTypes_CustomScalarFlag(t *testing.T) {
	schemaPath := writeTypesTestSchema(t, heredoc.Doc(`
		scalar DateTime

		type Event {
		  at: DateTime!
		}

		type Query {
		  events: [Event!]!
		}
	`))

	stdout, _, err := cmd.ExecuteWithArgs([]string{"types", "-s", schemaPath, "-f", "text", "--scalar", "DateTime=time.Time"})
	require.NoError(t, err)

	assert.Equal(t, "object Event\n", stdout)
}

func TestTypes_InvalidScalarMapping(t *testing.T) {
	schemaPath := setupTypesTestSchema(t)

	_, _, err := cmd.ExecuteWithArgs([]string{"types", "-s", schemaPath, "--scalar", "String=int"})
	assert.ErrorIs(t, err, typegen.ErrInvalidConfiguration)
	assert.ErrorContains(t, err, "built-in scalar mappings cannot be overridden")
}
