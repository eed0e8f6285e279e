package typegen_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-logr/logr"
	"github.com/samwightt/gqlbind/pkg/typegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
)

func TestRunBatch_PreservesJobOrder(t *testing.T) {
	schema := loadSchema(t, operationSchema)

	jobs := []typegen.Job{
		{Name: "model", Schema: schema, Config: typegen.Config{Package: "model"}},
		{Name: "api", Schema: schema, Config: typegen.Config{Package: "api", IncludeRootTypes: true}},
		{Name: "ops", Schema: schema, Config: typegen.Config{Package: "ops"}, Operations: []*ast.QueryDocument{}},
	}

	results, err := typegen.RunBatch(context.Background(), jobs, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "model", results[0].Package)
	assert.Equal(t, "api", results[1].Package)
	assert.Equal(t, "ops", results[2].Package)

	assert.Nil(t, results[0].Lookup("Query"))
	assert.NotNil(t, results[1].Lookup("Query"))
	assert.Empty(t, results[2].Declarations)
}

func TestRunBatch_IndependentContexts(t *testing.T) {
	schema := loadSchema(t, operationSchema)

	var jobs []typegen.Job
	for i := 0; i < 8; i++ {
		jobs = append(jobs, typegen.Job{Name: fmt.Sprintf("job%d", i), Schema: schema})
	}

	results, err := typegen.RunBatch(context.Background(), jobs, 0)
	require.NoError(t, err)

	for _, res := range results[1:] {
		assert.Equal(t, results[0], res)
	}
	assert.NotSame(t, results[0].Declarations[0], results[1].Declarations[0])
}

func TestRunBatch_Operations(t *testing.T) {
	schema := loadSchema(t, operationSchema)
	ctx := newContext(t, operationSchema, typegen.Config{})
	doc := loadQuery(t, ctx, `query Me { me { id } }`)

	results, err := typegen.RunBatch(context.Background(), []typegen.Job{
		{Name: "a", Schema: schema, Operations: []*ast.QueryDocument{doc}},
		{Name: "b", Schema: schema, Operations: []*ast.QueryDocument{doc}},
	}, 1)
	require.NoError(t, err)

	for _, res := range results {
		require.Len(t, res.Operations, 1)
		assert.Equal(t, "MeQuery", res.Operations[0].Data)
	}
}

func TestRunBatch_Failure(t *testing.T) {
	schema := loadSchema(t, operationSchema)

	_, err := typegen.RunBatch(context.Background(), []typegen.Job{
		{Name: "good", Schema: schema},
		{Name: "bad", Schema: schema, Config: typegen.Config{Package: "func"}},
	}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, typegen.ErrInvalidConfiguration)
	assert.ErrorContains(t, err, "job bad:")
}

func TestRunBatch_Cancelled(t *testing.T) {
	schema := loadSchema(t, operationSchema)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := typegen.RunBatch(ctx, []typegen.Job{{Name: "model", Schema: schema}}, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}

func TestJob_Run(t *testing.T) {
	res, err := typegen.Job{Name: "model", Schema: loadSchema(t, minimalSchema)}.Run(logr.Discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"User"}, declarationNames(res.Declarations))
}
