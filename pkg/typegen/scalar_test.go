package typegen_test

import (
	"testing"

	"github.com/samwightt/gqlbind/pkg/typegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarMapper_Builtins(t *testing.T) {
	m, err := typegen.NewScalarMapper(nil, "")
	require.NoError(t, err)

	expected := map[string]string{
		"Int":     "int32",
		"Float":   "float64",
		"String":  "string",
		"Boolean": "bool",
		"ID":      "string",
	}
	for name, goType := range expected {
		got, ok := m.Map(name)
		assert.True(t, ok, name)
		assert.Equal(t, goType, got.String(), name)
		assert.True(t, typegen.IsBuiltinScalar(name))
	}
	assert.False(t, typegen.IsBuiltinScalar("DateTime"))
}

func TestScalarMapper_Custom(t *testing.T) {
	m, err := typegen.NewScalarMapper(map[string]string{
		"DateTime": "time.Time",
		"UUID":     "github.com/google/uuid.UUID",
		"Cursor":   "string",
	}, "")
	require.NoError(t, err)

	got, ok := m.Map("DateTime")
	assert.True(t, ok)
	assert.Equal(t, typegen.GoType{Path: "time", Name: "Time"}, got)

	got, ok = m.Map("UUID")
	assert.True(t, ok)
	assert.Equal(t, typegen.GoType{Path: "github.com/google/uuid", Name: "UUID"}, got)
	assert.Equal(t, "github.com/google/uuid.UUID", got.String())

	got, ok = m.Map("Cursor")
	assert.True(t, ok)
	assert.Equal(t, typegen.GoType{Name: "string"}, got)
}

func TestScalarMapper_Fallback(t *testing.T) {
	m, err := typegen.NewScalarMapper(nil, "")
	require.NoError(t, err)

	got, ok := m.Map("JSON")
	assert.False(t, ok)
	assert.Equal(t, "string", got.String())

	m, err = typegen.NewScalarMapper(nil, "encoding/json.RawMessage")
	require.NoError(t, err)

	got, ok = m.Map("JSON")
	assert.False(t, ok)
	assert.Equal(t, typegen.GoType{Path: "encoding/json", Name: "RawMessage"}, got)
}

func TestScalarMapper_Rejects(t *testing.T) {
	tests := map[string]map[string]string{
		"builtin override": {"ID": "int64"},
		"empty name":       {" ": "string"},
		"empty type":       {"Date": ""},
		"unexported type":  {"Date": "time.time"},
		"trailing slash":   {"Date": "example.com/"},
	}
	for name, custom := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := typegen.NewScalarMapper(custom, "")
			assert.ErrorIs(t, err, typegen.ErrInvalidConfiguration)
		})
	}
}

func TestParseGoType(t *testing.T) {
	tests := []struct {
		expr    string
		want    typegen.GoType
		wantErr bool
	}{
		{expr: "string", want: typegen.GoType{Name: "string"}},
		{expr: " int64 ", want: typegen.GoType{Name: "int64"}},
		{expr: "time.Duration", want: typegen.GoType{Path: "time", Name: "Duration"}},
		{expr: "github.com/shopspring/decimal.Decimal", want: typegen.GoType{Path: "github.com/shopspring/decimal", Name: "Decimal"}},
		{expr: "gopkg.in/guregu/null.v4.String", want: typegen.GoType{Path: "gopkg.in/guregu/null.v4", Name: "String"}},
		{expr: "", wantErr: true},
		{expr: "github.com/foo", wantErr: true},
		{expr: ".Time", wantErr: true},
		{expr: "map[string]any", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := typegen.ParseGoType(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
