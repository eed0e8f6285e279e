package typegen

import (
	"fmt"
	"go/token"
	"strings"
)

// GoType is a named Go type, optionally qualified by its import path.
type GoType struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	Name string `json:"name" yaml:"name"`
}

// String renders the type the way it is written in config: "time.Time",
// "github.com/google/uuid.UUID" or "string".
func (t GoType) String() string {
	if t.Path == "" {
		return t.Name
	}
	return t.Path + "." + t.Name
}

// ParseGoType parses a Go type expression of the form "Name" or
// "import/path.Name".
func ParseGoType(expr string) (GoType, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return GoType{}, fmt.Errorf("empty Go type")
	}
	slash := strings.LastIndex(expr, "/")
	dot := strings.LastIndex(expr, ".")
	if dot < slash {
		return GoType{}, fmt.Errorf("%q has no type name after its import path", expr)
	}
	if dot < 0 {
		if !token.IsIdentifier(expr) {
			return GoType{}, fmt.Errorf("%q is not a Go identifier", expr)
		}
		return GoType{Name: expr}, nil
	}
	path, name := expr[:dot], expr[dot+1:]
	if !token.IsIdentifier(name) || !token.IsExported(name) {
		return GoType{}, fmt.Errorf("%q is not an exported Go identifier", name)
	}
	if path == "" || strings.ContainsAny(path, " \t\"\\") || strings.HasSuffix(path, "/") {
		return GoType{}, fmt.Errorf("%q is not a valid import path", path)
	}
	return GoType{Path: path, Name: name}, nil
}

// Built-in GraphQL scalars and the Go types they always map to.
var builtinScalars = map[string]GoType{
	"Int":     {Name: "int32"},
	"Float":   {Name: "float64"},
	"String":  {Name: "string"},
	"Boolean": {Name: "bool"},
	"ID":      {Name: "string"},
}

// IsBuiltinScalar reports whether name is one of the five scalars every
// GraphQL schema has.
func IsBuiltinScalar(name string) bool {
	_, ok := builtinScalars[name]
	return ok
}

// ScalarMapper maps GraphQL scalar names to Go types.
type ScalarMapper struct {
	custom   map[string]GoType
	fallback GoType
}

// NewScalarMapper parses the custom table and fallback. Keys naming built-in
// scalars are rejected; those mappings are fixed.
func NewScalarMapper(custom map[string]string, fallback string) (*ScalarMapper, error) {
	m := &ScalarMapper{custom: make(map[string]GoType, len(custom))}
	for name, expr := range custom {
		if strings.TrimSpace(name) == "" {
			return nil, newConfigError("customScalars", expr, "scalar name must not be empty")
		}
		if IsBuiltinScalar(name) {
			return nil, newConfigError("customScalars", name, "built-in scalar mappings cannot be overridden")
		}
		t, err := ParseGoType(expr)
		if err != nil {
			return nil, newConfigError("customScalars."+name, expr, "%v", err)
		}
		m.custom[name] = t
	}
	if fallback == "" {
		fallback = "string"
	}
	t, err := ParseGoType(fallback)
	if err != nil {
		return nil, newConfigError("defaultScalar", fallback, "%v", err)
	}
	m.fallback = t
	return m, nil
}

// Map returns the Go type for a scalar. The second result is false when the
// scalar fell back to the default mapping.
func (m *ScalarMapper) Map(name string) (GoType, bool) {
	if t, ok := builtinScalars[name]; ok {
		return t, true
	}
	if t, ok := m.custom[name]; ok {
		return t, true
	}
	return m.fallback, false
}
