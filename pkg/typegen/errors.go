package typegen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	ErrUnresolvedType       = errors.New("gqlbind: unresolved type")
	ErrNameConflict         = errors.New("gqlbind: name conflict")
	ErrInvalidConfiguration = errors.New("gqlbind: invalid configuration")
	ErrInvalidOperation     = errors.New("gqlbind: invalid operation")
)

// UnresolvedTypeError is returned when a named type is referenced but has no
// definition in the schema document. It aborts the whole run.
type UnresolvedTypeError struct {
	TypeName   string
	Parent     string // referencing type, empty for top-level requests
	Field      string // referencing field or variable, if any
	Position   *ast.Position
	Suggestion string
}

func (e *UnresolvedTypeError) Error() string {
	var b strings.Builder
	b.WriteString("gqlbind: type '")
	b.WriteString(e.TypeName)
	b.WriteString("' is not defined in schema")
	if e.Parent != "" {
		b.WriteString(" (referenced by ")
		b.WriteString(e.Parent)
		if e.Field != "" {
			b.WriteString(".")
			b.WriteString(e.Field)
		}
		b.WriteString(")")
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, ", did you mean '%s'?", e.Suggestion)
	}
	return b.String()
}

func (e *UnresolvedTypeError) Is(target error) bool {
	return target == ErrUnresolvedType
}

// NameConflictError is returned when the collision policy cannot find a free
// Go identifier for a schema name.
type NameConflictError struct {
	SchemaName string
	Candidate  string
	Owner      string // schema name (or reserved marker) already holding Candidate
	Attempts   int
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("gqlbind: cannot assign Go name for '%s': '%s' is taken by '%s' (%d attempts)",
		e.SchemaName, e.Candidate, e.Owner, e.Attempts)
}

func (e *NameConflictError) Is(target error) bool {
	return target == ErrNameConflict
}

// InvalidConfigurationError is returned by NewContext before any generation
// starts.
type InvalidConfigurationError struct {
	Option  string
	Value   any
	Message string
}

func (e *InvalidConfigurationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("gqlbind: invalid configuration %s: %s", e.Option, e.Message)
	}
	return fmt.Sprintf("gqlbind: invalid configuration %s=%v: %s", e.Option, e.Value, e.Message)
}

func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// OperationError reports an operation document that cannot be turned into
// bindings, such as an anonymous operation.
type OperationError struct {
	Operation string
	Path      string
	Message   string
	Position  *ast.Position
}

func (e *OperationError) Error() string {
	var b strings.Builder
	b.WriteString("gqlbind: operation")
	if e.Operation != "" {
		b.WriteString(" ")
		b.WriteString(e.Operation)
	}
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func (e *OperationError) Is(target error) bool {
	return target == ErrInvalidOperation
}

func newConfigError(option string, value any, format string, args ...any) *InvalidConfigurationError {
	return &InvalidConfigurationError{Option: option, Value: value, Message: fmt.Sprintf(format, args...)}
}
