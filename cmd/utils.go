package cmd

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samwightt/gqlbind/pkg/diagnostic"
	"github.com/samwightt/gqlbind/pkg/typegen"
	gqlparser "github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

var tableStyle = lipgloss.NewStyle().PaddingRight(1)

func makeTable() *table.Table {
	return table.New().
		Width(120).
		Wrap(true).
		StyleFunc(func(row, col int) lipgloss.Style {
			return tableStyle
		})
}

const maxSuggestionDistance = 5

func findClosest(input string, candidates []string) string {
	minDist := -1
	closest := ""
	for _, c := range candidates {
		dist := levenshtein.ComputeDistance(input, c)
		if minDist == -1 || dist < minDist {
			minDist = dist
			closest = c
		}
	}
	if minDist > maxSuggestionDistance {
		return ""
	}
	return closest
}

// filterSlice returns a new slice containing only the elements that satisfy the predicate.
func filterSlice[T any](items []T, predicate func(T) bool) []T {
	var result []T
	for _, item := range items {
		if predicate(item) {
			result = append(result, item)
		}
	}
	return result
}

// ErrSchemaInvalid is returned when the schema file does not parse or
// validate.
var ErrSchemaInvalid = errors.New("GraphQL schema parsing error")

func loadSchema(schemaPath string) (*ast.Schema, error) {
	path, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, err
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	source := ast.Source{
		Input: string(bytes),
		Name:  filepath.Base(path),
	}
	return gqlparser.LoadSchema(&source)
}

func loadCliForSchema(schemaPath string) (*ast.Schema, error) {
	schema, err := loadSchema(schemaPath)

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("schema file does not exist: %s", schemaPath)
		}
		var parsingError *gqlerror.Error

		if errors.As(err, &parsingError) {
			return nil, fmt.Errorf("%w: %w", ErrSchemaInvalid, parsingError)
		}

		return nil, fmt.Errorf("unexpected error: %v", err)
	}

	return schema, nil
}

// generationConfig merges the config file (if any) with command line flags.
// Flags win.
func generationConfig(pkg string) typegen.Config {
	var cfg typegen.Config
	if configFile != nil {
		cfg = configFile.Config
	}
	if len(scalarFlags) > 0 {
		scalars := make(map[string]string, len(cfg.CustomScalars)+len(scalarFlags))
		maps.Copy(scalars, cfg.CustomScalars)
		maps.Copy(scalars, scalarFlags)
		cfg.CustomScalars = scalars
	}
	if pkg != "" {
		cfg.Package = pkg
	}
	return cfg
}

// describeGenerationError renders errors that carry a source position as a
// diagnostic snippet. Other errors render as their message.
func describeGenerationError(err error) string {
	var unresolved *typegen.UnresolvedTypeError
	if errors.As(err, &unresolved) && unresolved.Position != nil && unresolved.Position.Src != nil {
		d := diagnostic.Diagnostic{
			File:    unresolved.Position.Src.Name,
			Source:  unresolved.Position.Src.Input,
			Line:    unresolved.Position.Line,
			Column:  unresolved.Position.Column,
			Length:  len(unresolved.TypeName),
			Message: fmt.Sprintf("type '%s' is not defined", unresolved.TypeName),
		}
		if unresolved.Suggestion != "" {
			d.Help = fmt.Sprintf("did you mean `%s`?", unresolved.Suggestion)
		}
		return d.Render()
	}

	var opErr *typegen.OperationError
	if errors.As(err, &opErr) && opErr.Position != nil && opErr.Position.Src != nil {
		d := diagnostic.Diagnostic{
			File:    opErr.Position.Src.Name,
			Source:  opErr.Position.Src.Input,
			Line:    opErr.Position.Line,
			Column:  opErr.Position.Column,
			Message: opErr.Message,
		}
		return d.Render()
	}
	return err.Error()
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
