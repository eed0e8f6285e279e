package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/samwightt/gqlbind/pkg/diagnostic"
	"github.com/spf13/cobra"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// ErrValidationFailed is returned when an operation document does not
// validate against the schema. The diagnostics have already been written to
// stderr.
var ErrValidationFailed = errors.New("operation validation failed")

type operationSource struct {
	Name    string
	Content string
}

// expandOperationPaths resolves glob patterns. "-" stands for stdin.
func expandOperationPaths(patterns []string) ([]string, error) {
	var paths []string
	for _, p := range patterns {
		if p == "-" || !strings.ContainsAny(p, "*?[") {
			paths = append(paths, p)
			continue
		}
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("invalid operation pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no operation files match %q", p)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}

func readOperationSources(cmd *cobra.Command, patterns []string) ([]operationSource, error) {
	paths, err := expandOperationPaths(patterns)
	if err != nil {
		return nil, err
	}
	var sources []operationSource
	for _, path := range paths {
		if path == "-" {
			bytes, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return nil, fmt.Errorf("failed to read from stdin: %w", err)
			}
			sources = append(sources, operationSource{Name: "stdin", Content: string(bytes)})
			continue
		}
		bytes, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read operation file: %w", err)
		}
		sources = append(sources, operationSource{Name: path, Content: string(bytes)})
	}
	return sources, nil
}

// parseOperation parses and validates one document. Validation also links
// every selected field to its schema definition, which generation relies on.
func parseOperation(src operationSource, schema *ast.Schema) (*ast.QueryDocument, gqlerror.List) {
	doc, err := parser.ParseQuery(&ast.Source{Name: src.Name, Input: src.Content})
	if err != nil {
		var gqlErr *gqlerror.Error
		if errors.As(err, &gqlErr) {
			return nil, gqlerror.List{gqlErr}
		}
		return nil, gqlerror.List{gqlerror.Errorf("%s", err.Error())}
	}
	if errs := validator.Validate(schema, doc); len(errs) > 0 {
		return nil, errs
	}
	return doc, nil
}

// loadOperations reads, parses and validates operation documents. Any
// failure is rendered to w and reported as ErrValidationFailed.
func loadOperations(cmd *cobra.Command, schema *ast.Schema, patterns []string, w io.Writer) ([]*ast.QueryDocument, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	sources, err := readOperationSources(cmd, patterns)
	if err != nil {
		return nil, err
	}

	var docs []*ast.QueryDocument
	failed := false
	for _, src := range sources {
		doc, errs := parseOperation(src, schema)
		if len(errs) > 0 {
			failed = true
			fmt.Fprint(w, formatOperationErrors(src, errs, schema))
			continue
		}
		docs = append(docs, doc)
	}
	if failed {
		return nil, ErrValidationFailed
	}
	return docs, nil
}

// gqlparser reports only a start position. For rules whose message names the
// offending field we can underline the whole name and suggest a fix; anything
// else gets a single caret.

// Example: Cannot query field "badField" on type "Query".
var fieldsOnCorrectTypeRegex = regexp.MustCompile(`Cannot query field "([^"]+)" on type "([^"]+)"`)

func parseFieldsOnCorrectTypeError(message string) (fieldName, typeName string) {
	matches := fieldsOnCorrectTypeRegex.FindStringSubmatch(message)
	if len(matches) == 3 {
		return matches[1], matches[2]
	}
	return "", ""
}

func errorSpanLength(err *gqlerror.Error) int {
	if err.Rule == "FieldsOnCorrectType" {
		if fieldName, _ := parseFieldsOnCorrectTypeError(err.Message); fieldName != "" {
			return len(fieldName)
		}
	}
	return 1
}

func errorSuggestion(err *gqlerror.Error, schema *ast.Schema) string {
	if err.Rule != "FieldsOnCorrectType" {
		return ""
	}
	fieldName, typeName := parseFieldsOnCorrectTypeError(err.Message)
	typeDef := schema.Types[typeName]
	if fieldName == "" || typeDef == nil {
		return ""
	}
	var names []string
	for _, f := range typeDef.Fields {
		names = append(names, f.Name)
	}
	if closest := findClosest(fieldName, names); closest != "" {
		return fmt.Sprintf("did you mean `%s`?", closest)
	}
	return ""
}

func formatOperationErrors(src operationSource, errs gqlerror.List, schema *ast.Schema) string {
	var b strings.Builder
	if len(errs) == 1 {
		fmt.Fprintf(&b, "✗ %s has 1 error:\n", src.Name)
	} else {
		fmt.Fprintf(&b, "✗ %s has %d errors:\n", src.Name, len(errs))
	}
	for _, err := range errs {
		d := diagnostic.Diagnostic{
			File:    src.Name,
			Source:  src.Content,
			Message: err.Message,
			Length:  errorSpanLength(err),
			Help:    errorSuggestion(err, schema),
		}
		if len(err.Locations) > 0 {
			d.Line = err.Locations[0].Line
			d.Column = err.Locations[0].Column
		}
		b.WriteString(d.Render())
	}
	return b.String()
}
