package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samwightt/gqlbind/internal/log"
	"github.com/samwightt/gqlbind/pkg/render"
	"github.com/samwightt/gqlbind/pkg/typegen"
	"github.com/spf13/cobra"
)

type typesOptions struct {
	kinds      []string
	implements string
	roots      bool
}

var validKinds = map[string]typegen.Kind{
	"type":      typegen.KindObject,
	"object":    typegen.KindObject,
	"input":     typegen.KindInputObject,
	"enum":      typegen.KindEnum,
	"interface": typegen.KindInterface,
	"union":     typegen.KindUnion,
}

func declarationToInfo(d *typegen.Declaration) DeclarationInfo {
	return DeclarationInfo{
		Name:        d.Name,
		Kind:        string(d.Kind),
		SchemaName:  d.SchemaName,
		Description: d.Description,
		Variants:    d.Variants,
		Implements:  d.Implements,
	}
}

func formatDeclarationText(d DeclarationInfo) string {
	line := d.Kind + " " + d.Name
	if d.SchemaName != "" && d.SchemaName != d.Name {
		line += " (" + d.SchemaName + ")"
	}
	if len(d.Variants) > 0 {
		line += " = " + strings.Join(d.Variants, " | ")
	}
	if d.Description != "" {
		line += " # " + oneLine(d.Description)
	}
	return line
}

func formatDeclarationsPretty(decls []DeclarationInfo) string {
	tbl := makeTable()
	for _, d := range decls {
		tbl.Row(d.Kind, d.Name, d.SchemaName, strings.Join(d.Variants, ", "), oneLine(d.Description))
	}
	tbl.Headers("kind", "name", "graphql", "variants", "description")
	return tbl.String()
}

func parseKinds(names []string) ([]typegen.Kind, error) {
	var kinds []typegen.Kind
	for _, name := range names {
		kind, ok := validKinds[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("invalid kind '%s' (valid: type, input, enum, interface, union)", name)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// findAbstract finds a generated interface or union by its Go or GraphQL
// name.
func findAbstract(res *typegen.Result, name string) (*typegen.Declaration, error) {
	var names []string
	for _, d := range res.Declarations {
		if d.Kind != typegen.KindInterface && d.Kind != typegen.KindUnion {
			continue
		}
		if d.Name == name || d.SchemaName == name {
			return d, nil
		}
		names = append(names, d.Name)
	}
	if suggestion := findClosest(name, names); suggestion != "" {
		return nil, fmt.Errorf("interface '%s' was not generated, did you mean '%s'?", name, suggestion)
	}
	return nil, fmt.Errorf("interface '%s' was not generated", name)
}

func NewTypesCmd() *cobra.Command {
	opts := &typesOptions{}

	cmd := &cobra.Command{
		Use:   "types [operation files...]",
		Short: "Lists the Go declarations generation produces",
		Long: `Runs generation without writing any code and lists the resulting Go
declarations in the order they would be emitted.

Without arguments the whole schema is generated. With operation files only the
declarations those operations need are listed, including one result type per
operation and its nested selection types.

Output formats:
  text    "object User", "enum Status", "union SearchResult = Hotel | Flight"
  json    [{"name": "User", "kind": "object", "schemaName": "User"}, ...]
  yaml    the same records as YAML
  pretty  Formatted table with columns (default in terminal)

Filters are applied with AND logic.`,
		Example: `  # Every enum the schema produces
  gqlbind types --kind enum

  # Objects and inputs
  gqlbind types --kind type --kind input

  # Concrete types behind the Node interface
  gqlbind types --implements Node

  # Declarations needed by a set of queries
  gqlbind types 'queries/*.graphql' -f json | jq '.[].name'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.kinds, "kind", nil, "Filter to declarations of the given kind: type, input, enum, interface, union (OR logic when repeated)")
	cmd.Flags().StringVar(&opts.implements, "implements", "", "Filter to declarations implementing the given interface or union")
	cmd.Flags().BoolVar(&opts.roots, "include-root", false, "Also generate the root operation types")

	return cmd
}

func runTypes(cmd *cobra.Command, args []string, opts *typesOptions) error {
	kinds, err := parseKinds(opts.kinds)
	if err != nil {
		return err
	}

	schema, err := loadCliForSchema(schemaFilePath)
	if err != nil {
		return err
	}
	docs, err := loadOperations(cmd, schema, args, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	cfg := generationConfig("")
	cfg.IncludeRootTypes = cfg.IncludeRootTypes || opts.roots
	job := typegen.Job{Name: schemaFilePath, Schema: schema, Config: cfg, Operations: docs}
	res, err := job.Run(log.FromContext(cmd.Context()))
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), describeGenerationError(err))
		return err
	}

	var abstract *typegen.Declaration
	if opts.implements != "" {
		if abstract, err = findAbstract(res, opts.implements); err != nil {
			return err
		}
	}

	var decls []DeclarationInfo
	for _, d := range res.Declarations {
		if len(kinds) > 0 && !slices.Contains(kinds, d.Kind) {
			continue
		}
		if abstract != nil && !slices.Contains(abstract.Variants, d.Name) {
			continue
		}
		decls = append(decls, declarationToInfo(d))
	}

	renderer := render.Renderer[DeclarationInfo]{
		Data:         decls,
		TextFormat:   formatDeclarationText,
		PrettyFormat: formatDeclarationsPretty,
	}
	output, err := renderer.Render(outputFormat)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
