package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samwightt/gqlbind/internal/log"
	"github.com/samwightt/gqlbind/pkg/render"
	"github.com/samwightt/gqlbind/pkg/typegen"
	"github.com/spf13/cobra"
)

type fieldsOptions struct {
	deprecated bool
	nullable   bool
	required   bool
}

func memberToInfo(typeName string, m *typegen.Member) MemberInfo {
	return MemberInfo{
		TypeName:    typeName,
		Name:        m.Name,
		JSONName:    m.SchemaName,
		GraphQLType: m.Type.String(),
		GoType:      m.Type.GoString(),
		Description: m.Description,
		Deprecated:  m.Reason,
	}
}

func enumValueToInfo(d *typegen.Declaration, v *typegen.EnumValue) MemberInfo {
	return MemberInfo{
		TypeName:    d.Name,
		Name:        v.Name,
		JSONName:    v.SchemaName,
		GraphQLType: d.SchemaName,
		GoType:      d.Name,
		Description: v.Description,
		Deprecated:  v.Reason,
	}
}

func formatMemberText(m MemberInfo) string {
	line := fmt.Sprintf("%s %s `json:\"%s\"` # %s", m.Name, m.GoType, m.JSONName, m.GraphQLType)
	if m.Deprecated != "" {
		line += " (deprecated: " + oneLine(m.Deprecated) + ")"
	}
	if m.Description != "" {
		line += " " + oneLine(m.Description)
	}
	return line
}

func formatMembersPretty(members []MemberInfo) string {
	tbl := makeTable()
	for _, m := range members {
		tbl.Row(m.Name, m.GoType, m.JSONName, m.GraphQLType, oneLine(m.Deprecated), oneLine(m.Description))
	}
	tbl.Headers("field", "go type", "json", "graphql type", "deprecated", "description")
	return tbl.String()
}

// findDeclaration looks a declaration up by Go name first, then by GraphQL
// name.
func findDeclaration(res *typegen.Result, name string) (*typegen.Declaration, error) {
	if d := res.Lookup(name); d != nil {
		return d, nil
	}
	var names []string
	for _, d := range res.Declarations {
		if d.SchemaName == name && d.Key == name {
			return d, nil
		}
		names = append(names, d.Name)
	}
	if suggestion := findClosest(name, names); suggestion != "" {
		return nil, fmt.Errorf("type '%s' was not generated, did you mean '%s'?", name, suggestion)
	}
	return nil, fmt.Errorf("type '%s' was not generated", name)
}

func NewFieldsCmd() *cobra.Command {
	opts := &fieldsOptions{}

	cmd := &cobra.Command{
		Use:   "fields <type> [operation files...]",
		Short: "Lists the Go fields generated for a type",
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveDefault
			}
			schema, err := loadSchema(schemaFilePath)
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}

			outputNames := []string{}
			for key, def := range schema.Types {
				if def.BuiltIn || strings.HasPrefix(key, "__") {
					continue
				}
				if strings.Contains(strings.ToLower(key), strings.ToLower(toComplete)) {
					outputNames = append(outputNames, key)
				}
			}

			sort.Strings(outputNames)

			return outputNames, cobra.ShellCompDirectiveNoFileComp
		},
		Args: cobra.MinimumNArgs(1),
		Long: `Lists the fields of a generated Go declaration: the Go field name, its Go
type, the JSON key and the GraphQL type it was generated from. For enums the
constants are listed instead.

The type can be given by its Go name or its GraphQL name. With operation files
the operation result types can be inspected as well (e.g. GetUserQuery).

Output formats:
  text    "Name *string ` + "`json:\"name\"`" + ` # String", ... (default when piping)
  json    [{"name": "Name", "goType": "*string", "jsonName": "name", ...}, ...]
  yaml    the same records as YAML
  pretty  Formatted table with columns (default in terminal)`,
		Example: `  # Fields of the User struct
  gqlbind fields User

  # Constants of an enum
  gqlbind fields Status

  # Deprecated fields only
  gqlbind fields User --deprecated

  # Fields of an operation result type
  gqlbind fields GetUserQuery queries/user.graphql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.deprecated, "deprecated", false, "Filter to only show deprecated fields")
	cmd.Flags().BoolVar(&opts.required, "required", false, "Filter to only show required (non-null) fields")
	cmd.Flags().BoolVar(&opts.nullable, "nullable", false, "Filter to only show nullable fields")

	return cmd
}

func runFields(cmd *cobra.Command, args []string, opts *fieldsOptions) error {
	if opts.required && opts.nullable {
		return fmt.Errorf("--required and --nullable cannot be used together")
	}

	schema, err := loadCliForSchema(schemaFilePath)
	if err != nil {
		return err
	}
	docs, err := loadOperations(cmd, schema, args[1:], cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	job := typegen.Job{Name: schemaFilePath, Schema: schema, Config: generationConfig(""), Operations: docs}
	job.Config.IncludeRootTypes = true
	res, err := job.Run(log.FromContext(cmd.Context()))
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), describeGenerationError(err))
		return err
	}

	decl, err := findDeclaration(res, args[0])
	if err != nil {
		return err
	}

	var members []MemberInfo
	if decl.Kind == typegen.KindEnum {
		for _, v := range decl.Values {
			if opts.deprecated && !v.Deprecated || opts.nullable {
				continue
			}
			members = append(members, enumValueToInfo(decl, v))
		}
	}
	for _, m := range decl.Members {
		if opts.deprecated && !m.Deprecated {
			continue
		}
		if opts.required && m.Type.Nullable || opts.nullable && !m.Type.Nullable {
			continue
		}
		members = append(members, memberToInfo(decl.Name, m))
	}

	if len(members) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No fields found that match the filters.")
	}

	renderer := render.Renderer[MemberInfo]{
		Data:         members,
		TextFormat:   formatMemberText,
		PrettyFormat: formatMembersPretty,
	}

	output, err := renderer.Render(outputFormat)
	if err != nil {
		return fmt.Errorf("error rendering output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
