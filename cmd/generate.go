package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/samwightt/gqlbind/internal/log"
	"github.com/samwightt/gqlbind/pkg/gosource"
	"github.com/samwightt/gqlbind/pkg/render"
	"github.com/samwightt/gqlbind/pkg/typegen"
	"github.com/spf13/cobra"
	"github.com/vektah/gqlparser/v2/ast"
)

type generateOptions struct {
	output   string
	pkg      string
	roots    bool
	watch    bool
	parallel int
}

func NewGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [operation files...]",
		Short: "Generate Go types for the schema or a set of operations",
		Long: `Generates Go source for the schema's types.

Without arguments every object, input, enum, interface and union type of the
schema is generated. Root operation types (Query, Mutation, Subscription) are
left out unless --include-root is set.

With operation files (globs allowed, "-" reads stdin) a result type mirroring
each operation's selection set is generated, together with a variables type
and the enums and inputs the operations reference. Operations are validated
against the schema first; validation errors are printed with source snippets.

When the config file lists targets and no operation files are given, every
target is generated in parallel into its own output file.`,
		Example: `  # Whole schema to stdout
  gqlbind generate

  # Operations into a package
  gqlbind generate 'queries/*.graphql' -p api -o api/operations_gen.go

  # Every target of a config file
  gqlbind generate -c gqlbind.yml

  # Regenerate whenever the schema or operations change
  gqlbind generate queries/user.graphql -o api/user_gen.go --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.watch {
				return watchAndGenerate(cmd, args, opts)
			}
			return runGenerate(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "File to write generated code to (default: stdout)")
	cmd.Flags().StringVarP(&opts.pkg, "package", "p", "", "Go package name of the generated file (default: model)")
	cmd.Flags().BoolVar(&opts.roots, "include-root", false, "Also generate the root operation types")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Regenerate when the schema or operation files change")
	cmd.Flags().IntVar(&opts.parallel, "parallel", 0, "Maximum number of config targets generated at once (default: unlimited)")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string, opts *generateOptions) error {
	if configFile != nil && len(configFile.Targets) > 0 && len(args) == 0 {
		return runTargets(cmd, opts)
	}

	schema, err := loadCliForSchema(schemaFilePath)
	if err != nil {
		return err
	}
	docs, err := loadOperations(cmd, schema, args, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	cfg := generationConfig(opts.pkg)
	cfg.IncludeRootTypes = cfg.IncludeRootTypes || opts.roots
	job := typegen.Job{Name: filepath.Base(schemaFilePath), Schema: schema, Config: cfg, Operations: docs}

	res, err := job.Run(log.FromContext(cmd.Context()))
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), describeGenerationError(err))
		return err
	}

	if opts.output == "" {
		return gosource.Write(cmd.OutOrStdout(), res)
	}
	if err := writeGenerated(opts.output, res); err != nil {
		return err
	}
	return reportGenerated(cmd.OutOrStdout(), []GeneratedFile{{Target: job.Name, Output: opts.output, Declarations: len(res.Declarations)}})
}

func runTargets(cmd *cobra.Command, opts *generateOptions) error {
	schemas := make(map[string]*ast.Schema)
	jobs := make([]typegen.Job, 0, len(configFile.Targets))

	for _, target := range configFile.Targets {
		path := configFile.TargetSchema(target)
		schema, ok := schemas[path]
		if !ok {
			var err error
			schema, err = loadCliForSchema(path)
			if err != nil {
				return fmt.Errorf("target %s: %w", target.Name, err)
			}
			schemas[path] = schema
		}
		docs, err := loadOperations(cmd, schema, target.Operations, cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("target %s: %w", target.Name, err)
		}

		cfg := configFile.TargetConfig(target)
		if generated := generationConfig(""); len(generated.CustomScalars) > 0 {
			cfg.CustomScalars = generated.CustomScalars
		}
		cfg.IncludeRootTypes = cfg.IncludeRootTypes || opts.roots
		jobs = append(jobs, typegen.Job{Name: target.Name, Schema: schema, Config: cfg, Operations: docs})
	}

	results, err := typegen.RunBatch(cmd.Context(), jobs, opts.parallel)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), describeGenerationError(err))
		return err
	}

	files := make([]GeneratedFile, 0, len(results))
	for i, res := range results {
		target := configFile.Targets[i]
		if err := writeGenerated(target.Output, res); err != nil {
			return fmt.Errorf("target %s: %w", target.Name, err)
		}
		files = append(files, GeneratedFile{Target: target.Name, Output: target.Output, Declarations: len(res.Declarations)})
	}
	return reportGenerated(cmd.OutOrStdout(), files)
}

func writeGenerated(path string, res *typegen.Result) error {
	var buf bytes.Buffer
	if err := gosource.Write(&buf, res); err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func formatGeneratedText(f GeneratedFile) string {
	return fmt.Sprintf("%s: wrote %d declarations to %s", f.Target, f.Declarations, f.Output)
}

func formatGeneratedPretty(files []GeneratedFile) string {
	tbl := makeTable()
	for _, f := range files {
		tbl.Row(f.Target, f.Output, fmt.Sprint(f.Declarations))
	}
	tbl.Headers("target", "output", "declarations")
	return tbl.String()
}

func reportGenerated(w io.Writer, files []GeneratedFile) error {
	renderer := render.Renderer[GeneratedFile]{
		Data:         files,
		TextFormat:   formatGeneratedText,
		PrettyFormat: formatGeneratedPretty,
	}
	output, err := renderer.Render(outputFormat)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, output)
	return nil
}

// isFatal reports whether err should stop a watch loop. Validation and
// generation errors are expected while files are being edited.
func isFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrValidationFailed) &&
		!errors.Is(err, ErrSchemaInvalid) &&
		!errors.Is(err, typegen.ErrUnresolvedType) &&
		!errors.Is(err, typegen.ErrNameConflict) &&
		!errors.Is(err, typegen.ErrInvalidOperation)
}
