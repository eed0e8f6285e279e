package cmd

import (
	"bytes"
	"context"
	"os"
	"os/signal"

	"github.com/go-logr/logr"
	"github.com/samwightt/gqlbind/internal/config"
	"github.com/samwightt/gqlbind/internal/log"
	"github.com/samwightt/gqlbind/pkg/render"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	schemaFilePath string
	configFilePath string
	outputFormat   render.Format
	scalarFlags    map[string]string
	verbosity      int
	configFile     *config.File
)

func formatFlag() string {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return string(render.FormatPretty)
	}
	return string(render.FormatText)
}

// NewRootCmd creates and returns the root command with all subcommands attached.
// This function creates a fresh command tree, ensuring no state leaks between invocations.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gqlbind",
		Short: "Generate typed Go bindings from a GraphQL schema and operations",
		Long: `gqlbind turns a GraphQL schema into Go types: structs for object and input
types, string enums, and marker interfaces for interfaces and unions.

Given operation documents (queries, mutations, subscriptions), it generates a
result type per operation that mirrors the selection set, plus a variables type.

By default, gqlbind reads ./schema.graphql in the current directory.
A different schema file can be specified using -s. Options such as custom
scalar mappings can be kept in a YAML config file passed with -c.

Listing commands format their output as pretty tables (default in terminals),
plain text (default when piping), JSON, or YAML.`,
		Example: `  # Generate Go types for the whole schema
  gqlbind generate -o model/models_gen.go

  # Generate result types for a set of operations
  gqlbind generate queries/*.graphql -p api -o api/operations_gen.go

  # Map custom scalars
  gqlbind generate --scalar DateTime=time.Time --scalar UUID=github.com/google/uuid.UUID

  # See which declarations the schema produces
  gqlbind types --kind enum

  # Inspect the Go fields generated for a type
  gqlbind fields User`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&schemaFilePath, "schema", "s", "schema.graphql", "File path of GraphQL schema")
	cmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", "", "Path to a gqlbind YAML config file")
	cmd.PersistentFlags().StringToStringVar(&scalarFlags, "scalar", nil, "Map a custom scalar to a Go type, e.g. DateTime=time.Time (can be specified multiple times)")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Log generation details to stderr (repeat for more)")

	var formatStr string
	cmd.PersistentFlags().StringVarP(&formatStr, "format", "f", formatFlag(), "Output format: json, text, pretty, yaml (default: pretty if interactive, text otherwise)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		outputFormat, err = render.ParseFormat(formatStr)
		if err != nil {
			return err
		}

		configFile = nil
		if configFilePath != "" {
			configFile, err = config.Load(configFilePath)
			if err != nil {
				return err
			}
			if configFile.Schema != "" && !cmd.Flags().Changed("schema") {
				schemaFilePath = configFile.Schema
			}
		}

		logger := logr.Discard()
		if verbosity > 0 {
			logger = log.New(cmd.ErrOrStderr(), verbosity-1)
		}
		cmd.SetContext(log.WithLogger(cmd.Context(), logger))
		return nil
	}

	cmd.AddCommand(NewGenerateCmd())
	cmd.AddCommand(NewTypesCmd())
	cmd.AddCommand(NewFieldsCmd())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// ExecuteWithArgs runs the CLI with the given arguments and returns stdout, stderr, and any error.
// This is useful for testing.
func ExecuteWithArgs(args []string) (stdout string, stderr string, err error) {
	return ExecuteWithArgsAndStdin(args, nil)
}

// ExecuteWithArgsAndStdin runs the CLI with the given arguments and stdin, returns stdout, stderr, and any error.
// This is useful for testing commands that read from stdin.
func ExecuteWithArgsAndStdin(args []string, stdin *bytes.Buffer) (stdout string, stderr string, err error) {
	cmd := NewRootCmd()

	stdoutBuf := new(bytes.Buffer)
	stderrBuf := new(bytes.Buffer)

	cmd.SetOut(stdoutBuf)
	cmd.SetErr(stderrBuf)
	cmd.SetArgs(args)
	if stdin != nil {
		cmd.SetIn(stdin)
	}

	err = cmd.Execute()

	return stdoutBuf.String(), stderrBuf.String(), err
}
