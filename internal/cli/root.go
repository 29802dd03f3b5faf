package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/awesome/internal/app"
	"github.com/roach88/awesome/internal/config"
	"github.com/roach88/awesome/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config  string
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// DefaultConfigPath is read when --config is not given.
const DefaultConfigPath = "awesome.yaml"

// NewRootCommand creates the root command for the awesome CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "awesome",
		Short: "Sharded identity and profile storage",
		Long: `Operate the awesome storage layer: create the partitioned tables,
issue uids, and read or write profiles and third-party mappings.

Databases, domain routes and the uid blacklist come from a YAML file
(--config, default awesome.yaml).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", DefaultConfigPath, "path to YAML configuration")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output and debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewUIDCommand(opts))
	cmd.AddCommand(NewProfileCommand(opts))
	cmd.AddCommand(NewMappingCommand(opts))
	cmd.AddCommand(NewRegisterCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// runWithApp opens the configured application, runs fn, and reports its
// result or error in the selected format.
func runWithApp(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, a *app.App) (any, error)) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		TraceID:   uuid.NewString(),
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return out.Fail(err)
	}
	logger, err := logging.NewWriter(out.GetErrWriter(), logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Verbose: opts.Verbose,
	})
	if err != nil {
		return out.Fail(err)
	}
	logger = logger.With(zap.String("trace_id", out.TraceID))
	defer logger.Sync()

	out.VerboseLog("config: %s", opts.Config)
	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return out.Fail(err)
	}
	defer a.Close()

	data, err := fn(ctx, a)
	if err != nil {
		return out.Fail(err)
	}
	return out.Success(data)
}
