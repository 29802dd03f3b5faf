package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/awesome/internal/app"
)

// NewMappingCommand creates the mapping command group.
func NewMappingCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Read or write uid to third-party user mappings",
	}
	cmd.AddCommand(newMappingGetCommand(rootOpts))
	cmd.AddCommand(newMappingByUIDCommand(rootOpts))
	cmd.AddCommand(newMappingPutCommand(rootOpts))
	return cmd
}

func newMappingGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <external_id> <platform>",
		Short: "Find the uid of a third-party user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, cmd, func(ctx context.Context, a *app.App) (any, error) {
				platform, err := parsePlatform(args[1])
				if err != nil {
					return nil, err
				}
				m, err := a.Records.GetMapping(ctx, args[0], platform)
				if err != nil {
					return nil, err
				}
				return mappingView{m}, nil
			})
		},
	}
}

func newMappingByUIDCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "by-uid <uid>",
		Short: "Show the mapping of a uid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, cmd, func(ctx context.Context, a *app.App) (any, error) {
				uid, err := parseUID(args[0])
				if err != nil {
					return nil, err
				}
				m, err := a.Records.GetMappingByUID(ctx, uid)
				if err != nil {
					return nil, err
				}
				return mappingView{m}, nil
			})
		},
	}
}

func newMappingPutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "put <uid> <external_id> <platform>",
		Short: "Bind a uid to a third-party user",
		Long: `Bind a uid to (external_id, platform), replacing the uid's previous
binding. A pair already bound to another uid is rejected.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, cmd, func(ctx context.Context, a *app.App) (any, error) {
				uid, err := parseUID(args[0])
				if err != nil {
					return nil, err
				}
				platform, err := parsePlatform(args[2])
				if err != nil {
					return nil, err
				}
				if err := a.Records.UpsertMapping(ctx, uid, args[1], platform); err != nil {
					return nil, err
				}
				m, err := a.Records.GetMappingByUID(ctx, uid)
				if err != nil {
					return nil, err
				}
				return mappingView{m}, nil
			})
		},
	}
}
