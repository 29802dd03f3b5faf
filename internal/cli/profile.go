package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/awesome/internal/app"
)

// NewProfileCommand creates the profile command group.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Read or write user profiles",
	}
	cmd.AddCommand(newProfileGetCommand(rootOpts))
	cmd.AddCommand(newProfilePutCommand(rootOpts))
	return cmd
}

func newProfileGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <uid>",
		Short: "Show the profile of a uid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, cmd, func(ctx context.Context, a *app.App) (any, error) {
				uid, err := parseUID(args[0])
				if err != nil {
					return nil, err
				}
				p, err := a.Accounts.Profile(ctx, uid)
				if err != nil {
					return nil, err
				}
				return profileView{p}, nil
			})
		},
	}
}

func newProfilePutCommand(opts *RootOptions) *cobra.Command {
	var flags profileFlags

	cmd := &cobra.Command{
		Use:   "put <uid>",
		Short: "Overwrite the profile of a uid",
		Long: `Write a fresh profile row for a uid, replacing any existing one.
Omitted fields take their defaults: empty nickname, gender 0, signature
and region "0". Registration and last login are set to now and the
login count to 1.

Example:
  awesome profile put 11 --nickname Ann --gender 1 --region Mars`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, cmd, func(ctx context.Context, a *app.App) (any, error) {
				uid, err := parseUID(args[0])
				if err != nil {
					return nil, err
				}
				if err := a.Accounts.UpdateProfile(ctx, uid, flags.fields(cmd)); err != nil {
					return nil, err
				}
				p, err := a.Records.GetProfile(ctx, uid)
				if err != nil {
					return nil, err
				}
				return profileView{p}, nil
			})
		},
	}
	flags.bind(cmd)

	return cmd
}
