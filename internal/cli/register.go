package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/awesome/internal/account"
	"github.com/roach88/awesome/internal/app"
)

// RegisterResult is the outcome of the register command.
type RegisterResult struct {
	account.Registration
}

func (r RegisterResult) String() string {
	if r.Created {
		return fmt.Sprintf("registered uid %d", r.UID)
	}
	return fmt.Sprintf("already registered as uid %d", r.UID)
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	var flags profileFlags

	cmd := &cobra.Command{
		Use:   "register <external_id> <platform>",
		Short: "Register a third-party user",
		Long: `Return the uid of a third-party user, creating it when the user is
new: a uid is issued, then the mapping and the profile are written.
The profile flags only apply to new users.

Example:
  awesome register oAbc123 1 --nickname Ann`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(rootOpts, cmd, func(ctx context.Context, a *app.App) (any, error) {
				platform, err := parsePlatform(args[1])
				if err != nil {
					return nil, err
				}
				reg, err := a.Accounts.Register(ctx, args[0], platform, flags.fields(cmd))
				if err != nil {
					return nil, err
				}
				return RegisterResult{reg}, nil
			})
		},
	}
	flags.bind(cmd)

	return cmd
}
