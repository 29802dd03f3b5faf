package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/awesome/internal/app"
	"github.com/roach88/awesome/internal/errs"
)

// UIDOptions holds flags for the uid command.
type UIDOptions struct {
	*RootOptions
	Count int
}

// UIDResult lists issued uids in issue order.
type UIDResult struct {
	UIDs []uint64 `json:"uids"`
}

func (r UIDResult) String() string {
	lines := make([]string, len(r.UIDs))
	for i, uid := range r.UIDs {
		lines[i] = strconv.FormatUint(uid, 10)
	}
	return strings.Join(lines, "\n")
}

// NewUIDCommand creates the uid command.
func NewUIDCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UIDOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "uid",
		Short: "Issue new uids",
		Long: `Issue new globally unique uids. Blacklisted counter values are
skipped and stay consumed.

Examples:
  awesome uid
  awesome uid --count 5 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts.RootOptions, cmd, func(ctx context.Context, a *app.App) (any, error) {
				if opts.Count < 1 {
					return nil, errs.Validation("uid", "--count must be at least 1, got %d", opts.Count)
				}
				result := UIDResult{UIDs: make([]uint64, 0, opts.Count)}
				for i := 0; i < opts.Count; i++ {
					uid, err := a.IDs.Generate(ctx)
					if err != nil {
						return nil, err
					}
					result.UIDs = append(result.UIDs, uid)
				}
				return result, nil
			})
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", 1, "number of uids to issue")

	return cmd
}
