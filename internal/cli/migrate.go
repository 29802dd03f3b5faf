package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/awesome/internal/app"
	"github.com/roach88/awesome/internal/errs"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	*RootOptions
	Database string
	Domain   string
}

// MigrateResult lists the tables present per database after migrating.
type MigrateResult struct {
	Databases []DatabaseTables `json:"databases"`
}

// DatabaseTables is one database's share of the schema.
type DatabaseTables struct {
	Name   string   `json:"name"`
	Tables []string `json:"tables"`
}

func (r MigrateResult) String() string {
	lines := make([]string, len(r.Databases))
	for i, d := range r.Databases {
		lines[i] = fmt.Sprintf("%s: %d tables", d.Name, len(d.Tables))
	}
	return strings.Join(lines, "\n")
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the partitioned tables in their routed databases",
		Long: `Create every registered table in the database its domain is routed
to. Each database is migrated in one transaction; databases run
concurrently. Existing tables are left alone.

With --database and --domain, migrate only that domain into that
database. A combination the routers refuse fails with a routing
conflict instead of being skipped.

Examples:
  awesome migrate
  awesome migrate --database awesome_app --domain application`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts.RootOptions, cmd, func(ctx context.Context, a *app.App) (any, error) {
				return runMigrate(ctx, opts, a)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Database, "database", "", "migrate only into this database (requires --domain)")
	cmd.Flags().StringVar(&opts.Domain, "domain", "", "migrate only this domain (requires --database)")

	return cmd
}

func runMigrate(ctx context.Context, opts *MigrateOptions, a *app.App) (any, error) {
	switch {
	case opts.Database == "" && opts.Domain == "":
		if err := a.Migrate(ctx); err != nil {
			return nil, err
		}
		var result MigrateResult
		for _, name := range a.Pools.Names() {
			d := DatabaseTables{Name: name, Tables: []string{}}
			for _, def := range a.Migrator.Plan(name) {
				d.Tables = append(d.Tables, def.Name)
			}
			result.Databases = append(result.Databases, d)
		}
		return result, nil

	case opts.Database == "" || opts.Domain == "":
		return nil, errs.Validation("migrate", "--database and --domain must be given together")

	default:
		if err := a.Migrator.MigrateDomain(ctx, opts.Database, opts.Domain); err != nil {
			return nil, err
		}
		d := DatabaseTables{Name: opts.Database, Tables: []string{}}
		for _, def := range a.Registry.ForDomain(opts.Domain) {
			d.Tables = append(d.Tables, def.Name)
		}
		return MigrateResult{Databases: []DatabaseTables{d}}, nil
	}
}
