package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/scopesync/internal/cli/formatter"
	"github.com/alexanderramin/scopesync/internal/importer"
	"github.com/spf13/cobra"
)

func newSandboxCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Manage the local sandbox service",
	}
	cmd.AddCommand(newSandboxSeedCmd(app))
	return cmd
}

func newSandboxSeedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Load courses, rosters and assignments from a YAML seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := importer.LoadSeedSchema(args[0])
			if err != nil {
				return fmt.Errorf("loading seed file: %w", err)
			}
			remote, err := app.remote()
			if err != nil {
				return err
			}
			res, err := importer.Apply(cmd.Context(), remote.UnitOfWork(), schema)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Success(fmt.Sprintf(
				"Seeded %d courses, %d people, %d assignments, %d questions",
				len(res.CourseIDs), res.PersonCount, res.AssignmentCount, res.QuestionCount)))
			fmt.Fprintf(out, "Course ids: %s\n", strings.Join(res.CourseIDs, ", "))
			if res.Account != "" && res.Account != app.Config.AccountEmail {
				fmt.Fprintln(out, formatter.Dim("Seed account is "+res.Account+"; pass --email or set SCOPESYNC_ACCOUNT_EMAIL to use it"))
			}
			return nil
		},
	}
}
