package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/scopesync/internal/cli/formatter"
	"github.com/alexanderramin/scopesync/internal/extension"
	"github.com/spf13/cobra"
)

func newExtensionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extension",
		Short: "Grant or clear per-student extensions",
	}
	cmd.AddCommand(
		newExtensionApplyCmd(app),
		newExtensionRemoveCmd(app),
	)
	return cmd
}

func newExtensionApplyCmd(app *App) *cobra.Command {
	var fields map[string]string

	cmd := &cobra.Command{
		Use:   "apply COURSE ASSIGNMENT EMAIL",
		Short: "Apply an extension to one student",
		Long: "Apply an extension to one student. Each --set takes key=value; accepted keys: " +
			strings.Join(extension.Keys(), ", ") + ".\n" +
			"Dates are YYYY-MM-DDTHH:MM or RFC 3339, deltas are durations such as 36h or 2d.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(fields) == 0 {
				return fmt.Errorf("at least one --set key=value is required")
			}
			ov, err := extension.ParseStrings(fields)
			if err != nil {
				return err
			}
			a, err := app.assignmentFromArgs(cmd, args)
			if err != nil {
				return err
			}
			diff, err := a.ApplyExtension(cmd.Context(), args[2], ov)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			msg := fmt.Sprintf("Extension applied for %s on %s", args[2], a.Name())
			if d := ov.MaxDelta(); d > 0 {
				msg += fmt.Sprintf(" (up to %s later)", formatter.Delta(d))
			}
			fmt.Fprintln(out, formatter.Success(msg))
			fmt.Fprint(out, formatter.FormatDiff(diff))
			return nil
		},
	}

	cmd.Flags().StringToStringVar(&fields, "set", nil, "Override field as key=value (repeatable)")
	return cmd
}

func newExtensionRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove COURSE ASSIGNMENT EMAIL",
		Short: "Clear a student's extension",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.assignmentFromArgs(cmd, args)
			if err != nil {
				return err
			}
			if err := app.confirm(fmt.Sprintf("Clear the extension for %s on %s?", args[2], a.Name()), ""); err != nil {
				return err
			}
			if err := a.RemoveExtension(cmd.Context(), args[2]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Extension cleared for %s", args[2])))
			return nil
		},
	}
}
