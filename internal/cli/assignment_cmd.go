package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/scopesync/internal/cli/formatter"
	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/mirror"
	"github.com/alexanderramin/scopesync/internal/roster"
	"github.com/spf13/cobra"
)

func newAssignmentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assignment",
		Short: "Manage course assignments",
	}
	cmd.AddCommand(
		newAssignmentListCmd(app),
		newAssignmentAddCmd(app),
		newAssignmentRemoveCmd(app),
		newAssignmentPublishCmd(app, true),
		newAssignmentPublishCmd(app, false),
		newAssignmentExportCmd(app),
	)
	return cmd
}

// assignmentFromArgs resolves args[0] as a course and args[1] as one of its
// assignments.
func (a *App) assignmentFromArgs(cmd *cobra.Command, args []string) (*mirror.Assignment, error) {
	c, err := a.courseFromArgs(cmd, args)
	if err != nil {
		return nil, err
	}
	return resolveAssignment(cmd.Context(), c, args[1])
}

func newAssignmentListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list COURSE",
		Short: "List a course's assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.courseFromArgs(cmd, args)
			if err != nil {
				return err
			}
			as, err := c.Assignments(cmd.Context())
			if err != nil {
				return err
			}
			if len(as) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No assignments.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAssignmentList(as, time.Now()))
			return nil
		},
	}
}

func newAssignmentAddCmd(app *App) *cobra.Command {
	var na mirror.NewAssignment
	var release, due, hardDue, submissionType string

	cmd := &cobra.Command{
		Use:   "add COURSE",
		Short: "Create an assignment from a template PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if na.ReleaseDate, err = parseTime("release", release); err != nil {
				return err
			}
			if na.DueDate, err = parseTime("due", due); err != nil {
				return err
			}
			if hardDue != "" {
				t, err := parseTime("hard-due", hardDue)
				if err != nil {
					return err
				}
				na.HardDueDate = &t
				na.AllowLate = true
			}
			na.SubmissionType = domain.SubmissionType(submissionType)
			na.GroupSubmission = na.GroupSize > 0

			c, err := app.courseFromArgs(cmd, args)
			if err != nil {
				return err
			}
			if err := c.AddAssignment(cmd.Context(), na); err != nil {
				return err
			}
			a, err := c.Assignment(cmd.Context(), roster.ByName[*mirror.Assignment](na.Title))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Created assignment %s [%s]", a.Name(), a.ID())))
			return nil
		},
	}

	cmd.Flags().StringVar(&na.Title, "title", "", "Assignment title")
	cmd.Flags().StringVar(&na.TemplatePath, "template", "", "Template PDF path")
	cmd.Flags().StringVar(&release, "release", "", "Release date")
	cmd.Flags().StringVar(&due, "due", "", "Due date")
	cmd.Flags().StringVar(&hardDue, "hard-due", "", "Late due date; enables late submissions")
	cmd.Flags().StringVar(&submissionType, "type", string(domain.SubmissionImage), "Submission type (image|pdf)")
	cmd.Flags().BoolVar(&na.StudentSubmissions, "student-submissions", true, "Students upload their own work")
	cmd.Flags().IntVar(&na.GroupSize, "group-size", 0, "Maximum group size; enables group submission")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("release")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func newAssignmentRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove COURSE ASSIGNMENT",
		Short: "Delete an assignment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.courseFromArgs(cmd, args)
			if err != nil {
				return err
			}
			a, err := resolveAssignment(cmd.Context(), c, args[1])
			if err != nil {
				return err
			}
			if err := app.confirm(fmt.Sprintf("Delete assignment %q [%s]?", a.Name(), a.ID()), "Submissions and the outline are deleted with it."); err != nil {
				return err
			}
			if _, err := c.RemoveAssignment(cmd.Context(), roster.ByEntity(a)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Deleted assignment %s [%s]", a.Name(), a.ID())))
			return nil
		},
	}
}

func newAssignmentPublishCmd(app *App, publish bool) *cobra.Command {
	use, short, verb := "publish", "Publish grades", "Published"
	if !publish {
		use, short, verb = "unpublish", "Unpublish grades", "Unpublished"
	}
	return &cobra.Command{
		Use:   use + " COURSE ASSIGNMENT",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.assignmentFromArgs(cmd, args)
			if err != nil {
				return err
			}
			if publish {
				err = a.PublishGrades(cmd.Context())
			} else {
				err = a.UnpublishGrades(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("%s grades for %s", verb, a.Name())))
			return nil
		},
	}
}

func newAssignmentExportCmd(app *App) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "export COURSE ASSIGNMENT",
		Short: "Export submissions and wait for the archive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.assignmentFromArgs(cmd, args)
			if err != nil {
				return err
			}
			progress := func(s mirror.ExportStatus) {
				if !quiet {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", formatter.RenderProgress(s.Progress, 20), formatter.Dim(s.Status))
				}
			}
			fileID, err := a.ExportSubmissions(cmd.Context(), app.exportOptions(progress))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Export ready: %s", fileID)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	return cmd
}
