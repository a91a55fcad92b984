package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/scopesync/internal/cli/formatter"
	"github.com/alexanderramin/scopesync/internal/mirror"
	"github.com/spf13/cobra"
)

func newCourseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course",
		Short: "List, create and delete courses",
	}
	cmd.AddCommand(
		newCourseListCmd(app),
		newCourseCreateCmd(app),
		newCourseDeleteCmd(app),
	)
	return cmd
}

func parseCourseRole(s string) (mirror.CourseRole, error) {
	switch strings.ToLower(s) {
	case "", "any", "all":
		return mirror.AnyCourse, nil
	case "instructor":
		return mirror.InstructorCourses, nil
	case "student":
		return mirror.StudentCourses, nil
	default:
		return 0, fmt.Errorf("invalid --as %q (expected any|instructor|student)", s)
	}
}

func newCourseListCmd(app *App) *cobra.Command {
	var ids, names []string
	var as string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List courses, optionally filtered by id or name pattern",
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := parseCourseRole(as)
			if err != nil {
				return err
			}
			acct, err := app.account(cmd)
			if err != nil {
				return err
			}
			courses, err := acct.Courses(mirror.CourseFilter{IDPatterns: ids, NamePatterns: names, Role: role})
			if err != nil {
				return err
			}
			if len(courses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No courses found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCourseList(courses))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&ids, "id", nil, "Course id pattern, anchored at the start (repeatable)")
	cmd.Flags().StringArrayVar(&names, "name", nil, "Course name pattern, anchored at the start (repeatable)")
	cmd.Flags().StringVar(&as, "as", "any", "Restrict to courses taught (instructor) or taken (student)")
	return cmd
}

func newCourseCreateCmd(app *App) *cobra.Command {
	var p mirror.CourseParams

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a course",
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := app.account(cmd)
			if err != nil {
				return err
			}
			c, err := acct.CreateCourse(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Created course %s [%s]", c.CourseName, c.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&p.Name, "name", "", "Course name")
	cmd.Flags().StringVar(&p.Nickname, "nickname", "", "Short course name")
	cmd.Flags().StringVar(&p.Description, "description", "", "Course description")
	cmd.Flags().StringVar(&p.Term, "term", "", "Term (Spring|Summer|Fall|Winter)")
	cmd.Flags().IntVar(&p.Year, "year", 0, "Year")
	cmd.Flags().BoolVar(&p.EntryCodeEnabled, "entry-code", false, "Allow students to join with an entry code")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("nickname")
	_ = cmd.MarkFlagRequired("term")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func newCourseDeleteCmd(app *App) *cobra.Command {
	var ids, names []string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete instructor courses matching id or name patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(ids) == 0 && len(names) == 0 {
				return fmt.Errorf("at least one --id or --name pattern is required")
			}
			acct, err := app.account(cmd)
			if err != nil {
				return err
			}
			filter := mirror.CourseFilter{IDPatterns: ids, NamePatterns: names, Role: mirror.InstructorCourses}
			matched, err := acct.Courses(filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(matched) == 0 {
				fmt.Fprintln(out, "No instructor courses match.")
				return nil
			}

			fmt.Fprint(out, formatter.FormatCourseList(matched))
			if err := app.confirm(fmt.Sprintf("Delete %d course(s)?", len(matched)), "This removes every roster, assignment and outline in them."); err != nil {
				return err
			}
			deleted, err := acct.DeleteCourses(cmd.Context(), filter)
			for _, c := range deleted {
				fmt.Fprintln(out, formatter.Success(fmt.Sprintf("Deleted course %s [%s]", c.CourseName, c.ID)))
			}
			return err
		},
	}

	cmd.Flags().StringArrayVar(&ids, "id", nil, "Course id pattern, anchored at the start (repeatable)")
	cmd.Flags().StringArrayVar(&names, "name", nil, "Course name pattern, anchored at the start (repeatable)")
	return cmd
}
