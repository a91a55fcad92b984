package cli

import (
	"fmt"

	"github.com/alexanderramin/scopesync/internal/cli/formatter"
	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/mirror"
	"github.com/spf13/cobra"
)

func newPeopleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "people",
		Short: "Manage a course roster",
	}
	cmd.AddCommand(
		newPeopleListCmd(app),
		newPeopleAddCmd(app),
		newPeopleRemoveCmd(app),
		newPeopleRoleCmd(app),
	)
	return cmd
}

// courseFromArgs loads the account and resolves the course named by args[0].
func (a *App) courseFromArgs(cmd *cobra.Command, args []string) (*mirror.Course, error) {
	acct, err := a.account(cmd)
	if err != nil {
		return nil, err
	}
	return resolveCourse(acct, args[0])
}

func newPeopleListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list COURSE",
		Short: "List course members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.courseFromArgs(cmd, args)
			if err != nil {
				return err
			}
			people, err := c.People(cmd.Context())
			if err != nil {
				return err
			}
			if len(people) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No members.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPeople(people))
			return nil
		},
	}
}

func newPeopleAddCmd(app *App) *cobra.Command {
	var np mirror.NewPerson
	var role string

	cmd := &cobra.Command{
		Use:   "add COURSE",
		Short: "Add a member to a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := domain.ParseRole(role)
			if err != nil {
				return err
			}
			np.Role = r
			c, err := app.courseFromArgs(cmd, args)
			if err != nil {
				return err
			}
			if err := c.AddPerson(cmd.Context(), np); err != nil {
				return err
			}
			p, err := c.Person(cmd.Context(), personSelector(np.Email))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Added %s <%s> as %s", p.FullName, p.Email, p.Role)))
			return nil
		},
	}

	cmd.Flags().StringVar(&np.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&np.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&np.SID, "sid", "", "Student id")
	cmd.Flags().StringVar(&role, "role", "student", "Role (student|instructor|ta|reader or code)")
	cmd.Flags().BoolVar(&np.Notify, "notify", false, "Email the new member")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newPeopleRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove COURSE PERSON",
		Short: "Remove a member, selected by email or unique name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.courseFromArgs(cmd, args)
			if err != nil {
				return err
			}
			sel := personSelector(args[1])
			p, err := c.Person(cmd.Context(), sel)
			if err != nil {
				return err
			}
			if err := app.confirm(fmt.Sprintf("Remove %s <%s> from %s?", p.FullName, p.Email, c.CourseName), ""); err != nil {
				return err
			}
			if _, err := c.RemovePerson(cmd.Context(), sel); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Removed %s <%s>", p.FullName, p.Email)))
			return nil
		},
	}
}

func newPeopleRoleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "role COURSE PERSON ROLE",
		Short: "Change a member's role",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := domain.ParseRole(args[2])
			if err != nil {
				return err
			}
			c, err := app.courseFromArgs(cmd, args)
			if err != nil {
				return err
			}
			p, err := c.ChangeRole(cmd.Context(), personSelector(args[1]), role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("%s <%s> is now %s", p.FullName, p.Email, p.Role)))
			return nil
		},
	}
}
