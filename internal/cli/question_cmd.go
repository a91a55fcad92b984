package cli

import (
	"fmt"

	"github.com/alexanderramin/scopesync/internal/cli/formatter"
	"github.com/alexanderramin/scopesync/internal/outline"
	"github.com/spf13/cobra"
)

func newQuestionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "question",
		Short: "Edit an assignment outline",
	}
	cmd.AddCommand(
		newQuestionListCmd(app),
		newQuestionAddCmd(app),
		newQuestionRemoveCmd(app),
		newQuestionPruneCmd(app),
	)
	return cmd
}

func newQuestionListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list COURSE ASSIGNMENT",
		Short: "Show the outline tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.assignmentFromArgs(cmd, args)
			if err != nil {
				return err
			}
			o, err := a.LoadOutline(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Header(a.Name()))
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderOutline(o))
			return nil
		},
	}
}

func newQuestionAddCmd(app *App) *cobra.Command {
	var nq outline.NewQuestion
	var parent string

	cmd := &cobra.Command{
		Use:   "add COURSE ASSIGNMENT",
		Short: "Append a question, optionally under a parent question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.assignmentFromArgs(cmd, args)
			if err != nil {
				return err
			}
			if parent != "" {
				o, err := a.LoadOutline(cmd.Context())
				if err != nil {
					return err
				}
				p, err := o.Get(questionSelector(o, parent))
				if err != nil {
					return fmt.Errorf("parent %q: %w", parent, err)
				}
				nq.ParentID = p.ID
			}
			if _, err := a.AddQuestion(cmd.Context(), nq); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Added question %q", nq.Title)))
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderOutline(a.CachedOutline()))
			return nil
		},
	}

	cmd.Flags().StringVar(&nq.Title, "title", "", "Question title")
	cmd.Flags().Float64Var(&nq.Weight, "weight", 1, "Point weight")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent question id or title")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newQuestionRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove COURSE ASSIGNMENT QUESTION",
		Short: "Remove one question and its children, selected by id or title",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.assignmentFromArgs(cmd, args)
			if err != nil {
				return err
			}
			o, err := a.LoadOutline(cmd.Context())
			if err != nil {
				return err
			}
			sel := questionSelector(o, args[2])
			q, err := o.Get(sel)
			if err != nil {
				return err
			}
			if err := app.confirm(fmt.Sprintf("Remove question %q [%s]?", q.Title, q.DisplayID()), childNote(q)); err != nil {
				return err
			}
			if _, err := a.RemoveQuestion(cmd.Context(), sel); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Removed question %q", q.Title)))
			return nil
		},
	}
}

func childNote(q *outline.Question) string {
	if len(q.Children) == 0 {
		return ""
	}
	return fmt.Sprintf("Its %d child question(s) are removed too.", len(q.Children))
}

func newQuestionPruneCmd(app *App) *cobra.Command {
	var ids, titles []string

	cmd := &cobra.Command{
		Use:   "prune COURSE ASSIGNMENT",
		Short: "Remove every question whose id or title matches a pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(ids) == 0 && len(titles) == 0 {
				return fmt.Errorf("at least one --id or --title pattern is required")
			}
			a, err := app.assignmentFromArgs(cmd, args)
			if err != nil {
				return err
			}
			o, err := a.LoadOutline(cmd.Context())
			if err != nil {
				return err
			}
			filter := outline.Filter{IDPatterns: ids, TitlePatterns: titles}
			matched, err := o.Match(filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(matched) == 0 {
				fmt.Fprintln(out, "No questions match.")
				return nil
			}
			for _, q := range matched {
				fmt.Fprintf(out, "  %s %s\n", formatter.Dim(q.DisplayID()), q.Title)
			}
			if err := app.confirm(fmt.Sprintf("Remove %d question(s)?", len(matched)), "Children of removed groups go with them."); err != nil {
				return err
			}

			removed, err := a.RemoveQuestions(cmd.Context(), outline.Filter{Questions: matched})
			fmt.Fprintln(out, formatter.Success(fmt.Sprintf("Removed %d question(s)", len(removed))))
			return err
		},
	}

	cmd.Flags().StringArrayVar(&ids, "id", nil, "Question id pattern, anchored at the start (repeatable)")
	cmd.Flags().StringArrayVar(&titles, "title", nil, "Question title pattern, anchored at the start (repeatable)")
	return cmd
}
