package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rentbook-dev/rentbook/internal/document"
	"github.com/rentbook-dev/rentbook/internal/model"
)

func newExpenseCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Record costs charged to owners",
	}
	cmd.AddCommand(newExpenseAddCommand(g), newExpenseListCommand(g), newExpenseRmCommand(g))
	return cmd
}

func newExpenseAddCommand(g *globals) *cobra.Command {
	var e model.Expense
	var amount, category, date string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an owner expense",
		Args:  cobra.NoArgs,
		RunE: withProject(g, func(cmd *cobra.Command, p *project, _ []string) error {
			var err error
			if e.Amount, err = parseAmount("amount", amount); err != nil {
				return err
			}
			if e.Date, err = parseDate("date", date, p.loc); err != nil {
				return err
			}
			e.Category = model.ExpenseCategory(category)

			added, err := p.rental.AddExpense(cmd.Context(), e)
			if err != nil {
				return err
			}
			p.commit(cmd.Context(), "expense: "+added.Description)
			p.printf("Added expense %s, %s (id: %s)\n", added.Description, document.FormatMoney(added.Amount), added.ID)
			return nil
		}),
	}

	f := cmd.Flags()
	f.StringVar(&e.OwnerID, "owner", "", "owner ID (required)")
	f.StringVar(&amount, "amount", "", "amount (required)")
	f.StringVar(&e.Description, "description", "", "what the money was spent on")
	f.StringVar(&category, "category", string(model.ExpenseOther), "repair, tax or other")
	f.StringVar(&date, "date", "", "expense date (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newExpenseListCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: withProject(g, func(cmd *cobra.Command, p *project, _ []string) error {
			expenses, err := p.rental.Expenses(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
			defer tw.Flush()
			fmt.Fprintf(tw, "ID\tDATE\tOWNER\tCATEGORY\tAMOUNT\tDESCRIPTION\n")
			for _, e := range expenses {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date.Format(dateLayout),
					e.OwnerID, e.Category, document.FormatMoney(e.Amount), e.Description)
			}
			return nil
		}),
	}
}

func newExpenseRmCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: withProject(g, func(cmd *cobra.Command, p *project, args []string) error {
			if err := p.rental.DeleteExpense(cmd.Context(), args[0]); err != nil {
				return err
			}
			p.commit(cmd.Context(), "expense: remove "+args[0])
			p.printf("Deleted expense %s\n", args[0])
			return nil
		}),
	}
}
