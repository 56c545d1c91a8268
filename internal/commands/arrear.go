package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rentbook-dev/rentbook/internal/document"
	"github.com/rentbook-dev/rentbook/internal/rental"
)

func newArrearCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arrear",
		Short: "Record debts by hand",
	}
	cmd.AddCommand(newArrearAddCommand(g), newArrearListCommand(g), newArrearRmCommand(g))
	return cmd
}

func newArrearAddCommand(g *globals) *cobra.Command {
	var params rental.ArrearParams
	var amount string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a manual arrear for a tenant",
		Args:  cobra.NoArgs,
		RunE: withProject(g, func(cmd *cobra.Command, p *project, _ []string) error {
			var err error
			if params.Amount, err = parseAmount("amount", amount); err != nil {
				return err
			}
			a, err := p.rental.AddArrear(cmd.Context(), params)
			if err != nil {
				return err
			}
			p.commit(cmd.Context(), "arrear: "+a.TenantName+" "+a.Month)
			p.printf("Added arrear for %s, %s %s (id: %s)\n", a.TenantName, a.Month, document.FormatMoney(a.Amount), a.ID)
			return nil
		}),
	}

	f := cmd.Flags()
	f.StringVar(&params.TenantID, "tenant", "", "tenant ID (required)")
	f.StringVar(&amount, "amount", "", "amount owed (required)")
	f.StringVar(&params.Month, "month", "", "month owed, free text (required)")
	f.StringVar(&params.Description, "description", "", "note")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newArrearListCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List manual arrears",
		Args:  cobra.NoArgs,
		RunE: withProject(g, func(cmd *cobra.Command, p *project, _ []string) error {
			arrears, err := p.rental.Arrears(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
			defer tw.Flush()
			fmt.Fprintf(tw, "ID\tTENANT\tMONTH\tAMOUNT\tDESCRIPTION\n")
			for _, a := range arrears {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.TenantName, a.Month, document.FormatMoney(a.Amount), a.Description)
			}
			return nil
		}),
	}
}

func newArrearRmCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a manual arrear",
		Args:  cobra.ExactArgs(1),
		RunE: withProject(g, func(cmd *cobra.Command, p *project, args []string) error {
			if err := p.rental.DeleteArrear(cmd.Context(), args[0]); err != nil {
				return err
			}
			p.commit(cmd.Context(), "arrear: remove "+args[0])
			p.printf("Deleted arrear %s\n", args[0])
			return nil
		}),
	}
}
