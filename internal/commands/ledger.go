package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rentbook-dev/rentbook/internal/document"
	"github.com/rentbook-dev/rentbook/internal/ledger"
	"github.com/rentbook-dev/rentbook/internal/model"
)

// window maps --period to a ledger window.
func (p *project) window(period string) (ledger.Window, error) {
	switch period {
	case "", "month":
		return ledger.CurrentMonth(p.now(), p.loc), nil
	case "all":
		return ledger.AllTime(), nil
	}
	return ledger.Window{}, fmt.Errorf("invalid --period %q: want month or all", period)
}

func newStatusCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which active tenants paid this month",
		Args:  cobra.NoArgs,
		RunE: withProject(g, func(cmd *cobra.Command, p *project, _ []string) error {
			snap, err := p.rental.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			today := p.now()
			part := p.classifier().Classify(today, snap.Tenants, snap.Receipts)

			p.printf("%s: %d paid, %d pending, %d late\n",
				document.FormatMonth(today), len(part.Paid), len(part.Pending), len(part.Late))
			printGroup(p, "Paid", part.Paid)
			printGroup(p, "Pending", part.Pending)
			printGroup(p, "Late", part.Late)
			return nil
		}),
	}
}

func printGroup(p *project, label string, tenants []model.Tenant) {
	if len(tenants) == 0 {
		return
	}
	p.printf("\n%s:\n", label)
	for _, t := range tenants {
		p.printf("  %-24s %-12s %s\n", t.FullName(), t.UnitName, document.FormatMoney(t.RentAmount))
	}
}

func newSettleCommand(g *globals) *cobra.Command {
	var owner, period string

	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Compute what is owed to owners after expenses and commission",
		Args:  cobra.NoArgs,
		RunE: withProject(g, func(cmd *cobra.Command, p *project, _ []string) error {
			win, err := p.window(period)
			if err != nil {
				return err
			}
			snap, err := p.rental.Snapshot(cmd.Context())
			if err != nil {
				return err
			}

			var settlements []ledger.Settlement
			if owner != "" {
				if _, ok := snap.Owner(owner); !ok {
					return fmt.Errorf("owner %s not found", owner)
				}
				settlements = []ledger.Settlement{ledger.Settle(snap, ledger.Scope{OwnerID: owner}, win)}
			} else {
				settlements = ledger.SettleOwners(snap, win)
			}

			p.printf("Period: %s\n\n", document.PeriodLabel(win))
			tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintf(tw, "OWNER\tGROSS\tEXPENSES\tRATE\tCOMMISSION\tNET\t\n")
			for _, st := range settlements {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s%%\t%s\t%s\t\n", st.OwnerName,
					document.FormatAmount(st.Gross), document.FormatAmount(st.Expenses), st.Rate,
					document.FormatAmount(st.Commission), document.FormatAmount(st.Net))
			}
			if owner == "" {
				total := ledger.Settle(snap, ledger.Scope{}, win)
				fmt.Fprintf(tw, "Agency total\t%s\t%s\t\t%s\t%s\t\n",
					document.FormatAmount(total.Gross), document.FormatAmount(total.Expenses),
					document.FormatAmount(total.Commission), document.FormatAmount(total.Net))
			}
			return tw.Flush()
		}),
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner ID (default: every owner)")
	cmd.Flags().StringVar(&period, "period", "month", "month or all")
	return cmd
}

func newArrearsCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "arrears",
		Short: "Show late and pending rent next to manual arrears",
		Args:  cobra.NoArgs,
		RunE: withProject(g, func(cmd *cobra.Command, p *project, _ []string) error {
			snap, err := p.rental.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			v := ledger.BuildArrears(p.classifier(), p.now(), snap)

			p.printf("Late (%d): %s\n", len(v.Late), document.FormatMoney(v.LateTotal))
			for _, d := range v.Late {
				p.printf("  %-24s %-12s %s\n", d.TenantName, d.UnitName, document.FormatMoney(d.Amount))
			}
			p.printf("Pending (%d): %s\n", len(v.Pending), document.FormatMoney(v.PendingTotal))
			for _, d := range v.Pending {
				p.printf("  %-24s %-12s %s\n", d.TenantName, d.UnitName, document.FormatMoney(d.Amount))
			}
			p.printf("Manual (%d): %s\n", len(v.Manual), document.FormatMoney(v.ManualTotal))
			for _, a := range v.Manual {
				p.printf("  %-24s %-12s %s\n", a.TenantName, a.Month, document.FormatMoney(a.Amount))
			}
			return nil
		}),
	}
}
