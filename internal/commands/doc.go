package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rentbook-dev/rentbook/internal/document"
	"github.com/rentbook-dev/rentbook/internal/ledger"
	"github.com/rentbook-dev/rentbook/internal/model"
)

func newDocCommand(g *globals) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Generate PDF documents",
	}
	cmd.PersistentFlags().StringVar(&out, "out", "", "output directory (default: <dir>/documents)")

	cmd.AddCommand(
		newDocReceiptCommand(g, &out),
		newDocTenantCommand(g, &out, "lease", "Generate the lease of a tenant", document.LeaseDocument),
		newDocTenantCommand(g, &out, "deposit", "Generate the deposit receipt of a tenant", document.DepositDocument),
		newDocSettlementCommand(g, &out),
	)
	return cmd
}

// save renders d as PDF into out, or <dir>/documents.
func (p *project) save(out string, d document.Document) error {
	dir := out
	if dir == "" {
		dir = filepath.Join(p.dir, "documents")
	}
	path, err := document.SaveFile(dir, document.PDFRenderer{}, d)
	if err != nil {
		return err
	}
	p.printf("Wrote %s\n", path)
	return nil
}

func newDocReceiptCommand(g *globals, out *string) *cobra.Command {
	return &cobra.Command{
		Use:   "receipt ID",
		Short: "Generate a rent receipt",
		Args:  cobra.ExactArgs(1),
		RunE: withProject(g, func(cmd *cobra.Command, p *project, args []string) error {
			r, err := p.rental.Receipt(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			agency, err := p.rental.Agency(cmd.Context())
			if err != nil {
				return err
			}
			return p.save(*out, document.ReceiptDocument(r, agency))
		}),
	}
}

type tenantDocument func(o model.Owner, t model.Tenant, agency *model.Agency, today time.Time) document.Document

func newDocTenantCommand(g *globals, out *string, use, short string, build tenantDocument) *cobra.Command {
	return &cobra.Command{
		Use:   use + " TENANT",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withProject(g, func(cmd *cobra.Command, p *project, args []string) error {
			t, err := p.rental.Tenant(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			o, err := p.rental.Owner(cmd.Context(), t.OwnerID)
			if err != nil {
				return err
			}
			agency, err := p.rental.Agency(cmd.Context())
			if err != nil {
				return err
			}
			return p.save(*out, build(o, t, agency, p.now()))
		}),
	}
}

func newDocSettlementCommand(g *globals, out *string) *cobra.Command {
	var owner, period string

	cmd := &cobra.Command{
		Use:   "settlement",
		Short: "Generate the financial statement of an owner, or of the agency",
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

			scope := ledger.Scope{OwnerID: owner}
			var o *model.Owner
			if !scope.AgencyWide() {
				found, ok := snap.Owner(owner)
				if !ok {
					return fmt.Errorf("owner %s not found", owner)
				}
				o = &found
			}
			st := ledger.Settle(snap, scope, win)
			return p.save(*out, document.SettlementDocument(st, o, snap.Agency, document.PeriodLabel(win), p.now()))
		}),
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner ID (default: agency-wide)")
	cmd.Flags().StringVar(&period, "period", "month", "month or all")
	return cmd
}
