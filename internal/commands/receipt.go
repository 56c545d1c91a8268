package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rentbook-dev/rentbook/internal/document"
	"github.com/rentbook-dev/rentbook/internal/importer"
	"github.com/rentbook-dev/rentbook/internal/rental"
)

func newReceiptCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt",
		Short: "Record and list rent payments",
	}
	cmd.AddCommand(
		newReceiptAddCommand(g),
		newReceiptListCommand(g),
		newReceiptRmCommand(g),
		newReceiptImportCommand(g),
	)
	return cmd
}

func newReceiptAddCommand(g *globals) *cobra.Command {
	var tenant, amount, date, from, to string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a rent payment and issue its receipt number",
		Args:  cobra.NoArgs,
		RunE: withProject(g, func(cmd *cobra.Command, p *project, _ []string) error {
			params := rental.ReceiptParams{TenantID: tenant}
			var err error
			if params.Amount, err = parseAmount("amount", amount); err != nil {
				return err
			}
			if params.PaymentDate, err = parseDate("paymentDate", date, p.loc); err != nil {
				return err
			}
			if params.PeriodStart, err = parseDate("periodStart", from, p.loc); err != nil {
				return err
			}
			if params.PeriodEnd, err = parseDate("periodEnd", to, p.loc); err != nil {
				return err
			}

			r, err := p.rental.AddReceipt(cmd.Context(), params)
			if err != nil {
				return err
			}
			p.commit(cmd.Context(), "receipt: "+r.ReceiptNumber+" "+r.TenantName)
			p.printf("Issued receipt %s for %s, %s (id: %s)\n",
				r.ReceiptNumber, r.TenantName, document.FormatMoney(r.Amount), r.ID)
			return nil
		}),
	}

	f := cmd.Flags()
	f.StringVar(&tenant, "tenant", "", "tenant ID (required)")
	f.StringVar(&amount, "amount", "", "amount paid (required)")
	f.StringVar(&date, "date", "", "payment date (YYYY-MM-DD, default today)")
	f.StringVar(&from, "from", "", "first day of the period covered")
	f.StringVar(&to, "to", "", "last day of the period covered")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newReceiptListCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List receipts, newest first",
		Args:  cobra.NoArgs,
		RunE: withProject(g, func(cmd *cobra.Command, p *project, _ []string) error {
			receipts, err := p.rental.Receipts(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
			defer tw.Flush()
			fmt.Fprintf(tw, "ID\tNUMBER\tDATE\tTENANT\tAMOUNT\n")
			for _, r := range receipts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.ReceiptNumber,
					r.PaymentDate.Format(dateLayout), r.TenantName, document.FormatMoney(r.Amount))
			}
			return nil
		}),
	}
}

func newReceiptRmCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a receipt",
		Args:  cobra.ExactArgs(1),
		RunE: withProject(g, func(cmd *cobra.Command, p *project, args []string) error {
			if err := p.rental.DeleteReceipt(cmd.Context(), args[0]); err != nil {
				return err
			}
			p.commit(cmd.Context(), "receipt: remove "+args[0])
			p.printf("Deleted receipt %s\n", args[0])
			return nil
		}),
	}
}

func newReceiptImportCommand(g *globals) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Record the payments of every CSV statement in import/",
		Args:  cobra.NoArgs,
		RunE: withProject(g, func(cmd *cobra.Command, p *project, _ []string) error {
			parser := importer.DefaultRegistry(p.loc).Get(format)
			if parser == nil {
				return fmt.Errorf("unknown statement format %q", format)
			}

			files, err := importer.Scan(p.dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				p.printf("No statements to import\n")
				return nil
			}

			var issued int
			for _, fi := range files {
				payments, err := parseFile(parser, fi.Path)
				if err != nil {
					return fmt.Errorf("%s: %w", fi.Name, err)
				}
				res, err := importer.Apply(cmd.Context(), p.rental, payments)
				if err != nil {
					return fmt.Errorf("%s: %w", fi.Name, err)
				}
				for _, sk := range res.Skipped {
					p.printf("  %s line %d skipped: %v\n", fi.Name, sk.Payment.Line, sk.Err)
				}
				if err := importer.MarkProcessed(p.dir, fi.Name); err != nil {
					return err
				}
				p.log.WithFields(logrus.Fields{
					"file":     fi.Name,
					"receipts": len(res.Receipts),
					"skipped":  len(res.Skipped),
				}).Info("Statement imported")
				p.printf("%s: %d receipts, %d skipped\n", fi.Name, len(res.Receipts), len(res.Skipped))
				issued += len(res.Receipts)
			}

			p.commit(cmd.Context(), fmt.Sprintf("receipt: import %d payments", issued))
			return nil
		}),
	}

	cmd.Flags().StringVar(&format, "format", "statement", "statement format")
	return cmd
}

func parseFile(parser importer.Parser, path string) ([]importer.Payment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parser.Parse(f)
}
