package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rentbook-dev/rentbook/internal/model"
)

func newOwnerCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "owner",
		Short: "Manage property owners",
	}
	cmd.AddCommand(newOwnerAddCommand(g), newOwnerListCommand(g), newOwnerRmCommand(g))
	return cmd
}

func newOwnerAddCommand(g *globals) *cobra.Command {
	var o model.Owner
	var commission string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an owner",
		Args:  cobra.NoArgs,
		RunE: withProject(g, func(cmd *cobra.Command, p *project, _ []string) error {
			rate, err := parseOptionalAmount("commissionRate", commission)
			if err != nil {
				return err
			}
			o.CommissionRate = rate

			added, err := p.rental.AddOwner(cmd.Context(), o)
			if err != nil {
				return err
			}
			p.commit(cmd.Context(), "owner: add "+added.FullName())
			p.printf("Added owner %s (id: %s)\n", added.FullName(), added.ID)
			return nil
		}),
	}

	f := cmd.Flags()
	f.StringVar(&o.FirstName, "first", "", "first name")
	f.StringVar(&o.LastName, "last", "", "last name (required)")
	f.StringVar(&o.Address, "address", "", "property address")
	f.StringVar(&o.Telephone, "phone", "", "phone number")
	f.StringVar(&commission, "commission", "", "commission rate in percent (default: agency rate)")
	return cmd
}

func newOwnerListCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List owners",
		Args:  cobra.NoArgs,
		RunE: withProject(g, func(cmd *cobra.Command, p *project, _ []string) error {
			owners, err := p.rental.Owners(cmd.Context())
			if err != nil {
				return err
			}
			agency, err := p.rental.Agency(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
			defer tw.Flush()
			fmt.Fprintf(tw, "ID\tNAME\tADDRESS\tPHONE\tCOMMISSION\n")
			for _, o := range owners {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s%%\n", o.ID, o.FullName(), o.Address, o.Telephone, commissionOf(o, agency))
			}
			return nil
		}),
	}
}

func newOwnerRmCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete an owner that no tenant references",
		Args:  cobra.ExactArgs(1),
		RunE: withProject(g, func(cmd *cobra.Command, p *project, args []string) error {
			if err := p.rental.DeleteOwner(cmd.Context(), args[0]); err != nil {
				return err
			}
			p.commit(cmd.Context(), "owner: remove "+args[0])
			p.printf("Deleted owner %s\n", args[0])
			return nil
		}),
	}
}
