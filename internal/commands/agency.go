package commands

import (
	"github.com/spf13/cobra"

	"github.com/rentbook-dev/rentbook/internal/ledger"
	"github.com/rentbook-dev/rentbook/internal/model"
)

func newAgencyCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agency",
		Short: "Show or edit the agency profile",
	}
	cmd.AddCommand(newAgencyShowCommand(g), newAgencySetCommand(g))
	return cmd
}

func newAgencyShowCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the agency profile",
		Args:  cobra.NoArgs,
		RunE: withProject(g, func(cmd *cobra.Command, p *project, _ []string) error {
			a, err := p.rental.Agency(cmd.Context())
			if err != nil {
				return err
			}
			if a == nil {
				p.printf("No agency profile. Set one with: rentbook agency set --name NAME\n")
				return nil
			}
			p.printf("Name:       %s\n", a.Name)
			p.printf("Address:    %s\n", a.Address)
			p.printf("Phone:      %s\n", a.Phone)
			p.printf("Email:      %s\n", a.Email)
			p.printf("NINEA:      %s\n", a.NINEA)
			p.printf("RCCM:       %s\n", a.RCCM)
			p.printf("Commission: %s%%\n", ledger.CommissionRate(nil, a))
			return nil
		}),
	}
}

func newAgencySetCommand(g *globals) *cobra.Command {
	var name, owner, address, phone, email, ninea, rccm, logo, commission string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update the agency profile",
		Args:  cobra.NoArgs,
		RunE: withProject(g, func(cmd *cobra.Command, p *project, _ []string) error {
			ctx := cmd.Context()
			current, err := p.rental.Agency(ctx)
			if err != nil {
				return err
			}
			var a model.Agency
			if current != nil {
				a = *current
			}

			f := cmd.Flags()
			set := func(flag string, dst *string, v string) {
				if f.Changed(flag) {
					*dst = v
				}
			}
			set("name", &a.Name, name)
			set("owner-name", &a.OwnerName, owner)
			set("address", &a.Address, address)
			set("phone", &a.Phone, phone)
			set("email", &a.Email, email)
			set("ninea", &a.NINEA, ninea)
			set("rccm", &a.RCCM, rccm)
			set("logo-url", &a.LogoURL, logo)
			if f.Changed("commission") {
				rate, err := parseOptionalAmount("commissionRate", commission)
				if err != nil {
					return err
				}
				a.CommissionRate = rate
			}

			saved, err := p.rental.SaveAgency(ctx, a)
			if err != nil {
				return err
			}
			p.commit(ctx, "agency: "+saved.Name)
			p.printf("Saved agency %s (commission %s%%)\n", saved.Name, ledger.CommissionRate(nil, &saved))
			return nil
		}),
	}

	f := cmd.Flags()
	f.StringVar(&name, "name", "", "agency name")
	f.StringVar(&owner, "owner-name", "", "manager name")
	f.StringVar(&address, "address", "", "postal address")
	f.StringVar(&phone, "phone", "", "phone number")
	f.StringVar(&email, "email", "", "email address")
	f.StringVar(&ninea, "ninea", "", "NINEA tax number")
	f.StringVar(&rccm, "rccm", "", "RCCM trade register number")
	f.StringVar(&logo, "logo-url", "", "logo URL")
	f.StringVar(&commission, "commission", "", "default commission rate in percent (empty clears it)")
	return cmd
}
