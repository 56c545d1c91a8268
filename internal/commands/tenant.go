package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rentbook-dev/rentbook/internal/document"
	"github.com/rentbook-dev/rentbook/internal/model"
	"github.com/rentbook-dev/rentbook/internal/rental"
)

func newTenantCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}
	cmd.AddCommand(
		newTenantAddCommand(g),
		newTenantListCommand(g),
		newTenantUpdateCommand(g),
		newTenantTerminateCommand(g),
		newTenantRmCommand(g),
	)
	return cmd
}

// tenantFlags are the editable tenant fields shared by add and update.
type tenantFlags struct {
	owner, first, last, idNumber, unitType, unit string
	birthDate, birthPlace                        string
	rooms                                        int
	rent, deposit, start                         string
}

func (tf *tenantFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&tf.owner, "owner", "", "owner ID")
	f.StringVar(&tf.first, "first", "", "first name")
	f.StringVar(&tf.last, "last", "", "last name")
	f.StringVar(&tf.idNumber, "id-number", "", "national ID card number")
	f.StringVar(&tf.birthDate, "birth-date", "", "date of birth")
	f.StringVar(&tf.birthPlace, "birth-place", "", "place of birth")
	f.StringVar(&tf.unitType, "unit-type", "", "unit type, e.g. appartement, studio")
	f.StringVar(&tf.unit, "unit", "", "unit name")
	f.IntVar(&tf.rooms, "rooms", 0, "number of rooms")
	f.StringVar(&tf.rent, "rent", "", "monthly rent")
	f.StringVar(&tf.deposit, "deposit", "", "security deposit")
}

func newTenantAddCommand(g *globals) *cobra.Command {
	var tf tenantFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a tenant to an owner's property",
		Args:  cobra.NoArgs,
		RunE: withProject(g, func(cmd *cobra.Command, p *project, _ []string) error {
			rent, err := parseAmount("rentAmount", orZero(tf.rent))
			if err != nil {
				return err
			}
			deposit, err := parseAmount("deposit", orZero(tf.deposit))
			if err != nil {
				return err
			}
			start, err := parseDate("startDate", tf.start, p.loc)
			if err != nil {
				return err
			}

			added, err := p.rental.AddTenant(cmd.Context(), model.Tenant{
				OwnerID:    tf.owner,
				FirstName:  tf.first,
				LastName:   tf.last,
				BirthDate:  tf.birthDate,
				BirthPlace: tf.birthPlace,
				IDNumber:   tf.idNumber,
				UnitType:   tf.unitType,
				UnitName:   tf.unit,
				RoomsCount: tf.rooms,
				RentAmount: rent,
				Deposit:    deposit,
				StartDate:  start,
			})
			if err != nil {
				return err
			}
			p.commit(cmd.Context(), "tenant: add "+added.FullName())
			p.printf("Added tenant %s (id: %s)\n", added.FullName(), added.ID)
			return nil
		}),
	}

	tf.register(cmd)
	cmd.Flags().StringVar(&tf.start, "start", "", "lease start date (YYYY-MM-DD, default today)")
	return cmd
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func newTenantListCommand(g *globals) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		Args:  cobra.NoArgs,
		RunE: withProject(g, func(cmd *cobra.Command, p *project, _ []string) error {
			tenants, err := p.rental.Tenants(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
			defer tw.Flush()
			fmt.Fprintf(tw, "ID\tNAME\tUNIT\tRENT\tSTATUS\n")
			for _, t := range tenants {
				if !all && !t.IsActive() {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.FullName(), t.UnitName, document.FormatMoney(t.RentAmount), t.Status)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&all, "all", false, "include terminated tenants")
	return cmd
}

func newTenantUpdateCommand(g *globals) *cobra.Command {
	var tf tenantFlags

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Edit a tenant. Only the flags given are changed",
		Args:  cobra.ExactArgs(1),
		RunE: withProject(g, func(cmd *cobra.Command, p *project, args []string) error {
			var patch rental.TenantPatch
			f := cmd.Flags()
			str := func(flag string, v string) *string {
				if f.Changed(flag) {
					return &v
				}
				return nil
			}
			patch.OwnerID = str("owner", tf.owner)
			patch.FirstName = str("first", tf.first)
			patch.LastName = str("last", tf.last)
			patch.IDNumber = str("id-number", tf.idNumber)
			patch.UnitType = str("unit-type", tf.unitType)
			patch.UnitName = str("unit", tf.unit)
			if f.Changed("rooms") {
				patch.RoomsCount = &tf.rooms
			}
			if f.Changed("rent") {
				rent, err := parseAmount("rentAmount", tf.rent)
				if err != nil {
					return err
				}
				patch.RentAmount = &rent
			}
			if f.Changed("deposit") {
				deposit, err := parseAmount("deposit", tf.deposit)
				if err != nil {
					return err
				}
				patch.Deposit = &deposit
			}

			t, err := p.rental.UpdateTenant(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			p.commit(cmd.Context(), "tenant: update "+t.FullName())
			p.printf("Updated tenant %s\n", t.FullName())
			return nil
		}),
	}

	tf.register(cmd)
	return cmd
}

func newTenantTerminateCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "terminate ID",
		Short: "End a tenancy. This cannot be undone",
		Args:  cobra.ExactArgs(1),
		RunE: withProject(g, func(cmd *cobra.Command, p *project, args []string) error {
			t, err := p.rental.TerminateTenant(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p.commit(cmd.Context(), "tenant: terminate "+t.FullName())
			p.printf("Terminated tenant %s\n", t.FullName())
			return nil
		}),
	}
}

func newTenantRmCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: withProject(g, func(cmd *cobra.Command, p *project, args []string) error {
			if err := p.rental.DeleteTenant(cmd.Context(), args[0]); err != nil {
				return err
			}
			p.commit(cmd.Context(), "tenant: remove "+args[0])
			p.printf("Deleted tenant %s\n", args[0])
			return nil
		}),
	}
}
