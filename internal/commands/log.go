package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rentbook-dev/rentbook/internal/auditlog"
)

func newLogCommand(g *globals) *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "log [collection [id]]",
		Short: "Show who changed what in the current account",
		Args:  cobra.MaximumNArgs(2),
		RunE: withProject(g, func(cmd *cobra.Command, p *project, args []string) error {
			q := auditlog.Query{Account: p.account, Actor: actor}
			if len(args) > 0 {
				q.Collection = args[0]
			}
			if len(args) > 1 {
				q.RecordID = args[1]
			}

			entries, err := auditlog.History(p.dir, q)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				p.printf("No changes recorded\n")
				return nil
			}

			tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
			defer tw.Flush()
			fmt.Fprintf(tw, "WHEN\tACTOR\tACTION\tCOLLECTION\tID\n")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.At.In(p.loc).Format("2006-01-02 15:04"),
					e.Actor, e.Action, e.Collection, e.RecordID)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&actor, "actor", "", "only changes by this actor")
	return cmd
}
