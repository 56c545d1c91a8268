package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rentbook-dev/rentbook/internal/buildinfo"
)

// globals are the persistent flags shared by every subcommand.
type globals struct {
	dir     string
	account string
	today   string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:     "rentbook",
		Short:   "Rent ledger and settlement engine for rental agencies",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.dir, "dir", ".", "project directory")
	pf.StringVar(&g.account, "account", "", "account to work on (default from rentbook.yaml)")
	pf.StringVar(&g.today, "today", "", "override today's date (YYYY-MM-DD)")

	rootCmd.AddCommand(
		newInitCommand(),
		newAgencyCommand(g),
		newOwnerCommand(g),
		newTenantCommand(g),
		newReceiptCommand(g),
		newExpenseCommand(g),
		newArrearCommand(g),
		newStatusCommand(g),
		newSettleCommand(g),
		newArrearsCommand(g),
		newDocCommand(g),
		newLogCommand(g),
		newTokenCommand(g),
		newServeCommand(g),
	)

	return rootCmd
}
