package commands

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/rentbook-dev/rentbook/internal/identity"
)

func newTokenCommand(g *globals) *cobra.Command {
	var user, account, role, ttl string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an API token for the HTTP server",
		Args:  cobra.NoArgs,
		RunE: withProject(g, func(cmd *cobra.Command, p *project, _ []string) error {
			if p.cfg.Auth.JWTSecret == "" {
				return errors.New("no JWT secret configured (set RENTBOOK_JWT_SECRET in .env)")
			}
			lifetime, err := p.cfg.Auth.TTL()
			if err != nil {
				return err
			}
			if ttl != "" {
				d, err := time.ParseDuration(ttl)
				if err != nil {
					return err
				}
				lifetime = d
			}
			if account == "" {
				account = p.account
			}

			token, err := identity.NewIssuer([]byte(p.cfg.Auth.JWTSecret), lifetime).
				Issue(user, account, identity.ParseRole(role))
			if err != nil {
				return err
			}
			p.printf("%s\n", token)
			return nil
		}),
	}

	f := cmd.Flags()
	f.StringVar(&user, "user", "", "user ID (required)")
	f.StringVar(&account, "account-id", "", "account the token grants (default: current account)")
	f.StringVar(&role, "role", string(identity.RoleClient), "client or admin")
	f.StringVar(&ttl, "ttl", "", "lifetime, e.g. 24h (default from rentbook.yaml)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
