package server

import (
	"net/http"

	"github.com/rentbook-dev/rentbook/internal/model"
	"github.com/rentbook-dev/rentbook/internal/rental"
)

type accountAgency struct {
	AccountID string        `json:"accountId"`
	Agency    *model.Agency `json:"agency"`
}

// GET /v1/admin/agencies lists the agency profile of every account. Accounts
// that never saved a profile are listed with a null agency.
func (s *Server) handleAdminAgencies(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.backend.Accounts(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := make([]accountAgency, 0, len(accounts))
	for _, acct := range accounts {
		svc := rental.NewService(s.backend.Account(acct), s.log.WithField("account_id", acct))
		a, err := svc.Agency(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out = append(out, accountAgency{AccountID: acct, Agency: a})
	}
	writeJSON(w, http.StatusOK, out)
}
