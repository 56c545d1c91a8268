package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rentbook-dev/rentbook/internal/ledger"
	"github.com/rentbook-dev/rentbook/internal/model"
)

func (s *Server) ledgerRoutes(r chi.Router) {
	r.Route("/ledger", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/settlement", s.handleSettlement)
		r.Get("/settlements", s.handleSettlements)
		r.Get("/arrears", s.handleArrears)
	})
}

func (s *Server) location() *time.Location {
	if s.classifier.Location == nil {
		return time.UTC
	}
	return s.classifier.Location
}

func (s *Server) today() time.Time {
	return s.now().In(s.location())
}

// window parses ?period=month|all. Month is the default.
func (s *Server) window(r *http.Request) (ledger.Window, bool) {
	switch r.URL.Query().Get("period") {
	case "", "month":
		return ledger.CurrentMonth(s.today(), s.location()), true
	case "all":
		return ledger.AllTime(), true
	}
	return ledger.Window{}, false
}

type statusResponse struct {
	Paid    []model.Tenant `json:"paid"`
	Pending []model.Tenant `json:"pending"`
	Late    []model.Tenant `json:"late"`
	Counts  struct {
		Paid    int `json:"paid"`
		Pending int `json:"pending"`
		Late    int `json:"late"`
	} `json:"counts"`
}

// GET /v1/ledger/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := s.services(r).rental.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p := s.classifier.Classify(s.today(), snap.Tenants, snap.Receipts)

	resp := statusResponse{Paid: nonNil(p.Paid), Pending: nonNil(p.Pending), Late: nonNil(p.Late)}
	resp.Counts.Paid = len(p.Paid)
	resp.Counts.Pending = len(p.Pending)
	resp.Counts.Late = len(p.Late)
	writeJSON(w, http.StatusOK, resp)
}

// GET /v1/ledger/settlement?owner=&period=month|all
func (s *Server) handleSettlement(w http.ResponseWriter, r *http.Request) {
	win, ok := s.window(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_PERIOD", "period must be month or all")
		return
	}
	snap, err := s.services(r).rental.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	scope := ledger.Scope{OwnerID: r.URL.Query().Get("owner")}
	if !scope.AgencyWide() {
		if _, ok := snap.Owner(scope.OwnerID); !ok {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "owner "+scope.OwnerID+" not found")
			return
		}
	}
	writeJSON(w, http.StatusOK, ledger.Settle(snap, scope, win))
}

// GET /v1/ledger/settlements?period=month|all
func (s *Server) handleSettlements(w http.ResponseWriter, r *http.Request) {
	win, ok := s.window(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_PERIOD", "period must be month or all")
		return
	}
	snap, err := s.services(r).rental.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(ledger.SettleOwners(snap, win)))
}

// GET /v1/ledger/arrears
func (s *Server) handleArrears(w http.ResponseWriter, r *http.Request) {
	snap, err := s.services(r).rental.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger.BuildArrears(s.classifier, s.today(), snap))
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
