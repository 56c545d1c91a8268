package server

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rentbook-dev/rentbook/internal/document"
	"github.com/rentbook-dev/rentbook/internal/ledger"
	"github.com/rentbook-dev/rentbook/internal/model"
)

func (s *Server) documentRoutes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Get("/receipts/{id}", s.handleReceiptDocument)
		r.Get("/leases/{id}", s.handleTenantDocument(document.LeaseDocument))
		r.Get("/deposits/{id}", s.handleTenantDocument(document.DepositDocument))
		r.Get("/rental-contracts/{id}", s.handleRentalContractDocument)
		r.Get("/sale-contracts/{id}", s.handleSaleContractDocument)
		r.Get("/settlement", s.handleSettlementDocument)
	})
}

// sendDocument renders d and serves it as an attachment.
func (s *Server) sendDocument(w http.ResponseWriter, r *http.Request, d document.Document) {
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, d); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.FileName()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// GET /v1/documents/receipts/{id}
func (s *Server) handleReceiptDocument(w http.ResponseWriter, r *http.Request) {
	svc := s.services(r)
	receipt, err := svc.rental.Receipt(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	agency, err := svc.rental.Agency(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.sendDocument(w, r, document.ReceiptDocument(receipt, agency))
}

type tenantDocument func(o model.Owner, t model.Tenant, agency *model.Agency, today time.Time) document.Document

// GET /v1/documents/leases/{id} and /v1/documents/deposits/{id}, by tenant.
func (s *Server) handleTenantDocument(build tenantDocument) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc := s.services(r)
		tenant, err := svc.rental.Tenant(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		owner, err := svc.rental.Owner(r.Context(), tenant.OwnerID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		agency, err := svc.rental.Agency(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.sendDocument(w, r, build(owner, tenant, agency, s.today()))
	}
}

// GET /v1/documents/rental-contracts/{id}
func (s *Server) handleRentalContractDocument(w http.ResponseWriter, r *http.Request) {
	svc := s.services(r)
	c, err := svc.fleet.RentalContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	// Vehicle and client may have been deleted since; their lines stay blank.
	v, _ := svc.fleet.Vehicle(r.Context(), c.VehicleID)
	cl, _ := svc.fleet.Client(r.Context(), c.ClientID)
	agency, err := svc.rental.Agency(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.sendDocument(w, r, document.RentalContractDocument(c, v, cl, agency))
}

// GET /v1/documents/sale-contracts/{id}
func (s *Server) handleSaleContractDocument(w http.ResponseWriter, r *http.Request) {
	svc := s.services(r)
	c, err := svc.fleet.SaleContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	v, _ := svc.fleet.Vehicle(r.Context(), c.VehicleID)
	agency, err := svc.rental.Agency(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.sendDocument(w, r, document.SaleContractDocument(c, v, agency))
}

// GET /v1/documents/settlement?owner=&period=month|all
func (s *Server) handleSettlementDocument(w http.ResponseWriter, r *http.Request) {
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
	var owner *model.Owner
	if !scope.AgencyWide() {
		o, ok := snap.Owner(scope.OwnerID)
		if !ok {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "owner "+scope.OwnerID+" not found")
			return
		}
		owner = &o
	}
	settlement := ledger.Settle(snap, scope, win)
	s.sendDocument(w, r, document.SettlementDocument(settlement, owner, snap.Agency, document.PeriodLabel(win), s.today()))
}
