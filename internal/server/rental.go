package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rentbook-dev/rentbook/internal/rental"
)

func (s *Server) rentalRoutes(r chi.Router) {
	r.Route("/owners", func(r chi.Router) {
		r.Get("/", list(s, rentalSvc, (*rental.Service).Owners))
		r.Post("/", submit(s, http.StatusCreated, rentalSvc, (*rental.Service).AddOwner))
		r.Delete("/{id}", remove(s, rentalSvc, (*rental.Service).DeleteOwner))
	})
	r.Route("/tenants", func(r chi.Router) {
		r.Get("/", list(s, rentalSvc, (*rental.Service).Tenants))
		r.Post("/", submit(s, http.StatusCreated, rentalSvc, (*rental.Service).AddTenant))
		r.Patch("/{id}", s.handleUpdateTenant)
		r.Post("/{id}/terminate", s.handleTerminateTenant)
		r.Delete("/{id}", remove(s, rentalSvc, (*rental.Service).DeleteTenant))
	})
	r.Route("/receipts", func(r chi.Router) {
		r.Get("/", list(s, rentalSvc, (*rental.Service).Receipts))
		r.Post("/", submit(s, http.StatusCreated, rentalSvc, (*rental.Service).AddReceipt))
		r.Delete("/{id}", remove(s, rentalSvc, (*rental.Service).DeleteReceipt))
	})
	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", list(s, rentalSvc, (*rental.Service).Expenses))
		r.Post("/", submit(s, http.StatusCreated, rentalSvc, (*rental.Service).AddExpense))
		r.Delete("/{id}", remove(s, rentalSvc, (*rental.Service).DeleteExpense))
	})
	r.Route("/arrears", func(r chi.Router) {
		r.Get("/", list(s, rentalSvc, (*rental.Service).Arrears))
		r.Post("/", submit(s, http.StatusCreated, rentalSvc, (*rental.Service).AddArrear))
		r.Delete("/{id}", remove(s, rentalSvc, (*rental.Service).DeleteArrear))
	})
	r.Get("/agency", s.handleGetAgency)
	r.Put("/agency", submit(s, http.StatusOK, rentalSvc, (*rental.Service).SaveAgency))
}

// PATCH /v1/tenants/{id}
func (s *Server) handleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	var patch rental.TenantPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	t, err := s.services(r).rental.UpdateTenant(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// POST /v1/tenants/{id}/terminate
func (s *Server) handleTerminateTenant(w http.ResponseWriter, r *http.Request) {
	t, err := s.services(r).rental.TerminateTenant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// GET /v1/agency answers 404 until a profile has been saved.
func (s *Server) handleGetAgency(w http.ResponseWriter, r *http.Request) {
	a, err := s.services(r).rental.Agency(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "agency profile not set")
		return
	}
	writeJSON(w, http.StatusOK, a)
}
