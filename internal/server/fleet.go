package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rentbook-dev/rentbook/internal/fleet"
)

func (s *Server) fleetRoutes(r chi.Router) {
	r.Route("/vehicles", func(r chi.Router) {
		r.Get("/", list(s, fleetSvc, (*fleet.Service).Vehicles))
		r.Post("/", submit(s, http.StatusCreated, fleetSvc, (*fleet.Service).AddVehicle))
		r.Delete("/{id}", remove(s, fleetSvc, (*fleet.Service).DeleteVehicle))
	})
	r.Route("/clients", func(r chi.Router) {
		r.Get("/", list(s, fleetSvc, (*fleet.Service).Clients))
		r.Post("/", submit(s, http.StatusCreated, fleetSvc, (*fleet.Service).AddClient))
		r.Delete("/{id}", remove(s, fleetSvc, (*fleet.Service).DeleteClient))
	})
	r.Route("/rental-contracts", func(r chi.Router) {
		r.Get("/", list(s, fleetSvc, (*fleet.Service).RentalContracts))
		r.Post("/", submit(s, http.StatusCreated, fleetSvc, (*fleet.Service).AddRentalContract))
		r.Delete("/{id}", remove(s, fleetSvc, (*fleet.Service).DeleteRentalContract))
	})
	r.Route("/sale-contracts", func(r chi.Router) {
		r.Get("/", list(s, fleetSvc, (*fleet.Service).SaleContracts))
		r.Post("/", s.handleAddSaleContract)
		r.Delete("/{id}", remove(s, fleetSvc, (*fleet.Service).DeleteSaleContract))
	})
}

// POST /v1/sale-contracts. The agency sells unless the body names a seller.
func (s *Server) handleAddSaleContract(w http.ResponseWriter, r *http.Request) {
	var p fleet.SaleParams
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	svc := s.services(r)
	if p.SellerName == "" {
		a, err := svc.rental.Agency(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if a != nil {
			p.SellerName = a.Name
			p.SellerID = a.ID
		}
	}
	c, err := svc.fleet.AddSaleContract(r.Context(), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
