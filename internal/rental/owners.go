package rental

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rentbook-dev/rentbook/internal/model"
)

var maxRate = decimal.NewFromInt(100)

func validateRate(errs *model.ValidationErrors, rate *decimal.Decimal) {
	if rate != nil && (rate.IsNegative() || rate.GreaterThan(maxRate)) {
		errs.Add("commissionRate", "must be between 0 and 100, got %s", rate)
	}
}

// AddOwner validates and stores a new owner.
func (s *Service) AddOwner(ctx context.Context, o model.Owner) (model.Owner, error) {
	o.ID = ""
	o.FirstName = strings.TrimSpace(o.FirstName)
	o.LastName = strings.TrimSpace(o.LastName)

	var errs model.ValidationErrors
	if o.LastName == "" {
		errs.Add("lastName", "is required")
	}
	validateRate(&errs, o.CommissionRate)
	if err := errs.Err(); err != nil {
		return model.Owner{}, err
	}

	var out model.Owner
	if err := s.create(ctx, model.CollOwners, o, &out); err != nil {
		return model.Owner{}, err
	}
	return out, nil
}

// Owners lists owners, newest first.
func (s *Service) Owners(ctx context.Context) ([]model.Owner, error) {
	return list[model.Owner](ctx, s, model.CollOwners)
}

// Owner returns one owner.
func (s *Service) Owner(ctx context.Context, ownerID string) (model.Owner, error) {
	owners, err := s.Owners(ctx)
	if err != nil {
		return model.Owner{}, err
	}
	o, ok := find(owners, func(o model.Owner) bool { return o.ID == ownerID })
	if !ok {
		return model.Owner{}, notFound("owner", ownerID)
	}
	return o, nil
}

// DeleteOwner removes an owner. It is refused while any tenant, active or
// terminated, still references the owner.
func (s *Service) DeleteOwner(ctx context.Context, ownerID string) error {
	tenants, err := s.Tenants(ctx)
	if err != nil {
		return err
	}
	n := 0
	for _, t := range tenants {
		if t.OwnerID == ownerID {
			n++
		}
	}
	if n > 0 {
		return model.ValidationError{Field: "ownerId", Message: pluralTenants(n) + " still reference this owner"}
	}
	return s.remove(ctx, model.CollOwners, ownerID)
}

func pluralTenants(n int) string {
	if n == 1 {
		return "1 tenant"
	}
	return strconv.Itoa(n) + " tenants"
}
