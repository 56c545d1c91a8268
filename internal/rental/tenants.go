package rental

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentbook-dev/rentbook/internal/model"
	"github.com/rentbook-dev/rentbook/internal/store"
)

// AddTenant validates and stores a new tenant. Tenants always start active
// and must reference an existing owner.
func (s *Service) AddTenant(ctx context.Context, t model.Tenant) (model.Tenant, error) {
	t.ID = ""
	t.Status = model.TenantActive
	t.FirstName = strings.TrimSpace(t.FirstName)
	t.LastName = strings.TrimSpace(t.LastName)
	if t.StartDate.IsZero() {
		t.StartDate = s.today()
	}

	var errs model.ValidationErrors
	if t.LastName == "" {
		errs.Add("lastName", "is required")
	}
	if t.RentAmount.IsNegative() {
		errs.Add("rentAmount", "must not be negative, got %s", t.RentAmount)
	}
	if t.Deposit.IsNegative() {
		errs.Add("deposit", "must not be negative, got %s", t.Deposit)
	}
	if t.RoomsCount < 0 {
		errs.Add("roomsCount", "must not be negative, got %d", t.RoomsCount)
	}
	if err := s.checkOwner(ctx, &errs, t.OwnerID); err != nil {
		return model.Tenant{}, err
	}
	if err := errs.Err(); err != nil {
		return model.Tenant{}, err
	}

	var out model.Tenant
	if err := s.create(ctx, model.CollTenants, t, &out); err != nil {
		return model.Tenant{}, err
	}
	return out, nil
}

func (s *Service) checkOwner(ctx context.Context, errs *model.ValidationErrors, ownerID string) error {
	if ownerID == "" {
		errs.Add("ownerId", "is required")
		return nil
	}
	_, err := s.Owner(ctx, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		errs.Add("ownerId", "owner %s does not exist", ownerID)
		return nil
	}
	return err
}

// Tenants lists tenants, newest first.
func (s *Service) Tenants(ctx context.Context) ([]model.Tenant, error) {
	return list[model.Tenant](ctx, s, model.CollTenants)
}

// Tenant returns one tenant.
func (s *Service) Tenant(ctx context.Context, tenantID string) (model.Tenant, error) {
	tenants, err := s.Tenants(ctx)
	if err != nil {
		return model.Tenant{}, err
	}
	t, ok := find(tenants, func(t model.Tenant) bool { return t.ID == tenantID })
	if !ok {
		return model.Tenant{}, notFound("tenant", tenantID)
	}
	return t, nil
}

// TenantPatch holds the editable tenant fields. Nil fields are unchanged.
// Status is not editable here; see TerminateTenant.
type TenantPatch struct {
	OwnerID    *string          `json:"ownerId,omitempty"`
	FirstName  *string          `json:"firstName,omitempty"`
	LastName   *string          `json:"lastName,omitempty"`
	IDNumber   *string          `json:"idNumber,omitempty"`
	UnitType   *string          `json:"unitType,omitempty"`
	UnitName   *string          `json:"unitName,omitempty"`
	RoomsCount *int             `json:"roomsCount,omitempty"`
	RentAmount *decimal.Decimal `json:"rentAmount,omitempty"`
	Deposit    *decimal.Decimal `json:"deposit,omitempty"`
}

// UpdateTenant applies p to a tenant. Receipts already issued keep the
// tenant name and unit they were created with.
func (s *Service) UpdateTenant(ctx context.Context, tenantID string, p TenantPatch) (model.Tenant, error) {
	t, err := s.Tenant(ctx, tenantID)
	if err != nil {
		return model.Tenant{}, err
	}

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&t.FirstName, p.FirstName)
	setString(&t.LastName, p.LastName)
	setString(&t.IDNumber, p.IDNumber)
	setString(&t.UnitType, p.UnitType)
	setString(&t.UnitName, p.UnitName)
	if p.RoomsCount != nil {
		t.RoomsCount = *p.RoomsCount
	}
	if p.RentAmount != nil {
		t.RentAmount = *p.RentAmount
	}
	if p.Deposit != nil {
		t.Deposit = *p.Deposit
	}

	var errs model.ValidationErrors
	if t.LastName == "" {
		errs.Add("lastName", "is required")
	}
	if t.RentAmount.IsNegative() {
		errs.Add("rentAmount", "must not be negative, got %s", t.RentAmount)
	}
	if t.Deposit.IsNegative() {
		errs.Add("deposit", "must not be negative, got %s", t.Deposit)
	}
	if t.RoomsCount < 0 {
		errs.Add("roomsCount", "must not be negative, got %d", t.RoomsCount)
	}
	if p.OwnerID != nil && *p.OwnerID != t.OwnerID {
		t.OwnerID = *p.OwnerID
		if err := s.checkOwner(ctx, &errs, t.OwnerID); err != nil {
			return model.Tenant{}, err
		}
	}
	if err := errs.Err(); err != nil {
		return model.Tenant{}, err
	}

	var out model.Tenant
	if err := s.update(ctx, model.CollTenants, tenantID, t, &out); err != nil {
		return model.Tenant{}, err
	}
	return out, nil
}

// TerminateTenant ends a tenancy. There is no way back to active.
func (s *Service) TerminateTenant(ctx context.Context, tenantID string) (model.Tenant, error) {
	t, err := s.Tenant(ctx, tenantID)
	if err != nil {
		return model.Tenant{}, err
	}
	if !t.IsActive() {
		return model.Tenant{}, model.ValidationError{Field: "status", Message: "tenant is already terminated"}
	}
	t.Status = model.TenantTerminated

	var out model.Tenant
	if err := s.update(ctx, model.CollTenants, tenantID, t, &out); err != nil {
		return model.Tenant{}, err
	}
	return out, nil
}

// DeleteTenant removes a tenant. Receipts and arrears keep their snapshot.
func (s *Service) DeleteTenant(ctx context.Context, tenantID string) error {
	return s.remove(ctx, model.CollTenants, tenantID)
}

func (s *Service) today() time.Time {
	n := s.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
}
