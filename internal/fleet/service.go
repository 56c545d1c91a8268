// Package fleet implements the automobile side of the agency: vehicles,
// clients, rental contracts and sale contracts.
package fleet

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rentbook-dev/rentbook/internal/model"
	"github.com/rentbook-dev/rentbook/internal/store"
)

// Service provides business logic for the fleet collections of one account.
type Service struct {
	store store.Store
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewService creates a fleet Service over st.
func NewService(st store.Store, log logrus.FieldLogger) *Service {
	return &Service{store: st, log: log, now: time.Now}
}

// SetClock overrides the source of "today".
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

var collectionFields = map[string]store.Fields{
	model.CollVehicles:        {Amounts: []string{"dailyRate"}, Optional: []string{"salePrice"}},
	model.CollRentalContracts: {Amounts: []string{"dailyRate", "totalAmount", "deposit"}},
	model.CollSaleContracts:   {Amounts: []string{"salePrice", "deposit", "balance"}},
}

func list[T any](ctx context.Context, s *Service, collection string) ([]T, error) {
	recs, err := s.store.List(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	return store.DecodeList[T](s.log, collection, recs, collectionFields[collection]), nil
}

func (s *Service) save(ctx context.Context, collection, recordID string, v any, out any) error {
	rec, err := store.Encode(v)
	if err != nil {
		return err
	}
	var saved store.Record
	if recordID == "" {
		saved, err = s.store.Create(ctx, collection, rec)
	} else {
		saved, err = s.store.Update(ctx, collection, recordID, rec)
	}
	if err != nil {
		return fmt.Errorf("saving %s: %w", collection, err)
	}
	return store.Decode(saved, out)
}

func (s *Service) remove(ctx context.Context, collection, recordID string) error {
	if err := s.store.Delete(ctx, collection, recordID); err != nil {
		return fmt.Errorf("deleting %s: %w", collection, err)
	}
	return nil
}

// AddVehicle validates and stores a vehicle. New vehicles are available
// unless a status is given.
func (s *Service) AddVehicle(ctx context.Context, v model.Vehicle) (model.Vehicle, error) {
	v.ID = ""
	v.Registration = strings.ToUpper(strings.TrimSpace(v.Registration))
	if v.Type == "" {
		v.Type = model.VehicleCar
	}
	if v.Status == "" {
		v.Status = model.VehicleAvailable
	}

	var errs model.ValidationErrors
	if v.Brand == "" {
		errs.Add("brand", "is required")
	}
	if v.Registration == "" {
		errs.Add("registration", "is required")
	}
	if v.DailyRate.IsNegative() {
		errs.Add("dailyRate", "must not be negative, got %s", v.DailyRate)
	}
	if v.SalePrice != nil && v.SalePrice.IsNegative() {
		errs.Add("salePrice", "must not be negative, got %s", v.SalePrice)
	}
	if err := errs.Err(); err != nil {
		return model.Vehicle{}, err
	}

	existing, err := s.Vehicles(ctx)
	if err != nil {
		return model.Vehicle{}, err
	}
	for _, e := range existing {
		if e.Registration == v.Registration {
			return model.Vehicle{}, model.ValidationError{Field: "registration", Message: fmt.Sprintf("%s is already registered", v.Registration)}
		}
	}

	var out model.Vehicle
	if err := s.save(ctx, model.CollVehicles, "", v, &out); err != nil {
		return model.Vehicle{}, err
	}
	return out, nil
}

// Vehicles lists vehicles, newest first.
func (s *Service) Vehicles(ctx context.Context) ([]model.Vehicle, error) {
	return list[model.Vehicle](ctx, s, model.CollVehicles)
}

// Vehicle returns one vehicle.
func (s *Service) Vehicle(ctx context.Context, vehicleID string) (model.Vehicle, error) {
	vehicles, err := s.Vehicles(ctx)
	if err != nil {
		return model.Vehicle{}, err
	}
	for _, v := range vehicles {
		if v.ID == vehicleID {
			return v, nil
		}
	}
	return model.Vehicle{}, fmt.Errorf("vehicle %s: %w", vehicleID, store.ErrNotFound)
}

// DeleteVehicle removes a vehicle.
func (s *Service) DeleteVehicle(ctx context.Context, vehicleID string) error {
	return s.remove(ctx, model.CollVehicles, vehicleID)
}

func (s *Service) setVehicleStatus(ctx context.Context, v model.Vehicle, status model.VehicleStatus) error {
	v.Status = status
	var out model.Vehicle
	return s.save(ctx, model.CollVehicles, v.ID, v, &out)
}

// AddClient validates and stores a client.
func (s *Service) AddClient(ctx context.Context, c model.Client) (model.Client, error) {
	c.ID = ""
	if c.ClientType == "" {
		c.ClientType = model.ClientIndividual
	}
	if c.RegistrationDate.IsZero() {
		c.RegistrationDate = s.today()
	}

	var errs model.ValidationErrors
	switch c.ClientType {
	case model.ClientIndividual:
		if c.LastName == "" {
			errs.Add("lastName", "is required")
		}
	case model.ClientCompany:
		if c.CompanyName == "" {
			errs.Add("companyName", "is required for companies")
		}
	default:
		errs.Add("clientType", "unknown client type %q", c.ClientType)
	}
	if c.Phone == "" {
		errs.Add("phone", "is required")
	}
	if err := errs.Err(); err != nil {
		return model.Client{}, err
	}

	var out model.Client
	if err := s.save(ctx, model.CollClients, "", c, &out); err != nil {
		return model.Client{}, err
	}
	return out, nil
}

// Clients lists clients, newest first.
func (s *Service) Clients(ctx context.Context) ([]model.Client, error) {
	return list[model.Client](ctx, s, model.CollClients)
}

// Client returns one client.
func (s *Service) Client(ctx context.Context, clientID string) (model.Client, error) {
	clients, err := s.Clients(ctx)
	if err != nil {
		return model.Client{}, err
	}
	for _, c := range clients {
		if c.ID == clientID {
			return c, nil
		}
	}
	return model.Client{}, fmt.Errorf("client %s: %w", clientID, store.ErrNotFound)
}

// DeleteClient removes a client.
func (s *Service) DeleteClient(ctx context.Context, clientID string) error {
	return s.remove(ctx, model.CollClients, clientID)
}

func (s *Service) today() time.Time {
	n := s.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
}

// RentalDays is the billed length of a rental: whole days between start and
// end, rounded up, with a minimum of one day.
func RentalDays(start, end time.Time) int {
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// totalAmount is days × rate.
func totalAmount(days int, rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(days)))
}
