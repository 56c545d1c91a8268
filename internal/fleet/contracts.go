package fleet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rentbook-dev/rentbook/internal/id"
	"github.com/rentbook-dev/rentbook/internal/model"
	"github.com/rentbook-dev/rentbook/internal/store"
)

// RentalParams holds the inputs of a rental contract.
type RentalParams struct {
	VehicleID         string          `json:"vehicleId"`
	ClientID          string          `json:"clientId"`
	StartDate         time.Time       `json:"startDate"`
	EndDate           time.Time       `json:"endDate"`
	Deposit           decimal.Decimal `json:"deposit"`
	InsuranceIncluded bool            `json:"insuranceIncluded"`
	AdditionalOptions string          `json:"additionalOptions,omitempty"`
}

// AddRentalContract rents an available vehicle to a client. The daily rate
// is taken from the vehicle and the vehicle is marked rented.
func (s *Service) AddRentalContract(ctx context.Context, p RentalParams) (model.RentalContract, error) {
	var errs model.ValidationErrors
	if p.VehicleID == "" {
		errs.Add("vehicleId", "is required")
	}
	if p.ClientID == "" {
		errs.Add("clientId", "is required")
	}
	if p.StartDate.IsZero() {
		errs.Add("startDate", "is required")
	}
	if p.EndDate.IsZero() {
		errs.Add("endDate", "is required")
	}
	if !p.StartDate.IsZero() && !p.EndDate.IsZero() && p.EndDate.Before(p.StartDate) {
		errs.Add("endDate", "must not be before startDate")
	}
	if p.Deposit.IsNegative() {
		errs.Add("deposit", "must not be negative, got %s", p.Deposit)
	}
	if err := errs.Err(); err != nil {
		return model.RentalContract{}, err
	}

	vehicle, err := s.Vehicle(ctx, p.VehicleID)
	if err != nil {
		return model.RentalContract{}, partyErr("vehicleId", err)
	}
	if vehicle.Status != model.VehicleAvailable {
		return model.RentalContract{}, model.ValidationError{Field: "vehicleId", Message: fmt.Sprintf("vehicle is %s", vehicle.Status)}
	}
	client, err := s.Client(ctx, p.ClientID)
	if err != nil {
		return model.RentalContract{}, partyErr("clientId", err)
	}

	number, err := s.nextContractNumber(ctx, id.PrefixRental, p.StartDate.Year())
	if err != nil {
		return model.RentalContract{}, err
	}

	days := RentalDays(p.StartDate, p.EndDate)
	c := model.RentalContract{
		ContractNumber:    number,
		VehicleID:         vehicle.ID,
		VehicleDetails:    vehicle.Details(),
		ClientID:          client.ID,
		ClientName:        client.FullName(),
		StartDate:         p.StartDate,
		EndDate:           p.EndDate,
		TotalDays:         days,
		DailyRate:         vehicle.DailyRate,
		TotalAmount:       totalAmount(days, vehicle.DailyRate),
		Deposit:           p.Deposit,
		InsuranceIncluded: p.InsuranceIncluded,
		AdditionalOptions: p.AdditionalOptions,
		Status:            model.ContractActive,
		PaymentStatus:     model.PaymentPending,
	}

	var out model.RentalContract
	if err := s.save(ctx, model.CollRentalContracts, "", c, &out); err != nil {
		return model.RentalContract{}, err
	}
	if err := s.setVehicleStatus(ctx, vehicle, model.VehicleRented); err != nil {
		return model.RentalContract{}, s.rollback(ctx, model.CollRentalContracts, out.ID, fmt.Errorf("marking vehicle rented: %w", err))
	}
	return out, nil
}

// RentalContracts lists rental contracts, newest first.
func (s *Service) RentalContracts(ctx context.Context) ([]model.RentalContract, error) {
	return list[model.RentalContract](ctx, s, model.CollRentalContracts)
}

// RentalContract returns one rental contract.
func (s *Service) RentalContract(ctx context.Context, contractID string) (model.RentalContract, error) {
	contracts, err := s.RentalContracts(ctx)
	if err != nil {
		return model.RentalContract{}, err
	}
	for _, c := range contracts {
		if c.ID == contractID {
			return c, nil
		}
	}
	return model.RentalContract{}, fmt.Errorf("rental contract %s: %w", contractID, store.ErrNotFound)
}

// DeleteRentalContract removes a rental contract.
func (s *Service) DeleteRentalContract(ctx context.Context, contractID string) error {
	return s.remove(ctx, model.CollRentalContracts, contractID)
}

// SaleParams holds the inputs of a sale contract.
type SaleParams struct {
	VehicleID      string              `json:"vehicleId"`
	SellerID       string              `json:"sellerId,omitempty"`
	SellerName     string              `json:"sellerName"`
	BuyerName      string              `json:"buyerName"`
	BuyerPhone     string              `json:"buyerPhone"`
	BuyerIDNumber  string              `json:"buyerIdNumber,omitempty"`
	SaleDate       time.Time           `json:"saleDate,omitzero"` // zero = today
	SalePrice      decimal.Decimal     `json:"salePrice"`
	PaymentMethod  model.PaymentMethod `json:"paymentMethod,omitempty"`
	Deposit        decimal.Decimal     `json:"deposit"`
	WarrantyMonths int                 `json:"warrantyMonths"`
	Notes          string              `json:"notes,omitempty"`
}

// AddSaleContract sells an available vehicle. The balance is the sale price
// less the deposit, and the vehicle is marked sold.
func (s *Service) AddSaleContract(ctx context.Context, p SaleParams) (model.SaleContract, error) {
	if p.PaymentMethod == "" {
		p.PaymentMethod = model.PayCash
	}
	if p.SaleDate.IsZero() {
		p.SaleDate = s.today()
	}

	var errs model.ValidationErrors
	if p.VehicleID == "" {
		errs.Add("vehicleId", "is required")
	}
	if p.SellerName == "" {
		errs.Add("sellerName", "is required")
	}
	if p.BuyerName == "" {
		errs.Add("buyerName", "is required")
	}
	if p.BuyerPhone == "" {
		errs.Add("buyerPhone", "is required")
	}
	if !p.SalePrice.IsPositive() {
		errs.Add("salePrice", "must be greater than 0, got %s", p.SalePrice)
	}
	if p.Deposit.IsNegative() || p.Deposit.GreaterThan(p.SalePrice) {
		errs.Add("deposit", "must be between 0 and the sale price, got %s", p.Deposit)
	}
	switch p.PaymentMethod {
	case model.PayCash, model.PayTransfer, model.PayCredit, model.PayInstallment:
	default:
		errs.Add("paymentMethod", "unknown payment method %q", p.PaymentMethod)
	}
	if err := errs.Err(); err != nil {
		return model.SaleContract{}, err
	}

	vehicle, err := s.Vehicle(ctx, p.VehicleID)
	if err != nil {
		return model.SaleContract{}, partyErr("vehicleId", err)
	}
	if vehicle.Status != model.VehicleAvailable {
		return model.SaleContract{}, model.ValidationError{Field: "vehicleId", Message: fmt.Sprintf("vehicle is %s", vehicle.Status)}
	}

	number, err := s.nextContractNumber(ctx, id.PrefixSale, p.SaleDate.Year())
	if err != nil {
		return model.SaleContract{}, err
	}

	c := model.SaleContract{
		ContractNumber: number,
		VehicleID:      vehicle.ID,
		VehicleDetails: vehicle.Details(),
		SellerID:       p.SellerID,
		SellerName:     p.SellerName,
		BuyerName:      p.BuyerName,
		BuyerPhone:     p.BuyerPhone,
		BuyerIDNumber:  p.BuyerIDNumber,
		SaleDate:       p.SaleDate,
		SalePrice:      p.SalePrice,
		PaymentMethod:  p.PaymentMethod,
		Deposit:        p.Deposit,
		Balance:        p.SalePrice.Sub(p.Deposit),
		WarrantyMonths: p.WarrantyMonths,
		Status:         model.ContractDraft,
		Notes:          p.Notes,
	}

	var out model.SaleContract
	if err := s.save(ctx, model.CollSaleContracts, "", c, &out); err != nil {
		return model.SaleContract{}, err
	}
	if err := s.setVehicleStatus(ctx, vehicle, model.VehicleSold); err != nil {
		return model.SaleContract{}, s.rollback(ctx, model.CollSaleContracts, out.ID, fmt.Errorf("marking vehicle sold: %w", err))
	}
	return out, nil
}

// SaleContracts lists sale contracts, newest first.
func (s *Service) SaleContracts(ctx context.Context) ([]model.SaleContract, error) {
	return list[model.SaleContract](ctx, s, model.CollSaleContracts)
}

// SaleContract returns one sale contract.
func (s *Service) SaleContract(ctx context.Context, contractID string) (model.SaleContract, error) {
	contracts, err := s.SaleContracts(ctx)
	if err != nil {
		return model.SaleContract{}, err
	}
	for _, c := range contracts {
		if c.ID == contractID {
			return c, nil
		}
	}
	return model.SaleContract{}, fmt.Errorf("sale contract %s: %w", contractID, store.ErrNotFound)
}

// DeleteSaleContract removes a sale contract.
func (s *Service) DeleteSaleContract(ctx context.Context, contractID string) error {
	return s.remove(ctx, model.CollSaleContracts, contractID)
}

func (s *Service) nextContractNumber(ctx context.Context, prefix string, year int) (string, error) {
	var numbers []string
	switch prefix {
	case id.PrefixRental:
		contracts, err := s.RentalContracts(ctx)
		if err != nil {
			return "", err
		}
		for _, c := range contracts {
			numbers = append(numbers, c.ContractNumber)
		}
	case id.PrefixSale:
		contracts, err := s.SaleContracts(ctx)
		if err != nil {
			return "", err
		}
		for _, c := range contracts {
			numbers = append(numbers, c.ContractNumber)
		}
	}
	return id.FormatContractNumber(prefix, year, id.NextContractSeq(numbers, prefix, year)), nil
}

// partyErr turns a missing contract party into a validation error.
// rollback removes a contract whose vehicle could not be updated, so no
// contract exists for a vehicle that is still available. It returns cause,
// joined with the delete failure if any.
func (s *Service) rollback(ctx context.Context, collection, contractID string, cause error) error {
	if err := s.remove(ctx, collection, contractID); err != nil {
		s.log.WithFields(logrus.Fields{
			"collection":  collection,
			"contract_id": contractID,
			"error":       err,
		}).Error("Contract left behind after vehicle update failed")
		return errors.Join(cause, err)
	}
	return cause
}

func partyErr(field string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return model.ValidationError{Field: field, Message: err.Error()}
	}
	return err
}
