package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// VehicleType classifies fleet vehicles.
type VehicleType string

const (
	VehicleCar     VehicleType = "voiture"
	VehicleMoto    VehicleType = "moto"
	VehicleTruck   VehicleType = "camion"
	VehicleUtility VehicleType = "utilitaire"
)

// VehicleStatus is the availability of a vehicle.
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"
	VehicleRented      VehicleStatus = "rented"
	VehicleSold        VehicleStatus = "sold"
	VehicleMaintenance VehicleStatus = "maintenance"
)

// Vehicle is a car, motorbike or truck available for rental or sale.
type Vehicle struct {
	ID                  string           `json:"id,omitempty"`
	Type                VehicleType      `json:"type"`
	Brand               string           `json:"brand"`
	Model               string           `json:"model"`
	Year                int              `json:"year"`
	Registration        string           `json:"registration"`
	Color               string           `json:"color,omitempty"`
	Mileage             int              `json:"mileage"`
	DailyRate           decimal.Decimal  `json:"dailyRate"`
	SalePrice           *decimal.Decimal `json:"salePrice,omitempty"`
	Status              VehicleStatus    `json:"status"`
	InsuranceNumber     string           `json:"insuranceNumber,omitempty"`
	TechnicalInspection string           `json:"technicalInspection,omitempty"`
	PurchaseDate        time.Time        `json:"purchaseDate,omitzero"`
	Notes               string           `json:"notes,omitempty"`
	CreatedAt           time.Time        `json:"createdAt,omitzero"`
}

// Details returns a one-line description used on contracts.
func (v Vehicle) Details() string {
	return joinName(v.Brand, v.Model) + " (" + v.Registration + ")"
}

// ClientType distinguishes individual clients from companies.
type ClientType string

const (
	ClientIndividual ClientType = "individual"
	ClientCompany    ClientType = "company"
)

// Client is a customer of the automobile business.
type Client struct {
	ID               string     `json:"id,omitempty"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Phone            string     `json:"phone"`
	Email            string     `json:"email,omitempty"`
	IDNumber         string     `json:"idNumber"`
	Address          string     `json:"address"`
	DriverLicense    string     `json:"driverLicense,omitempty"`
	ClientType       ClientType `json:"clientType"`
	CompanyName      string     `json:"companyName,omitempty"`
	RegistrationDate time.Time  `json:"registrationDate,omitzero"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"createdAt,omitzero"`
}

// FullName returns the company name for companies, "First Last" otherwise.
func (c Client) FullName() string {
	if c.ClientType == ClientCompany && c.CompanyName != "" {
		return c.CompanyName
	}
	return joinName(c.FirstName, c.LastName)
}

// ContractStatus is the lifecycle of a rental contract.
type ContractStatus string

const (
	ContractActive    ContractStatus = "active"
	ContractCompleted ContractStatus = "completed"
	ContractCancelled ContractStatus = "cancelled"
	ContractDraft     ContractStatus = "draft"
)

// PaymentStatus tracks how much of a rental contract has been paid.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
)

// RentalContract rents one vehicle to one client for a date range.
type RentalContract struct {
	ID                string          `json:"id,omitempty"`
	ContractNumber    string          `json:"contractNumber"`
	VehicleID         string          `json:"vehicleId"`
	VehicleDetails    string          `json:"vehicleDetails"`
	ClientID          string          `json:"clientId"`
	ClientName        string          `json:"clientName"`
	StartDate         time.Time       `json:"startDate"`
	EndDate           time.Time       `json:"endDate"`
	TotalDays         int             `json:"totalDays"`
	DailyRate         decimal.Decimal `json:"dailyRate"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	Deposit           decimal.Decimal `json:"deposit"`
	InsuranceIncluded bool            `json:"insuranceIncluded"`
	AdditionalOptions string          `json:"additionalOptions,omitempty"`
	Status            ContractStatus  `json:"status"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus"`
	CreatedAt         time.Time       `json:"createdAt,omitzero"`
}

// PaymentMethod is how a vehicle sale is settled.
type PaymentMethod string

const (
	PayCash        PaymentMethod = "cash"
	PayTransfer    PaymentMethod = "transfer"
	PayCredit      PaymentMethod = "credit"
	PayInstallment PaymentMethod = "installment"
)

// SaleContract sells one vehicle to a buyer.
type SaleContract struct {
	ID             string          `json:"id,omitempty"`
	ContractNumber string          `json:"contractNumber"`
	VehicleID      string          `json:"vehicleId"`
	VehicleDetails string          `json:"vehicleDetails"`
	SellerID       string          `json:"sellerId"`
	SellerName     string          `json:"sellerName"`
	BuyerName      string          `json:"buyerName"`
	BuyerPhone     string          `json:"buyerPhone"`
	BuyerIDNumber  string          `json:"buyerIdNumber"`
	SaleDate       time.Time       `json:"saleDate"`
	SalePrice      decimal.Decimal `json:"salePrice"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod"`
	Deposit        decimal.Decimal `json:"deposit"`
	Balance        decimal.Decimal `json:"balance"`
	WarrantyMonths int             `json:"warrantyMonths,omitempty"`
	Status         ContractStatus  `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"createdAt,omitzero"`
}
