package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TenantStatus is the lifecycle state of a tenant. Transitions are one-way:
// active -> terminated.
type TenantStatus string

const (
	TenantActive     TenantStatus = "active"
	TenantTerminated TenantStatus = "terminated"
)

// ExpenseCategory classifies an owner expense.
type ExpenseCategory string

const (
	ExpenseRepair ExpenseCategory = "repair"
	ExpenseTax    ExpenseCategory = "tax"
	ExpenseOther  ExpenseCategory = "other"
)

// Valid reports whether c is a known category.
func (c ExpenseCategory) Valid() bool {
	switch c {
	case ExpenseRepair, ExpenseTax, ExpenseOther:
		return true
	}
	return false
}

// Owner is a property owner, a client of the agency.
type Owner struct {
	ID             string           `json:"id,omitempty"`
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	Address        string           `json:"address"`
	Telephone      string           `json:"telephone"`
	CommissionRate *decimal.Decimal `json:"commissionRate,omitempty"` // nil = use agency rate
	CreatedAt      time.Time        `json:"createdAt,omitzero"`
}

// FullName returns "First Last".
func (o Owner) FullName() string {
	return joinName(o.FirstName, o.LastName)
}

// Tenant occupies one rental unit and belongs to exactly one Owner.
type Tenant struct {
	ID         string          `json:"id,omitempty"`
	OwnerID    string          `json:"ownerId"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	BirthDate  string          `json:"birthDate,omitempty"`
	BirthPlace string          `json:"birthPlace,omitempty"`
	IDNumber   string          `json:"idNumber,omitempty"`
	UnitType   string          `json:"unitType,omitempty"` // e.g. "appartement", "studio"
	UnitName   string          `json:"unitName"`
	RoomsCount int             `json:"roomsCount"`
	RentAmount decimal.Decimal `json:"rentAmount"`
	Deposit    decimal.Decimal `json:"deposit"`
	Status     TenantStatus    `json:"status"`
	StartDate  time.Time       `json:"startDate"`
	CreatedAt  time.Time       `json:"createdAt,omitzero"`
}

// FullName returns "First Last".
func (t Tenant) FullName() string {
	return joinName(t.FirstName, t.LastName)
}

// IsActive reports whether the tenant is still renting.
func (t Tenant) IsActive() bool {
	return t.Status == TenantActive
}

// Receipt records one rent payment. Receipts are never mutated after
// creation. TenantName, UnitName, PropertyAddress and OwnerID are frozen at
// the time of the transaction and are not re-synced from their sources.
type Receipt struct {
	ID              string          `json:"id,omitempty"`
	ReceiptNumber   string          `json:"receiptNumber"`
	TenantID        string          `json:"tenantId"`
	OwnerID         string          `json:"ownerId"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"paymentDate"`
	PeriodStart     time.Time       `json:"periodStart"`
	PeriodEnd       time.Time       `json:"periodEnd"`
	TenantName      string          `json:"tenantName"`
	UnitName        string          `json:"unitName"`
	PropertyAddress string          `json:"propertyAddress"`
	CreatedAt       time.Time       `json:"createdAt,omitzero"`
}

// Expense is a cost attributable to an owner.
type Expense struct {
	ID          string          `json:"id,omitempty"`
	OwnerID     string          `json:"ownerId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Category    ExpenseCategory `json:"category"`
	CreatedAt   time.Time       `json:"createdAt,omitzero"`
}

// Arrear is a manually recorded debt. It lives next to, and is never merged
// with, the arrears detected from receipts.
type Arrear struct {
	ID          string          `json:"id,omitempty"`
	TenantID    string          `json:"tenantId"`
	TenantName  string          `json:"tenantName"`
	Amount      decimal.Decimal `json:"amount"`
	Month       string          `json:"month"`
	Description string          `json:"description"`
	DateAdded   time.Time       `json:"dateAdded"`
	CreatedAt   time.Time       `json:"createdAt,omitzero"`
}

// Agency is the profile of the rental business itself. One per account.
type Agency struct {
	ID             string           `json:"id,omitempty"`
	Name           string           `json:"name"`
	OwnerName      string           `json:"ownerName,omitempty"`
	Address        string           `json:"address"`
	Phone          string           `json:"phone"`
	Email          string           `json:"email"`
	NINEA          string           `json:"ninea"`
	RCCM           string           `json:"rccm"`
	LogoURL        string           `json:"logoUrl,omitempty"`
	CommissionRate *decimal.Decimal `json:"commissionRate,omitempty"`
	CreatedAt      time.Time        `json:"createdAt,omitzero"`
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
