package rental

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentbook-dev/rentbook/internal/id"
	"github.com/rentbook-dev/rentbook/internal/model"
)

// ReceiptParams holds the inputs of a rent payment.
type ReceiptParams struct {
	TenantID    string          `json:"tenantId"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"paymentDate,omitzero"` // zero = today
	PeriodStart time.Time       `json:"periodStart,omitzero"` // zero = first day of the payment month
	PeriodEnd   time.Time       `json:"periodEnd,omitzero"`   // zero = last day of the payment month
}

// AddReceipt records a payment from an active tenant. The tenant name, unit,
// owner and owner address are copied onto the receipt and never re-synced.
func (s *Service) AddReceipt(ctx context.Context, p ReceiptParams) (model.Receipt, error) {
	var errs model.ValidationErrors
	if p.TenantID == "" {
		errs.Add("tenantId", "is required")
	}
	if !p.Amount.IsPositive() {
		errs.Add("amount", "must be greater than 0, got %s", p.Amount)
	}
	if err := errs.Err(); err != nil {
		return model.Receipt{}, err
	}

	tenant, err := s.Tenant(ctx, p.TenantID)
	if err != nil {
		return model.Receipt{}, err
	}
	if !tenant.IsActive() {
		return model.Receipt{}, model.ValidationError{Field: "tenantId", Message: "tenant is terminated"}
	}

	// The owner may have gone missing; the receipt is still valid.
	var address string
	if owner, err := s.Owner(ctx, tenant.OwnerID); err == nil {
		address = owner.Address
	}

	paid := p.PaymentDate
	if paid.IsZero() {
		paid = s.today()
	}
	start, end := p.PeriodStart, p.PeriodEnd
	if start.IsZero() {
		start = time.Date(paid.Year(), paid.Month(), 1, 0, 0, 0, 0, paid.Location())
	}
	if end.IsZero() {
		end = time.Date(start.Year(), start.Month()+1, 0, 0, 0, 0, 0, start.Location())
	}
	if end.Before(start) {
		return model.Receipt{}, model.ValidationError{Field: "periodEnd", Message: "must not be before periodStart"}
	}

	existing, err := s.Receipts(ctx)
	if err != nil {
		return model.Receipt{}, err
	}
	numbers := make([]string, len(existing))
	for i, r := range existing {
		numbers[i] = r.ReceiptNumber
	}
	seq := id.NextReceiptSeq(numbers, paid.Year(), int(paid.Month()))

	r := model.Receipt{
		ReceiptNumber:   id.FormatReceiptNumber(paid.Year(), int(paid.Month()), seq),
		TenantID:        tenant.ID,
		OwnerID:         tenant.OwnerID,
		Amount:          p.Amount,
		PaymentDate:     paid,
		PeriodStart:     start,
		PeriodEnd:       end,
		TenantName:      tenant.FullName(),
		UnitName:        tenant.UnitName,
		PropertyAddress: address,
	}

	var out model.Receipt
	if err := s.create(ctx, model.CollReceipts, r, &out); err != nil {
		return model.Receipt{}, err
	}
	return out, nil
}

// Receipts lists receipts, newest first.
func (s *Service) Receipts(ctx context.Context) ([]model.Receipt, error) {
	return list[model.Receipt](ctx, s, model.CollReceipts)
}

// Receipt returns one receipt.
func (s *Service) Receipt(ctx context.Context, receiptID string) (model.Receipt, error) {
	receipts, err := s.Receipts(ctx)
	if err != nil {
		return model.Receipt{}, err
	}
	r, ok := find(receipts, func(r model.Receipt) bool { return r.ID == receiptID })
	if !ok {
		return model.Receipt{}, notFound("receipt", receiptID)
	}
	return r, nil
}

// DeleteReceipt removes a receipt. Receipts are never edited.
func (s *Service) DeleteReceipt(ctx context.Context, receiptID string) error {
	return s.remove(ctx, model.CollReceipts, receiptID)
}

// AddExpense records a cost for an owner.
func (s *Service) AddExpense(ctx context.Context, e model.Expense) (model.Expense, error) {
	e.ID = ""
	if e.Category == "" {
		e.Category = model.ExpenseOther
	}
	if e.Date.IsZero() {
		e.Date = s.today()
	}

	var errs model.ValidationErrors
	if e.Amount.IsNegative() {
		errs.Add("amount", "must not be negative, got %s", e.Amount)
	}
	if !e.Category.Valid() {
		errs.Add("category", "unknown category %q", e.Category)
	}
	if err := s.checkOwner(ctx, &errs, e.OwnerID); err != nil {
		return model.Expense{}, err
	}
	if err := errs.Err(); err != nil {
		return model.Expense{}, err
	}

	var out model.Expense
	if err := s.create(ctx, model.CollExpenses, e, &out); err != nil {
		return model.Expense{}, err
	}
	return out, nil
}

// Expenses lists expenses, newest first.
func (s *Service) Expenses(ctx context.Context) ([]model.Expense, error) {
	return list[model.Expense](ctx, s, model.CollExpenses)
}

// DeleteExpense removes an expense.
func (s *Service) DeleteExpense(ctx context.Context, expenseID string) error {
	return s.remove(ctx, model.CollExpenses, expenseID)
}

// ArrearParams holds the inputs of a manual arrear.
type ArrearParams struct {
	TenantID    string          `json:"tenantId"`
	Amount      decimal.Decimal `json:"amount"`
	Month       string          `json:"month"`
	Description string          `json:"description,omitempty"`
}

// AddArrear appends a manual debt entry. It does not affect the arrears
// detected from receipts.
func (s *Service) AddArrear(ctx context.Context, p ArrearParams) (model.Arrear, error) {
	var errs model.ValidationErrors
	if p.TenantID == "" {
		errs.Add("tenantId", "is required")
	}
	if !p.Amount.IsPositive() {
		errs.Add("amount", "must be greater than 0, got %s", p.Amount)
	}
	if err := errs.Err(); err != nil {
		return model.Arrear{}, err
	}

	tenant, err := s.Tenant(ctx, p.TenantID)
	if err != nil {
		return model.Arrear{}, fmt.Errorf("arrear: %w", err)
	}

	desc := p.Description
	if desc == "" {
		desc = DefaultArrearDescription
	}
	a := model.Arrear{
		TenantID:    tenant.ID,
		TenantName:  tenant.FullName(),
		Amount:      p.Amount,
		Month:       p.Month,
		Description: desc,
		DateAdded:   s.today(),
	}

	var out model.Arrear
	if err := s.create(ctx, model.CollArrears, a, &out); err != nil {
		return model.Arrear{}, err
	}
	return out, nil
}

// Arrears lists manual arrears, newest first.
func (s *Service) Arrears(ctx context.Context) ([]model.Arrear, error) {
	return list[model.Arrear](ctx, s, model.CollArrears)
}

// DeleteArrear removes a manual arrear. Deleting an unknown ID is a no-op.
func (s *Service) DeleteArrear(ctx context.Context, arrearID string) error {
	return s.remove(ctx, model.CollArrears, arrearID)
}
