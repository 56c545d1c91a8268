package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rentbook-dev/rentbook/internal/model"
)

// DefaultCommissionRate applies when neither the owner nor the agency sets one.
var DefaultCommissionRate = decimal.NewFromInt(10)

var hundred = decimal.NewFromInt(100)

// Snapshot is an in-memory copy of one account's rental records.
type Snapshot struct {
	Owners   []model.Owner
	Tenants  []model.Tenant
	Receipts []model.Receipt
	Expenses []model.Expense
	Arrears  []model.Arrear
	Agency   *model.Agency
}

// Owner looks up an owner by ID.
func (s Snapshot) Owner(ownerID string) (model.Owner, bool) {
	for _, o := range s.Owners {
		if o.ID == ownerID {
			return o, true
		}
	}
	return model.Owner{}, false
}

// Tenant looks up a tenant by ID.
func (s Snapshot) Tenant(tenantID string) (model.Tenant, bool) {
	for _, t := range s.Tenants {
		if t.ID == tenantID {
			return t, true
		}
	}
	return model.Tenant{}, false
}

// Scope selects whose money is settled. An empty OwnerID is agency-wide.
type Scope struct {
	OwnerID string
}

// AgencyWide reports whether the scope covers every owner.
func (s Scope) AgencyWide() bool {
	return s.OwnerID == ""
}

// Settlement is the derived financial summary for a scope and window.
// Net may be negative: the owner then owes the agency.
type Settlement struct {
	OwnerID      string          `json:"ownerId,omitempty"`
	OwnerName    string          `json:"ownerName,omitempty"`
	Window       Window          `json:"-"`
	Gross        decimal.Decimal `json:"grossCollected"`
	Expenses     decimal.Decimal `json:"totalExpenses"`
	Rate         decimal.Decimal `json:"commissionRate"`
	Commission   decimal.Decimal `json:"commissionAmount"`
	Net          decimal.Decimal `json:"netPayable"`
	ReceiptCount int             `json:"receiptCount"`
	ExpenseCount int             `json:"expenseCount"`
}

// CommissionRate resolves the rate for owner: the owner's own rate, else the
// agency's, else DefaultCommissionRate. Either argument may be nil. An
// explicit rate of 0 is honoured.
func CommissionRate(owner *model.Owner, agency *model.Agency) decimal.Decimal {
	if owner != nil && owner.CommissionRate != nil {
		return *owner.CommissionRate
	}
	if agency != nil && agency.CommissionRate != nil {
		return *agency.CommissionRate
	}
	return DefaultCommissionRate
}

// Settle aggregates the receipts and expenses of scope inside w.
// Owner-scoped receipts are selected by the OwnerID frozen on each receipt
// when it was issued, not by the tenant's current owner.
func Settle(snap Snapshot, scope Scope, w Window) Settlement {
	st := Settlement{OwnerID: scope.OwnerID, Window: w}

	for _, r := range snap.Receipts {
		if !scope.AgencyWide() && r.OwnerID != scope.OwnerID {
			continue
		}
		if !w.Contains(r.PaymentDate) {
			continue
		}
		st.Gross = st.Gross.Add(r.Amount)
		st.ReceiptCount++
	}

	for _, e := range snap.Expenses {
		if !scope.AgencyWide() && e.OwnerID != scope.OwnerID {
			continue
		}
		if !w.Contains(e.Date) {
			continue
		}
		st.Expenses = st.Expenses.Add(e.Amount)
		st.ExpenseCount++
	}

	var owner *model.Owner
	if !scope.AgencyWide() {
		if o, ok := snap.Owner(scope.OwnerID); ok {
			owner = &o
			st.OwnerName = o.FullName()
		}
	}

	st.Rate = CommissionRate(owner, snap.Agency)
	st.Commission = st.Gross.Mul(st.Rate).Div(hundred)
	st.Net = st.Gross.Sub(st.Expenses).Sub(st.Commission)
	return st
}

// SettleOwners returns one settlement per owner, sorted by owner name.
func SettleOwners(snap Snapshot, w Window) []Settlement {
	out := make([]Settlement, 0, len(snap.Owners))
	for _, o := range snap.Owners {
		out = append(out, Settle(snap, Scope{OwnerID: o.ID}, w))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OwnerName < out[j].OwnerName
	})
	return out
}
