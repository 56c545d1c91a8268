package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentbook-dev/rentbook/internal/model"
)

// Due is one auto-detected unpaid rent for the current month.
type Due struct {
	TenantID   string          `json:"tenantId"`
	TenantName string          `json:"tenantName"`
	OwnerID    string          `json:"ownerId"`
	UnitName   string          `json:"unitName"`
	Amount     decimal.Decimal `json:"amount"`
	Status     Status          `json:"status"`
}

// ArrearsView is the delinquency view. Auto-detected dues and manual
// arrears are kept apart: a manual arrear never clears a late tenant, and
// paying the month never removes a manual arrear.
type ArrearsView struct {
	Late         []Due           `json:"late"`
	Pending      []Due           `json:"pending"`
	Manual       []model.Arrear  `json:"manual"`
	LateTotal    decimal.Decimal `json:"lateTotal"`
	PendingTotal decimal.Decimal `json:"pendingTotal"`
	ManualTotal  decimal.Decimal `json:"manualTotal"`
}

// BuildArrears joins the classifier output for today with the manual arrears
// in snap.
func BuildArrears(c Classifier, today time.Time, snap Snapshot) ArrearsView {
	p := c.Classify(today, snap.Tenants, snap.Receipts)

	v := ArrearsView{Late: []Due{}, Pending: []Due{}, Manual: []model.Arrear{}}
	for _, t := range p.Late {
		d := dueFor(t, StatusLate)
		v.Late = append(v.Late, d)
		v.LateTotal = v.LateTotal.Add(d.Amount)
	}
	for _, t := range p.Pending {
		d := dueFor(t, StatusPending)
		v.Pending = append(v.Pending, d)
		v.PendingTotal = v.PendingTotal.Add(d.Amount)
	}
	for _, a := range snap.Arrears {
		v.Manual = append(v.Manual, a)
		v.ManualTotal = v.ManualTotal.Add(a.Amount)
	}
	return v
}

func dueFor(t model.Tenant, s Status) Due {
	return Due{
		TenantID:   t.ID,
		TenantName: t.FullName(),
		OwnerID:    t.OwnerID,
		UnitName:   t.UnitName,
		Amount:     t.RentAmount,
		Status:     s,
	}
}
