// Package ledger derives payment status, owner settlements and the
// delinquency view from in-memory snapshots of the rental records. Nothing
// here touches storage and nothing here fails on bad data.
package ledger

import (
	"time"

	"github.com/rentbook-dev/rentbook/internal/model"
)

// Status is a tenant's payment state for the current month.
type Status string

const (
	StatusPaid    Status = "paid"
	StatusPending Status = "pending"
	StatusLate    Status = "late"
)

// DefaultGraceDay is the last day of the month on which a missing payment
// is still pending rather than late.
const DefaultGraceDay = 10

// Classifier assigns each active tenant a Status for the month of "today".
// The zero value uses DefaultGraceDay and UTC.
type Classifier struct {
	GraceDay int
	Location *time.Location
}

func (c Classifier) grace() int {
	if c.GraceDay <= 0 {
		return DefaultGraceDay
	}
	return c.GraceDay
}

func (c Classifier) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// StatusOf classifies one tenant. ok is false for terminated tenants, which
// are never classified.
func (c Classifier) StatusOf(today time.Time, tenant model.Tenant, receipts []model.Receipt) (status Status, ok bool) {
	if !tenant.IsActive() {
		return "", false
	}
	for _, r := range receipts {
		if r.TenantID == tenant.ID && sameMonth(r.PaymentDate, today, c.loc()) {
			return StatusPaid, true
		}
	}
	return c.unpaid(today), true
}

func (c Classifier) unpaid(today time.Time) Status {
	if today.In(c.loc()).Day() <= c.grace() {
		return StatusPending
	}
	return StatusLate
}

// Partition splits active tenants by status. Order within each group follows
// the input order.
type Partition struct {
	Paid    []model.Tenant
	Pending []model.Tenant
	Late    []model.Tenant
}

// Len returns the number of classified tenants.
func (p Partition) Len() int {
	return len(p.Paid) + len(p.Pending) + len(p.Late)
}

// Classify partitions tenants for the month containing today.
func (c Classifier) Classify(today time.Time, tenants []model.Tenant, receipts []model.Receipt) Partition {
	paid := make(map[string]bool)
	for _, r := range receipts {
		if sameMonth(r.PaymentDate, today, c.loc()) {
			paid[r.TenantID] = true
		}
	}

	unpaid := c.unpaid(today)
	var p Partition
	for _, t := range tenants {
		if !t.IsActive() {
			continue
		}
		switch {
		case paid[t.ID]:
			p.Paid = append(p.Paid, t)
		case unpaid == StatusPending:
			p.Pending = append(p.Pending, t)
		default:
			p.Late = append(p.Late, t)
		}
	}
	return p
}
