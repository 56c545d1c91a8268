package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentbook-dev/rentbook/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func tenant(id string, status model.TenantStatus) model.Tenant {
	return model.Tenant{ID: id, OwnerID: "o1", FirstName: "T", LastName: id, RentAmount: dec("50000"), Status: status}
}

func receipt(tenantID string, paid time.Time) model.Receipt {
	return model.Receipt{TenantID: tenantID, OwnerID: "o1", Amount: dec("50000"), PaymentDate: paid}
}

func TestStatusOf_GraceBoundary(t *testing.T) {
	c := Classifier{}
	tn := tenant("t1", model.TenantActive)

	tests := []struct {
		name  string
		today time.Time
		want  Status
	}{
		{"first of month", day(2026, 10, 1), StatusPending},
		{"day 5", day(2026, 10, 5), StatusPending},
		{"day 10 inclusive", day(2026, 10, 10), StatusPending},
		{"day 11", day(2026, 10, 11), StatusLate},
		{"day 15", day(2026, 10, 15), StatusLate},
		{"last of month", day(2026, 10, 31), StatusLate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.StatusOf(tt.today, tn, nil)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusOf_PaidOverridesLateness(t *testing.T) {
	c := Classifier{}
	tn := tenant("t1", model.TenantActive)
	receipts := []model.Receipt{receipt("t1", day(2026, 10, 2))}

	for _, d := range []int{1, 10, 11, 28} {
		got, ok := c.StatusOf(day(2026, 10, d), tn, receipts)
		require.True(t, ok)
		assert.Equal(t, StatusPaid, got, "day %d", d)
	}
}

func TestStatusOf_OtherMonthsDoNotCount(t *testing.T) {
	c := Classifier{}
	tn := tenant("t1", model.TenantActive)
	receipts := []model.Receipt{
		receipt("t1", day(2026, 9, 30)),
		receipt("t1", day(2025, 10, 5)), // same month, previous year
		receipt("t2", day(2026, 10, 3)), // another tenant
	}

	got, ok := c.StatusOf(day(2026, 10, 15), tn, receipts)
	require.True(t, ok)
	assert.Equal(t, StatusLate, got)
}

func TestStatusOf_TerminatedExcluded(t *testing.T) {
	c := Classifier{}
	_, ok := c.StatusOf(day(2026, 10, 15), tenant("t1", model.TenantTerminated), nil)
	assert.False(t, ok)
}

func TestStatusOf_TimezonePolicy(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2026-09-30 20:00 UTC is already October 1st in Tokyo.
	paid := time.Date(2026, 9, 30, 20, 0, 0, 0, time.UTC)
	today := time.Date(2026, 10, 15, 0, 0, 0, 0, tokyo)
	tn := tenant("t1", model.TenantActive)
	receipts := []model.Receipt{receipt("t1", paid)}

	got, _ := Classifier{Location: tokyo}.StatusOf(today, tn, receipts)
	assert.Equal(t, StatusPaid, got)

	got, _ = Classifier{Location: time.UTC}.StatusOf(today, tn, receipts)
	assert.Equal(t, StatusLate, got)
}

func TestClassify_PartitionCompleteness(t *testing.T) {
	tenants := []model.Tenant{
		tenant("paid", model.TenantActive),
		tenant("unpaid", model.TenantActive),
		tenant("gone", model.TenantTerminated),
		tenant("twice", model.TenantActive),
	}
	receipts := []model.Receipt{
		receipt("paid", day(2026, 10, 3)),
		receipt("twice", day(2026, 10, 1)),
		receipt("twice", day(2026, 10, 9)),
		receipt("gone", day(2026, 10, 2)),
	}

	for _, today := range []time.Time{day(2026, 10, 5), day(2026, 10, 20)} {
		p := Classifier{}.Classify(today, tenants, receipts)
		assert.Equal(t, 3, p.Len(), "every active tenant exactly once")

		seen := map[string]int{}
		for _, group := range [][]model.Tenant{p.Paid, p.Pending, p.Late} {
			for _, tn := range group {
				seen[tn.ID]++
			}
		}
		assert.Equal(t, map[string]int{"paid": 1, "unpaid": 1, "twice": 1}, seen)
		assert.NotContains(t, seen, "gone")
	}

	early := Classifier{}.Classify(day(2026, 10, 5), tenants, receipts)
	require.Len(t, early.Pending, 1)
	assert.Equal(t, "unpaid", early.Pending[0].ID)
	assert.Empty(t, early.Late)

	late := Classifier{}.Classify(day(2026, 10, 20), tenants, receipts)
	require.Len(t, late.Late, 1)
	assert.Equal(t, "unpaid", late.Late[0].ID)
	assert.Empty(t, late.Pending)
}

func TestClassify_CustomGraceDay(t *testing.T) {
	tenants := []model.Tenant{tenant("t1", model.TenantActive)}
	p := Classifier{GraceDay: 5}.Classify(day(2026, 10, 6), tenants, nil)
	assert.Len(t, p.Late, 1)
}

func TestClassify_Scenarios(t *testing.T) {
	tenants := []model.Tenant{tenant("t1", model.TenantActive)}

	p := Classifier{}.Classify(day(2026, 10, 5), tenants, nil)
	assert.Len(t, p.Pending, 1, "zero receipts on day 5 is pending")

	p = Classifier{}.Classify(day(2026, 10, 15), tenants, nil)
	assert.Len(t, p.Late, 1, "zero receipts on day 15 is late")
}

func TestCurrentMonth(t *testing.T) {
	w := CurrentMonth(day(2026, 2, 14), time.UTC)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), w.From)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), w.To)

	assert.True(t, w.Contains(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, w.Contains(time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC)))

	assert.True(t, AllTime().IsAllTime())
	assert.True(t, AllTime().Contains(time.Time{}))
	assert.False(t, w.IsAllTime())
}
