package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentbook-dev/rentbook/internal/model"
)

func rate(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %s, got %s", msg, want, got)
}

func TestSettle_OwnerScenario(t *testing.T) {
	today := day(2026, 10, 15)
	snap := Snapshot{
		Owners:   []model.Owner{{ID: "O", FirstName: "Moussa", LastName: "Ndiaye", CommissionRate: rate("10")}},
		Tenants:  []model.Tenant{{ID: "T", OwnerID: "O", RentAmount: dec("50000"), Status: model.TenantActive}},
		Receipts: []model.Receipt{{TenantID: "T", OwnerID: "O", Amount: dec("50000"), PaymentDate: day(2026, 10, 3)}},
		Expenses: []model.Expense{{OwnerID: "O", Amount: dec("5000"), Date: day(2026, 10, 8), Category: model.ExpenseRepair}},
	}

	status, ok := Classifier{}.StatusOf(today, snap.Tenants[0], snap.Receipts)
	require.True(t, ok)
	assert.Equal(t, StatusPaid, status)

	st := Settle(snap, Scope{OwnerID: "O"}, CurrentMonth(today, time.UTC))
	assertDec(t, "50000", st.Gross, "gross")
	assertDec(t, "5000", st.Expenses, "expenses")
	assertDec(t, "10", st.Rate, "rate")
	assertDec(t, "5000", st.Commission, "commission")
	assertDec(t, "40000", st.Net, "net")
	assert.Equal(t, 1, st.ReceiptCount)
	assert.Equal(t, 1, st.ExpenseCount)
	assert.Equal(t, "Moussa Ndiaye", st.OwnerName)
}

func TestSettle_DefaultRate(t *testing.T) {
	snap := Snapshot{
		Receipts: []model.Receipt{{TenantID: "T", OwnerID: "O", Amount: dec("100000"), PaymentDate: day(2026, 10, 3)}},
	}
	st := Settle(snap, Scope{}, AllTime())
	assertDec(t, "10", st.Rate, "rate")
	assertDec(t, "10000", st.Commission, "commission")
	assertDec(t, "90000", st.Net, "net")
}

func TestCommissionRate_Fallback(t *testing.T) {
	tests := []struct {
		name   string
		owner  *model.Owner
		agency *model.Agency
		want   string
	}{
		{"owner wins", &model.Owner{CommissionRate: rate("8")}, &model.Agency{CommissionRate: rate("12")}, "8"},
		{"agency when owner unset", &model.Owner{}, &model.Agency{CommissionRate: rate("12")}, "12"},
		{"default when both unset", &model.Owner{}, &model.Agency{}, "10"},
		{"default with nothing", nil, nil, "10"},
		{"explicit zero kept", &model.Owner{CommissionRate: rate("0")}, &model.Agency{CommissionRate: rate("12")}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDec(t, tt.want, CommissionRate(tt.owner, tt.agency), "rate")
		})
	}
}

func TestSettle_Additivity(t *testing.T) {
	snap := Snapshot{
		Agency: &model.Agency{CommissionRate: rate("7.5")},
		Receipts: []model.Receipt{
			{OwnerID: "O", Amount: dec("33333.33"), PaymentDate: day(2026, 10, 1)},
			{OwnerID: "O", Amount: dec("12345.67"), PaymentDate: day(2026, 10, 2)},
		},
		Expenses: []model.Expense{
			{OwnerID: "O", Amount: dec("999.99"), Date: day(2026, 10, 4)},
		},
	}
	st := Settle(snap, Scope{OwnerID: "O"}, AllTime())

	assertDec(t, "45679", st.Gross, "gross")
	assertDec(t, "3425.925", st.Commission, "commission keeps full precision")
	assert.True(t, st.Net.Equal(st.Gross.Sub(st.Expenses).Sub(st.Commission)))
	assertDec(t, "41253.085", st.Net, "net")
}

func TestSettle_NegativeNetAllowed(t *testing.T) {
	snap := Snapshot{
		Expenses: []model.Expense{{OwnerID: "O", Amount: dec("20000"), Date: day(2026, 10, 4)}},
	}
	st := Settle(snap, Scope{OwnerID: "O"}, CurrentMonth(day(2026, 10, 15), time.UTC))
	assert.True(t, st.Gross.IsZero())
	assertDec(t, "-20000", st.Net, "net equals minus expenses")
}

func TestSettle_ScopeAndWindow(t *testing.T) {
	snap := Snapshot{
		Receipts: []model.Receipt{
			{TenantID: "T1", OwnerID: "A", Amount: dec("100"), PaymentDate: day(2026, 10, 1)},
			{TenantID: "T2", OwnerID: "B", Amount: dec("200"), PaymentDate: day(2026, 10, 1)},
			{TenantID: "T1", OwnerID: "A", Amount: dec("400"), PaymentDate: day(2026, 9, 1)},
		},
		Expenses: []model.Expense{
			{OwnerID: "A", Amount: dec("10"), Date: day(2026, 10, 1)},
			{OwnerID: "B", Amount: dec("20"), Date: day(2026, 9, 1)},
		},
	}
	month := CurrentMonth(day(2026, 10, 15), time.UTC)

	a := Settle(snap, Scope{OwnerID: "A"}, month)
	assertDec(t, "100", a.Gross, "A month gross")
	assertDec(t, "10", a.Expenses, "A month expenses")

	aAll := Settle(snap, Scope{OwnerID: "A"}, AllTime())
	assertDec(t, "500", aAll.Gross, "A all-time gross")

	all := Settle(snap, Scope{}, month)
	assertDec(t, "300", all.Gross, "agency month gross")
	assertDec(t, "10", all.Expenses, "agency month expenses")

	allTime := Settle(snap, Scope{}, AllTime())
	assertDec(t, "700", allTime.Gross, "agency all-time gross")
	assertDec(t, "30", allTime.Expenses, "agency all-time expenses")
}

func TestSettle_UsesFrozenReceiptOwner(t *testing.T) {
	// The tenant moved to owner B after paying; the receipt still belongs to A.
	snap := Snapshot{
		Tenants:  []model.Tenant{{ID: "T", OwnerID: "B", Status: model.TenantActive}},
		Receipts: []model.Receipt{{TenantID: "T", OwnerID: "A", Amount: dec("1000"), PaymentDate: day(2026, 10, 1)}},
	}
	assertDec(t, "1000", Settle(snap, Scope{OwnerID: "A"}, AllTime()).Gross, "A")
	assertDec(t, "0", Settle(snap, Scope{OwnerID: "B"}, AllTime()).Gross, "B")
}

func TestSettleOwners(t *testing.T) {
	snap := Snapshot{
		Owners: []model.Owner{
			{ID: "b", FirstName: "Binta", LastName: "Fall"},
			{ID: "a", FirstName: "Amadou", LastName: "Ba", CommissionRate: rate("5")},
		},
		Receipts: []model.Receipt{
			{OwnerID: "a", Amount: dec("1000"), PaymentDate: day(2026, 10, 1)},
			{OwnerID: "b", Amount: dec("2000"), PaymentDate: day(2026, 10, 1)},
		},
	}
	out := SettleOwners(snap, AllTime())
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].OwnerID)
	assertDec(t, "950", out[0].Net, "a net")
	assert.Equal(t, "b", out[1].OwnerID)
	assertDec(t, "1800", out[1].Net, "b net")
}
