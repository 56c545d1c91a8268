package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentbook-dev/rentbook/internal/model"
)

func TestBuildArrears_SourcesStaySeparate(t *testing.T) {
	snap := Snapshot{
		Tenants: []model.Tenant{
			{ID: "late", FirstName: "Awa", LastName: "Diop", RentAmount: dec("50000"), Status: model.TenantActive},
			{ID: "paid", FirstName: "Ibou", LastName: "Sarr", RentAmount: dec("75000"), Status: model.TenantActive},
		},
		Receipts: []model.Receipt{{TenantID: "paid", Amount: dec("75000"), PaymentDate: day(2026, 10, 2)}},
		Arrears: []model.Arrear{
			{ID: "a1", TenantID: "late", TenantName: "Awa Diop", Amount: dec("20000"), Description: "Impayé manuel"},
			{ID: "a2", TenantID: "paid", TenantName: "Ibou Sarr", Amount: dec("5000")},
		},
	}

	v := BuildArrears(Classifier{}, day(2026, 10, 15), snap)

	require.Len(t, v.Late, 1)
	assert.Equal(t, "late", v.Late[0].TenantID)
	assert.Equal(t, "Awa Diop", v.Late[0].TenantName)
	assert.Equal(t, StatusLate, v.Late[0].Status)
	assertDec(t, "50000", v.LateTotal, "late total")

	assert.Empty(t, v.Pending)
	assert.True(t, v.PendingTotal.IsZero())

	// A manual arrear for a paid tenant stays listed; one for a late tenant
	// does not clear the late entry.
	require.Len(t, v.Manual, 2)
	assertDec(t, "25000", v.ManualTotal, "manual total")
}

func TestBuildArrears_PendingInGrace(t *testing.T) {
	snap := Snapshot{
		Tenants: []model.Tenant{
			{ID: "t1", RentAmount: dec("40000"), Status: model.TenantActive},
			{ID: "t2", RentAmount: dec("60000"), Status: model.TenantTerminated},
		},
	}
	v := BuildArrears(Classifier{}, day(2026, 10, 10), snap)
	require.Len(t, v.Pending, 1)
	assert.Equal(t, "t1", v.Pending[0].TenantID)
	assertDec(t, "40000", v.PendingTotal, "pending total")
	assert.Empty(t, v.Late)
	assert.Empty(t, v.Manual)
}
