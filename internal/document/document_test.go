package document

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentbook-dev/rentbook/internal/ledger"
	"github.com/rentbook-dev/rentbook/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"500", "500"},
		{"50000", "50 000"},
		{"1250000", "1 250 000"},
		{"-20000", "-20 000"},
		{"1234.5", "1 234,50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(dec(tt.in)), "FormatAmount(%s)", tt.in)
	}
	assert.Equal(t, "50 000 FCFA", FormatMoney(dec("50000")))
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "15 octobre 2026", FormatDate(d))
	assert.Equal(t, "1 août 2026", FormatDate(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "15/10/2026", FormatShortDate(d))
	assert.Equal(t, "octobre 2026", FormatMonth(d))
	assert.Equal(t, "", FormatDate(time.Time{}))
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want string
	}{
		{"last and first", Document{Kind: KindLease, Party: Party{FirstName: "Awa", LastName: "Diop"}}, "Bail_Diop_Awa.pdf"},
		{"last only", Document{Kind: KindDeposit, Party: Party{LastName: "Diop"}}, "Caution_Diop.pdf"},
		{"compound first name", Document{Kind: KindReceipt, Party: Party{FirstName: "Mame Diarra", LastName: "Ndiaye"}}, "Quittance_Ndiaye_Mame-Diarra.pdf"},
		{"path characters stripped", Document{Kind: KindReceipt, Party: Party{LastName: "../x"}}, "Quittance_..x.pdf"},
		{"no party", Document{Kind: KindSettlement}, "Bilan.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.doc.FileName())
		})
	}
}

func sampleOwnerTenant() (model.Owner, model.Tenant) {
	o := model.Owner{FirstName: "Moussa", LastName: "Ndiaye", Address: "12 rue Carnot, Dakar"}
	tn := model.Tenant{
		FirstName: "Awa", LastName: "Diop", UnitName: "Appartement A1", RoomsCount: 3,
		RentAmount: dec("50000"), Deposit: dec("100000"),
		StartDate: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
	return o, tn
}

func findLine(d Document, label string) (Line, bool) {
	for _, s := range d.Sections {
		for _, l := range s.Lines {
			if l.Label == label {
				return l, true
			}
		}
	}
	return Line{}, false
}

func TestReceiptDocument(t *testing.T) {
	r := model.Receipt{
		ReceiptNumber: "Q-2026-10-001",
		TenantName:    "Awa Diop",
		Amount:        dec("50000"),
		PaymentDate:   time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC),
		PeriodStart:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:     time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC),
	}
	d := ReceiptDocument(r, &model.Agency{Name: "Immo Dakar", NINEA: "0012345"})

	assert.Equal(t, "Quittance_Diop_Awa.pdf", d.FileName())
	assert.Equal(t, []string{"Immo Dakar", "NINEA : 0012345"}, d.Letterhead)

	amount, ok := findLine(d, "Montant")
	require.True(t, ok)
	assert.Equal(t, "50 000 FCFA", amount.Value)

	period, ok := findLine(d, "Période")
	require.True(t, ok)
	assert.Equal(t, "du 1 octobre 2026 au 31 octobre 2026", period.Value)
}

func TestLeaseAndDepositDocuments(t *testing.T) {
	o, tn := sampleOwnerTenant()
	today := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	lease := LeaseDocument(o, tn, nil, today)
	assert.Equal(t, "Bail_Diop_Awa.pdf", lease.FileName())
	rent, ok := findLine(lease, "Montant du loyer mensuel")
	require.True(t, ok)
	assert.Equal(t, "50 000 FCFA", rent.Value)
	phone, ok := findLine(lease, "Téléphone")
	require.True(t, ok)
	assert.Equal(t, "Non renseigné", phone.Value)
	assert.Contains(t, lease.Place, "15 octobre 2026")

	deposit := DepositDocument(o, tn, nil, today)
	assert.Equal(t, "Caution_Diop_Awa.pdf", deposit.FileName())
	amount, ok := findLine(deposit, "la somme de")
	require.True(t, ok)
	assert.Equal(t, "100 000 FCFA", amount.Value)
}

func TestSettlementDocument(t *testing.T) {
	owner := model.Owner{FirstName: "Moussa", LastName: "Ndiaye"}
	s := ledger.Settlement{
		Gross: dec("50000"), Expenses: dec("5000"), Rate: dec("10"),
		Commission: dec("5000"), Net: dec("40000"),
	}
	d := SettlementDocument(s, &owner, nil, "octobre 2026", time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "Bilan_Ndiaye_Moussa.pdf", d.FileName())
	net, ok := findLine(d, "Net à reverser")
	require.True(t, ok)
	assert.Equal(t, "40 000 FCFA", net.Value)
	_, ok = findLine(d, "Commission agence (10%)")
	assert.True(t, ok)
}

func TestContractDocuments(t *testing.T) {
	v := model.Vehicle{Brand: "Toyota", Model: "Corolla", Registration: "DK-1234-AB", Year: 2022, Mileage: 45000}
	cl := model.Client{FirstName: "Ousmane", LastName: "Faye", Phone: "77"}
	rc := model.RentalContract{ContractNumber: "LOC-2026-0001", TotalDays: 4, DailyRate: dec("25000"), TotalAmount: dec("100000")}

	d := RentalContractDocument(rc, v, cl, nil)
	assert.Equal(t, "Contrat_Location_Faye_Ousmane.pdf", d.FileName())
	total, ok := findLine(d, "Montant total")
	require.True(t, ok)
	assert.Equal(t, "100 000 FCFA", total.Value)

	sc := model.SaleContract{ContractNumber: "VTE-2026-0001", BuyerName: "Mame Diarra Sow", SalePrice: dec("9000000"), Balance: dec("7000000")}
	d = SaleContractDocument(sc, v, nil)
	assert.Equal(t, "Contrat_Vente_Sow_Mame-Diarra.pdf", d.FileName())
	km, ok := findLine(d, "Kilométrage")
	require.True(t, ok)
	assert.Equal(t, "45 000 km", km.Value)
}

func TestPDFRenderer(t *testing.T) {
	o, tn := sampleOwnerTenant()
	d := LeaseDocument(o, tn, &model.Agency{Name: "Immo Dakar", Address: "Plateau", Phone: "33 800 00 00"}, time.Now())

	var buf bytes.Buffer
	require.NoError(t, PDFRenderer{}.Render(&buf, d))
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
	assert.Greater(t, buf.Len(), 500)
}

func TestSaveFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	o, tn := sampleOwnerTenant()

	path, err := SaveFile(dir, PDFRenderer{}, DepositDocument(o, tn, nil, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Caution_Diop_Awa.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestPeriodLabel(t *testing.T) {
	today := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "octobre 2026", PeriodLabel(ledger.CurrentMonth(today, time.UTC)))
	assert.Equal(t, "Toutes périodes", PeriodLabel(ledger.AllTime()))
}
