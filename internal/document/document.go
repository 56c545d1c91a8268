// Package document turns ledger records into printable documents. Builders
// produce a Document with every value already formatted; a Renderer lays it
// out. No business decision depends on the rendered output.
package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/rentbook-dev/rentbook/internal/ledger"
	"github.com/rentbook-dev/rentbook/internal/model"
)

// Kind names a document type. It is the first part of the file name.
type Kind string

const (
	KindReceipt        Kind = "Quittance"
	KindLease          Kind = "Bail"
	KindDeposit        Kind = "Caution"
	KindRentalContract Kind = "Contrat_Location"
	KindSaleContract   Kind = "Contrat_Vente"
	KindSettlement     Kind = "Bilan"
)

// Party is the person a document is primarily about.
type Party struct {
	FirstName string
	LastName  string
}

// Line is one labelled value. An empty Label prints Value alone.
type Line struct {
	Label string
	Value string
	Bold  bool
}

// Section is a titled group of lines.
type Section struct {
	Heading string
	Lines   []Line
}

// Document is a fully formatted payload ready for a Renderer.
type Document struct {
	Kind       Kind
	Title      string
	Party      Party
	Letterhead []string // agency identity, printed at the top
	Sections   []Section
	Place      string   // "Fait à ..., le ..." line
	Signatures []string // one label per signature box
	Color      [3]int
}

// FileName is "<Kind>_<LastName>[_<FirstName>].pdf".
func (d Document) FileName() string {
	parts := []string{string(d.Kind)}
	if last := fileComponent(d.Party.LastName); last != "" {
		parts = append(parts, last)
	}
	if first := fileComponent(d.Party.FirstName); first != "" {
		parts = append(parts, first)
	}
	return strings.Join(parts, "_") + ".pdf"
}

func fileComponent(s string) string {
	s = strings.Join(strings.Fields(s), "-")
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '_':
			return -1
		}
		return r
	}, s)
}

// splitName splits a snapshot full name into first and last name: the last
// word is the last name.
func splitName(full string) Party {
	words := strings.Fields(full)
	switch len(words) {
	case 0:
		return Party{}
	case 1:
		return Party{LastName: words[0]}
	}
	return Party{FirstName: strings.Join(words[:len(words)-1], " "), LastName: words[len(words)-1]}
}

var (
	violet = [3]int{124, 58, 237}
	blue   = [3]int{59, 130, 246}
	red    = [3]int{220, 38, 38}
)

func letterhead(a *model.Agency) []string {
	if a == nil {
		return nil
	}
	lines := []string{a.Name}
	if a.Address != "" {
		lines = append(lines, a.Address)
	}
	var contact []string
	if a.Phone != "" {
		contact = append(contact, "Tél : "+a.Phone)
	}
	if a.Email != "" {
		contact = append(contact, a.Email)
	}
	if len(contact) > 0 {
		lines = append(lines, strings.Join(contact, " - "))
	}
	var ids []string
	if a.NINEA != "" {
		ids = append(ids, "NINEA : "+a.NINEA)
	}
	if a.RCCM != "" {
		ids = append(ids, "RCCM : "+a.RCCM)
	}
	if len(ids) > 0 {
		lines = append(lines, strings.Join(ids, " - "))
	}
	return lines
}

func madeOn(today time.Time) string {
	return "Fait à ........................., le " + FormatDate(today)
}

// ReceiptDocument is the rent receipt (quittance) for r. It uses only the
// values frozen on the receipt.
func ReceiptDocument(r model.Receipt, agency *model.Agency) Document {
	return Document{
		Kind:       KindReceipt,
		Title:      "QUITTANCE DE LOYER",
		Party:      splitName(r.TenantName),
		Letterhead: letterhead(agency),
		Color:      violet,
		Sections: []Section{{
			Lines: []Line{
				{Label: "Quittance N°", Value: r.ReceiptNumber},
				{Label: "Locataire", Value: r.TenantName},
				{Label: "Montant", Value: FormatMoney(r.Amount), Bold: true},
				{Label: "Période", Value: fmt.Sprintf("du %s au %s", FormatDate(r.PeriodStart), FormatDate(r.PeriodEnd))},
				{Label: "Local", Value: r.UnitName},
				{Label: "Adresse", Value: r.PropertyAddress},
				{Label: "Date de paiement", Value: FormatDate(r.PaymentDate)},
			},
		}},
		Signatures: []string{"Signature de l'Agence"},
	}
}

func partiesSections(o model.Owner, t model.Tenant) []Section {
	return []Section{
		{
			Heading: "ENTRE LES SOUSSIGNÉS :",
			Lines: []Line{
				{Label: "LE BAILLEUR", Value: "M/Mme " + o.FullName(), Bold: true},
				{Label: "Demeurant à", Value: o.Address},
				{Label: "Téléphone", Value: orDefault(o.Telephone, "Non renseigné")},
			},
		},
		{
			Lines: []Line{
				{Label: "LE PRENEUR", Value: "M/Mme " + t.FullName(), Bold: true},
				{Label: "Né(e) le", Value: strings.TrimSpace(t.BirthDate + " à " + t.BirthPlace)},
				{Label: "Identité (NCI/NPT)", Value: t.IDNumber},
			},
		},
	}
}

// LeaseDocument is the residential lease between owner o and tenant t.
func LeaseDocument(o model.Owner, t model.Tenant, agency *model.Agency, today time.Time) Document {
	sections := partiesSections(o, t)
	sections = append(sections, Section{
		Heading: "OBJET DU CONTRAT ET LOYER :",
		Lines: []Line{
			{Value: "Le bailleur loue au preneur le local suivant : " + t.UnitName},
			{Label: "Situé à l'adresse", Value: o.Address},
			{Label: "Nombre de pièces", Value: fmt.Sprintf("%d", t.RoomsCount)},
			{Label: "Date d'effet", Value: FormatDate(t.StartDate)},
			{Label: "Montant du loyer mensuel", Value: FormatMoney(t.RentAmount), Bold: true},
		},
	})
	return Document{
		Kind:       KindLease,
		Title:      "CONTRAT DE BAIL D'HABITATION",
		Party:      Party{FirstName: t.FirstName, LastName: t.LastName},
		Letterhead: letterhead(agency),
		Sections:   sections,
		Place:      madeOn(today),
		Signatures: []string{"Signature du Bailleur", "Signature du Preneur"},
		Color:      violet,
	}
}

// DepositDocument acknowledges the security deposit paid by tenant t.
func DepositDocument(o model.Owner, t model.Tenant, agency *model.Agency, today time.Time) Document {
	sections := partiesSections(o, t)
	sections = append(sections, Section{
		Heading: "DÉPÔT DE GARANTIE :",
		Lines: []Line{
			{Value: "Le bailleur reconnaît avoir reçu du preneur, au titre du dépôt de garantie du local " + t.UnitName + ","},
			{Label: "la somme de", Value: FormatMoney(t.Deposit), Bold: true},
			{Value: "Cette somme sera restituée en fin de bail, déduction faite des sommes restant dues."},
		},
	})
	return Document{
		Kind:       KindDeposit,
		Title:      "ATTESTATION DE DÉPÔT DE CAUTION",
		Party:      Party{FirstName: t.FirstName, LastName: t.LastName},
		Letterhead: letterhead(agency),
		Sections:   sections,
		Place:      madeOn(today),
		Signatures: []string{"Signature du Bailleur", "Signature du Preneur"},
		Color:      violet,
	}
}

func yesNo(b bool) string {
	if b {
		return "Oui"
	}
	return "Non"
}

// RentalContractDocument is the vehicle rental contract c.
func RentalContractDocument(c model.RentalContract, v model.Vehicle, cl model.Client, agency *model.Agency) Document {
	return Document{
		Kind:       KindRentalContract,
		Title:      "CONTRAT DE LOCATION DE VÉHICULE",
		Party:      Party{FirstName: cl.FirstName, LastName: orDefault(cl.LastName, cl.CompanyName)},
		Letterhead: letterhead(agency),
		Color:      blue,
		Sections: []Section{
			{Lines: []Line{
				{Label: "Contrat N°", Value: c.ContractNumber},
				{Label: "Date de création", Value: FormatDate(c.CreatedAt)},
			}},
			{Heading: "VÉHICULE LOUÉ :", Lines: []Line{
				{Value: strings.TrimSpace(v.Brand + " " + v.Model)},
				{Label: "Immatriculation", Value: v.Registration},
				{Label: "Année", Value: fmt.Sprintf("%d", v.Year)},
				{Label: "Couleur", Value: v.Color},
			}},
			{Heading: "LOCATAIRE :", Lines: []Line{
				{Label: "Nom", Value: cl.FullName()},
				{Label: "Téléphone", Value: cl.Phone},
				{Label: "N° Identité", Value: cl.IDNumber},
			}},
			{Heading: "CONDITIONS DE LOCATION :", Lines: []Line{
				{Label: "Période", Value: fmt.Sprintf("du %s au %s", FormatShortDate(c.StartDate), FormatShortDate(c.EndDate))},
				{Label: "Durée", Value: fmt.Sprintf("%d jours", c.TotalDays)},
				{Label: "Tarif journalier", Value: FormatMoney(c.DailyRate)},
				{Label: "Montant total", Value: FormatMoney(c.TotalAmount), Bold: true},
				{Label: "Caution", Value: FormatMoney(c.Deposit)},
				{Label: "Assurance incluse", Value: yesNo(c.InsuranceIncluded)},
			}},
		},
		Signatures: []string{"Signature du Loueur", "Signature du Locataire"},
	}
}

// SaleContractDocument is the vehicle sale contract c.
func SaleContractDocument(c model.SaleContract, v model.Vehicle, agency *model.Agency) Document {
	return Document{
		Kind:       KindSaleContract,
		Title:      "CONTRAT DE VENTE DE VÉHICULE",
		Party:      splitName(c.BuyerName),
		Letterhead: letterhead(agency),
		Color:      red,
		Sections: []Section{
			{Lines: []Line{
				{Label: "Contrat N°", Value: c.ContractNumber},
				{Label: "Date de vente", Value: FormatDate(c.SaleDate)},
			}},
			{Heading: "VÉHICULE VENDU :", Lines: []Line{
				{Value: strings.TrimSpace(v.Brand + " " + v.Model)},
				{Label: "Immatriculation", Value: v.Registration},
				{Label: "Année", Value: fmt.Sprintf("%d", v.Year)},
				{Label: "Kilométrage", Value: FormatInt(v.Mileage) + " km"},
			}},
			{Heading: "VENDEUR :", Lines: []Line{{Label: "Nom", Value: c.SellerName}}},
			{Heading: "ACHETEUR :", Lines: []Line{
				{Label: "Nom", Value: c.BuyerName},
				{Label: "Téléphone", Value: c.BuyerPhone},
				{Label: "N° Identité", Value: c.BuyerIDNumber},
			}},
			{Heading: "CONDITIONS DE VENTE :", Lines: []Line{
				{Label: "Prix de vente", Value: FormatMoney(c.SalePrice), Bold: true},
				{Label: "Acompte", Value: FormatMoney(c.Deposit)},
				{Label: "Reste à payer", Value: FormatMoney(c.Balance)},
				{Label: "Mode de paiement", Value: string(c.PaymentMethod)},
				{Label: "Garantie", Value: fmt.Sprintf("%d mois", c.WarrantyMonths)},
			}},
		},
		Signatures: []string{"Signature du Vendeur", "Signature de l'Acheteur"},
	}
}

// PeriodLabel names a settlement window: its month, or all periods.
func PeriodLabel(w ledger.Window) string {
	if w.IsAllTime() {
		return "Toutes périodes"
	}
	return FormatMonth(w.From)
}

// SettlementDocument is the owner statement for s over the month of period.
// An agency-wide settlement has no owner.
func SettlementDocument(s ledger.Settlement, owner *model.Owner, agency *model.Agency, period string, today time.Time) Document {
	d := Document{
		Kind:       KindSettlement,
		Title:      "BILAN FINANCIER",
		Letterhead: letterhead(agency),
		Color:      violet,
		Place:      madeOn(today),
		Signatures: []string{"Signature de l'Agence"},
	}
	heading := "Agence (tous propriétaires)"
	if owner != nil {
		d.Party = Party{FirstName: owner.FirstName, LastName: owner.LastName}
		heading = "Propriétaire : " + owner.FullName()
	}
	d.Sections = []Section{
		{Heading: heading, Lines: []Line{{Label: "Période", Value: period}}},
		{Lines: []Line{
			{Label: "Total encaissé", Value: FormatMoney(s.Gross)},
			{Label: "Total dépenses", Value: FormatMoney(s.Expenses)},
			{Label: fmt.Sprintf("Commission agence (%s%%)", s.Rate.String()), Value: FormatMoney(s.Commission.Round(0))},
			{Label: "Net à reverser", Value: FormatMoney(s.Net.Round(0)), Bold: true},
		}},
	}
	return d
}
