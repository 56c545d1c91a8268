package model

// Collection names in the entity store.
const (
	CollOwners          = "owners"
	CollTenants         = "tenants"
	CollReceipts        = "receipts"
	CollExpenses        = "expenses"
	CollArrears         = "arrears"
	CollAgencies        = "agencies"
	CollVehicles        = "vehicles"
	CollClients         = "auto_clients"
	CollRentalContracts = "rental_contracts"
	CollSaleContracts   = "sale_contracts"
)

// Collections lists every known collection.
var Collections = []string{
	CollOwners,
	CollTenants,
	CollReceipts,
	CollExpenses,
	CollArrears,
	CollAgencies,
	CollVehicles,
	CollClients,
	CollRentalContracts,
	CollSaleContracts,
}

// IsCollection reports whether name is a known collection.
func IsCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}
