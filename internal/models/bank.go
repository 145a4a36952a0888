package models

const (
	BankStatusAvailable   = "available"
	BankStatusUnavailable = "unavailable"
)

// BankCatalogEntry is one connectable mock institution.
type BankCatalogEntry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Status  string `json:"status"`
}
