package mockbank

import (
	"github.com/samber/lo"

	"github.com/hydrUsD/BetterBudgeter-sub001/internal/models"
)

// Catalog is the static list of connectable mock institutions and the
// account ids they expose. Read-only once constructed.
type Catalog struct {
	banks    []models.BankCatalogEntry
	accounts map[string]string // account id -> bank id
}

// NewCatalog returns the default mock catalog.
func NewCatalog() *Catalog {
	c := &Catalog{
		banks: []models.BankCatalogEntry{
			{ID: "mock-monzo", Name: "Monzo (Mock)", Country: "GB", Status: models.BankStatusAvailable},
			{ID: "mock-revolut", Name: "Revolut (Mock)", Country: "LT", Status: models.BankStatusAvailable},
			{ID: "mock-n26", Name: "N26 (Mock)", Country: "DE", Status: models.BankStatusAvailable},
			{ID: "mock-ing", Name: "ING (Mock)", Country: "NL", Status: models.BankStatusUnavailable},
		},
		accounts: map[string]string{
			"acc-1": "mock-monzo",
			"acc-2": "mock-monzo",
			"acc-3": "mock-revolut",
			"acc-4": "mock-n26",
			"acc-5": "mock-ing",
		},
	}
	return c
}

// ListBanks returns the catalog entries in a stable order.
func (c *Catalog) ListBanks() []models.BankCatalogEntry {
	out := make([]models.BankCatalogEntry, len(c.banks))
	copy(out, c.banks)
	return out
}

// IsAccountValid reports whether accountID belongs to an available bank.
func (c *Catalog) IsAccountValid(accountID string) bool {
	bank, ok := c.BankForAccount(accountID)
	return ok && bank.Status == models.BankStatusAvailable
}

// BankForAccount resolves the institution an account belongs to.
func (c *Catalog) BankForAccount(accountID string) (models.BankCatalogEntry, bool) {
	bankID, ok := c.accounts[accountID]
	if !ok {
		return models.BankCatalogEntry{}, false
	}
	bank, ok := lo.Find(c.banks, func(b models.BankCatalogEntry) bool {
		return b.ID == bankID
	})
	return bank, ok
}
