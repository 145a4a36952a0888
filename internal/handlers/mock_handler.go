package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hydrUsD/BetterBudgeter-sub001/internal/mockbank"
)

// maxMockRecords bounds how many records one request may generate.
const maxMockRecords = 10000

func checkGenerationBounds(from, to time.Time, count int) error {
	if count > maxMockRecords {
		return fmt.Errorf("count must be at most %d", maxMockRecords)
	}
	if count <= 0 && to.Sub(from) > maxMockRecords*24*time.Hour {
		return fmt.Errorf("date range too large, spans more than %d days", maxMockRecords)
	}
	return nil
}

// MockDataHandler serves the PSD2-style mock provider endpoints. Both
// endpoints are pure: same query, same response bytes.
type MockDataHandler struct {
	catalog *mockbank.Catalog
}

func NewMockDataHandler(catalog *mockbank.Catalog) *MockDataHandler {
	return &MockDataHandler{catalog: catalog}
}

func (h *MockDataHandler) GetBanks(c *gin.Context) {
	banks := h.catalog.ListBanks()
	respondOK(c, banks, gin.H{"count": len(banks)})
}

func (h *MockDataHandler) GetTransactions(c *gin.Context) {
	accountID := c.Query("account_id")
	if accountID == "" {
		respondError(c, http.StatusBadRequest, "account_id is required")
		return
	}
	if !h.catalog.IsAccountValid(accountID) {
		respondError(c, http.StatusBadRequest, "unknown account: "+accountID)
		return
	}
	bank, _ := h.catalog.BankForAccount(accountID)

	from, err := parseDate(c.Query("from_date"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid from_date, expected yyyy-mm-dd")
		return
	}
	to, err := parseDate(c.Query("to_date"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid to_date, expected yyyy-mm-dd")
		return
	}

	seed := mockbank.SeedForAccount(accountID)
	if raw := c.Query("seed"); raw != "" {
		seed, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid seed")
			return
		}
	}

	count := 0
	if raw := c.Query("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid count")
			return
		}
	}

	if err := checkGenerationBounds(from, to, count); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	records, err := mockbank.Generate(accountID, seed, from, to, count)
	if err != nil {
		if errors.Is(err, mockbank.ErrInvalidRange) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondOK(c, records, gin.H{
		"count":      len(records),
		"account_id": accountID,
		"bank_id":    bank.ID,
		"seed":       seed,
	})
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, time.UTC)
}
