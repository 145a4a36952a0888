package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hydrUsD/BetterBudgeter-sub001/internal/mockbank"
	"github.com/hydrUsD/BetterBudgeter-sub001/internal/models"
	service "github.com/hydrUsD/BetterBudgeter-sub001/internal/services/importer"
)

type ImportHandler struct {
	service *service.Service
	logger  zerolog.Logger
}

func NewImportHandler(s *service.Service, logger zerolog.Logger) *ImportHandler {
	return &ImportHandler{service: s, logger: logger}
}

// Import reconciles a caller-supplied record batch. Partial failures are a
// 200 with the failures listed in the result; only request-shape errors and
// total storage unavailability map to non-2xx statuses.
func (h *ImportHandler) Import(c *gin.Context) {
	var payload struct {
		AccountID    string            `json:"account_id"`
		Transactions []json.RawMessage `json:"transactions"`
	}
	if err := c.BindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	if payload.AccountID == "" {
		respondError(c, http.StatusBadRequest, "account_id is required")
		return
	}

	// Records are decoded one by one: a single bad amount must fail that
	// record, not the whole batch.
	records := make([]models.TransactionRecord, 0, len(payload.Transactions))
	var decodeFailures []service.ImportFailure
	for _, raw := range payload.Transactions {
		var rec models.TransactionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			decodeFailures = append(decodeFailures, service.ImportFailure{
				ExternalID: externalIDOf(raw),
				Reason:     fmt.Sprintf("%s: %s", service.ErrMalformedRecord, err),
			})
			continue
		}
		records = append(records, rec)
	}

	batch, res, err := h.service.Run(c.Request.Context(), payload.AccountID, records, decodeFailures...)
	h.respondImport(c, batch, res, err)
}

// externalIDOf pulls the external id out of a record that failed to
// decode, so its failure entry can still name the record.
func externalIDOf(raw json.RawMessage) string {
	var head struct {
		ExternalID string `json:"external_id"`
	}
	_ = json.Unmarshal(raw, &head)
	return head.ExternalID
}

// Sync generates deterministic mock transactions and reconciles them in
// one call, which is what a real bank-sync trigger would do against a
// PSD2 provider.
func (h *ImportHandler) Sync(c *gin.Context) {
	var payload struct {
		AccountID string `json:"account_id"`
		Seed      *int64 `json:"seed"`
		FromDate  string `json:"from_date"`
		ToDate    string `json:"to_date"`
		Count     int    `json:"count"`
	}
	if err := c.BindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	if payload.AccountID == "" {
		respondError(c, http.StatusBadRequest, "account_id is required")
		return
	}

	from, err := parseDate(payload.FromDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid from_date, expected yyyy-mm-dd")
		return
	}
	to, err := parseDate(payload.ToDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid to_date, expected yyyy-mm-dd")
		return
	}

	seed := mockbank.SeedForAccount(payload.AccountID)
	if payload.Seed != nil {
		seed = *payload.Seed
	}

	if err := checkGenerationBounds(from, to, payload.Count); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	records, err := mockbank.Generate(payload.AccountID, seed, from, to, payload.Count)
	if err != nil {
		if errors.Is(err, mockbank.ErrInvalidRange) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	batch, res, err := h.service.Run(c.Request.Context(), payload.AccountID, records)
	h.respondImport(c, batch, res, err)
}

func (h *ImportHandler) GetImportBatch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid batch ID")
		return
	}

	batch, err := h.service.GetBatch(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	if batch == nil {
		respondError(c, http.StatusNotFound, "batch not found")
		return
	}
	respondOK(c, batch, gin.H{"batch_id": batch.ID.String()})
}

func (h *ImportHandler) respondImport(c *gin.Context, batch *models.ImportBatch, res *service.ImportResult, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownAccount):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Client is gone; report what was committed anyway. The batch row
		// may not exist when cancellation hit before any record processing.
		if res == nil {
			respondError(c, http.StatusServiceUnavailable, err.Error())
			return
		}
		meta := gin.H{"partial": true}
		if batch != nil {
			meta["batch_id"] = batch.ID.String()
		}
		respondOK(c, res, meta)
	case err != nil:
		h.logger.Error().Err(err).Msg("import failed before any record processing")
		respondError(c, http.StatusServiceUnavailable, err.Error())
	default:
		respondOK(c, res, gin.H{"batch_id": batch.ID.String()})
	}
}
