package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/hydrUsD/BetterBudgeter-sub001/internal/models"
	"github.com/hydrUsD/BetterBudgeter-sub001/internal/repository"
)

var (
	// ErrUnknownAccount aborts a reconcile before any writes.
	ErrUnknownAccount = errors.New("unknown account")
	// ErrMalformedRecord marks a single record that failed validation.
	ErrMalformedRecord = errors.New("malformed record")
)

// AccountValidator is the catalog capability the reconciler depends on.
type AccountValidator interface {
	IsAccountValid(accountID string) bool
}

type ImportFailure struct {
	ExternalID string `json:"external_id"`
	Reason     string `json:"reason"`
}

type ImportResult struct {
	Inserted int             `json:"inserted"`
	Updated  int             `json:"updated"`
	Skipped  int             `json:"skipped"`
	Failures []ImportFailure `json:"failures"`
}

type Service struct {
	store   repository.TransactionStore
	batches repository.BatchStore
	catalog AccountValidator
	logger  zerolog.Logger
}

func NewService(
	store repository.TransactionStore,
	batches repository.BatchStore,
	catalog AccountValidator,
	logger zerolog.Logger,
) *Service {
	return &Service{
		store:   store,
		batches: batches,
		catalog: catalog,
		logger:  logger,
	}
}

// Reconcile upserts records into storage keyed by external id. Incoming
// records are deduplicated first (last value wins), then each one is
// inserted, updated or skipped. Per-record problems land in
// ImportResult.Failures and never abort the batch; only a bad account or
// caller cancellation returns an error. Calling twice with the same input
// yields inserted=0, updated=0 on the second call.
func (s *Service) Reconcile(ctx context.Context, accountID string, records []models.TransactionRecord) (*ImportResult, error) {
	if !s.catalog.IsAccountValid(accountID) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, accountID)
	}

	deduped := dedupeByExternalID(records)
	res := &ImportResult{Failures: []ImportFailure{}}

	for i := range deduped {
		// Cancellation keeps already-committed writes; the partial result
		// reflects exactly what was committed so far.
		if err := ctx.Err(); err != nil {
			return res, err
		}

		rec := deduped[i]
		if err := validateRecord(&rec); err != nil {
			res.Failures = append(res.Failures, ImportFailure{ExternalID: rec.ExternalID, Reason: err.Error()})
			continue
		}
		rec.AccountID = accountID

		existing, err := s.store.FindByExternalID(ctx, rec.ExternalID)
		if err != nil {
			res.Failures = append(res.Failures, ImportFailure{ExternalID: rec.ExternalID, Reason: err.Error()})
			continue
		}

		switch {
		case existing == nil:
			if err := s.store.Insert(ctx, &rec); err != nil {
				res.Failures = append(res.Failures, ImportFailure{ExternalID: rec.ExternalID, Reason: err.Error()})
				continue
			}
			res.Inserted++
		case !existing.SourcedEqual(&rec):
			if err := s.store.UpdateSourced(ctx, &rec); err != nil {
				res.Failures = append(res.Failures, ImportFailure{ExternalID: rec.ExternalID, Reason: err.Error()})
				continue
			}
			res.Updated++
		default:
			res.Skipped++
		}
	}

	s.logger.Info().
		Str("account_id", accountID).
		Int("inserted", res.Inserted).
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Int("failures", len(res.Failures)).
		Msg("reconcile completed")

	return res, nil
}

// Run wraps Reconcile with import-batch bookkeeping for the HTTP surface.
// extraFailures lets the transport layer report records it could not even
// decode; they count as per-record failures of this batch.
func (s *Service) Run(ctx context.Context, accountID string, records []models.TransactionRecord, extraFailures ...ImportFailure) (*models.ImportBatch, *ImportResult, error) {
	if !s.catalog.IsAccountValid(accountID) {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownAccount, accountID)
	}

	batch := &models.ImportBatch{AccountID: accountID}
	if err := s.batches.CreateBatch(ctx, batch); err != nil {
		return nil, nil, err
	}

	res, rerr := s.Reconcile(ctx, accountID, records)
	if res != nil {
		res.Failures = append(res.Failures, extraFailures...)
		batch.Inserted = res.Inserted
		batch.Updated = res.Updated
		batch.Skipped = res.Skipped
		batch.FailureCount = len(res.Failures)
		if payload, err := json.Marshal(res.Failures); err == nil {
			batch.Failures = datatypes.JSON(payload)
		} else {
			s.logger.Debug().Err(err).Str("batch_id", batch.ID.String()).Msg("failed to marshal import failures")
		}
		// The batch row should record what was committed even when the
		// caller cancelled mid-run.
		if err := s.batches.FinishBatch(context.WithoutCancel(ctx), batch); err != nil {
			s.logger.Warn().Err(err).Str("batch_id", batch.ID.String()).Msg("failed to finish import batch")
		}
	}
	return batch, res, rerr
}

// GetBatch returns a stored import batch summary, or nil when unknown.
func (s *Service) GetBatch(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error) {
	return s.batches.GetBatch(ctx, id)
}

// dedupeByExternalID keeps the first position of each external id with the
// last payload seen for it. Records without an id pass through untouched so
// each one still produces its own validation failure.
func dedupeByExternalID(records []models.TransactionRecord) []models.TransactionRecord {
	out := make([]models.TransactionRecord, 0, len(records))
	pos := make(map[string]int, len(records))
	for _, rec := range records {
		if i, ok := pos[rec.ExternalID]; ok && rec.ExternalID != "" {
			out[i] = rec
			continue
		}
		pos[rec.ExternalID] = len(out)
		out = append(out, rec)
	}
	return out
}

func validateRecord(rec *models.TransactionRecord) error {
	if rec.ExternalID == "" {
		return fmt.Errorf("%w: missing external_id", ErrMalformedRecord)
	}
	if rec.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrMalformedRecord)
	}
	if rec.Amount.IsZero() {
		return fmt.Errorf("%w: amount must be non-zero", ErrMalformedRecord)
	}
	if money.GetCurrency(rec.Currency) == nil {
		return fmt.Errorf("%w: unknown currency %q", ErrMalformedRecord, rec.Currency)
	}
	switch rec.Type {
	case "":
		rec.Type = models.TypeForAmount(rec.Amount)
	case models.TypeIncome, models.TypeExpense:
		if rec.Type != models.TypeForAmount(rec.Amount) {
			return fmt.Errorf("%w: type %q inconsistent with amount sign", ErrMalformedRecord, rec.Type)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrMalformedRecord, rec.Type)
	}
	return nil
}
