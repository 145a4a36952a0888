package importer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrUsD/BetterBudgeter-sub001/internal/mockbank"
	"github.com/hydrUsD/BetterBudgeter-sub001/internal/models"
	"github.com/hydrUsD/BetterBudgeter-sub001/internal/repository"
)

func newTestService() (*Service, *repository.MemoryTransactionStore, *repository.MemoryBatchStore) {
	store := repository.NewMemoryTransactionStore()
	batches := repository.NewMemoryBatchStore()
	svc := NewService(store, batches, mockbank.NewCatalog(), zerolog.Nop())
	return svc, store, batches
}

func record(externalID string, amount string) models.TransactionRecord {
	amt := decimal.RequireFromString(amount)
	return models.TransactionRecord{
		ExternalID:  externalID,
		Date:        time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Amount:      amt,
		Currency:    "EUR",
		Description: "CARD PAYMENT TESCO STORES",
		Category:    "Groceries",
		Type:        models.TypeForAmount(amt),
	}
}

func TestReconcileIdempotent(t *testing.T) {
	svc, store, _ := newTestService()
	records := []models.TransactionRecord{
		record("tx-1", "-12.50"),
		record("tx-2", "-7.99"),
		record("tx-3", "2500.00"),
	}

	first, err := svc.Reconcile(context.Background(), "acc-1", records)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Inserted)
	assert.Equal(t, 0, first.Updated)
	assert.Equal(t, 0, first.Skipped)
	assert.Empty(t, first.Failures)

	second, err := svc.Reconcile(context.Background(), "acc-1", records)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 3, second.Skipped)

	assert.Len(t, store.Records, 3)
	assert.Equal(t, "acc-1", store.Records["tx-1"].AccountID)
}

func TestReconcileUnknownAccount(t *testing.T) {
	svc, store, _ := newTestService()

	_, err := svc.Reconcile(context.Background(), "acc-999", []models.TransactionRecord{record("tx-1", "-5.00")})
	require.ErrorIs(t, err, ErrUnknownAccount)
	assert.Empty(t, store.Records, "no writes may happen for an unknown account")
}

func TestReconcileDuplicateIDLastWins(t *testing.T) {
	svc, store, _ := newTestService()
	records := []models.TransactionRecord{
		record("tx-dup", "-10.00"),
		record("tx-dup", "-20.00"),
	}

	res, err := svc.Reconcile(context.Background(), "acc-1", records)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)

	require.Len(t, store.Records, 1)
	assert.True(t, store.Records["tx-dup"].Amount.Equal(decimal.RequireFromString("-20.00")))
}

func TestReconcileUpdatesOnlySourcedFields(t *testing.T) {
	svc, store, _ := newTestService()
	rec := record("tx-1", "-12.50")

	_, err := svc.Reconcile(context.Background(), "acc-1", []models.TransactionRecord{rec})
	require.NoError(t, err)

	// User edits after the first import.
	store.Records["tx-1"].CategoryOverride = lo.ToPtr("Eating Out")
	store.Records["tx-1"].Notes = "weekly shop"

	// Same sourced values: nothing written.
	res, err := svc.Reconcile(context.Background(), "acc-1", []models.TransactionRecord{rec})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 1, res.Skipped)

	// Changed sourced value: sourced fields refresh, user fields survive.
	rec.Description = "CARD PAYMENT TESCO EXPRESS"
	res, err = svc.Reconcile(context.Background(), "acc-1", []models.TransactionRecord{rec})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)

	stored := store.Records["tx-1"]
	assert.Equal(t, "CARD PAYMENT TESCO EXPRESS", stored.Description)
	require.NotNil(t, stored.CategoryOverride)
	assert.Equal(t, "Eating Out", *stored.CategoryOverride)
	assert.Equal(t, "weekly shop", stored.Notes)
}

func TestReconcileMalformedRecordIsolation(t *testing.T) {
	svc, store, _ := newTestService()

	bad := record("", "-5.00") // missing external id
	records := []models.TransactionRecord{
		record("tx-1", "-1.00"),
		bad,
		record("tx-2", "-2.00"),
	}

	res, err := svc.Reconcile(context.Background(), "acc-1", records)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	require.Len(t, res.Failures, 1)
	assert.Contains(t, res.Failures[0].Reason, "external_id")
	assert.Len(t, store.Records, 2)
}

func TestReconcileMalformedVariants(t *testing.T) {
	withCurrency := record("tx-cur", "-5.00")
	withCurrency.Currency = "NOPE"

	inconsistent := record("tx-sign", "-5.00")
	inconsistent.Type = models.TypeIncome

	zero := record("tx-zero", "0")

	svc, _, _ := newTestService()
	res, err := svc.Reconcile(context.Background(), "acc-1",
		[]models.TransactionRecord{withCurrency, inconsistent, zero})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inserted)
	assert.Len(t, res.Failures, 3)
}

func TestReconcileDerivesMissingType(t *testing.T) {
	svc, store, _ := newTestService()
	rec := record("tx-1", "1000.00")
	rec.Type = ""

	res, err := svc.Reconcile(context.Background(), "acc-1", []models.TransactionRecord{rec})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, models.TypeIncome, store.Records["tx-1"].Type)
}

func TestReconcileStorageFailureIsolation(t *testing.T) {
	svc, store, _ := newTestService()
	store.FailOn["tx-2"] = errors.New("connection reset")

	records := []models.TransactionRecord{
		record("tx-1", "-1.00"),
		record("tx-2", "-2.00"),
		record("tx-3", "-3.00"),
	}

	res, err := svc.Reconcile(context.Background(), "acc-1", records)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "tx-2", res.Failures[0].ExternalID)
	assert.Contains(t, res.Failures[0].Reason, "connection reset")
}

func TestReconcileCancellation(t *testing.T) {
	svc, store, _ := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Reconcile(ctx, "acc-1", []models.TransactionRecord{record("tx-1", "-1.00")})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Inserted)
	assert.Empty(t, store.Records)
}

func TestRunRecordsBatch(t *testing.T) {
	svc, _, batches := newTestService()
	records, err := mockbank.Generate("acc-1", 42, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), 10)
	require.NoError(t, err)

	batch, res, err := svc.Run(context.Background(), "acc-1", records)
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.Equal(t, 10, res.Inserted)

	stored, err := batches.GetBatch(context.Background(), batch.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "completed", stored.Status)
	assert.Equal(t, 10, stored.Inserted)
	assert.Equal(t, "acc-1", stored.AccountID)
	assert.NotNil(t, stored.CompletedAt)
}

func TestRunIncludesCallerReportedFailures(t *testing.T) {
	svc, store, batches := newTestService()

	extra := ImportFailure{ExternalID: "tx-raw", Reason: "malformed record: invalid amount"}
	batch, res, err := svc.Run(context.Background(), "acc-1",
		[]models.TransactionRecord{record("tx-1", "-1.00")}, extra)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Inserted)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "tx-raw", res.Failures[0].ExternalID)
	assert.Len(t, store.Records, 1)

	stored, err := batches.GetBatch(context.Background(), batch.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 1, stored.FailureCount)
}

func TestRunUnknownAccountCreatesNoBatch(t *testing.T) {
	svc, _, batches := newTestService()

	_, _, err := svc.Run(context.Background(), "acc-999", nil)
	require.ErrorIs(t, err, ErrUnknownAccount)
	assert.Empty(t, batches.Batches)
}
