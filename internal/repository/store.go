package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/hydrUsD/BetterBudgeter-sub001/internal/models"
)

// TransactionStore is the storage capability the import reconciler needs.
// FindByExternalID returns (nil, nil) when no record exists for the id.
type TransactionStore interface {
	FindByExternalID(ctx context.Context, externalID string) (*models.TransactionRecord, error)
	Insert(ctx context.Context, rec *models.TransactionRecord) error
	UpdateSourced(ctx context.Context, rec *models.TransactionRecord) error
	ListByAccount(ctx context.Context, accountID string) ([]models.TransactionRecord, error)
}

// BatchStore persists import batch summaries.
type BatchStore interface {
	CreateBatch(ctx context.Context, batch *models.ImportBatch) error
	FinishBatch(ctx context.Context, batch *models.ImportBatch) error
	GetBatch(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error)
}

// Ensure both implementations satisfy the interfaces
var _ TransactionStore = (*TransactionRepository)(nil)
var _ TransactionStore = (*MemoryTransactionStore)(nil)
var _ BatchStore = (*ImportBatchRepository)(nil)
var _ BatchStore = (*MemoryBatchStore)(nil)
