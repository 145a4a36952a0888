package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hydrUsD/BetterBudgeter-sub001/internal/models"
)

// MemoryTransactionStore is an in-memory TransactionStore used in tests
// and when no database is configured. FailOn maps an external id to an
// error the store returns for any operation touching that id, to exercise
// per-record storage failures.
type MemoryTransactionStore struct {
	mu      sync.Mutex
	Records map[string]*models.TransactionRecord
	FailOn  map[string]error
}

func NewMemoryTransactionStore() *MemoryTransactionStore {
	return &MemoryTransactionStore{
		Records: make(map[string]*models.TransactionRecord),
		FailOn:  make(map[string]error),
	}
}

func (s *MemoryTransactionStore) failure(externalID string) error {
	if err, ok := s.FailOn[externalID]; ok {
		return err
	}
	return nil
}

func (s *MemoryTransactionStore) FindByExternalID(_ context.Context, externalID string) (*models.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(externalID); err != nil {
		return nil, err
	}
	rec, ok := s.Records[externalID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryTransactionStore) Insert(_ context.Context, rec *models.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(rec.ExternalID); err != nil {
		return err
	}
	if _, ok := s.Records[rec.ExternalID]; ok {
		return fmt.Errorf("transaction with external id %s already exists", rec.ExternalID)
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now()
	cp := *rec
	s.Records[rec.ExternalID] = &cp
	return nil
}

func (s *MemoryTransactionStore) UpdateSourced(_ context.Context, rec *models.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(rec.ExternalID); err != nil {
		return err
	}
	existing, ok := s.Records[rec.ExternalID]
	if !ok {
		return fmt.Errorf("no transaction found with external id: %s", rec.ExternalID)
	}
	existing.ApplySourced(rec)
	existing.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryTransactionStore) ListByAccount(_ context.Context, accountID string) ([]models.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var recs []models.TransactionRecord
	for _, rec := range s.Records {
		if rec.AccountID == accountID {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Date.Equal(recs[j].Date) {
			return recs[i].ExternalID < recs[j].ExternalID
		}
		return recs[i].Date.Before(recs[j].Date)
	})
	return recs, nil
}

// MemoryBatchStore is the in-memory BatchStore counterpart.
type MemoryBatchStore struct {
	mu      sync.Mutex
	Batches map[uuid.UUID]*models.ImportBatch
}

func NewMemoryBatchStore() *MemoryBatchStore {
	return &MemoryBatchStore{Batches: make(map[uuid.UUID]*models.ImportBatch)}
}

func (s *MemoryBatchStore) CreateBatch(_ context.Context, batch *models.ImportBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	if batch.StartedAt.IsZero() {
		batch.StartedAt = time.Now()
	}
	batch.Status = "processing"
	cp := *batch
	s.Batches[batch.ID] = &cp
	return nil
}

func (s *MemoryBatchStore) FinishBatch(_ context.Context, batch *models.ImportBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Batches[batch.ID]; !ok {
		return fmt.Errorf("no import batch found with id: %s", batch.ID)
	}
	now := time.Now()
	batch.CompletedAt = &now
	batch.Status = "completed"
	cp := *batch
	s.Batches[batch.ID] = &cp
	return nil
}

func (s *MemoryBatchStore) GetBatch(_ context.Context, id uuid.UUID) (*models.ImportBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.Batches[id]
	if !ok {
		return nil, nil
	}
	cp := *batch
	return &cp, nil
}
