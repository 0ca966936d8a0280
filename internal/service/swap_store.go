package service

import (
	"context"
	"errors"
	"sync"

	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/logger"
)

var ErrSwapNotFound = errors.New("swap not found")

// SwapStore persists swap records. Save overwrites by ID.
type SwapStore interface {
	Save(ctx context.Context, rec *model.SwapRecord) error
	Get(ctx context.Context, id string) (*model.SwapRecord, error)
	List(ctx context.Context, limit int) ([]*model.SwapRecord, error)
}

// MemorySwapStore keeps the most recent records in a ring.
type MemorySwapStore struct {
	mu      sync.RWMutex
	maxSize int
	order   []string
	records map[string]*model.SwapRecord
}

func NewMemorySwapStore(maxSize int) *MemorySwapStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &MemorySwapStore{
		maxSize: maxSize,
		records: make(map[string]*model.SwapRecord),
	}
}

func (s *MemorySwapStore) Save(_ context.Context, rec *model.SwapRecord) error {
	if rec == nil || rec.ID == "" {
		return errors.New("swap record requires an id")
	}
	cp := *rec
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; !ok {
		s.order = append(s.order, rec.ID)
		if len(s.order) > s.maxSize {
			delete(s.records, s.order[0])
			s.order = s.order[1:]
		}
	}
	s.records[rec.ID] = &cp
	return nil
}

func (s *MemorySwapStore) Get(_ context.Context, id string) (*model.SwapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrSwapNotFound
	}
	cp := *rec
	return &cp, nil
}

// List returns records newest first.
func (s *MemorySwapStore) List(_ context.Context, limit int) ([]*model.SwapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.order) {
		limit = len(s.order)
	}
	out := make([]*model.SwapRecord, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *s.records[s.order[i]]
		out = append(out, &cp)
	}
	return out, nil
}

// TieredSwapStore writes to every tier and reads from the first tier that
// has the record, e.g. Redis, then Postgres, then memory.
type TieredSwapStore struct {
	tiers []SwapStore
}

func NewTieredSwapStore(tiers ...SwapStore) *TieredSwapStore {
	var active []SwapStore
	for _, t := range tiers {
		if t != nil {
			active = append(active, t)
		}
	}
	return &TieredSwapStore{tiers: active}
}

func (s *TieredSwapStore) Save(ctx context.Context, rec *model.SwapRecord) error {
	var errs []error
	for _, t := range s.tiers {
		if err := t.Save(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == len(s.tiers) && len(errs) > 0 {
		return errors.Join(errs...)
	}
	for _, err := range errs {
		logger.Warn("swap store tier write failed", "swap_id", rec.ID, "error", err)
	}
	return nil
}

func (s *TieredSwapStore) Get(ctx context.Context, id string) (*model.SwapRecord, error) {
	for _, t := range s.tiers {
		rec, err := t.Get(ctx, id)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrSwapNotFound) {
			logger.Warn("swap store tier read failed", "swap_id", id, "error", err)
		}
	}
	return nil, ErrSwapNotFound
}

func (s *TieredSwapStore) List(ctx context.Context, limit int) ([]*model.SwapRecord, error) {
	var lastErr error
	for _, t := range s.tiers {
		recs, err := t.List(ctx, limit)
		if err == nil {
			return recs, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}
