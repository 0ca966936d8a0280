package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/service"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// swapRow is the swaps table. Frequently filtered fields are columns; the
// full record is kept as JSON.
type swapRow struct {
	ID        string    `gorm:"primaryKey;type:text"`
	ChainID   int64     `gorm:"index"`
	Taker     string    `gorm:"type:text;index"`
	Phase     string    `gorm:"type:text"`
	Status    string    `gorm:"type:text"`
	Outcome   string    `gorm:"type:text"`
	TradeHash string    `gorm:"type:text;index"`
	ErrorCode string    `gorm:"type:text"`
	Record    string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (swapRow) TableName() string { return "swaps" }

func toSwapRow(rec *model.SwapRecord) (*swapRow, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return &swapRow{
		ID:        rec.ID,
		ChainID:   rec.Request.ChainID,
		Taker:     rec.Request.Taker,
		Phase:     string(rec.Phase),
		Status:    string(rec.Status),
		Outcome:   string(rec.Outcome),
		TradeHash: rec.TradeHash,
		ErrorCode: rec.ErrorCode,
		Record:    string(payload),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

func (r *swapRow) toRecord() (*model.SwapRecord, error) {
	var rec model.SwapRecord
	if err := json.Unmarshal([]byte(r.Record), &rec); err != nil {
		return nil, fmt.Errorf("decode swap %s: %w", r.ID, err)
	}
	return &rec, nil
}

type PostgresSwapStore struct {
	db *gorm.DB
}

func NewPostgresSwapStore(db *gorm.DB) *PostgresSwapStore {
	return &PostgresSwapStore{db: db}
}

func (s *PostgresSwapStore) Save(ctx context.Context, rec *model.SwapRecord) error {
	if rec == nil || rec.ID == "" {
		return errors.New("swap record requires an id")
	}
	row, err := toSwapRow(rec)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error
}

func (s *PostgresSwapStore) Get(ctx context.Context, id string) (*model.SwapRecord, error) {
	var row swapRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, service.ErrSwapNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toRecord()
}

func (s *PostgresSwapStore) List(ctx context.Context, limit int) ([]*model.SwapRecord, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var rows []swapRow
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*model.SwapRecord, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].toRecord()
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
