package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/GoPolymarket/gaslessgate/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type auditRow struct {
	ID           string    `gorm:"primaryKey;type:text"`
	ClientKey    string    `gorm:"type:text;index:idx_audit_logs_client,priority:1"`
	Method       string    `gorm:"type:text"`
	Path         string    `gorm:"type:text"`
	IP           string    `gorm:"type:text"`
	UserAgent    string    `gorm:"type:text"`
	RequestBody  string    `gorm:"type:text"`
	StatusCode   int
	ResponseBody string    `gorm:"type:text"`
	LatencyMs    int64
	Context      string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"index:idx_audit_logs_client,priority:2,sort:desc;autoCreateTime:false"`
}

func (auditRow) TableName() string { return "audit_logs" }

type PostgresAuditRepo struct {
	db *gorm.DB
}

func NewPostgresAuditRepo(db *gorm.DB) *PostgresAuditRepo {
	return &PostgresAuditRepo{db: db}
}

func (r *PostgresAuditRepo) Insert(ctx context.Context, entry *model.AuditLog) error {
	if entry == nil {
		return nil
	}
	contextJSON, _ := json.Marshal(entry.Context)
	row := auditRow{
		ID:           entry.ID,
		ClientKey:    entry.ClientKey,
		Method:       entry.Method,
		Path:         entry.Path,
		IP:           entry.IP,
		UserAgent:    entry.UserAgent,
		RequestBody:  entry.RequestBody,
		StatusCode:   entry.StatusCode,
		ResponseBody: entry.ResponseBody,
		LatencyMs:    entry.LatencyMs,
		Context:      string(contextJSON),
		CreatedAt:    entry.CreatedAt,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

func (r *PostgresAuditRepo) List(ctx context.Context, clientKey string, limit int, from, to *time.Time) ([]*model.AuditLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	q := r.db.WithContext(ctx).Model(&auditRow{})
	if clientKey != "" {
		q = q.Where("client_key = ?", clientKey)
	}
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at <= ?", *to)
	}

	var rows []auditRow
	if err := q.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]*model.AuditLog, 0, len(rows))
	for _, row := range rows {
		entry := &model.AuditLog{
			ID:           row.ID,
			ClientKey:    row.ClientKey,
			Method:       row.Method,
			Path:         row.Path,
			IP:           row.IP,
			UserAgent:    row.UserAgent,
			RequestBody:  row.RequestBody,
			StatusCode:   row.StatusCode,
			ResponseBody: row.ResponseBody,
			LatencyMs:    row.LatencyMs,
			CreatedAt:    row.CreatedAt,
			Context:      map[string]interface{}{},
		}
		if row.Context != "" {
			_ = json.Unmarshal([]byte(row.Context), &entry.Context)
		}
		records = append(records, entry)
	}
	return records, nil
}

// Cleanup deletes entries older than olderThan.
func (r *PostgresAuditRepo) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if olderThan <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-olderThan)
	return r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&auditRow{}).Error
}
