package budget

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// UsageRecord is one persisted AI call.
type UsageRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Identity  string    `gorm:"index;not null"`
	Tier      string    `gorm:"not null"`
	Tokens    int       `gorm:"not null"`
	Cost      float64   `gorm:"not null"`
	LatencyMS int64     `gorm:"column:latency_ms;not null;default:0"`
	CreatedAt time.Time `gorm:"index"`
}

// Total aggregates records of one identity.
type Total struct {
	Identity     string  `json:"identity"`
	Calls        int     `json:"calls"`
	Tokens       int     `json:"tokens"`
	Cost         float64 `json:"cost"`
	AvgLatencyMS float64 `json:"avg_latency_ms" gorm:"column:avg_latency_ms"`
}

// Ledger is a SQLite-backed usage log.
type Ledger struct {
	db *gorm.DB
}

// OpenLedger opens or creates the database at path and migrates the schema.
func OpenLedger(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&UsageRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate usage: %w", err)
	}

	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

func (l *Ledger) Record(ctx context.Context, rec *UsageRecord) error {
	if err := l.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("insert usage: %w", err)
	}
	return nil
}

// Totals aggregates records created at or after since, per identity, ordered
// by identity.
func (l *Ledger) Totals(ctx context.Context, since time.Time) ([]Total, error) {
	var totals []Total
	err := l.db.WithContext(ctx).
		Model(&UsageRecord{}).
		Select("identity, COUNT(*) AS calls, COALESCE(SUM(tokens), 0) AS tokens, COALESCE(SUM(cost), 0) AS cost, COALESCE(AVG(latency_ms), 0) AS avg_latency_ms").
		Where("created_at >= ?", since.UTC()).
		Group("identity").
		Order("identity").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate usage: %w", err)
	}
	return totals, nil
}
