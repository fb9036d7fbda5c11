// Package store persists price bars and derived liquidity features in a
// local SQLite database so a run can be replayed without refetching market
// data. Rows are append/replace only; features are recomputed wholesale on
// every live run.
package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"lserisk/internal/risk"
)

// BarRecord is the persisted form of a price bar.
// One row per security per trading day.
type BarRecord struct {
	ID     uint      `gorm:"primaryKey"`
	Date   time.Time `gorm:"uniqueIndex:idx_bar_day;not null"`
	Symbol string    `gorm:"uniqueIndex:idx_bar_day;size:16;not null"`
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// TableName keeps the table naming aligned with the report outputs
func (BarRecord) TableName() string { return "price_bars" }

// FeatureRecord is the persisted form of a derived feature row
type FeatureRecord struct {
	ID             uint      `gorm:"primaryKey"`
	Date           time.Time `gorm:"uniqueIndex:idx_feature_day;index;not null"`
	Symbol         string    `gorm:"uniqueIndex:idx_feature_day;size:16;not null"`
	LiquidityRatio float64
	Volatility     float64
	AvgVolume      float64
	Crisis         bool
}

// TableName keeps the table naming aligned with the report outputs
func (FeatureRecord) TableName() string { return "feature_rows" }

// Store wraps the SQLite database holding bars and features
type Store struct {
	db *gorm.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// migrates the schema
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}

	if err := db.AutoMigrate(&BarRecord{}, &FeatureRecord{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	return sqlDB.Close()
}

// SaveBars upserts price bars, keyed by (date, symbol)
func (s *Store) SaveBars(ctx context.Context, bars []risk.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	records := make([]BarRecord, 0, len(bars))
	for _, bar := range bars {
		records = append(records, BarRecord{
			Date:   bar.Date,
			Symbol: bar.Symbol,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		})
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "symbol"}},
			UpdateAll: true,
		}).
		CreateInBatches(records, 500).Error
	if err != nil {
		return fmt.Errorf("save %d bars: %w", len(bars), err)
	}

	return nil
}

// SaveFeatures upserts derived feature rows, keyed by (date, symbol)
func (s *Store) SaveFeatures(ctx context.Context, rows []risk.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}

	records := make([]FeatureRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, FeatureRecord{
			Date:           row.Date,
			Symbol:         row.Symbol,
			LiquidityRatio: row.LiquidityRatio,
			Volatility:     row.Volatility,
			AvgVolume:      row.AvgVolume,
			Crisis:         row.Crisis,
		})
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "symbol"}},
			UpdateAll: true,
		}).
		CreateInBatches(records, 500).Error
	if err != nil {
		return fmt.Errorf("save %d feature rows: %w", len(rows), err)
	}

	return nil
}

// LoadBars returns all stored bars for a symbol ordered by date
func (s *Store) LoadBars(ctx context.Context, symbol string) ([]risk.PriceBar, error) {
	var records []BarRecord
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("date").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load bars for %s: %w", symbol, err)
	}

	bars := make([]risk.PriceBar, 0, len(records))
	for _, r := range records {
		bars = append(bars, risk.PriceBar{
			Date:   r.Date,
			Symbol: r.Symbol,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		})
	}
	return bars, nil
}

// LoadFeatures returns all stored feature rows for a symbol ordered by date
func (s *Store) LoadFeatures(ctx context.Context, symbol string) ([]risk.FeatureRow, error) {
	var records []FeatureRecord
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("date").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load features for %s: %w", symbol, err)
	}

	rows := make([]risk.FeatureRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, risk.FeatureRow{
			Date:           r.Date,
			Symbol:         r.Symbol,
			LiquidityRatio: r.LiquidityRatio,
			Volatility:     r.Volatility,
			AvgVolume:      r.AvgVolume,
			Crisis:         r.Crisis,
		})
	}
	return rows, nil
}

// Symbols lists the distinct symbols with stored features
func (s *Store) Symbols(ctx context.Context) ([]string, error) {
	var symbols []string
	err := s.db.WithContext(ctx).
		Model(&FeatureRecord{}).
		Distinct("symbol").
		Order("symbol").
		Pluck("symbol", &symbols).Error
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	return symbols, nil
}
