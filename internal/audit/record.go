// Package audit persists a call-time record of each calculation for later
// lookup by cmd/harvestctl. It is deliberately the only package in this
// module that imports gorm: internal/engine stays a pure function and
// never imports audit, so the core's purity contract holds regardless of
// whether a caller chooses to record history.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harveston/harvestengine/internal/lotmodel"
)

// CalculationRecord is the persisted row for one engine call.
type CalculationRecord struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt        time.Time
	AlgorithmUsed    string
	Success          bool
	RecommendCount   int
	ProcessingTimeMS int64
	ResultJSON       string `gorm:"type:text"`
}

// TableName pins the table name rather than letting gorm pluralize it.
func (CalculationRecord) TableName() string { return "calculation_records" }

// Repository defines the persistence operations cmd/harvestctl needs.
type Repository interface {
	Save(record lotmodel.ResultRecord) error
	FindByID(id uuid.UUID) (*lotmodel.ResultRecord, error)
	ListRecent(limit int) ([]CalculationRecord, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository wraps an already-migrated *gorm.DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Migrate creates the calculation_records table if it does not exist.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&CalculationRecord{})
}

// Save serializes a ResultRecord and stores it keyed by its calculation ID.
func (r *repository) Save(result lotmodel.ResultRecord) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result record: %w", err)
	}

	row := CalculationRecord{
		ID:               result.Calculation.ID,
		CreatedAt:        result.Calculation.Timestamp,
		AlgorithmUsed:    result.Metadata.AlgorithmUsed,
		Success:          result.Success,
		RecommendCount:   len(result.Recommendations),
		ProcessingTimeMS: result.Metadata.ProcessingTimeMS,
		ResultJSON:       string(payload),
	}

	if err := r.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save calculation record: %w", err)
	}
	return nil
}

// FindByID loads and deserializes one stored ResultRecord.
func (r *repository) FindByID(id uuid.UUID) (*lotmodel.ResultRecord, error) {
	var row CalculationRecord
	if err := r.db.Where("id = ?", id).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("calculation %s not found", id)
		}
		return nil, fmt.Errorf("failed to find calculation: %w", err)
	}

	var result lotmodel.ResultRecord
	if err := json.Unmarshal([]byte(row.ResultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal calculation: %w", err)
	}
	return &result, nil
}

// ListRecent returns the most recently created records, newest first.
func (r *repository) ListRecent(limit int) ([]CalculationRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []CalculationRecord
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list calculation records: %w", err)
	}
	return rows, nil
}
