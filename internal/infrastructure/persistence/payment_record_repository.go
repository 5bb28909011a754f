package persistence

import (
	"context"
	"errors"

	"github.com/feria/backend/internal/domain/payment"
	"github.com/feria/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPaymentRecordRepository implements RecordRepository using GORM
type GormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewGormPaymentRecordRepository creates a new GormPaymentRecordRepository
func NewGormPaymentRecordRepository(db *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: db}
}

// FindByReference finds a record by its gateway reference
func (r *GormPaymentRecordRepository) FindByReference(ctx context.Context, reference string) (*payment.Record, error) {
	if reference == "" {
		return nil, shared.ErrMissingReference
	}
	var record payment.Record
	if err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Save creates or updates a record
func (r *GormPaymentRecordRepository) Save(ctx context.Context, record *payment.Record) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// Ensure GormPaymentRecordRepository implements RecordRepository
var _ payment.RecordRepository = (*GormPaymentRecordRepository)(nil)
