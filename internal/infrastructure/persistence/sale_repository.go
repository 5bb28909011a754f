package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/feria/backend/internal/domain/fair"
	"github.com/feria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByIDForTenant finds a sale by ID within a tenant, items included
func (r *GormSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*fair.Sale, error) {
	var sale fair.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindByPaymentReference finds the sale linked to a gateway transaction reference
func (r *GormSaleRepository) FindByPaymentReference(ctx context.Context, reference string) (*fair.Sale, error) {
	if reference == "" {
		return nil, shared.ErrMissingReference
	}
	var sale fair.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("payment_reference = ?", reference).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindByFair finds sales recorded under a fair
func (r *GormSaleRepository) FindByFair(ctx context.Context, tenantID, fairID uuid.UUID, filter shared.Filter) ([]fair.Sale, error) {
	var sales []fair.Sale
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&fair.Sale{}).
			Preload("Items").
			Where("tenant_id = ? AND fair_id = ?", tenantID, fairID),
		filter,
	)

	if err := query.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// CountByFair counts sales recorded under a fair
func (r *GormSaleRepository) CountByFair(ctx context.Context, tenantID, fairID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&fair.Sale{}).
		Where("tenant_id = ? AND fair_id = ?", tenantID, fairID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a sale together with its items
func (r *GormSaleRepository) Save(ctx context.Context, s *fair.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(s).Error; err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", s.ID).Delete(&fair.SaleItem{}).Error; err != nil {
			return err
		}
		if len(s.Items) == 0 {
			return nil
		}
		return tx.Create(&s.Items).Error
	})
}

// SaveWithLock saves a sale with optimistic locking (version check)
// Returns error if the version has changed (concurrent modification)
func (r *GormSaleRepository) SaveWithLock(ctx context.Context, s *fair.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Get current version from database
		var currentVersion int
		if err := tx.Model(&fair.Sale{}).
			Where("id = ?", s.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != s.Version {
			return shared.ErrConcurrencyConflict
		}

		s.Version++
		s.UpdatedAt = time.Now()

		result := tx.Model(&fair.Sale{}).
			Where("id = ? AND version = ?", s.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":            s.Status,
				"payment_reference": s.PaymentReference,
				"paid_at":           s.PaidAt,
				"customer_name":     s.CustomerName,
				"customer_contact":  s.CustomerContact,
				"total":             s.Total,
				"currency":          s.Currency,
				"version":           s.Version,
				"updated_at":        s.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}

// applyFilter applies filter options to the query
func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("customer_name ILIKE ? OR payment_reference ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "payment_method":
			query = query.Where("payment_method = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// Ensure GormSaleRepository implements SaleRepository
var _ fair.SaleRepository = (*GormSaleRepository)(nil)
