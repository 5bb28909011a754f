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

// GormFairRepository implements FairRepository using GORM
type GormFairRepository struct {
	db *gorm.DB
}

// NewGormFairRepository creates a new GormFairRepository
func NewGormFairRepository(db *gorm.DB) *GormFairRepository {
	return &GormFairRepository{db: db}
}

// FindByIDForTenant finds a fair by ID within a tenant
func (r *GormFairRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*fair.Fair, error) {
	var f fair.Fair
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// FindAllForTenant finds all fairs for a tenant matching the filter
func (r *GormFairRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]fair.Fair, error) {
	var fairs []fair.Fair
	query := r.applyFilter(r.db.WithContext(ctx).Model(&fair.Fair{}).Where("tenant_id = ?", tenantID), filter)

	if err := query.Find(&fairs).Error; err != nil {
		return nil, err
	}
	return fairs, nil
}

// CountForTenant counts fairs for a tenant matching the filter
func (r *GormFairRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&fair.Fair{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a fair
func (r *GormFairRepository) Save(ctx context.Context, f *fair.Fair) error {
	return r.db.WithContext(ctx).Save(f).Error
}

// SaveWithLock saves a fair with optimistic locking (version check)
// Returns error if the version has changed (concurrent modification)
func (r *GormFairRepository) SaveWithLock(ctx context.Context, f *fair.Fair) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Get current version from database
		var currentVersion int
		if err := tx.Model(&fair.Fair{}).
			Where("id = ?", f.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != f.Version {
			return shared.ErrConcurrencyConflict
		}

		f.Version++
		f.UpdatedAt = time.Now()

		result := tx.Model(&fair.Fair{}).
			Where("id = ? AND version = ?", f.ID, currentVersion).
			Updates(map[string]interface{}{
				"name":        f.Name,
				"location":    f.Location,
				"starts_at":   f.StartsAt,
				"ends_at":     f.EndsAt,
				"active":      f.Active,
				"status_text": f.StatusText,
				"status":      f.Status,
				"closed_at":   f.ClosedAt,
				"version":     f.Version,
				"updated_at":  f.UpdatedAt,
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
func (r *GormFairRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

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
		query = query.Order("starts_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormFairRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR location ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "seller_id":
			query = query.Where("seller_id = ?", value)
		}
	}

	return query
}

// Ensure GormFairRepository implements FairRepository
var _ fair.FairRepository = (*GormFairRepository)(nil)
