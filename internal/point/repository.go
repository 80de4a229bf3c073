// File: internal/point/repository.go
package point

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nexus_mapping_backend/internal/common"

	"gorm.io/gorm"
)

// Repository defines the interface for map point data operations.
type Repository interface {
	Create(ctx context.Context, pt *MapPoint) error
	FindByID(ctx context.Context, id string) (*MapPoint, error)
	Search(ctx context.Context, query SearchQuery) ([]MapPoint, *common.Pagination, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (int64, error)
	ReplaceAll(ctx context.Context, points []MapPoint) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM map point repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create inserts a new map point record into the database.
func (r *gormRepository) Create(ctx context.Context, pt *MapPoint) error {
	err := r.db.WithContext(ctx).Create(pt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			return common.ErrConflict.WithDetails("A map point with this ID already exists.")
		}
		return err
	}
	return nil
}

// FindByID retrieves a map point by its ID.
func (r *gormRepository) FindByID(ctx context.Context, id string) (*MapPoint, error) {
	var pt MapPoint
	err := r.db.WithContext(ctx).Where("point_id = ?", id).First(&pt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithMessage(fmt.Sprintf("Map point with ID %s not found.", id))
		}
		return nil, err
	}
	return &pt, nil
}

// Search lists map points newest first, with optional status and substring
// filters applied before pagination.
func (r *gormRepository) Search(ctx context.Context, query SearchQuery) ([]MapPoint, *common.Pagination, error) {
	tx := r.db.WithContext(ctx).Model(&MapPoint{})

	if query.Status != "" {
		tx = tx.Where("status = ?", query.Status)
	}
	if q := strings.TrimSpace(query.Query); q != "" {
		// LOWER(...) LIKE keeps the filter case-insensitive on both
		// postgres and sqlite.
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where(
			"LOWER(description) LIKE ? OR LOWER(point_id) LIKE ? OR LOWER(COALESCE(address, '')) LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	page := query.Page
	if page <= 0 {
		page = common.DefaultPage
	}
	size := query.Size
	if size <= 0 {
		size = common.DefaultPageSize
	}

	var points []MapPoint
	err := tx.Order("timestamp DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&points).Error
	if err != nil {
		return nil, nil, err
	}

	return points, common.NewPagination(total, page, size), nil
}

// UpdateFields applies a partial update to the map point with the given ID
// and returns the number of rows affected.
func (r *gormRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&MapPoint{}).Where("point_id = ?", id).Updates(fields)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

// ReplaceAll transactionally deletes every map point and inserts the given set.
func (r *gormRepository) ReplaceAll(ctx context.Context, points []MapPoint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&MapPoint{}).Error; err != nil {
			return fmt.Errorf("failed to clear map points: %w", err)
		}
		if len(points) == 0 {
			return nil
		}
		if err := tx.Create(&points).Error; err != nil {
			return fmt.Errorf("failed to insert seed points: %w", err)
		}
		return nil
	})
}
