package repositories

import (
	"errors"
	"fmt"
	"time"

	"lendvault/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCollateralNotFound = errors.New("collateral not found")
)

// collateralRepository implements CollateralRepositoryInterface
type collateralRepository struct {
	db *gorm.DB
}

// NewCollateralRepository creates a new collateral repository
func NewCollateralRepository(db *gorm.DB) CollateralRepositoryInterface {
	return &collateralRepository{
		db: db,
	}
}

// Create creates a new collateral record
func (r *collateralRepository) Create(collateral *models.Collateral) error {
	if err := r.db.Create(collateral).Error; err != nil {
		return fmt.Errorf("failed to create collateral: %w", err)
	}
	return nil
}

// GetByID retrieves a collateral by ID
func (r *collateralRepository) GetByID(id uuid.UUID) (*models.Collateral, error) {
	var collateral models.Collateral
	if err := r.db.Where("id = ?", id).First(&collateral).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollateralNotFound
		}
		return nil, fmt.Errorf("failed to get collateral: %w", err)
	}
	return &collateral, nil
}

// GetByOwnerID retrieves collaterals for an owner with pagination
func (r *collateralRepository) GetByOwnerID(ownerID uuid.UUID, offset, limit int) ([]models.Collateral, int64, error) {
	var collaterals []models.Collateral
	var total int64

	query := r.db.Model(&models.Collateral{}).Where("owner_id = ?", ownerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count collaterals: %w", err)
	}

	if err := query.Offset(offset).Limit(limit).
		Order("created_at DESC").Find(&collaterals).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get collaterals: %w", err)
	}

	return collaterals, total, nil
}

// GetWithFilters retrieves collaterals matching the given filters
func (r *collateralRepository) GetWithFilters(filters models.CollateralFilters) ([]models.Collateral, int64, error) {
	var collaterals []models.Collateral
	var total int64

	query := r.db.Model(&models.Collateral{})

	if filters.OwnerID != uuid.Nil {
		query = query.Where("owner_id = ?", filters.OwnerID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.OverdueBy != nil {
		query = query.Where("status = ? AND due_date < ?", models.CollateralStatusApproved, *filters.OverdueBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count filtered collaterals: %w", err)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	if err := query.Offset(filters.Offset).Limit(limit).
		Order("created_at DESC").Find(&collaterals).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get filtered collaterals: %w", err)
	}

	return collaterals, total, nil
}

// GetOverdue retrieves approved collaterals past their due date
func (r *collateralRepository) GetOverdue(asOf time.Time, limit int) ([]models.Collateral, error) {
	var collaterals []models.Collateral
	if err := r.db.Where("status = ? AND due_date IS NOT NULL AND due_date < ?",
		models.CollateralStatusApproved, asOf).
		Order("due_date ASC").Limit(limit).
		Find(&collaterals).Error; err != nil {
		return nil, fmt.Errorf("failed to get overdue collaterals: %w", err)
	}
	return collaterals, nil
}

// Update updates a collateral record
func (r *collateralRepository) Update(collateral *models.Collateral) error {
	if err := r.db.Save(collateral).Error; err != nil {
		return fmt.Errorf("failed to update collateral: %w", err)
	}
	return nil
}

// Delete soft deletes a collateral record
func (r *collateralRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.Collateral{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete collateral: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCollateralNotFound
	}
	return nil
}
