package repository

import (
	"context"

	"github.com/google/uuid"

	"onlyanon/internal/models"
)

// CreateOffering creates a new offering
func (r *Repository) CreateOffering(ctx context.Context, offering *models.Offering) error {
	return translate(r.db.WithContext(ctx).Create(offering).Error)
}

// GetOffering retrieves an offering with its creator
func (r *Repository) GetOffering(ctx context.Context, id uuid.UUID) (*models.Offering, error) {
	var offering models.Offering
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Where("id = ?", id).
		First(&offering).Error
	if err != nil {
		return nil, translate(err)
	}
	return &offering, nil
}

// ListOfferingsByCreator lists a creator's offerings, newest first
func (r *Repository) ListOfferingsByCreator(ctx context.Context, creatorID uint, activeOnly bool) ([]models.Offering, error) {
	query := r.db.WithContext(ctx).Where("creator_id = ?", creatorID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var offerings []models.Offering
	if err := query.Order("created_at DESC").Find(&offerings).Error; err != nil {
		return nil, err
	}
	return offerings, nil
}

// UpdateOffering applies column updates to an offering owned by creatorID
func (r *Repository) UpdateOffering(ctx context.Context, creatorID uint, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.Offering{}).
		Where("id = ? AND creator_id = ?", id, creatorID).
		Updates(updates)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
