package repository

import (
	"context"

	"onlyanon/internal/models"
)

// CreateCreator inserts a new creator. A taken wallet or handle yields ErrDuplicate.
func (r *Repository) CreateCreator(ctx context.Context, creator *models.Creator) error {
	return translate(r.db.WithContext(ctx).Create(creator).Error)
}

// GetCreatorByID retrieves a creator by ID
func (r *Repository) GetCreatorByID(ctx context.Context, id uint) (*models.Creator, error) {
	var creator models.Creator
	if err := r.db.WithContext(ctx).First(&creator, id).Error; err != nil {
		return nil, translate(err)
	}
	return &creator, nil
}

// GetCreatorByWallet retrieves a creator by wallet address
func (r *Repository) GetCreatorByWallet(ctx context.Context, walletAddress string) (*models.Creator, error) {
	var creator models.Creator
	err := r.db.WithContext(ctx).
		Where("wallet_address = ?", walletAddress).
		First(&creator).Error
	if err != nil {
		return nil, translate(err)
	}
	return &creator, nil
}

// GetCreatorByHandle retrieves a creator by public handle
func (r *Repository) GetCreatorByHandle(ctx context.Context, handle string) (*models.Creator, error) {
	var creator models.Creator
	err := r.db.WithContext(ctx).
		Where("handle = ?", handle).
		First(&creator).Error
	if err != nil {
		return nil, translate(err)
	}
	return &creator, nil
}

// UpdateCreator applies the given column updates to a creator
func (r *Repository) UpdateCreator(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.Creator{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
