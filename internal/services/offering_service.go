package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"onlyanon/internal/models"
	"onlyanon/internal/repository"
)

// OfferingService manages a creator's priced question slots
type OfferingService struct {
	repo *repository.Repository
}

// NewOfferingService creates a new OfferingService
func NewOfferingService(repo *repository.Repository) *OfferingService {
	return &OfferingService{repo: repo}
}

// OfferingInput describes a new offering
type OfferingInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Token       string          `json:"token"`
}

// OfferingUpdate holds optional offering changes; nil fields are left alone
type OfferingUpdate struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	IsActive    *bool            `json:"is_active"`
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > 200 {
		return "", fmt.Errorf("%w: title must be 1-200 characters", ErrInvalidInput)
	}
	return title, nil
}

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if price.Exponent() < -9 {
		return fmt.Errorf("%w: price has more than 9 decimal places", ErrInvalidInput)
	}
	return nil
}

// Create adds an offering for creatorID
func (s *OfferingService) Create(ctx context.Context, creatorID uint, input OfferingInput) (*models.Offering, error) {
	title, err := validateTitle(input.Title)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}

	token := strings.ToUpper(strings.TrimSpace(input.Token))
	if token == "" {
		token = models.TokenSOL
	}
	if token != models.TokenSOL {
		return nil, fmt.Errorf("%w: unsupported token %q", ErrInvalidInput, token)
	}

	offering := &models.Offering{
		CreatorID:   creatorID,
		Title:       title,
		Description: input.Description,
		Price:       input.Price,
		Token:       token,
		IsActive:    true,
	}
	if err := s.repo.CreateOffering(ctx, offering); err != nil {
		return nil, fmt.Errorf("failed to create offering: %w", err)
	}
	return offering, nil
}

// ListForCreator lists every offering of a creator, active or not
func (s *OfferingService) ListForCreator(ctx context.Context, creatorID uint) ([]models.Offering, error) {
	return s.repo.ListOfferingsByCreator(ctx, creatorID, false)
}

// Update applies changes to an offering the creator owns
func (s *OfferingService) Update(ctx context.Context, creatorID uint, id uuid.UUID, input OfferingUpdate) (*models.Offering, error) {
	updates := map[string]interface{}{}

	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
		updates["price"] = *input.Price
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateOffering(ctx, creatorID, id, updates); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}

	return s.get(ctx, creatorID, id)
}

// Deactivate stops an offering from accepting questions.
// Questions already asked through it stay redeemable.
func (s *OfferingService) Deactivate(ctx context.Context, creatorID uint, id uuid.UUID) error {
	err := s.repo.UpdateOffering(ctx, creatorID, id, map[string]interface{}{"is_active": false})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *OfferingService) get(ctx context.Context, creatorID uint, id uuid.UUID) (*models.Offering, error) {
	offering, err := s.repo.GetOffering(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && offering.CreatorID != creatorID) {
		return nil, ErrNotFound
	}
	return offering, err
}
