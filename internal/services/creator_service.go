package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"onlyanon/internal/models"
	"onlyanon/internal/repository"
)

var handlePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// CreatorService handles creator profiles
type CreatorService struct {
	repo *repository.Repository
}

// NewCreatorService creates a new CreatorService
func NewCreatorService(repo *repository.Repository) *CreatorService {
	return &CreatorService{repo: repo}
}

// PublicProfile is what askers see before paying
type PublicProfile struct {
	Handle        string           `json:"handle"`
	DisplayName   string           `json:"display_name"`
	AvatarURL     string           `json:"avatar_url"`
	Bio           string           `json:"bio"`
	WalletAddress string           `json:"wallet_address"`
	Offerings     []PublicOffering `json:"offerings"`
}

// PublicOffering is an active offering as listed on a public profile
type PublicOffering struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Token       string          `json:"token"`
}

// UpdateProfileInput holds optional profile changes; nil fields are left alone
type UpdateProfileInput struct {
	Handle      *string `json:"handle"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	Bio         *string `json:"bio"`
}

// GetByID retrieves a creator by ID
func (s *CreatorService) GetByID(ctx context.Context, id uint) (*models.Creator, error) {
	creator, err := s.repo.GetCreatorByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return creator, err
}

// GetPublicProfile returns a creator's profile and active offerings by handle
func (s *CreatorService) GetPublicProfile(ctx context.Context, handle string) (*PublicProfile, error) {
	creator, err := s.repo.GetCreatorByHandle(ctx, strings.ToLower(handle))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	offerings, err := s.repo.ListOfferingsByCreator(ctx, creator.ID, true)
	if err != nil {
		return nil, err
	}

	public := make([]PublicOffering, 0, len(offerings))
	for _, o := range offerings {
		public = append(public, PublicOffering{
			ID:          o.ID,
			Title:       o.Title,
			Description: o.Description,
			Price:       o.Price,
			Token:       o.Token,
		})
	}

	return &PublicProfile{
		Handle:        creator.Handle,
		DisplayName:   creator.DisplayName,
		AvatarURL:     creator.AvatarURL,
		Bio:           creator.Bio,
		WalletAddress: creator.WalletAddress,
		Offerings:     public,
	}, nil
}

// UpdateProfile validates and applies profile changes
func (s *CreatorService) UpdateProfile(ctx context.Context, id uint, input UpdateProfileInput) (*models.Creator, error) {
	updates := map[string]interface{}{}

	if input.Handle != nil {
		handle := strings.ToLower(strings.TrimSpace(*input.Handle))
		if !handlePattern.MatchString(handle) {
			return nil, fmt.Errorf("%w: handle must be 3-30 characters of a-z, 0-9 or _", ErrInvalidInput)
		}
		updates["handle"] = handle
	}
	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name == "" || utf8.RuneCountInString(name) > 100 {
			return nil, fmt.Errorf("%w: display name must be 1-100 characters", ErrInvalidInput)
		}
		updates["display_name"] = name
	}
	if input.AvatarURL != nil {
		avatar := strings.TrimSpace(*input.AvatarURL)
		if avatar != "" {
			u, err := url.Parse(avatar)
			if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" || len(avatar) > 500 {
				return nil, fmt.Errorf("%w: avatar url must be an http(s) url", ErrInvalidInput)
			}
		}
		updates["avatar_url"] = avatar
	}
	if input.Bio != nil {
		if utf8.RuneCountInString(*input.Bio) > 1000 {
			return nil, fmt.Errorf("%w: bio is limited to 1000 characters", ErrInvalidInput)
		}
		updates["bio"] = *input.Bio
	}

	if len(updates) > 0 {
		err := s.repo.UpdateCreator(ctx, id, updates)
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrHandleTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case err != nil:
			return nil, err
		}
	}

	return s.GetByID(ctx, id)
}
