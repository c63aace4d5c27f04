package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"onlyanon/internal/auth"
	"onlyanon/internal/models"
	"onlyanon/internal/repository"
	"onlyanon/internal/utils"
)

const handleAttempts = 5

// AuthService logs creators in through an identity provider
type AuthService struct {
	repo     *repository.Repository
	identity auth.IdentityProvider
	jwt      *auth.JWTManager
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(repo *repository.Repository, identity auth.IdentityProvider, jwt *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{repo: repo, identity: identity, jwt: jwt, logger: logger}
}

// LoginResult is a session token and the creator it belongs to
type LoginResult struct {
	Token   string          `json:"token"`
	Creator *models.Creator `json:"creator"`
}

// Login authenticates creds, creating a creator account on first login
func (s *AuthService) Login(ctx context.Context, creds auth.Credentials) (*LoginResult, error) {
	identity, err := s.identity.Authenticate(ctx, creds)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return nil, err
	}

	creator, err := s.findOrCreate(ctx, identity.AccountID)
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(creator.ID, creator.WalletAddress)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, Creator: creator}, nil
}

func (s *AuthService) findOrCreate(ctx context.Context, walletAddress string) (*models.Creator, error) {
	creator, err := s.repo.GetCreatorByWallet(ctx, walletAddress)
	if err == nil {
		s.logger.Info("creator logged in", "creator_id", creator.ID)
		return creator, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	for attempt := 0; attempt < handleAttempts; attempt++ {
		handle, err := utils.GenerateHandle()
		if err != nil {
			return nil, err
		}

		creator = &models.Creator{
			WalletAddress: walletAddress,
			Handle:        handle,
			DisplayName:   handle,
		}
		err = s.repo.CreateCreator(ctx, creator)
		if err == nil {
			s.logger.Info("creator created", "creator_id", creator.ID, "handle", handle)
			return creator, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("failed to create creator: %w", err)
		}

		// Either the handle collided or a concurrent login created the wallet
		existing, lookupErr := s.repo.GetCreatorByWallet(ctx, walletAddress)
		if lookupErr == nil {
			return existing, nil
		}
	}

	return nil, fmt.Errorf("failed to allocate a unique handle after %d attempts", handleAttempts)
}
