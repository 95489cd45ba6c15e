package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mapda-dev/mapda-api/internal/domain"
	"github.com/mapda-dev/mapda-api/internal/provider"
	"github.com/mapda-dev/mapda-api/internal/repository"
	"github.com/mapda-dev/mapda-api/internal/utils"
)

// authService implements AuthService
type authService struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.TokenRepository
	jwtManager *utils.JWTManager
	adapters   map[domain.ProviderType]provider.Adapter

	adminUUID         string
	adminPasswordHash string
}

// NewAuthService creates the auth service. The adapter list is indexed by
// provider type for unregister dispatch.
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	jwtManager *utils.JWTManager,
	adapters []provider.Adapter,
	adminUUID string,
	adminPasswordHash string,
) AuthService {
	byType := make(map[domain.ProviderType]provider.Adapter, len(adapters))
	for _, a := range adapters {
		byType[a.Type()] = a
	}
	return &authService{
		userRepo:          userRepo,
		tokenRepo:         tokenRepo,
		jwtManager:        jwtManager,
		adapters:          byType,
		adminUUID:         adminUUID,
		adminPasswordHash: adminPasswordHash,
	}
}

// Reconcile maps a verified provider identity onto a local user:
// find-or-create, refresh profile fields, derive the login classification,
// and on any non-failing outcome issue a fresh token pair and overwrite the
// user's token record. The state check happens before any token issuance so
// a Block outcome leaves no partial writes.
func (s *authService) Reconcile(ctx context.Context, identity *provider.Identity) (*LoginResult, error) {
	user, err := s.userRepo.GetByProvider(ctx, identity.Provider, identity.ProviderID)
	isNew := false

	switch {
	case err == nil:
		if identity.Profile.Apply(user) {
			if err := s.userRepo.Update(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to refresh profile fields: %w", err)
			}
		}
	case errors.Is(err, repository.ErrNotFound):
		// A previously deleted account with the same provider identity is
		// deliberately not revived; it starts over as a fresh row.
		user = &domain.User{
			Status:               domain.StatusNeedRegister,
			ProviderType:         identity.Provider,
			ProviderID:           identity.ProviderID,
			Email:                identity.Profile.Email,
			ProviderProfileImage: identity.Profile.ProviderProfileImage,
			ProviderUserName:     identity.Profile.ProviderUserName,
			AppleRealUserStatus:  identity.RealUserStatus,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		isNew = true
	default:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	result := &LoginResult{User: user, IsNew: isNew}
	switch user.Status {
	case domain.StatusNeedRegister:
		result.Message = "Need_Register"
		if isNew {
			result.Classification = ClassificationCreated
		} else {
			result.Classification = ClassificationNeedRegister
		}
	case domain.StatusActive:
		result.Message = "Login successful"
		result.Classification = ClassificationSuccess
	default:
		return nil, fmt.Errorf("user %s has status %s: %w", user.UUID, user.Status, ErrInvalidUserState)
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.UUID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	err = s.tokenRepo.Upsert(ctx, &domain.Token{
		UUID:                 user.UUID,
		Status:               domain.TokenActive,
		RefreshToken:         refreshToken,
		ProviderType:         identity.Provider,
		ProviderAccessToken:  identity.ProviderAccessToken,
		ProviderRefreshToken: identity.ProviderRefreshToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store token record: %w", err)
	}

	result.AccessToken = accessToken
	result.RefreshToken = refreshToken
	return result, nil
}

// RefreshAccessToken exchanges a refresh token for a new access token. The
// token carries no subject claim, so after the signature/expiry check the
// user is resolved by looking up the literal token string in the store.
func (s *authService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if !s.jwtManager.VerifyRefreshToken(refreshToken) {
		return "", ErrInvalidRefreshToken
	}

	entry, err := s.tokenRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", fmt.Errorf("failed to resolve refresh token: %w", err)
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(entry.UUID)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return accessToken, nil
}

// Unregister revokes the account at the provider first and only then marks
// local state deleted. A provider-side failure aborts the whole operation so
// a still-linked provider account is never orphaned.
func (s *authService) Unregister(ctx context.Context, userUUID string) error {
	user, err := s.userRepo.GetByUUID(ctx, userUUID)
	if err != nil {
		return err
	}
	if user.Status == domain.StatusDeleted {
		return fmt.Errorf("user %s already deleted: %w", userUUID, repository.ErrNotFound)
	}

	adapter, ok := s.adapters[user.ProviderType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedProvider, user.ProviderType)
	}

	token, err := s.tokenRepo.GetByUUID(ctx, userUUID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to load token record: %w", err)
	}

	if err := adapter.Revoke(ctx, user, token); err != nil {
		return err
	}

	if err := s.userRepo.UpdateStatus(ctx, userUUID, domain.StatusDeleted); err != nil {
		return fmt.Errorf("failed to mark user deleted: %w", err)
	}
	if err := s.tokenRepo.UpdateStatus(ctx, userUUID, domain.TokenDeleted); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to mark token deleted: %w", err)
	}
	return nil
}

// CompleteRegistration finishes onboarding: nickname and campus are
// required, and the user becomes Active. Status never regresses.
func (s *authService) CompleteRegistration(ctx context.Context, userUUID, nickname, university string) (*domain.User, error) {
	if !domain.ValidUniversity(university) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidUniversity, university)
	}

	user, err := s.userRepo.GetByUUID(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	user.Nickname = &nickname
	user.University = &university
	user.Status = domain.StatusActive

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to complete registration: %w", err)
	}
	return user, nil
}

// UpdateUserInfo applies a partial profile update.
func (s *authService) UpdateUserInfo(ctx context.Context, userUUID string, patch UserInfoPatch) (*domain.User, error) {
	user, err := s.userRepo.GetByUUID(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	if patch.Nickname != nil {
		user.Nickname = patch.Nickname
	}
	if patch.University != nil {
		if !domain.ValidUniversity(*patch.University) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidUniversity, *patch.University)
		}
		user.University = patch.University
	}
	if patch.ProfileNumber != nil {
		user.ProfileNumber = *patch.ProfileNumber
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user info: %w", err)
	}
	return user, nil
}

// GetUser returns the user for the given uuid.
func (s *authService) GetUser(ctx context.Context, userUUID string) (*domain.User, error) {
	return s.userRepo.GetByUUID(ctx, userUUID)
}

// CheckNickname returns ErrNicknameTaken when a non-Deleted user already
// holds the nickname.
func (s *authService) CheckNickname(ctx context.Context, nickname string) error {
	taken, err := s.userRepo.NicknameTaken(ctx, nickname)
	if err != nil {
		return fmt.Errorf("failed to check nickname: %w", err)
	}
	if taken {
		return ErrNicknameTaken
	}
	return nil
}

// AdminLogin checks the operator password against the configured bcrypt
// hash and issues a long-lived access token for the admin identity.
func (s *authService) AdminLogin(ctx context.Context, password string) (string, error) {
	if s.adminPasswordHash == "" || !utils.CheckPasswordHash(password, s.adminPasswordHash) {
		return "", ErrAdminAuth
	}

	token, err := s.jwtManager.GenerateAdminAccessToken(s.adminUUID)
	if err != nil {
		return "", fmt.Errorf("failed to generate admin token: %w", err)
	}
	return token, nil
}
