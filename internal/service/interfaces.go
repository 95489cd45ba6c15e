package service

import (
	"context"

	"github.com/mapda-dev/mapda-api/internal/domain"
	"github.com/mapda-dev/mapda-api/internal/provider"
)

// Classification is the login outcome derived from the user's status.
type Classification int

const (
	// ClassificationCreated: a brand-new user was provisioned.
	ClassificationCreated Classification = iota
	// ClassificationNeedRegister: user exists but onboarding is incomplete.
	ClassificationNeedRegister
	// ClassificationSuccess: active user, regular login.
	ClassificationSuccess
)

// LoginResult is what the reconciliation engine hands back to the login
// handlers: the resolved user, the outcome classification, and a fresh
// token pair.
type LoginResult struct {
	User           *domain.User
	IsNew          bool
	Classification Classification
	Message        string
	AccessToken    string
	RefreshToken   string
}

// UserInfoPatch carries the user-editable profile fields for partial update.
type UserInfoPatch struct {
	Nickname      *string
	University    *string
	ProfileNumber *int
}

// AuthService owns the identity lifecycle: reconciliation of provider
// identities, token refresh, registration completion, and unregister.
type AuthService interface {
	Reconcile(ctx context.Context, identity *provider.Identity) (*LoginResult, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	Unregister(ctx context.Context, userUUID string) error
	CompleteRegistration(ctx context.Context, userUUID, nickname, university string) (*domain.User, error)
	UpdateUserInfo(ctx context.Context, userUUID string, patch UserInfoPatch) (*domain.User, error)
	GetUser(ctx context.Context, userUUID string) (*domain.User, error)
	CheckNickname(ctx context.Context, nickname string) error
	AdminLogin(ctx context.Context, password string) (string, error)
}

// MessageService owns user-to-user notification delivery.
type MessageService interface {
	Send(ctx context.Context, senderUUID, recipientUUID string, types []int, dangerObjID *int64) (*domain.Message, error)
	CheckLatest(ctx context.Context, recipientUUID string) (*domain.Message, error)
}
