package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mapda-dev/mapda-api/internal/domain"
	"github.com/mapda-dev/mapda-api/internal/provider"
	"github.com/mapda-dev/mapda-api/internal/repository"
	"github.com/mapda-dev/mapda-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserRepo is an in-memory UserRepository keyed by uuid.
type fakeUserRepo struct {
	users map[string]*domain.User
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.seq++
	user.ID = int64(r.seq)
	user.UUID = fmt.Sprintf("U20250101%011d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.UUID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByProvider(_ context.Context, providerType domain.ProviderType, providerID string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ProviderType == providerType && u.ProviderID == providerID && u.Status != domain.StatusDeleted {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByUUID(_ context.Context, uuid string) (*domain.User, error) {
	u, ok := r.users[uuid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.UUID]; !ok {
		return repository.ErrNotFound
	}
	clone := *user
	r.users[user.UUID] = &clone
	return nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, uuid string, status domain.UserStatus) error {
	u, ok := r.users[uuid]
	if !ok {
		return repository.ErrNotFound
	}
	u.Status = status
	return nil
}

func (r *fakeUserRepo) NicknameTaken(_ context.Context, nickname string) (bool, error) {
	for _, u := range r.users {
		if u.Nickname != nil && *u.Nickname == nickname && u.Status != domain.StatusDeleted {
			return true, nil
		}
	}
	return false, nil
}

// fakeTokenRepo is an in-memory TokenRepository, one row per uuid.
type fakeTokenRepo struct {
	tokens map[string]*domain.Token
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*domain.Token)}
}

func (r *fakeTokenRepo) Upsert(_ context.Context, token *domain.Token) error {
	clone := *token
	r.tokens[token.UUID] = &clone
	return nil
}

func (r *fakeTokenRepo) GetByRefreshToken(_ context.Context, refreshToken string) (*domain.Token, error) {
	for _, t := range r.tokens {
		if t.RefreshToken == refreshToken && t.Status != domain.TokenDeleted {
			clone := *t
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTokenRepo) GetByUUID(_ context.Context, uuid string) (*domain.Token, error) {
	t, ok := r.tokens[uuid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTokenRepo) UpdateStatus(_ context.Context, uuid string, status domain.TokenStatus) error {
	t, ok := r.tokens[uuid]
	if !ok {
		return repository.ErrNotFound
	}
	t.Status = status
	return nil
}

// fakeAdapter records revoke calls and optionally fails them.
type fakeAdapter struct {
	providerType domain.ProviderType
	revokeErr    error
	revoked      int
}

func (a *fakeAdapter) Type() domain.ProviderType { return a.providerType }

func (a *fakeAdapter) Revoke(context.Context, *domain.User, *domain.Token) error {
	a.revoked++
	return a.revokeErr
}

type authFixture struct {
	users   *fakeUserRepo
	tokens  *fakeTokenRepo
	adapter *fakeAdapter
	svc     AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	adapter := &fakeAdapter{providerType: domain.ProviderKakao}
	jwtManager := utils.NewJWTManager(
		"test-secret-key-that-is-at-least-32-characters-long",
		15*time.Minute, 7*24*time.Hour, 30*24*time.Hour,
	)

	adminHash, err := utils.HashPassword("operator-password", 4)
	require.NoError(t, err)

	svc := NewAuthService(users, tokens, jwtManager, []provider.Adapter{adapter}, "ADMIN000000000000000", adminHash)
	return &authFixture{users: users, tokens: tokens, adapter: adapter, svc: svc}
}

func kakaoIdentity(providerID string) *provider.Identity {
	email := providerID + "@example.com"
	return &provider.Identity{
		Provider:   domain.ProviderKakao,
		ProviderID: providerID,
		Profile:    domain.ProfilePatch{Email: &email},
	}
}

func TestReconcile_NewUser(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.svc.Reconcile(context.Background(), kakaoIdentity("kakao-1"))
	require.NoError(t, err)

	assert.True(t, result.IsNew)
	assert.Equal(t, ClassificationCreated, result.Classification)
	assert.Equal(t, "Need_Register", result.Message)
	assert.Equal(t, domain.StatusNeedRegister, result.User.Status)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)

	stored, err := f.tokens.GetByUUID(context.Background(), result.User.UUID)
	require.NoError(t, err)
	assert.Equal(t, result.RefreshToken, stored.RefreshToken)
}

func TestReconcile_SameIdentityKeepsUUID(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	first, err := f.svc.Reconcile(ctx, kakaoIdentity("kakao-1"))
	require.NoError(t, err)
	second, err := f.svc.Reconcile(ctx, kakaoIdentity("kakao-1"))
	require.NoError(t, err)

	assert.Equal(t, first.User.UUID, second.User.UUID)
	assert.False(t, second.IsNew)
	assert.Equal(t, ClassificationNeedRegister, second.Classification)
	// Every login issues a fresh pair.
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestReconcile_ActiveUserLogsIn(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	created, err := f.svc.Reconcile(ctx, kakaoIdentity("kakao-1"))
	require.NoError(t, err)
	_, err = f.svc.CompleteRegistration(ctx, created.User.UUID, "tester", "YONSEI_SINCHON")
	require.NoError(t, err)

	result, err := f.svc.Reconcile(ctx, kakaoIdentity("kakao-1"))
	require.NoError(t, err)
	assert.Equal(t, ClassificationSuccess, result.Classification)
	assert.Equal(t, "Login successful", result.Message)
}

func TestReconcile_ProfileRefresh(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	first, err := f.svc.Reconcile(ctx, kakaoIdentity("kakao-1"))
	require.NoError(t, err)

	updated := kakaoIdentity("kakao-1")
	newEmail := "changed@example.com"
	updated.Profile.Email = &newEmail

	second, err := f.svc.Reconcile(ctx, updated)
	require.NoError(t, err)
	assert.Equal(t, first.User.UUID, second.User.UUID)

	stored, err := f.users.GetByUUID(ctx, first.User.UUID)
	require.NoError(t, err)
	require.NotNil(t, stored.Email)
	assert.Equal(t, "changed@example.com", *stored.Email)
}

func TestReconcile_BlockedUserGetsNoTokens(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	created, err := f.svc.Reconcile(ctx, kakaoIdentity("kakao-1"))
	require.NoError(t, err)
	require.NoError(t, f.users.UpdateStatus(ctx, created.User.UUID, domain.StatusBlock))
	before, err := f.tokens.GetByUUID(ctx, created.User.UUID)
	require.NoError(t, err)

	_, err = f.svc.Reconcile(ctx, kakaoIdentity("kakao-1"))
	assert.ErrorIs(t, err, ErrInvalidUserState)

	// Token record untouched by the failed login.
	after, err := f.tokens.GetByUUID(ctx, created.User.UUID)
	require.NoError(t, err)
	assert.Equal(t, before.RefreshToken, after.RefreshToken)
}

func TestReconcile_UnsupportedProviderAdapterNotNeeded(t *testing.T) {
	// Login does not dispatch on the adapter map, so an identity from a
	// provider with no registered adapter still reconciles.
	f := newAuthFixture(t)

	identity := kakaoIdentity("google-1")
	identity.Provider = domain.ProviderGoogle

	result, err := f.svc.Reconcile(context.Background(), identity)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderGoogle, result.User.ProviderType)
}

func TestRefreshAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Reconcile(ctx, kakaoIdentity("kakao-1"))
	require.NoError(t, err)

	accessToken, err := f.svc.RefreshAccessToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
}

func TestRefreshAccessToken_UnknownToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	// Well-signed but never stored: superseded by a later login, or from a
	// deleted account.
	jwtManager := utils.NewJWTManager(
		"test-secret-key-that-is-at-least-32-characters-long",
		15*time.Minute, 7*24*time.Hour, 30*24*time.Hour,
	)
	orphan, err := jwtManager.GenerateRefreshToken()
	require.NoError(t, err)

	_, err = f.svc.RefreshAccessToken(ctx, orphan)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshAccessToken_Garbage(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.RefreshAccessToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshAccessToken_SupersededBySecondLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	first, err := f.svc.Reconcile(ctx, kakaoIdentity("kakao-1"))
	require.NoError(t, err)
	second, err := f.svc.Reconcile(ctx, kakaoIdentity("kakao-1"))
	require.NoError(t, err)

	_, err = f.svc.RefreshAccessToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = f.svc.RefreshAccessToken(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestUnregister(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Reconcile(ctx, kakaoIdentity("kakao-1"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Unregister(ctx, login.User.UUID))
	assert.Equal(t, 1, f.adapter.revoked)

	stored := f.users.users[login.User.UUID]
	assert.Equal(t, domain.StatusDeleted, stored.Status)
	assert.Equal(t, domain.TokenDeleted, f.tokens.tokens[login.User.UUID].Status)

	// A fresh login afterwards provisions a brand-new user row.
	relogin, err := f.svc.Reconcile(ctx, kakaoIdentity("kakao-1"))
	require.NoError(t, err)
	assert.True(t, relogin.IsNew)
	assert.NotEqual(t, login.User.UUID, relogin.User.UUID)
}

func TestUnregister_ProviderFailureAbortsDeletion(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Reconcile(ctx, kakaoIdentity("kakao-1"))
	require.NoError(t, err)

	f.adapter.revokeErr = &provider.StatusError{Provider: domain.ProviderKakao, StatusCode: 502}
	err = f.svc.Unregister(ctx, login.User.UUID)
	require.Error(t, err)

	// Local state untouched: the provider link still exists.
	assert.Equal(t, domain.StatusNeedRegister, f.users.users[login.User.UUID].Status)
	assert.Equal(t, domain.TokenActive, f.tokens.tokens[login.User.UUID].Status)
}

func TestUnregister_UnknownUser(t *testing.T) {
	f := newAuthFixture(t)

	err := f.svc.Unregister(context.Background(), "U20990101000000000001")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCompleteRegistration(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Reconcile(ctx, kakaoIdentity("kakao-1"))
	require.NoError(t, err)

	user, err := f.svc.CompleteRegistration(ctx, login.User.UUID, "tester", "YONSEI_SINCHON")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusActive, user.Status)
	require.NotNil(t, user.Nickname)
	assert.Equal(t, "tester", *user.Nickname)
	require.NotNil(t, user.University)
	assert.Equal(t, "YONSEI_SINCHON", *user.University)
}

func TestCompleteRegistration_UnknownUniversity(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Reconcile(ctx, kakaoIdentity("kakao-1"))
	require.NoError(t, err)

	_, err = f.svc.CompleteRegistration(ctx, login.User.UUID, "tester", "HOGWARTS")
	assert.ErrorIs(t, err, ErrInvalidUniversity)
}

func TestUpdateUserInfo_Partial(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Reconcile(ctx, kakaoIdentity("kakao-1"))
	require.NoError(t, err)
	_, err = f.svc.CompleteRegistration(ctx, login.User.UUID, "tester", "YONSEI_SINCHON")
	require.NoError(t, err)

	profileNumber := 7
	user, err := f.svc.UpdateUserInfo(ctx, login.User.UUID, UserInfoPatch{ProfileNumber: &profileNumber})
	require.NoError(t, err)

	assert.Equal(t, 7, user.ProfileNumber)
	// Untouched fields survive.
	require.NotNil(t, user.Nickname)
	assert.Equal(t, "tester", *user.Nickname)
}

func TestCheckNickname(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Reconcile(ctx, kakaoIdentity("kakao-1"))
	require.NoError(t, err)
	_, err = f.svc.CompleteRegistration(ctx, login.User.UUID, "tester", "YONSEI_SINCHON")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.CheckNickname(ctx, "tester"), ErrNicknameTaken)
	assert.NoError(t, f.svc.CheckNickname(ctx, "someone-else"))

	// Deleted accounts release their nickname.
	require.NoError(t, f.svc.Unregister(ctx, login.User.UUID))
	assert.NoError(t, f.svc.CheckNickname(ctx, "tester"))
}

func TestAdminLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	token, err := f.svc.AdminLogin(ctx, "operator-password")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = f.svc.AdminLogin(ctx, "wrong-password")
	assert.ErrorIs(t, err, ErrAdminAuth)
}
