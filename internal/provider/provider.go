// Package provider normalizes the external identity providers (Kakao, Apple,
// Google) into a common identity tuple and handles provider-side revocation
// on unregister.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/mapda-dev/mapda-api/internal/domain"
)

var (
	// ErrAuthFailed means the provider rejected the credential or a
	// signature/audience check failed.
	ErrAuthFailed = errors.New("provider authentication failed")

	// ErrNotConfigured means the adapter is missing its credentials.
	ErrNotConfigured = errors.New("provider not configured")
)

// StatusError carries a provider's non-200 response code so handlers can
// surface it to the caller verbatim.
type StatusError struct {
	Provider   domain.ProviderType
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
}

// Identity is the normalized result of a successful provider verification.
type Identity struct {
	Provider   domain.ProviderType
	ProviderID string
	Profile    domain.ProfilePatch

	// RealUserStatus is Apple's fraud signal, stored as-is when present.
	RealUserStatus *int

	// Provider-native opaque tokens, kept only for later revocation.
	ProviderAccessToken  *string
	ProviderRefreshToken *string
}

// Adapter is the revocation side of a provider integration. Verification
// inputs differ per provider, so each adapter exposes its own typed Verify;
// unregister dispatches on this common interface.
type Adapter interface {
	Type() domain.ProviderType

	// Revoke unlinks the account at the provider using the stored
	// provider-native material. A non-200 from the provider is returned
	// as *StatusError and must abort local deletion.
	Revoke(ctx context.Context, user *domain.User, token *domain.Token) error
}
