package provider

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mapda-dev/mapda-api/internal/domain"
)

const (
	googleKeysURL   = "https://www.googleapis.com/oauth2/v3/certs"
	googleRevokeURL = "https://accounts.google.com/o/oauth2/revoke"
)

var googleIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

// GoogleCredential is the login input: a provider-issued identity token plus
// the access token kept for later revocation.
type GoogleCredential struct {
	IDToken     string
	AccessToken string
}

// Google verifies provider-issued identity tokens against Google's public
// keys and checks the audience against the configured client-id allow-list.
type Google struct {
	clientIDs []string
	revokeURL string
	keys      *KeySet
	http      *http.Client
}

// NewGoogle creates the Google adapter.
func NewGoogle(clientIDs []string, client *http.Client) *Google {
	return &Google{
		clientIDs: clientIDs,
		revokeURL: googleRevokeURL,
		keys:      NewKeySet(googleKeysURL, client),
		http:      client,
	}
}

func (g *Google) Type() domain.ProviderType {
	return domain.ProviderGoogle
}

// Verify validates the identity token's signature, issuer and audience, and
// normalizes the claims into the common identity tuple.
func (g *Google) Verify(ctx context.Context, cred GoogleCredential) (*Identity, error) {
	if len(g.clientIDs) == 0 {
		return nil, ErrNotConfigured
	}

	token, err := jwt.Parse(cred.IDToken, g.keys.Keyfunc(ctx), jwt.WithValidMethods([]string{"RS256"}))
	if err != nil || !token.Valid {
		return nil, ErrAuthFailed
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrAuthFailed
	}

	iss, _ := claims["iss"].(string)
	issOK := false
	for _, allowed := range googleIssuers {
		if iss == allowed {
			issOK = true
			break
		}
	}
	if !issOK {
		return nil, ErrAuthFailed
	}

	if !audienceMatches(claims["aud"], g.clientIDs) {
		return nil, ErrAuthFailed
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrAuthFailed
	}

	identity := &Identity{
		Provider:            domain.ProviderGoogle,
		ProviderID:          sub,
		ProviderAccessToken: nonEmpty(cred.AccessToken),
	}
	if email, _ := claims["email"].(string); email != "" {
		identity.Profile.Email = &email
	}
	if picture, _ := claims["picture"].(string); picture != "" {
		identity.Profile.ProviderProfileImage = &picture
	}
	if name, _ := claims["name"].(string); name != "" {
		identity.Profile.ProviderUserName = &name
	}

	return identity, nil
}

// Revoke disconnects the Google account using the stored provider access
// token.
func (g *Google) Revoke(ctx context.Context, _ *domain.User, token *domain.Token) error {
	if token == nil || token.ProviderAccessToken == nil || *token.ProviderAccessToken == "" {
		return ErrAuthFailed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.revokeURL+"?token="+*token.ProviderAccessToken, nil)
	if err != nil {
		return err
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Provider: domain.ProviderGoogle, StatusCode: resp.StatusCode}
	}
	return nil
}
