package provider

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mapda-dev/mapda-api/internal/domain"
)

const (
	appleTokenURL  = "https://appleid.apple.com/auth/token"
	appleRevokeURL = "https://appleid.apple.com/auth/revoke"
	appleKeysURL   = "https://appleid.apple.com/auth/keys"
	appleIssuer    = "https://appleid.apple.com"

	// Apple allows client secrets valid for up to six months.
	appleClientSecretTTL = 180 * 24 * time.Hour
)

// AppleCredential is the login input: the authorization code to exchange,
// plus the email/name the client captured. Apple only surfaces those once,
// on the very first authorization, so they ride along here.
type AppleCredential struct {
	AuthorizationCode string
	UserEmail         string
	UserName          string
}

// Apple exchanges authorization codes at Apple's token endpoint using a
// dynamically generated ES256 client assertion, and verifies the returned
// identity token against Apple's published keys before trusting its subject.
type Apple struct {
	clientID    string
	teamID      string
	keyID       string
	redirectURI string
	privateKey  *ecdsa.PrivateKey

	tokenURL  string
	revokeURL string
	keys      *KeySet
	http      *http.Client
}

// NewApple creates the Apple adapter. privateKeyPEM is the contents of the
// developer .p8 signing key; when empty the adapter is constructed but every
// operation fails with ErrNotConfigured.
func NewApple(clientID, teamID, keyID, redirectURI string, privateKeyPEM []byte, client *http.Client) (*Apple, error) {
	a := &Apple{
		clientID:    clientID,
		teamID:      teamID,
		keyID:       keyID,
		redirectURI: redirectURI,
		tokenURL:    appleTokenURL,
		revokeURL:   appleRevokeURL,
		keys:        NewKeySet(appleKeysURL, client),
		http:        client,
	}

	if len(privateKeyPEM) > 0 {
		key, err := jwt.ParseECPrivateKeyFromPEM(privateKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to parse apple private key: %w", err)
		}
		a.privateKey = key
	}

	return a, nil
}

func (a *Apple) Type() domain.ProviderType {
	return domain.ProviderApple
}

// ClientSecret generates the time-bound ES256 client assertion Apple
// requires in place of a static secret.
func (a *Apple) ClientSecret(now time.Time) (string, error) {
	if a.privateKey == nil {
		return "", ErrNotConfigured
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": a.teamID,
		"iat": now.Unix(),
		"exp": now.Add(appleClientSecretTTL).Unix(),
		"aud": appleIssuer,
		"sub": a.clientID,
	})
	token.Header["kid"] = a.keyID

	secret, err := token.SignedString(a.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign apple client secret: %w", err)
	}
	return secret, nil
}

type appleTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
}

// Verify exchanges the authorization code, verifies the returned identity
// token, and normalizes the subject into the common identity tuple.
func (a *Apple) Verify(ctx context.Context, cred AppleCredential) (*Identity, error) {
	secret, err := a.ClientSecret(time.Now())
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("client_id", a.clientID)
	form.Set("client_secret", secret)
	form.Set("code", cred.AuthorizationCode)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", a.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apple token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: domain.ProviderApple, StatusCode: resp.StatusCode}
	}

	var tokens appleTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("failed to decode apple token response: %w", err)
	}

	claims, err := a.verifyIdentityToken(ctx, tokens.IDToken)
	if err != nil {
		return nil, err
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrAuthFailed
	}

	identity := &Identity{
		Provider:   domain.ProviderApple,
		ProviderID: sub,
		Profile: domain.ProfilePatch{
			Email:            nonEmpty(cred.UserEmail),
			ProviderUserName: nonEmpty(cred.UserName),
		},
		ProviderRefreshToken: nonEmpty(tokens.RefreshToken),
		ProviderAccessToken:  nonEmpty(tokens.AccessToken),
	}

	if identity.Profile.Email == nil {
		if email, _ := claims["email"].(string); email != "" {
			identity.Profile.Email = &email
		}
	}
	if rus, ok := claims["real_user_status"].(float64); ok {
		status := int(rus)
		identity.RealUserStatus = &status
	}

	return identity, nil
}

// verifyIdentityToken checks the token's signature against Apple's JWKS and
// validates issuer and audience. Decoding without verification is not an
// option here: the subject drives account linkage.
func (a *Apple) verifyIdentityToken(ctx context.Context, idToken string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(idToken, a.keys.Keyfunc(ctx), jwt.WithValidMethods([]string{"RS256"}))
	if err != nil || !token.Valid {
		return nil, ErrAuthFailed
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrAuthFailed
	}

	if iss, _ := claims["iss"].(string); iss != appleIssuer {
		return nil, ErrAuthFailed
	}
	if !audienceMatches(claims["aud"], []string{a.clientID}) {
		return nil, ErrAuthFailed
	}

	return claims, nil
}

// Revoke invalidates the stored provider refresh token at Apple, using a
// freshly generated client secret.
func (a *Apple) Revoke(ctx context.Context, _ *domain.User, token *domain.Token) error {
	if token == nil || token.ProviderRefreshToken == nil || *token.ProviderRefreshToken == "" {
		return ErrAuthFailed
	}

	secret, err := a.ClientSecret(time.Now())
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("client_id", a.clientID)
	form.Set("client_secret", secret)
	form.Set("token", *token.ProviderRefreshToken)
	form.Set("token_type_hint", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Provider: domain.ProviderApple, StatusCode: resp.StatusCode}
	}
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func audienceMatches(aud interface{}, accepted []string) bool {
	switch v := aud.(type) {
	case string:
		for _, id := range accepted {
			if v == id {
				return true
			}
		}
	case []interface{}:
		for _, entry := range v {
			s, _ := entry.(string)
			for _, id := range accepted {
				if s == id {
					return true
				}
			}
		}
	}
	return false
}
