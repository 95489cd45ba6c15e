package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is the single outcome callers see for any verification
// failure: bad signature, expired, malformed, or missing subject.
var ErrInvalidToken = errors.New("invalid token")

// JWTManager is the token codec. It signs and verifies the service's own
// access and refresh tokens with a process-wide HS256 secret fixed at
// startup. All operations are stateless and safe for concurrent use.
type JWTManager struct {
	secret             []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	adminTokenExpiry   time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, accessTokenExpiry, refreshTokenExpiry, adminTokenExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:             []byte(secret),
		accessTokenExpiry:  accessTokenExpiry,
		refreshTokenExpiry: refreshTokenExpiry,
		adminTokenExpiry:   adminTokenExpiry,
	}
}

// GenerateAccessToken produces a signed assertion carrying only the user
// uuid and an expiry.
func (j *JWTManager) GenerateAccessToken(userUUID string) (string, error) {
	return j.signAccess(userUUID, j.accessTokenExpiry)
}

// GenerateAdminAccessToken is the long-lived variant issued by the admin
// login endpoint.
func (j *JWTManager) GenerateAdminAccessToken(adminUUID string) (string, error) {
	return j.signAccess(adminUUID, j.adminTokenExpiry)
}

func (j *JWTManager) signAccess(userUUID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uuid": userUUID,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	})

	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// GenerateRefreshToken produces a signed assertion with no subject claim.
// The server correlates it back to a user by looking up the literal token
// string in the token store, never by claim inspection.
func (j *JWTManager) GenerateRefreshToken() (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": now.Add(j.refreshTokenExpiry).Unix(),
		"iat": now.Unix(),
		"jti": uuid.New().String(),
	})

	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken checks signature and expiry and returns the embedded
// user uuid. Any failure mode collapses into ErrInvalidToken.
func (j *JWTManager) VerifyAccessToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, j.keyFunc, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	userUUID, ok := claims["uuid"].(string)
	if !ok || userUUID == "" {
		return "", ErrInvalidToken
	}

	return userUUID, nil
}

// VerifyRefreshToken checks signature and expiry only; identity resolution
// happens in the token store.
func (j *JWTManager) VerifyRefreshToken(tokenString string) bool {
	token, err := jwt.Parse(tokenString, j.keyFunc, jwt.WithValidMethods([]string{"HS256"}))
	return err == nil && token.Valid
}

func (j *JWTManager) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return j.secret, nil
}

// AccessTokenExpirySeconds returns the access token TTL in seconds.
func (j *JWTManager) AccessTokenExpirySeconds() int {
	return int(j.accessTokenExpiry.Seconds())
}
