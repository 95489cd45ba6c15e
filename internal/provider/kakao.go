package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/mapda-dev/mapda-api/internal/domain"
)

const kakaoUnlinkURL = "https://kapi.kakao.com/v1/user/unlink"

// KakaoPayload is the client-asserted profile forwarded by the app. The
// client, not this backend, talks to Kakao; we only normalize what it sends.
type KakaoPayload struct {
	ID                    string
	Nickname              *string
	Email                 *string
	ProfileImage          *string
	IsProfileImageDefault *bool
}

// Kakao normalizes client-asserted Kakao profiles and unlinks accounts with
// the app's admin key.
type Kakao struct {
	adminKey  string
	unlinkURL string
	http      *http.Client
}

// NewKakao creates the Kakao adapter.
func NewKakao(adminKey string, client *http.Client) *Kakao {
	return &Kakao{adminKey: adminKey, unlinkURL: kakaoUnlinkURL, http: client}
}

func (k *Kakao) Type() domain.ProviderType {
	return domain.ProviderKakao
}

// Normalize maps a Kakao payload to the common identity tuple. A profile
// image flagged as the provider's default placeholder is discarded so a
// generic avatar URL is never stored as user-chosen content.
func (k *Kakao) Normalize(p KakaoPayload) (*Identity, error) {
	if p.ID == "" {
		return nil, ErrAuthFailed
	}

	profileImage := p.ProfileImage
	if p.IsProfileImageDefault == nil || *p.IsProfileImageDefault {
		profileImage = nil
	}

	return &Identity{
		Provider:   domain.ProviderKakao,
		ProviderID: p.ID,
		Profile: domain.ProfilePatch{
			Email:                p.Email,
			ProviderProfileImage: profileImage,
			ProviderUserName:     p.Nickname,
		},
	}, nil
}

// Revoke unlinks the Kakao account by provider user id, authenticated with
// the admin key.
func (k *Kakao) Revoke(ctx context.Context, user *domain.User, _ *domain.Token) error {
	if k.adminKey == "" {
		return ErrNotConfigured
	}

	form := url.Values{}
	form.Set("target_id_type", "user_id")
	form.Set("target_id", user.ProviderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.unlinkURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "KakaoAK "+k.adminKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Provider: domain.ProviderKakao, StatusCode: resp.StatusCode}
	}
	return nil
}
