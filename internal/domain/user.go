package domain

import "time"

// UserStatus represents the lifecycle state of a user account
type UserStatus string

const (
	StatusNeedRegister UserStatus = "Need_Register"
	StatusActive       UserStatus = "Active"
	StatusBlock        UserStatus = "Block"
	StatusDeleted      UserStatus = "Deleted"
)

// ProviderType identifies the external identity provider an account came from
type ProviderType string

const (
	ProviderKakao  ProviderType = "KAKAO"
	ProviderApple  ProviderType = "APPLE"
	ProviderGoogle ProviderType = "GOOGLE"
)

// User represents a user in the system. UUID is the stable opaque identifier;
// the (ProviderType, ProviderID) pair identifies at most one non-Deleted row.
type User struct {
	ID                   int64        `json:"-" db:"id"`
	UUID                 string       `json:"uuid" db:"uuid"`
	Role                 string       `json:"role" db:"role"`
	Status               UserStatus   `json:"status" db:"status"`
	Email                *string      `json:"email" db:"email"`
	Nickname             *string      `json:"nickname" db:"nickname"`
	University           *string      `json:"university" db:"university"`
	ProfileNumber        int          `json:"profile_number" db:"profile_number"`
	ProviderType         ProviderType `json:"provider_type" db:"provider_type"`
	ProviderID           string       `json:"-" db:"provider_id"`
	ProviderProfileImage *string      `json:"provider_profile_image" db:"provider_profile_image"`
	ProviderUserName     *string      `json:"provider_user_name" db:"provider_user_name"`
	AppleRealUserStatus  *int         `json:"-" db:"apple_real_user_status"`
	CreatedAt            time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at" db:"updated_at"`
}

// ProfilePatch enumerates the provider-supplied profile fields that may be
// refreshed on login. A nil field means "not supplied, leave alone".
type ProfilePatch struct {
	Email                *string
	ProviderProfileImage *string
	ProviderUserName     *string
}

// Apply merges the patch into the user. A stored field is only overwritten
// when the incoming value is present and differs from the current value.
// Returns true when at least one field changed.
func (p ProfilePatch) Apply(u *User) bool {
	changed := false
	if p.Email != nil && !equalPtr(u.Email, p.Email) {
		u.Email = p.Email
		changed = true
	}
	if p.ProviderProfileImage != nil && !equalPtr(u.ProviderProfileImage, p.ProviderProfileImage) {
		u.ProviderProfileImage = p.ProviderProfileImage
		changed = true
	}
	if p.ProviderUserName != nil && !equalPtr(u.ProviderUserName, p.ProviderUserName) {
		u.ProviderUserName = p.ProviderUserName
		changed = true
	}
	return changed
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
