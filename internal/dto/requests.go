package dto

// KakaoLoginRequest carries the profile the mobile client obtained from the
// Kakao SDK. Only the provider user id is mandatory; every profile field is
// optional consent-dependent data.
type KakaoLoginRequest struct {
	ID                    string `json:"id" binding:"required"`
	Nickname              string `json:"nickname"`
	Email                 string `json:"email"`
	ProfileImage          string `json:"profileImage"`
	ThumbnailImage        string `json:"thumbnailImage"`
	IsProfileImageDefault *bool  `json:"isProfileImageDefault"`
	ConnectedAt           string `json:"connectedAt"`
}

// AppleLoginRequest carries the Sign in with Apple authorization result.
// Email and name are only present on the very first authorization.
type AppleLoginRequest struct {
	IdentityToken     string `json:"identityToken" binding:"required"`
	AuthorizationCode string `json:"authorizationCode" binding:"required"`
	UserEmail         string `json:"userEmail"`
	UserName          string `json:"userName"`
}

// GoogleLoginRequest carries the Google sign-in result.
type GoogleLoginRequest struct {
	IDToken     string `json:"idToken" binding:"required"`
	AccessToken string `json:"accessToken"`
}

// LoginResponse is returned by every provider login endpoint.
type LoginResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshRequest carries the stored refresh token back to the server.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshResponse returns a fresh access token.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// RegisterCompleteRequest finishes onboarding with the two fields the login
// providers cannot supply.
type RegisterCompleteRequest struct {
	Nickname   string `json:"nickname" binding:"required"`
	University string `json:"university" binding:"required"`
}

// UpdateUserInfoRequest is a partial profile update; absent fields are left
// untouched.
type UpdateUserInfoRequest struct {
	Nickname      *string `json:"nickname"`
	University    *string `json:"university"`
	ProfileNumber *int    `json:"profile_number"`
}

// UserResponse represents a user profile in responses.
type UserResponse struct {
	UUID          string  `json:"uuid"`
	Role          string  `json:"role"`
	Status        string  `json:"status"`
	Email         *string `json:"email"`
	Nickname      *string `json:"nickname"`
	University    *string `json:"university"`
	ProfileNumber int     `json:"profile_number"`
	ProviderType  string  `json:"provider_type"`
	CreatedAt     string  `json:"created_at"`
}

// SendMessageRequest delivers one or more warning kinds to another user.
type SendMessageRequest struct {
	RecipientUUID string `json:"recipient_uuid" binding:"required"`
	MessageTypes  []int  `json:"message_types" binding:"required,min=1"`
	DangerObjID   *int64 `json:"danger_obj_id"`
}

// MessageCheckResponse reports whether a new message is waiting and, if so,
// its contents.
type MessageCheckResponse struct {
	HasNewMessage bool             `json:"has_new_message"`
	Message       *MessageResponse `json:"message,omitempty"`
}

// MessageResponse represents a delivered message.
type MessageResponse struct {
	ID           int64  `json:"id"`
	SenderUUID   string `json:"sender_uuid"`
	MessageTypes []int  `json:"message_types"`
	DangerObjID  *int64 `json:"danger_obj_id"`
	CreatedAt    string `json:"created_at"`
}

// PlaceSearchResponse lists matching place names for an autocomplete query.
type PlaceSearchResponse struct {
	Keyword string   `json:"keyword"`
	Results []string `json:"results"`
}

// AdminLoginRequest authenticates the operator account.
type AdminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AdminLoginResponse returns the operator access token.
type AdminLoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
