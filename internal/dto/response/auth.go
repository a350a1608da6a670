package response

import (
	"time"

	"pizzeria-backend/internal/data/entity"
)

type UserResponse struct {
	ID        string              `json:"id"`
	Username  string              `json:"username"`
	Email     string              `json:"email"`
	FirstName string              `json:"first_name"`
	LastName  string              `json:"last_name"`
	Address   string              `json:"address"`
	Role      entity.UserRole     `json:"role"`
	Provider  entity.AuthProvider `json:"provider"`
	IsEnabled bool                `json:"is_enabled"`
	IsLocked  bool                `json:"is_locked"`
	CreatedAt time.Time           `json:"created_at"`
}

func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Address:   user.Address,
		Role:      user.Role,
		Provider:  user.Provider,
		IsEnabled: user.IsEnabled,
		IsLocked:  user.IsLocked,
		CreatedAt: user.CreatedAt,
	}
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthResponse carries the session token tiers issued at sign-in.
type AuthResponse struct {
	User            UserResponse   `json:"user"`
	AccessToken     TokenResponse  `json:"access_token"`
	RefreshToken    *TokenResponse `json:"refresh_token,omitempty"`
	RememberMeToken *TokenResponse `json:"remember_me_token,omitempty"`
}

// CompletionResponse is returned to a federated user whose profile is not
// finished. The token only opens the profile-completion endpoint.
type CompletionResponse struct {
	UserID          string        `json:"user_id"`
	Email           string        `json:"email"`
	CompletionToken TokenResponse `json:"completion_token"`
}

type PendingAccountResponse struct {
	User UserResponse `json:"user"`
}

type VerifyStatus string

const (
	VerifyStatusVerified        VerifyStatus = "VERIFIED"
	VerifyStatusAlreadyVerified VerifyStatus = "ALREADY_VERIFIED"
)

type VerifyEmailResponse struct {
	Status VerifyStatus `json:"status"`
}

type OAuthOutcome string

const (
	OAuthOutcomeSession           OAuthOutcome = "SESSION"
	OAuthOutcomeProfileCompletion OAuthOutcome = "PROFILE_COMPLETION"
)

// OAuthLoginResponse holds exactly one of Session or Completion.
type OAuthLoginResponse struct {
	Outcome    OAuthOutcome        `json:"outcome"`
	Session    *AuthResponse       `json:"session,omitempty"`
	Completion *CompletionResponse `json:"completion,omitempty"`
}

// PasswordResetLinkResponse carries the parameters of a reset email link.
type PasswordResetLinkResponse struct {
	Email string `json:"email"`
	Token string `json:"token"`
}
