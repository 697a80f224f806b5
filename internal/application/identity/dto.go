package identity

import (
	"time"

	"github.com/google/uuid"
)

// LoginInput contains the input for operator login
type LoginInput struct {
	Email    string
	Password string
	Shop     string // Active shop domain the session should operate on
	IP       string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	Operator              OperatorInfo
}

// OperatorInfo contains basic operator information returned after login
type OperatorInfo struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	Shop        string
	LastLoginAt *time.Time
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
	Shop         string // Optional: rebind the session to a different shop
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for operator logout
type LogoutInput struct {
	OperatorID uuid.UUID
	TokenJTI   string        // JWT ID for blacklisting
	TokenTTL   time.Duration // Remaining lifetime of the access token
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	OperatorID  uuid.UUID
	OldPassword string
	NewPassword string
}

// GetCurrentOperatorInput contains the input for getting current operator info
type GetCurrentOperatorInput struct {
	OperatorID uuid.UUID
	Shop       string
}

// CurrentOperatorResult contains the current operator's information
type CurrentOperatorResult struct {
	Operator OperatorInfo
}
