package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/merchdash/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

// Operator represents a dashboard login. Operators are not shop-scoped:
// one team manages the dashboard across its installed shops.
type Operator struct {
	shared.BaseAggregateRoot
	Email          string `gorm:"uniqueIndex;not null;size:200"`
	PasswordHash   string `gorm:"not null"`
	DisplayName    string `gorm:"size:200"`
	Active         bool   `gorm:"not null;default:true"`
	LastLoginAt    *time.Time
	LastLoginIP    string `gorm:"size:45"`
	FailedAttempts int    `gorm:"not null;default:0"`
	LockedUntil    *time.Time
}

// NewOperator creates a new active operator
func NewOperator(email, password, displayName string) (*Operator, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if displayName != "" && len(displayName) > 200 {
		return nil, shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	op := &Operator{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      passwordHash,
		DisplayName:       strings.TrimSpace(displayName),
		Active:            true,
	}

	op.AddDomainEvent(NewOperatorCreatedEvent(op))

	return op, nil
}

// VerifyPassword verifies if the provided password matches
func (o *Operator) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(password))
	return err == nil
}

// ChangePassword changes the operator's password after checking the old one
func (o *Operator) ChangePassword(oldPassword, newPassword string) error {
	if !o.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}

	return o.SetPassword(newPassword)
}

// SetPassword sets a new password (admin reset, no old password check)
func (o *Operator) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	o.PasswordHash = passwordHash
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOperatorPasswordChangedEvent(o))

	return nil
}

// RecordLoginSuccess records a successful login
func (o *Operator) RecordLoginSuccess(ip string) {
	now := time.Now()
	o.LastLoginAt = &now
	o.LastLoginIP = ip
	o.FailedAttempts = 0
	o.LockedUntil = nil
	o.UpdatedAt = now
	o.IncrementVersion()
}

// RecordLoginFailure records a failed login attempt.
// Returns true if the account is now locked.
func (o *Operator) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	o.FailedAttempts++
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	if maxAttempts > 0 && o.FailedAttempts >= maxAttempts {
		lockedUntil := time.Now().Add(lockDuration)
		o.LockedUntil = &lockedUntil
		return true
	}

	return false
}

// IsLocked returns true while a failed-attempt lock is in force
func (o *Operator) IsLocked() bool {
	return o.LockedUntil != nil && time.Now().Before(*o.LockedUntil)
}

// Activate re-enables a deactivated operator
func (o *Operator) Activate() {
	o.Active = true
	o.FailedAttempts = 0
	o.LockedUntil = nil
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// Deactivate disables the operator's login
func (o *Operator) Deactivate() {
	o.Active = false
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOperatorDeactivatedEvent(o))
}

// CanLogin returns true if the operator can log in
func (o *Operator) CanLogin() bool {
	return o.Active && !o.IsLocked()
}

// GetDisplayNameOrEmail returns the display name if set, otherwise the email
func (o *Operator) GetDisplayNameOrEmail() string {
	if o.DisplayName != "" {
		return o.DisplayName
	}
	return o.Email
}

// Validation functions

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}

	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
