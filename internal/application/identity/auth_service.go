package identity

import (
	"context"
	"time"

	"github.com/merchdash/backend/internal/domain/identity"
	"github.com/merchdash/backend/internal/domain/shared"
	"github.com/merchdash/backend/internal/domain/shop"
	"github.com/merchdash/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Maximum failed login attempts before lock
	LockDuration     time.Duration // How long to lock account after max attempts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// AuthService handles operator authentication
type AuthService struct {
	operators  identity.OperatorRepository
	shops      shop.Repository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	operators identity.OperatorRepository,
	shops shop.Repository,
	jwtService *auth.JWTService,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		operators:  operators,
		shops:      shops,
		jwtService: jwtService,
		config:     config,
		logger:     logger,
	}
}

// SetTokenBlacklist wires a blacklist so logout can revoke outstanding
// tokens. Without one, logout is client-side only.
func (s *AuthService) SetTokenBlacklist(blacklist auth.TokenBlacklist) {
	s.blacklist = blacklist
}

// Login authenticates an operator and returns tokens bound to the
// requested shop
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Login attempt", zap.String("email", input.Email))

	op, err := s.operators.FindByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Warn("Operator not found during login", zap.String("email", input.Email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	if !op.CanLogin() {
		if op.IsLocked() {
			s.logger.Warn("Login attempt for locked account", zap.String("email", input.Email))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later")
		}
		s.logger.Warn("Login attempt for deactivated account", zap.String("email", input.Email))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if !op.VerifyPassword(input.Password) {
		// Record failed attempt
		locked := op.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.operators.Update(ctx, op); err != nil {
			s.logger.Error("Failed to update operator after login failure", zap.Error(err))
		}

		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("email", input.Email),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}

		s.logger.Warn("Invalid password attempt",
			zap.String("email", input.Email),
			zap.Int("failed_attempts", op.FailedAttempts))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	activeShop, err := s.resolveShop(ctx, input.Shop)
	if err != nil {
		return nil, err
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		OperatorID: op.ID,
		Email:      op.Email,
		Shop:       activeShop,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	// Record successful login
	op.RecordLoginSuccess(input.IP)
	if err := s.operators.Update(ctx, op); err != nil {
		s.logger.Error("Failed to update operator after successful login", zap.Error(err))
		// Don't fail the login - just log the error
	}

	s.logger.Info("Operator logged in",
		zap.String("email", input.Email),
		zap.String("operator_id", op.ID.String()),
		zap.String("shop", activeShop))

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		Operator: OperatorInfo{
			ID:          op.ID,
			Email:       op.Email,
			DisplayName: op.GetDisplayNameOrEmail(),
			Shop:        activeShop,
			LastLoginAt: op.LastLoginAt,
		},
	}, nil
}

// RefreshToken refreshes the access token using a valid refresh token
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	refreshClaims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	operatorID, err := refreshClaims.GetOperatorUUID()
	if err != nil {
		s.logger.Error("Invalid operator ID in refresh token", zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid operator ID in token")
	}

	// Verify the operator still exists and is active
	op, err := s.operators.FindByID(ctx, operatorID)
	if err != nil {
		s.logger.Warn("Operator not found during token refresh", zap.String("operator_id", operatorID.String()))
		return nil, shared.NewDomainError("OPERATOR_NOT_FOUND", "Operator not found")
	}
	if !op.CanLogin() {
		s.logger.Warn("Token refresh for inactive operator", zap.String("operator_id", operatorID.String()))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	activeShop := refreshClaims.Shop
	if input.Shop != "" {
		activeShop, err = s.resolveShop(ctx, input.Shop)
		if err != nil {
			return nil, err
		}
	}

	tokenPair, err := s.jwtService.RefreshTokenPair(input.RefreshToken, op.Email, activeShop)
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	s.logger.Info("Token refreshed", zap.String("operator_id", operatorID.String()))

	return &RefreshTokenResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
	}, nil
}

// Logout revokes the presented access token. With no blacklist wired,
// tokens simply expire on their own and logout is client-side.
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	s.logger.Info("Operator logout", zap.String("operator_id", input.OperatorID.String()))

	if s.blacklist == nil || input.TokenJTI == "" {
		return nil
	}

	ttl := input.TokenTTL
	if ttl <= 0 {
		ttl = s.jwtService.GetAccessTokenExpiration()
	}
	if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, ttl); err != nil {
		s.logger.Error("Failed to blacklist token on logout",
			zap.String("operator_id", input.OperatorID.String()),
			zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke session")
	}
	return nil
}

// GetCurrentOperator retrieves the current operator's information
func (s *AuthService) GetCurrentOperator(ctx context.Context, input GetCurrentOperatorInput) (*CurrentOperatorResult, error) {
	op, err := s.operators.FindByID(ctx, input.OperatorID)
	if err != nil {
		return nil, shared.NewDomainError("OPERATOR_NOT_FOUND", "Operator not found")
	}

	return &CurrentOperatorResult{
		Operator: OperatorInfo{
			ID:          op.ID,
			Email:       op.Email,
			DisplayName: op.GetDisplayNameOrEmail(),
			Shop:        input.Shop,
			LastLoginAt: op.LastLoginAt,
		},
	}, nil
}

// ChangePassword changes an operator's password
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	op, err := s.operators.FindByID(ctx, input.OperatorID)
	if err != nil {
		return shared.NewDomainError("OPERATOR_NOT_FOUND", "Operator not found")
	}

	if err := op.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}

	if err := s.operators.Update(ctx, op); err != nil {
		s.logger.Error("Failed to update operator after password change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update password")
	}

	s.logger.Info("Operator password changed", zap.String("operator_id", input.OperatorID.String()))

	return nil
}

// resolveShop validates that a requested shop domain names an installed
// shop. An empty request yields an unbound session; shop-scoped routes
// then require an explicit shop parameter.
func (s *AuthService) resolveShop(ctx context.Context, domain string) (string, error) {
	domain = shop.NormalizeDomain(domain)
	if domain == "" {
		return "", nil
	}
	installed, err := s.shops.FindByDomain(ctx, domain)
	if err != nil || installed == nil {
		s.logger.Warn("Login requested unknown shop", zap.String("shop", domain))
		return "", shared.NewDomainError("SHOP_NOT_FOUND", "Shop is not installed: "+domain)
	}
	return installed.Domain, nil
}

// mapTokenError translates JWT service errors into domain errors
func mapTokenError(err error) error {
	switch err {
	case auth.ErrExpiredToken:
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case auth.ErrInvalidToken:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	case auth.ErrMaxRefreshExceeded:
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
	}
}
