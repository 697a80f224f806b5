package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/identity"
	"github.com/merchdash/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OperatorService handles operator account management
type OperatorService struct {
	operators identity.OperatorRepository
	logger    *zap.Logger
}

// NewOperatorService creates a new operator service
func NewOperatorService(operators identity.OperatorRepository, logger *zap.Logger) *OperatorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OperatorService{
		operators: operators,
		logger:    logger,
	}
}

// CreateOperatorInput contains input for creating an operator
type CreateOperatorInput struct {
	Email       string
	Password    string
	DisplayName string
}

// UpdateOperatorInput contains input for updating an operator
type UpdateOperatorInput struct {
	ID          uuid.UUID
	DisplayName *string
}

// OperatorDTO represents operator data transfer object
type OperatorDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OperatorListResult represents paginated operator list result
type OperatorListResult struct {
	Operators  []OperatorDTO `json:"operators"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// Create creates a new operator
func (s *OperatorService) Create(ctx context.Context, input CreateOperatorInput) (*OperatorDTO, error) {
	s.logger.Info("Creating new operator", zap.String("email", input.Email))

	// Check if email already exists
	exists, err := s.operators.ExistsByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Error("Failed to check email existence", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check email availability")
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_EXISTS", "Email already registered")
	}

	op, err := identity.NewOperator(input.Email, input.Password, input.DisplayName)
	if err != nil {
		return nil, err
	}

	if err := s.operators.Create(ctx, op); err != nil {
		s.logger.Error("Failed to create operator", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create operator")
	}

	s.logger.Info("Operator created",
		zap.String("operator_id", op.ID.String()),
		zap.String("email", op.Email))

	return toOperatorDTO(op), nil
}

// GetByID retrieves an operator by ID
func (s *OperatorService) GetByID(ctx context.Context, id uuid.UUID) (*OperatorDTO, error) {
	op, err := s.operators.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("OPERATOR_NOT_FOUND", "Operator not found")
		}
		s.logger.Error("Failed to find operator", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find operator")
	}

	return toOperatorDTO(op), nil
}

// List retrieves a paginated list of operators
func (s *OperatorService) List(ctx context.Context, filter shared.Filter) (*OperatorListResult, error) {
	ops, total, err := s.operators.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list operators", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list operators")
	}

	// Calculate total pages
	pageSize := filter.Limit()
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	dtos := make([]OperatorDTO, len(ops))
	for i, op := range ops {
		dtos[i] = *toOperatorDTO(op)
	}

	return &OperatorListResult{
		Operators:  dtos,
		Total:      total,
		Page:       filter.Page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Update updates an operator's information
func (s *OperatorService) Update(ctx context.Context, input UpdateOperatorInput) (*OperatorDTO, error) {
	op, err := s.operators.FindByID(ctx, input.ID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("OPERATOR_NOT_FOUND", "Operator not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find operator")
	}

	if input.DisplayName != nil {
		if len(*input.DisplayName) > 200 {
			return nil, shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
		}
		op.DisplayName = *input.DisplayName
		op.UpdatedAt = time.Now()
		op.IncrementVersion()
	}

	if err := s.operators.Update(ctx, op); err != nil {
		s.logger.Error("Failed to update operator", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update operator")
	}

	s.logger.Info("Operator updated", zap.String("operator_id", input.ID.String()))

	return toOperatorDTO(op), nil
}

// Delete deletes an operator
func (s *OperatorService) Delete(ctx context.Context, id uuid.UUID) error {
	op, err := s.operators.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("OPERATOR_NOT_FOUND", "Operator not found")
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find operator")
	}

	if err := s.operators.Delete(ctx, op.ID); err != nil {
		s.logger.Error("Failed to delete operator", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete operator")
	}

	s.logger.Info("Operator deleted", zap.String("operator_id", id.String()))

	return nil
}

// Activate re-enables a deactivated operator
func (s *OperatorService) Activate(ctx context.Context, id uuid.UUID) (*OperatorDTO, error) {
	op, err := s.operators.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("OPERATOR_NOT_FOUND", "Operator not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find operator")
	}

	op.Activate()

	if err := s.operators.Update(ctx, op); err != nil {
		s.logger.Error("Failed to activate operator", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to activate operator")
	}

	s.logger.Info("Operator activated", zap.String("operator_id", id.String()))

	return toOperatorDTO(op), nil
}

// Deactivate disables an operator's login
func (s *OperatorService) Deactivate(ctx context.Context, id uuid.UUID) (*OperatorDTO, error) {
	op, err := s.operators.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("OPERATOR_NOT_FOUND", "Operator not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find operator")
	}

	op.Deactivate()

	if err := s.operators.Update(ctx, op); err != nil {
		s.logger.Error("Failed to deactivate operator", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to deactivate operator")
	}

	s.logger.Info("Operator deactivated", zap.String("operator_id", id.String()))

	return toOperatorDTO(op), nil
}

// ResetPassword resets an operator's password (admin action, no old
// password check)
func (s *OperatorService) ResetPassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	op, err := s.operators.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("OPERATOR_NOT_FOUND", "Operator not found")
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find operator")
	}

	if err := op.SetPassword(newPassword); err != nil {
		return err
	}

	if err := s.operators.Update(ctx, op); err != nil {
		s.logger.Error("Failed to reset password", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to reset password")
	}

	s.logger.Info("Operator password reset", zap.String("operator_id", id.String()))

	return nil
}

// toOperatorDTO converts domain Operator to OperatorDTO
func toOperatorDTO(op *identity.Operator) *OperatorDTO {
	return &OperatorDTO{
		ID:          op.ID,
		Email:       op.Email,
		DisplayName: op.GetDisplayNameOrEmail(),
		Active:      op.Active,
		LastLoginAt: op.LastLoginAt,
		CreatedAt:   op.CreatedAt,
		UpdatedAt:   op.UpdatedAt,
	}
}
