package identity

import (
	"github.com/merchdash/backend/internal/domain/shared"
)

// Aggregate type constant for Operator
const AggregateTypeOperator = "Operator"

// Operator domain event types
const (
	EventTypeOperatorCreated         = "OperatorCreated"
	EventTypeOperatorPasswordChanged = "OperatorPasswordChanged"
	EventTypeOperatorDeactivated     = "OperatorDeactivated"
)

// OperatorCreatedEvent is published when an operator is created
type OperatorCreatedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewOperatorCreatedEvent creates a new OperatorCreatedEvent
func NewOperatorCreatedEvent(op *Operator) *OperatorCreatedEvent {
	return &OperatorCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOperatorCreated, AggregateTypeOperator, op.ID.String(), ""),
		Email:           op.Email,
	}
}

// OperatorPasswordChangedEvent is published when an operator's password changes
type OperatorPasswordChangedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewOperatorPasswordChangedEvent creates a new OperatorPasswordChangedEvent
func NewOperatorPasswordChangedEvent(op *Operator) *OperatorPasswordChangedEvent {
	return &OperatorPasswordChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOperatorPasswordChanged, AggregateTypeOperator, op.ID.String(), ""),
		Email:           op.Email,
	}
}

// OperatorDeactivatedEvent is published when an operator is deactivated
type OperatorDeactivatedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewOperatorDeactivatedEvent creates a new OperatorDeactivatedEvent
func NewOperatorDeactivatedEvent(op *Operator) *OperatorDeactivatedEvent {
	return &OperatorDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOperatorDeactivated, AggregateTypeOperator, op.ID.String(), ""),
		Email:           op.Email,
	}
}
