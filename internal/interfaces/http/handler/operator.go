package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/application/identity"
	"github.com/merchdash/backend/internal/domain/shared"
	"github.com/merchdash/backend/internal/interfaces/http/dto"
)

// CreateOperatorRequest represents the request body for creating an operator
type CreateOperatorRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	DisplayName string `json:"display_name" binding:"omitempty,max=200"`
}

// UpdateOperatorRequest represents the request body for updating an operator
type UpdateOperatorRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=200"`
}

// ResetOperatorPasswordRequest represents the request body for an admin password reset
type ResetOperatorPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// OperatorHandler handles operator management HTTP requests
type OperatorHandler struct {
	BaseHandler
	operatorService *identity.OperatorService
}

// NewOperatorHandler creates a new operator handler
func NewOperatorHandler(operatorService *identity.OperatorService) *OperatorHandler {
	return &OperatorHandler{
		operatorService: operatorService,
	}
}

// Create godoc
// @ID           createOperator
// @Summary      Create a new operator
// @Description  Register a new dashboard operator account
// @Tags         operators
// @Accept       json
// @Produce      json
// @Param        request body CreateOperatorRequest true "Operator creation request"
// @Success      201 {object} APIResponse[identity.OperatorDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /operators [post]
func (h *OperatorHandler) Create(c *gin.Context) {
	var req CreateOperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.operatorService.Create(c.Request.Context(), identity.CreateOperatorInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @ID           getOperatorById
// @Summary      Get an operator by ID
// @Tags         operators
// @Produce      json
// @Param        id path string true "Operator ID" format(uuid)
// @Success      200 {object} APIResponse[identity.OperatorDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /operators/{id} [get]
func (h *OperatorHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid operator ID")
		return
	}

	result, err := h.operatorService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @ID           listOperators
// @Summary      List operators
// @Description  Get a paginated list of operator accounts
// @Tags         operators
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort by field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Search keyword"
// @Success      200 {object} APIResponse[identity.OperatorListResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /operators [get]
func (h *OperatorHandler) List(c *gin.Context) {
	var query dto.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	filter := shared.Filter{
		Page:     query.Page,
		PageSize: query.PageSize,
		OrderBy:  query.OrderBy,
		OrderDir: query.OrderDir,
		Search:   query.Search,
	}

	result, err := h.operatorService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Update godoc
// @ID           updateOperator
// @Summary      Update an operator
// @Tags         operators
// @Accept       json
// @Produce      json
// @Param        id path string true "Operator ID" format(uuid)
// @Param        request body UpdateOperatorRequest true "Operator update request"
// @Success      200 {object} APIResponse[identity.OperatorDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /operators/{id} [put]
func (h *OperatorHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid operator ID")
		return
	}

	var req UpdateOperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.operatorService.Update(c.Request.Context(), identity.UpdateOperatorInput{
		ID:          id,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete godoc
// @ID           deleteOperator
// @Summary      Delete an operator
// @Tags         operators
// @Produce      json
// @Param        id path string true "Operator ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /operators/{id} [delete]
func (h *OperatorHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid operator ID")
		return
	}

	if err := h.operatorService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Activate godoc
// @ID           activateOperator
// @Summary      Activate an operator account
// @Tags         operators
// @Produce      json
// @Param        id path string true "Operator ID" format(uuid)
// @Success      200 {object} APIResponse[identity.OperatorDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /operators/{id}/activate [post]
func (h *OperatorHandler) Activate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid operator ID")
		return
	}

	result, err := h.operatorService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Deactivate godoc
// @ID           deactivateOperator
// @Summary      Deactivate an operator account
// @Tags         operators
// @Produce      json
// @Param        id path string true "Operator ID" format(uuid)
// @Success      200 {object} APIResponse[identity.OperatorDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /operators/{id}/deactivate [post]
func (h *OperatorHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid operator ID")
		return
	}

	result, err := h.operatorService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ResetPassword godoc
// @ID           resetOperatorPassword
// @Summary      Reset an operator's password
// @Description  Set a new password without knowing the old one (admin action)
// @Tags         operators
// @Accept       json
// @Produce      json
// @Param        id path string true "Operator ID" format(uuid)
// @Param        request body ResetOperatorPasswordRequest true "New password"
// @Success      200 {object} SuccessResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /operators/{id}/reset-password [post]
func (h *OperatorHandler) ResetPassword(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid operator ID")
		return
	}

	var req ResetOperatorPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.operatorService.ResetPassword(c.Request.Context(), id, req.NewPassword); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Password reset successfully"})
}
