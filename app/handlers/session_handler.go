// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/lazparking/subscription-onboarding/app/dto"
	businessflow "github.com/lazparking/subscription-onboarding/business_flow"
	"github.com/lazparking/subscription-onboarding/models"
	"github.com/lazparking/subscription-onboarding/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// SessionHandlerInterface defines the contract for onboarding session handlers
type SessionHandlerInterface interface {
	GetSession(c fiber.Ctx) error
	SetActiveAccount(c fiber.Ctx) error
	ResetSession(c fiber.Ctx) error

	AddAccount(c fiber.Ctx) error
	DeleteAccount(c fiber.Ctx) error
	UpdateAccount(c fiber.Ctx) error
	CopyBillingFromAccount(c fiber.Ctx) error

	AddPlan(c fiber.Ctx) error
	RemovePlan(c fiber.Ctx) error
	UpdatePlan(c fiber.Ctx) error

	AddMember(c fiber.Ctx) error
	RemoveMember(c fiber.Ctx) error
	MoveMember(c fiber.Ctx) error
	UpdateMember(c fiber.Ctx) error

	AddAccessCode(c fiber.Ctx) error
	UpdateAccessCode(c fiber.Ctx) error
	RemoveAccessCode(c fiber.Ctx) error

	AddAssignedUnit(c fiber.Ctx) error
	UpdateAssignedUnit(c fiber.Ctx) error
	RemoveAssignedUnit(c fiber.Ctx) error

	AddVehicle(c fiber.Ctx) error
	UpdateVehicle(c fiber.Ctx) error
	RemoveVehicle(c fiber.Ctx) error
}

// SessionHandler handles onboarding session HTTP requests
type SessionHandler struct {
	sessionFlow businessflow.SessionFlow
	validator   *validator.Validate
}

// NewSessionHandler creates a new onboarding session handler
func NewSessionHandler(sessionFlow businessflow.SessionFlow) *SessionHandler {
	return &SessionHandler{
		sessionFlow: sessionFlow,
		validator:   validator.New(),
	}
}

func (h *SessionHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *SessionHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *SessionHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	timeout := 30 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}

func (h *SessionHandler) bindAndValidate(c fiber.Ctx, req any) error {
	if err := c.Bind().JSON(req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}
	return nil
}

func (h *SessionHandler) activeIndex() int {
	return h.sessionFlow.Snapshot().ActiveAccountIndex
}

// GetSession returns the full editable session state
// @Summary Get session
// @Description Returns all accounts, the active selection, and the current validation error map
// @Tags Session
// @Produce json
// @Success 200 {object} dto.APIResponse{data=businessflow.SessionSnapshot} "Session state"
// @Router /api/v1/session [get]
func (h *SessionHandler) GetSession(c fiber.Ctx) error {
	return h.SuccessResponse(c, fiber.StatusOK, "Session retrieved", h.sessionFlow.Snapshot())
}

// SetActiveAccount changes which account subsequent edits target
// @Summary Set active account
// @Tags Session
// @Accept json
// @Produce json
// @Param request body dto.SetActiveAccountRequest true "Account index"
// @Success 200 {object} dto.APIResponse "Active account changed"
// @Failure 400 {object} dto.APIResponse "Index out of range"
// @Router /api/v1/session/active-account [put]
func (h *SessionHandler) SetActiveAccount(c fiber.Ctx) error {
	var req dto.SetActiveAccountRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.sessionFlow.SetActiveAccount(req.Index); err != nil {
		if businessflow.IsAccountIndexOutOfRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Account index out of range", "ACCOUNT_INDEX_OUT_OF_RANGE", nil)
		}
		log.Println("Set active account failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to set active account", "SET_ACTIVE_ACCOUNT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Active account changed", h.sessionFlow.Snapshot())
}

// ResetSession discards all session state and identifier reservations
// @Summary Reset session
// @Tags Session
// @Produce json
// @Success 200 {object} dto.APIResponse "Session reset"
// @Router /api/v1/session/reset [post]
func (h *SessionHandler) ResetSession(c fiber.Ctx) error {
	if err := h.sessionFlow.ResetAll(h.createRequestContext(c, "/api/v1/session/reset")); err != nil {
		log.Println("Session reset failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reset session", "RESET_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Session reset", h.sessionFlow.Snapshot())
}

// AddAccount appends a new account with the next sequential ID
// @Summary Add account
// @Tags Accounts
// @Produce json
// @Success 201 {object} dto.APIResponse{data=models.Account} "Account created"
// @Router /api/v1/session/accounts [post]
func (h *SessionHandler) AddAccount(c fiber.Ctx) error {
	account, err := h.sessionFlow.AddAccount(h.createRequestContext(c, "/api/v1/session/accounts"))
	if err != nil {
		log.Println("Add account failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add account", "ADD_ACCOUNT_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Account added", account)
}

// DeleteAccount removes one account and renumbers the rest
// @Summary Delete account
// @Tags Accounts
// @Produce json
// @Param idx path int true "Account index"
// @Success 200 {object} dto.APIResponse "Account deleted"
// @Failure 400 {object} dto.APIResponse "Last account or index out of range"
// @Router /api/v1/session/accounts/{idx} [delete]
func (h *SessionHandler) DeleteAccount(c fiber.Ctx) error {
	idx, err := strconv.Atoi(c.Params("idx"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid account index", "INVALID_REQUEST", nil)
	}

	if err := h.sessionFlow.DeleteAccount(h.createRequestContext(c, "/api/v1/session/accounts"), idx); err != nil {
		if businessflow.IsLastAccount(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Cannot delete the last account", "LAST_ACCOUNT", nil)
		}
		if businessflow.IsAccountIndexOutOfRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Account index out of range", "ACCOUNT_INDEX_OUT_OF_RANGE", nil)
		}
		log.Println("Delete account failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete account", "DELETE_ACCOUNT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Account deleted", h.sessionFlow.Snapshot())
}

// UpdateAccount applies a partial edit to one account
// @Summary Update account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body dto.UpdateAccountRequest true "Account edit"
// @Success 200 {object} dto.APIResponse "Account updated"
// @Router /api/v1/session/accounts [put]
func (h *SessionHandler) UpdateAccount(c fiber.Ctx) error {
	var req dto.UpdateAccountRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.sessionFlow.UpdateAccount(req.Index, &req.Patch); err != nil {
		if businessflow.IsAccountIndexOutOfRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Account index out of range", "ACCOUNT_INDEX_OUT_OF_RANGE", nil)
		}
		log.Println("Update account failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update account", "UPDATE_ACCOUNT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Account updated", h.sessionFlow.Snapshot())
}

// CopyBillingFromAccount copies the holder contact block into the billing block
// @Summary Copy billing from holder
// @Tags Accounts
// @Produce json
// @Param idx path int true "Account index"
// @Success 200 {object} dto.APIResponse "Billing copied"
// @Router /api/v1/session/accounts/{idx}/copy-billing [post]
func (h *SessionHandler) CopyBillingFromAccount(c fiber.Ctx) error {
	idx, err := strconv.Atoi(c.Params("idx"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid account index", "INVALID_REQUEST", nil)
	}

	if err := h.sessionFlow.CopyBillingFromAccount(idx); err != nil {
		if businessflow.IsAccountIndexOutOfRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Account index out of range", "ACCOUNT_INDEX_OUT_OF_RANGE", nil)
		}
		log.Println("Copy billing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to copy billing fields", "COPY_BILLING_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Billing fields copied", h.sessionFlow.Snapshot())
}

// AddPlan appends a new subscription plan to the active account
// @Summary Add subscription plan
// @Tags Plans
// @Produce json
// @Success 201 {object} dto.APIResponse{data=models.SubscriptionPlan} "Plan created"
// @Router /api/v1/session/plans [post]
func (h *SessionHandler) AddPlan(c fiber.Ctx) error {
	plan, err := h.sessionFlow.AddPlan(h.createRequestContext(c, "/api/v1/session/plans"), h.activeIndex())
	if err != nil {
		log.Println("Add plan failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add subscription plan", "ADD_PLAN_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Subscription plan added", plan)
}

// RemovePlan deletes one plan of the active account and renumbers the rest
// @Summary Remove subscription plan
// @Tags Plans
// @Produce json
// @Param id path int true "Subscription ID"
// @Success 200 {object} dto.APIResponse "Plan removed"
// @Failure 400 {object} dto.APIResponse "Last plan"
// @Failure 404 {object} dto.APIResponse "Plan not found"
// @Router /api/v1/session/plans/{id} [delete]
func (h *SessionHandler) RemovePlan(c fiber.Ctx) error {
	planID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid subscription ID", "INVALID_REQUEST", nil)
	}

	if err := h.sessionFlow.RemovePlan(h.createRequestContext(c, "/api/v1/session/plans"), h.activeIndex(), planID); err != nil {
		if businessflow.IsLastPlan(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Cannot remove the last subscription plan", "LAST_PLAN", nil)
		}
		if businessflow.IsPlanNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Subscription plan not found", "PLAN_NOT_FOUND", nil)
		}
		log.Println("Remove plan failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove subscription plan", "REMOVE_PLAN_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Subscription plan removed", h.sessionFlow.Snapshot())
}

// UpdatePlan applies a partial edit to one plan of the active account
// @Summary Update subscription plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param request body dto.UpdatePlanRequest true "Plan edit"
// @Success 200 {object} dto.APIResponse "Plan updated"
// @Router /api/v1/session/plans [put]
func (h *SessionHandler) UpdatePlan(c fiber.Ctx) error {
	var req dto.UpdatePlanRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.sessionFlow.UpdatePlan(h.activeIndex(), req.SubscriptionID, &req.Patch); err != nil {
		if businessflow.IsPlanNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Subscription plan not found", "PLAN_NOT_FOUND", nil)
		}
		log.Println("Update plan failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update subscription plan", "UPDATE_PLAN_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Subscription plan updated", h.sessionFlow.Snapshot())
}

// AddMember appends a new member to the first plan of the active account
// @Summary Add member
// @Tags Members
// @Produce json
// @Success 201 {object} dto.APIResponse{data=models.Member} "Member created"
// @Router /api/v1/session/members [post]
func (h *SessionHandler) AddMember(c fiber.Ctx) error {
	member, err := h.sessionFlow.AddMember(h.activeIndex())
	if err != nil {
		log.Println("Add member failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add member", "ADD_MEMBER_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Member added", member)
}

// RemoveMember deletes one member from whichever plan of the active account holds it
// @Summary Remove member
// @Tags Members
// @Produce json
// @Param id path int true "Subscription member ID"
// @Success 200 {object} dto.APIResponse "Member removed"
// @Failure 404 {object} dto.APIResponse "Member not found"
// @Router /api/v1/session/members/{id} [delete]
func (h *SessionHandler) RemoveMember(c fiber.Ctx) error {
	memberID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid member ID", "INVALID_REQUEST", nil)
	}

	if err := h.sessionFlow.RemoveMember(h.activeIndex(), memberID); err != nil {
		if businessflow.IsMemberNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Member not found", "MEMBER_NOT_FOUND", nil)
		}
		log.Println("Remove member failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove member", "REMOVE_MEMBER_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Member removed", h.sessionFlow.Snapshot())
}

// MoveMember moves a member between two plans of the active account
// @Summary Move member
// @Tags Members
// @Accept json
// @Produce json
// @Param request body dto.MoveMemberRequest true "Member move"
// @Success 200 {object} dto.APIResponse{data=dto.MoveMemberResponse} "Member moved"
// @Failure 404 {object} dto.APIResponse "Plan or member not found"
// @Router /api/v1/session/members/move [post]
func (h *SessionHandler) MoveMember(c fiber.Ctx) error {
	var req dto.MoveMemberRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	warning, err := h.sessionFlow.MoveMember(h.activeIndex(), req.SubscriptionMemberID, req.FromSubscriptionID, req.ToSubscriptionID)
	if err != nil {
		if businessflow.IsPlanNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Subscription plan not found", "PLAN_NOT_FOUND", nil)
		}
		if businessflow.IsMemberNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Member not found", "MEMBER_NOT_FOUND", nil)
		}
		log.Println("Move member failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to move member", "MOVE_MEMBER_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Member moved", dto.MoveMemberResponse{Warning: warning})
}

// UpdateMember applies a partial edit to one member
// @Summary Update member
// @Tags Members
// @Accept json
// @Produce json
// @Param request body dto.UpdateMemberRequest true "Member edit"
// @Success 200 {object} dto.APIResponse "Member updated"
// @Router /api/v1/session/members [put]
func (h *SessionHandler) UpdateMember(c fiber.Ctx) error {
	var req dto.UpdateMemberRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.sessionFlow.UpdateMember(h.activeIndex(), req.SubscriptionID, req.SubscriptionMemberID, &req.Patch); err != nil {
		if businessflow.IsPlanNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Subscription plan not found", "PLAN_NOT_FOUND", nil)
		}
		if businessflow.IsMemberNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Member not found", "MEMBER_NOT_FOUND", nil)
		}
		log.Println("Update member failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update member", "UPDATE_MEMBER_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Member updated", h.sessionFlow.Snapshot())
}

// AddAccessCode attaches an access code to a member of the active account
// @Summary Add access code
// @Tags Items
// @Accept json
// @Produce json
// @Param request body dto.AddAccessCodeRequest true "Access code"
// @Success 201 {object} dto.APIResponse{data=models.AccessCode} "Access code added"
// @Failure 409 {object} dto.APIResponse "Limit reached"
// @Router /api/v1/session/access-codes [post]
func (h *SessionHandler) AddAccessCode(c fiber.Ctx) error {
	var req dto.AddAccessCodeRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	code, err := h.sessionFlow.AddAccessCode(h.activeIndex(), req.SubscriptionID, req.SubscriptionMemberID, req.Code, req.Type)
	if err != nil {
		return h.itemErrorResponse(c, err, "access code")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Access code added", code)
}

// UpdateAccessCode edits one field of an existing access code
// @Summary Update access code
// @Tags Items
// @Accept json
// @Produce json
// @Param request body dto.UpdateAccessCodeRequest true "Access code edit"
// @Success 200 {object} dto.APIResponse "Access code updated"
// @Router /api/v1/session/access-codes [put]
func (h *SessionHandler) UpdateAccessCode(c fiber.Ctx) error {
	var req dto.UpdateAccessCodeRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.sessionFlow.UpdateAccessCode(h.activeIndex(), req.SubscriptionID, req.SubscriptionMemberID, req.ItemID, models.AccessCodeField(req.Field), req.Value)
	if err != nil {
		return h.itemErrorResponse(c, err, "access code")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Access code updated", h.sessionFlow.Snapshot())
}

// RemoveAccessCode removes an access code from any member of the active account
// @Summary Remove access code
// @Tags Items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} dto.APIResponse "Access code removed"
// @Router /api/v1/session/access-codes/{id} [delete]
func (h *SessionHandler) RemoveAccessCode(c fiber.Ctx) error {
	if err := h.sessionFlow.RemoveAccessCode(c.Params("id")); err != nil {
		log.Println("Remove access code failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove access code", "REMOVE_ITEM_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Access code removed", h.sessionFlow.Snapshot())
}

// AddAssignedUnit attaches an assigned unit to a member of the active account
// @Summary Add assigned unit
// @Tags Items
// @Accept json
// @Produce json
// @Param request body dto.AddAssignedUnitRequest true "Assigned unit"
// @Success 201 {object} dto.APIResponse{data=models.AssignedUnit} "Assigned unit added"
// @Failure 409 {object} dto.APIResponse "Limit reached"
// @Router /api/v1/session/assigned-units [post]
func (h *SessionHandler) AddAssignedUnit(c fiber.Ctx) error {
	var req dto.AddAssignedUnitRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	unit, err := h.sessionFlow.AddAssignedUnit(h.activeIndex(), req.SubscriptionID, req.SubscriptionMemberID, req.Unit)
	if err != nil {
		return h.itemErrorResponse(c, err, "assigned unit")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Assigned unit added", unit)
}

// UpdateAssignedUnit edits one field of an existing assigned unit
// @Summary Update assigned unit
// @Tags Items
// @Accept json
// @Produce json
// @Param request body dto.UpdateAssignedUnitRequest true "Assigned unit edit"
// @Success 200 {object} dto.APIResponse "Assigned unit updated"
// @Router /api/v1/session/assigned-units [put]
func (h *SessionHandler) UpdateAssignedUnit(c fiber.Ctx) error {
	var req dto.UpdateAssignedUnitRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.sessionFlow.UpdateAssignedUnit(h.activeIndex(), req.SubscriptionID, req.SubscriptionMemberID, req.ItemID, models.AssignedUnitField(req.Field), req.Value)
	if err != nil {
		return h.itemErrorResponse(c, err, "assigned unit")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Assigned unit updated", h.sessionFlow.Snapshot())
}

// RemoveAssignedUnit removes an assigned unit from any member of the active account
// @Summary Remove assigned unit
// @Tags Items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} dto.APIResponse "Assigned unit removed"
// @Router /api/v1/session/assigned-units/{id} [delete]
func (h *SessionHandler) RemoveAssignedUnit(c fiber.Ctx) error {
	if err := h.sessionFlow.RemoveAssignedUnit(c.Params("id")); err != nil {
		log.Println("Remove assigned unit failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove assigned unit", "REMOVE_ITEM_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Assigned unit removed", h.sessionFlow.Snapshot())
}

// AddVehicle attaches a vehicle to a member of the active account
// @Summary Add vehicle
// @Tags Items
// @Accept json
// @Produce json
// @Param request body dto.AddVehicleRequest true "Vehicle"
// @Success 201 {object} dto.APIResponse{data=models.Vehicle} "Vehicle added"
// @Failure 409 {object} dto.APIResponse "Limit reached"
// @Router /api/v1/session/vehicles [post]
func (h *SessionHandler) AddVehicle(c fiber.Ctx) error {
	var req dto.AddVehicleRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	vehicle, err := h.sessionFlow.AddVehicle(h.activeIndex(), req.SubscriptionID, req.SubscriptionMemberID, &req.Vehicle)
	if err != nil {
		return h.itemErrorResponse(c, err, "vehicle")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Vehicle added", vehicle)
}

// UpdateVehicle edits one field of an existing vehicle
// @Summary Update vehicle
// @Tags Items
// @Accept json
// @Produce json
// @Param request body dto.UpdateVehicleRequest true "Vehicle edit"
// @Success 200 {object} dto.APIResponse "Vehicle updated"
// @Router /api/v1/session/vehicles [put]
func (h *SessionHandler) UpdateVehicle(c fiber.Ctx) error {
	var req dto.UpdateVehicleRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.sessionFlow.UpdateVehicle(h.activeIndex(), req.SubscriptionID, req.SubscriptionMemberID, req.ItemID, models.VehicleField(req.Field), req.Value)
	if err != nil {
		return h.itemErrorResponse(c, err, "vehicle")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Vehicle updated", h.sessionFlow.Snapshot())
}

// RemoveVehicle removes a vehicle from any member of the active account
// @Summary Remove vehicle
// @Tags Items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} dto.APIResponse "Vehicle removed"
// @Router /api/v1/session/vehicles/{id} [delete]
func (h *SessionHandler) RemoveVehicle(c fiber.Ctx) error {
	if err := h.sessionFlow.RemoveVehicle(c.Params("id")); err != nil {
		log.Println("Remove vehicle failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove vehicle", "REMOVE_ITEM_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Vehicle removed", h.sessionFlow.Snapshot())
}

func (h *SessionHandler) itemErrorResponse(c fiber.Ctx, err error, itemName string) error {
	if businessflow.IsPlanNotFound(err) {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Subscription plan not found", "PLAN_NOT_FOUND", nil)
	}
	if businessflow.IsMemberNotFound(err) {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Member not found", "MEMBER_NOT_FOUND", nil)
	}
	if businessflow.IsCollectionLimitReached(err) {
		return h.ErrorResponse(c, fiber.StatusConflict, "Maximum number of "+itemName+"s reached", "ITEM_LIMIT_REACHED", nil)
	}
	log.Println("Item operation failed", err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to modify "+itemName, "ITEM_OPERATION_FAILED", nil)
}
