package http

import (
	"errors"
	"net/http"

	"vendor-onboarding-service/internal/domain/vendor"
	"vendor-onboarding-service/internal/usecase/onboarding"

	"github.com/labstack/echo/v4"
)

type VendorHandler struct{ uc *onboarding.Usecase }

func NewVendorHandler(uc *onboarding.Usecase) *VendorHandler { return &VendorHandler{uc: uc} }

type submitVendorReq struct {
	Email                      string `json:"email"                         validate:"required,email"`
	RequesterEmail             string `json:"requester_email"               validate:"required,email"`
	BusinessName               string `json:"business_name"                 validate:"required,max=255"`
	PrimaryTradingBusinessUnit string `json:"primary_trading_business_unit" validate:"required,bunit,max=128"`
	TaxID                      string `json:"tax_id"                        validate:"omitempty,max=64"`
	ContactPhone               string `json:"contact_phone"                 validate:"omitempty,max=32"`
	PostalAddress              string `json:"postal_address"                validate:"omitempty,max=500"`
	BankAccountName            string `json:"bank_account_name"             validate:"omitempty,max=255"`
	BankAccountNumber          string `json:"bank_account_number"           validate:"omitempty,max=64"`
}

type approveReq struct {
	ActorEmail string `json:"actor_email" validate:"required,email"`
}

type declineReq struct {
	ActorEmail string `json:"actor_email" validate:"required,email"`
	// Decline must explain itself; the comment lands on the record.
	Comment string `json:"comment" validate:"required,comment"`
}

type resubmitReq struct {
	ActorEmail string `json:"actor_email" validate:"required,email"`
}

func (h *VendorHandler) SubmitVendor(c echo.Context) error {
	var req submitVendorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Submit(c.Request().Context(), onboarding.SubmitInput{
		Email:                      req.Email,
		RequesterEmail:             req.RequesterEmail,
		BusinessName:               req.BusinessName,
		PrimaryTradingBusinessUnit: req.PrimaryTradingBusinessUnit,
		TaxID:                      req.TaxID,
		ContactPhone:               req.ContactPhone,
		PostalAddress:              req.PostalAddress,
		BankAccountName:            req.BankAccountName,
		BankAccountNumber:          req.BankAccountNumber,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *VendorHandler) GetVendor(c echo.Context) error {
	email := c.Param("email")
	if email == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing email path param"})
	}
	dto, err := h.uc.Get(c.Request().Context(), email)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *VendorHandler) ListVendors(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing status query param"})
	}
	dtos, err := h.uc.ListByStatus(c.Request().Context(), status)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

func (h *VendorHandler) ApproveVendor(c echo.Context) error {
	email := c.Param("email")
	if email == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing email path param"})
	}
	var req approveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Approve(c.Request().Context(), onboarding.ActionInput{
		Email: email,
		Actor: req.ActorEmail,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *VendorHandler) DeclineVendor(c echo.Context) error {
	email := c.Param("email")
	if email == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing email path param"})
	}
	var req declineReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Decline(c.Request().Context(), onboarding.ActionInput{
		Email:   email,
		Actor:   req.ActorEmail,
		Comment: req.Comment,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *VendorHandler) ResubmitVendor(c echo.Context) error {
	email := c.Param("email")
	if email == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing email path param"})
	}
	var req resubmitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Resubmit(c.Request().Context(), onboarding.ActionInput{
		Email: email,
		Actor: req.ActorEmail,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// writeDomainError maps domain errors to HTTP codes. Every rejection
// carries a specific, actionable reason.
func writeDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, vendor.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "vendor record not found"})
	case errors.Is(err, vendor.ErrAlreadyExists):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "a vendor record already exists for this email"})
	case errors.Is(err, vendor.ErrUnauthorizedActor):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "actor is not the expected approver or requester for this record"})
	case errors.Is(err, vendor.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "action is not valid for the record's current status"})
	case errors.Is(err, vendor.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "record was modified concurrently; re-read and retry"})
	case errors.Is(err, vendor.ErrNoApproverChain):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "no approver chain is configured for the business unit"})
	case errors.Is(err, vendor.ErrInvalidStatus):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "status value outside the workflow status set"})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
