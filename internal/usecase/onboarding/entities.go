package onboarding

import (
	"time"

	"vendor-onboarding-service/internal/domain/vendor"
)

type SubmitInput struct {
	Email                      string
	RequesterEmail             string
	BusinessName               string
	PrimaryTradingBusinessUnit string
	TaxID                      string
	ContactPhone               string
	PostalAddress              string
	BankAccountName            string
	BankAccountNumber          string
}

// ActionInput carries an approve/decline/resubmit request. Comment is
// only meaningful on decline.
type ActionInput struct {
	Email   string
	Actor   string
	Comment string
}

type RecordDTO struct {
	RecordID                   string    `json:"record_id"`
	Email                      string    `json:"email"`
	RequesterEmail             string    `json:"requester_email"`
	BusinessName               string    `json:"business_name"`
	PrimaryTradingBusinessUnit string    `json:"primary_trading_business_unit"`
	StatusCode                 string    `json:"status_code"`
	CurrentApprover            string    `json:"current_approver"`
	CurrentApproverName        string    `json:"current_approver_name"`
	NextApprover               string    `json:"next_approver"`
	NextApproverName           string    `json:"next_approver_name"`
	ApprovalComment            string    `json:"approval_comment"`
	VendorSetupStatus          string    `json:"vendor_setup_status"`
	LastTransition             string    `json:"last_transition"`
	StatusUpdateTime           time.Time `json:"status_update_time"`
	CreatedAt                  time.Time `json:"created_at"`
}

func toDTO(r *vendor.VendorOnboardingRecord) *RecordDTO {
	return &RecordDTO{
		RecordID:                   r.RecordID,
		Email:                      r.Email,
		RequesterEmail:             r.RequesterEmail,
		BusinessName:               r.BusinessName,
		PrimaryTradingBusinessUnit: r.PrimaryTradingBusinessUnit,
		StatusCode:                 string(r.StatusCode),
		CurrentApprover:            r.CurrentApprover,
		CurrentApproverName:        r.CurrentApproverName,
		NextApprover:               r.NextApprover,
		NextApproverName:           r.NextApproverName,
		ApprovalComment:            r.ApprovalComment,
		VendorSetupStatus:          string(r.VendorSetupStatus),
		LastTransition:             string(r.LastTransition),
		StatusUpdateTime:           r.StatusUpdateTime,
		CreatedAt:                  r.CreatedAt,
	}
}
