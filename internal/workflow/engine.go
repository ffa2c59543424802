package workflow

import (
	"fmt"
	"strings"
	"time"

	"vendor-onboarding-service/internal/domain/directory"
	"vendor-onboarding-service/internal/domain/vendor"
)

type ActionType string

const (
	ActionSubmit   ActionType = "submit"
	ActionApprove  ActionType = "approve"
	ActionDecline  ActionType = "decline"
	ActionResubmit ActionType = "resubmit"
)

// Action is one inbound request against a record, with the approver
// chain already resolved by the caller. The engine itself never talks
// to the directory or the store.
type Action struct {
	Type    ActionType
	Actor   string
	Comment string
	Chain   []directory.Approver
}

// Engine computes workflow transitions. It is a pure decision function
// over (record, action): no I/O, no internal state beyond the clock,
// safe for concurrent use.
type Engine struct {
	now func() time.Time
}

func NewEngine() *Engine { return &Engine{now: time.Now} }

// NewEngineWithClock injects a clock; tests use it to pin timestamps.
func NewEngineWithClock(now func() time.Time) *Engine { return &Engine{now: now} }

// Decide maps (record, action) to the exact field payload the store
// must write, or an error with the record untouched. For submit the
// record must be nil; every other action requires an existing record.
func (e *Engine) Decide(rec *vendor.VendorOnboardingRecord, in Action) (*vendor.WorkflowFields, error) {
	switch in.Type {
	case ActionSubmit:
		if rec != nil {
			return nil, vendor.ErrAlreadyExists
		}
		return e.enterApproval(time.Time{}, in.Chain, TransitionFor(ActionSubmit))

	case ActionResubmit:
		if rec == nil {
			return nil, vendor.ErrNotFound
		}
		if !rec.StatusCode.Valid() {
			return nil, fmt.Errorf("%w: %q", vendor.ErrInvalidStatus, rec.StatusCode)
		}
		if rec.StatusCode != vendor.StatusRequesterReview {
			return nil, fmt.Errorf("%w: resubmit from %q", vendor.ErrInvalidTransition, rec.StatusCode)
		}
		if !sameIdentity(in.Actor, rec.RequesterEmail) {
			return nil, vendor.ErrUnauthorizedActor
		}
		// Chain restarts at tier one; a declined comment does not survive.
		return e.enterApproval(rec.StatusUpdateTime, in.Chain, TransitionFor(ActionResubmit))

	case ActionApprove, ActionDecline:
		if rec == nil {
			return nil, vendor.ErrNotFound
		}
		if !rec.StatusCode.Valid() {
			return nil, fmt.Errorf("%w: %q", vendor.ErrInvalidStatus, rec.StatusCode)
		}
		if rec.StatusCode != vendor.StatusProcurementApproval {
			return nil, fmt.Errorf("%w: %s from %q", vendor.ErrInvalidTransition, in.Type, rec.StatusCode)
		}
		if rec.CurrentApprover == "" || !sameIdentity(in.Actor, rec.CurrentApprover) {
			return nil, vendor.ErrUnauthorizedActor
		}
		if in.Type == ActionDecline {
			return e.decline(rec, in), nil
		}
		return e.approve(rec, in), nil
	}
	return nil, fmt.Errorf("%w: unknown action %q", vendor.ErrInvalidTransition, in.Type)
}

// enterApproval starts (or restarts) the chain at tier one.
func (e *Engine) enterApproval(prev time.Time, chain []directory.Approver, reason vendor.Transition) (*vendor.WorkflowFields, error) {
	if len(chain) == 0 {
		return nil, vendor.ErrNoApproverChain
	}
	f := &vendor.WorkflowFields{
		StatusCode:          vendor.StatusProcurementApproval,
		CurrentApprover:     chain[0].Email,
		CurrentApproverName: chain[0].DisplayName,
		VendorSetupStatus:   vendor.SetupPending,
		LastTransition:      reason,
		StatusUpdateTime:    e.stamp(prev),
	}
	if len(chain) > 1 {
		f.NextApprover = chain[1].Email
		f.NextApproverName = chain[1].DisplayName
	}
	return f, nil
}

func (e *Engine) approve(rec *vendor.VendorOnboardingRecord, in Action) *vendor.WorkflowFields {
	if rec.NextApprover == "" {
		// Final tier: the vendor goes active, no approver may dangle.
		return &vendor.WorkflowFields{
			StatusCode:        vendor.StatusCreationApproved,
			VendorSetupStatus: vendor.SetupActive,
			ApprovalComment:   rec.ApprovalComment,
			LastTransition:    TransitionFor(ActionApprove),
			StatusUpdateTime:  e.stamp(rec.StatusUpdateTime),
		}
	}
	f := &vendor.WorkflowFields{
		StatusCode:          vendor.StatusProcurementApproval,
		CurrentApprover:     rec.NextApprover,
		CurrentApproverName: rec.NextApproverName,
		VendorSetupStatus:   vendor.SetupPending,
		ApprovalComment:     rec.ApprovalComment,
		LastTransition:      vendor.TransitionAdvanced,
		StatusUpdateTime:    e.stamp(rec.StatusUpdateTime),
	}
	// The promoted approver's successor comes from the freshly resolved
	// chain. If the chain changed underneath and no longer lists the
	// promoted approver, the promoted tier is treated as terminal.
	if succ, ok := successorOf(in.Chain, rec.NextApprover); ok {
		f.NextApprover = succ.Email
		f.NextApproverName = succ.DisplayName
	}
	return f
}

func (e *Engine) decline(rec *vendor.VendorOnboardingRecord, in Action) *vendor.WorkflowFields {
	return &vendor.WorkflowFields{
		StatusCode:        vendor.StatusRequesterReview,
		ApprovalComment:   in.Comment,
		VendorSetupStatus: vendor.SetupPending,
		LastTransition:    TransitionFor(ActionDecline),
		StatusUpdateTime:  e.stamp(rec.StatusUpdateTime),
	}
}

// stamp returns the transition time: wall clock, but always strictly
// after the previous transition so "latest" is never ambiguous. Stamps
// are minted at microsecond granularity, matching the datetime(6)
// storage column; sub-microsecond remainders would let two stored
// stamps collide after truncation.
func (e *Engine) stamp(prev time.Time) time.Time {
	now := e.now().UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

func successorOf(chain []directory.Approver, email string) (directory.Approver, bool) {
	for i := range chain {
		if sameIdentity(chain[i].Email, email) && i+1 < len(chain) {
			return chain[i+1], true
		}
	}
	return directory.Approver{}, false
}

// Email identities compare case-insensitively.
func sameIdentity(a, b string) bool {
	return a != "" && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// TransitionFor tags the reason a successful action records.
func TransitionFor(t ActionType) vendor.Transition {
	switch t {
	case ActionSubmit:
		return vendor.TransitionSubmitted
	case ActionApprove:
		return vendor.TransitionApproved
	case ActionDecline:
		return vendor.TransitionDeclined
	case ActionResubmit:
		return vendor.TransitionResubmitted
	}
	return ""
}
