package workflow

import (
	"errors"
	"testing"
	"time"

	"vendor-onboarding-service/internal/domain/directory"
	"vendor-onboarding-service/internal/domain/vendor"
)

var foodServicesChain = []directory.Approver{
	{Email: "manager@x", DisplayName: "Unit Manager"},
	{Email: "cfo@x", DisplayName: "Chief Financial Officer"},
}

func fixedEngine(at time.Time) *Engine {
	return NewEngineWithClock(func() time.Time { return at })
}

func pendingRecord(mutate func(*vendor.VendorOnboardingRecord)) *vendor.VendorOnboardingRecord {
	r := &vendor.VendorOnboardingRecord{
		Email:                      "supplier@acme.test",
		RequesterEmail:             "requester@x",
		PrimaryTradingBusinessUnit: "Food Services",
		StatusCode:                 vendor.StatusProcurementApproval,
		CurrentApprover:            "manager@x",
		CurrentApproverName:        "Unit Manager",
		NextApprover:               "cfo@x",
		NextApproverName:           "Chief Financial Officer",
		VendorSetupStatus:          vendor.SetupPending,
		StatusUpdateTime:           time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	if mutate != nil {
		mutate(r)
	}
	return r
}

func TestDecide_Transitions(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		rec     *vendor.VendorOnboardingRecord
		in      Action
		wantErr error
		check   func(t *testing.T, f *vendor.WorkflowFields)
	}{
		{
			name: "submit assigns first tier and queues second",
			rec:  nil,
			in:   Action{Type: ActionSubmit, Actor: "requester@x", Chain: foodServicesChain},
			check: func(t *testing.T, f *vendor.WorkflowFields) {
				if f.StatusCode != vendor.StatusProcurementApproval {
					t.Fatalf("status = %q", f.StatusCode)
				}
				if f.CurrentApprover != "manager@x" || f.NextApprover != "cfo@x" {
					t.Fatalf("approvers = %q / %q", f.CurrentApprover, f.NextApprover)
				}
				if f.VendorSetupStatus != vendor.SetupPending || f.LastTransition != vendor.TransitionSubmitted {
					t.Fatalf("setup=%q transition=%q", f.VendorSetupStatus, f.LastTransition)
				}
			},
		},
		{
			name: "submit with single-tier chain leaves next approver empty",
			rec:  nil,
			in:   Action{Type: ActionSubmit, Actor: "requester@x", Chain: foodServicesChain[:1]},
			check: func(t *testing.T, f *vendor.WorkflowFields) {
				if f.CurrentApprover != "manager@x" || f.NextApprover != "" {
					t.Fatalf("approvers = %q / %q", f.CurrentApprover, f.NextApprover)
				}
			},
		},
		{
			name:    "submit over an existing record",
			rec:     pendingRecord(nil),
			in:      Action{Type: ActionSubmit, Actor: "requester@x", Chain: foodServicesChain},
			wantErr: vendor.ErrAlreadyExists,
		},
		{
			name:    "submit with no configured approvers",
			rec:     nil,
			in:      Action{Type: ActionSubmit, Actor: "requester@x"},
			wantErr: vendor.ErrNoApproverChain,
		},
		{
			name: "approve mid-chain advances one tier",
			rec:  pendingRecord(nil),
			in:   Action{Type: ActionApprove, Actor: "manager@x", Chain: foodServicesChain},
			check: func(t *testing.T, f *vendor.WorkflowFields) {
				if f.StatusCode != vendor.StatusProcurementApproval {
					t.Fatalf("status = %q", f.StatusCode)
				}
				if f.CurrentApprover != "cfo@x" || f.NextApprover != "" {
					t.Fatalf("approvers = %q / %q", f.CurrentApprover, f.NextApprover)
				}
				if f.LastTransition != vendor.TransitionAdvanced {
					t.Fatalf("transition = %q", f.LastTransition)
				}
			},
		},
		{
			name: "approve mid-chain with a deeper chain queues the successor",
			rec:  pendingRecord(nil),
			in: Action{Type: ActionApprove, Actor: "manager@x", Chain: []directory.Approver{
				{Email: "manager@x"}, {Email: "cfo@x"}, {Email: "exec@x", DisplayName: "Executive"},
			}},
			check: func(t *testing.T, f *vendor.WorkflowFields) {
				if f.CurrentApprover != "cfo@x" || f.NextApprover != "exec@x" {
					t.Fatalf("approvers = %q / %q", f.CurrentApprover, f.NextApprover)
				}
			},
		},
		{
			name: "approve when chain dropped the promoted approver treats tier as terminal",
			rec:  pendingRecord(nil),
			in: Action{Type: ActionApprove, Actor: "manager@x", Chain: []directory.Approver{
				{Email: "someoneelse@x"},
			}},
			check: func(t *testing.T, f *vendor.WorkflowFields) {
				if f.CurrentApprover != "cfo@x" || f.NextApprover != "" {
					t.Fatalf("approvers = %q / %q", f.CurrentApprover, f.NextApprover)
				}
			},
		},
		{
			name: "approve at final tier activates the vendor",
			rec: pendingRecord(func(r *vendor.VendorOnboardingRecord) {
				r.CurrentApprover = "cfo@x"
				r.CurrentApproverName = "Chief Financial Officer"
				r.NextApprover = ""
				r.NextApproverName = ""
			}),
			in: Action{Type: ActionApprove, Actor: "cfo@x", Chain: foodServicesChain},
			check: func(t *testing.T, f *vendor.WorkflowFields) {
				if f.StatusCode != vendor.StatusCreationApproved {
					t.Fatalf("status = %q", f.StatusCode)
				}
				if f.VendorSetupStatus != vendor.SetupActive {
					t.Fatalf("setup = %q", f.VendorSetupStatus)
				}
				if f.CurrentApprover != "" || f.NextApprover != "" {
					t.Fatalf("dangling approver: %q / %q", f.CurrentApprover, f.NextApprover)
				}
			},
		},
		{
			name:    "approve by the queued approver ahead of turn",
			rec:     pendingRecord(nil),
			in:      Action{Type: ActionApprove, Actor: "cfo@x", Chain: foodServicesChain},
			wantErr: vendor.ErrUnauthorizedActor,
		},
		{
			name: "approve on an already-approved record is stale",
			rec: pendingRecord(func(r *vendor.VendorOnboardingRecord) {
				r.StatusCode = vendor.StatusCreationApproved
				r.CurrentApprover = ""
				r.NextApprover = ""
			}),
			in:      Action{Type: ActionApprove, Actor: "manager@x", Chain: foodServicesChain},
			wantErr: vendor.ErrInvalidTransition,
		},
		{
			name: "approve while back with the requester is stale",
			rec: pendingRecord(func(r *vendor.VendorOnboardingRecord) {
				r.StatusCode = vendor.StatusRequesterReview
				r.CurrentApprover = ""
			}),
			in:      Action{Type: ActionApprove, Actor: "manager@x"},
			wantErr: vendor.ErrInvalidTransition,
		},
		{
			name: "decline routes back to requester review with the comment",
			rec:  pendingRecord(nil),
			in:   Action{Type: ActionDecline, Actor: "manager@x", Comment: "missing bank details"},
			check: func(t *testing.T, f *vendor.WorkflowFields) {
				if f.StatusCode != vendor.StatusRequesterReview {
					t.Fatalf("status = %q", f.StatusCode)
				}
				if f.CurrentApprover != "" || f.NextApprover != "" {
					t.Fatalf("approvers not cleared: %q / %q", f.CurrentApprover, f.NextApprover)
				}
				if f.ApprovalComment != "missing bank details" {
					t.Fatalf("comment = %q", f.ApprovalComment)
				}
				if f.VendorSetupStatus != vendor.SetupPending || f.LastTransition != vendor.TransitionDeclined {
					t.Fatalf("setup=%q transition=%q", f.VendorSetupStatus, f.LastTransition)
				}
			},
		},
		{
			name: "decline by the second tier behaves the same",
			rec: pendingRecord(func(r *vendor.VendorOnboardingRecord) {
				r.CurrentApprover = "cfo@x"
				r.NextApprover = ""
			}),
			in: Action{Type: ActionDecline, Actor: "cfo@x", Comment: "pricing out of policy"},
			check: func(t *testing.T, f *vendor.WorkflowFields) {
				if f.StatusCode != vendor.StatusRequesterReview || f.CurrentApprover != "" {
					t.Fatalf("fields = %+v", f)
				}
			},
		},
		{
			name:    "decline by a non-approver",
			rec:     pendingRecord(nil),
			in:      Action{Type: ActionDecline, Actor: "intruder@x", Comment: "nope"},
			wantErr: vendor.ErrUnauthorizedActor,
		},
		{
			name: "resubmit restarts the chain at tier one and clears the comment",
			rec: pendingRecord(func(r *vendor.VendorOnboardingRecord) {
				r.StatusCode = vendor.StatusRequesterReview
				r.CurrentApprover = ""
				r.NextApprover = ""
				r.ApprovalComment = "missing bank details"
				r.LastTransition = vendor.TransitionDeclined
			}),
			in: Action{Type: ActionResubmit, Actor: "requester@x", Chain: foodServicesChain},
			check: func(t *testing.T, f *vendor.WorkflowFields) {
				if f.StatusCode != vendor.StatusProcurementApproval {
					t.Fatalf("status = %q", f.StatusCode)
				}
				if f.CurrentApprover != "manager@x" || f.NextApprover != "cfo@x" {
					t.Fatalf("chain did not restart: %q / %q", f.CurrentApprover, f.NextApprover)
				}
				if f.ApprovalComment != "" {
					t.Fatalf("comment survived resubmit: %q", f.ApprovalComment)
				}
				if f.LastTransition != vendor.TransitionResubmitted {
					t.Fatalf("transition = %q", f.LastTransition)
				}
			},
		},
		{
			name: "resubmit by someone other than the requester",
			rec: pendingRecord(func(r *vendor.VendorOnboardingRecord) {
				r.StatusCode = vendor.StatusRequesterReview
				r.CurrentApprover = ""
			}),
			in:      Action{Type: ActionResubmit, Actor: "manager@x", Chain: foodServicesChain},
			wantErr: vendor.ErrUnauthorizedActor,
		},
		{
			name:    "resubmit while still awaiting approval",
			rec:     pendingRecord(nil),
			in:      Action{Type: ActionResubmit, Actor: "requester@x", Chain: foodServicesChain},
			wantErr: vendor.ErrInvalidTransition,
		},
		{
			name: "resubmit with the chain since unconfigured",
			rec: pendingRecord(func(r *vendor.VendorOnboardingRecord) {
				r.StatusCode = vendor.StatusRequesterReview
				r.CurrentApprover = ""
			}),
			in:      Action{Type: ActionResubmit, Actor: "requester@x"},
			wantErr: vendor.ErrNoApproverChain,
		},
		{
			name:    "approve against a missing record",
			rec:     nil,
			in:      Action{Type: ActionApprove, Actor: "manager@x"},
			wantErr: vendor.ErrNotFound,
		},
		{
			name: "record carrying a status outside the closed set is rejected",
			rec: pendingRecord(func(r *vendor.VendorOnboardingRecord) {
				r.StatusCode = vendor.Status("Declined")
			}),
			in:      Action{Type: ActionApprove, Actor: "manager@x"},
			wantErr: vendor.ErrInvalidStatus,
		},
		{
			name:    "unknown action",
			rec:     pendingRecord(nil),
			in:      Action{Type: ActionType("escalate"), Actor: "manager@x"},
			wantErr: vendor.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f, err := fixedEngine(now).Decide(tt.rec, tt.in)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want err=%v, got %v", tt.wantErr, err)
				}
				if f != nil {
					t.Fatalf("rejected action still produced fields: %+v", f)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if !f.StatusUpdateTime.After(statusTimeOf(tt.rec)) {
				t.Fatalf("status_update_time %v not after %v", f.StatusUpdateTime, statusTimeOf(tt.rec))
			}
			tt.check(t, f)
		})
	}
}

func statusTimeOf(rec *vendor.VendorOnboardingRecord) time.Time {
	if rec == nil {
		return time.Time{}
	}
	return rec.StatusUpdateTime
}

// Walks a two-tier chain end to end: submit, tier-one approve,
// tier-two approve, checking the clock strictly increases throughout.
func TestDecide_TwoTierChainWalk(t *testing.T) {
	eng := NewEngine()
	rec := &vendor.VendorOnboardingRecord{
		Email:                      "supplier@acme.test",
		RequesterEmail:             "requester@x",
		PrimaryTradingBusinessUnit: "Food Services",
	}

	f, err := eng.Decide(nil, Action{Type: ActionSubmit, Actor: "requester@x", Chain: foodServicesChain})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	rec.Apply(*f)
	if rec.CurrentApprover != "manager@x" || rec.NextApprover != "cfo@x" {
		t.Fatalf("after submit: %q / %q", rec.CurrentApprover, rec.NextApprover)
	}
	t0 := rec.StatusUpdateTime

	f, err = eng.Decide(rec, Action{Type: ActionApprove, Actor: "manager@x", Chain: foodServicesChain})
	if err != nil {
		t.Fatalf("tier one approve: %v", err)
	}
	rec.Apply(*f)
	if rec.StatusCode != vendor.StatusProcurementApproval || rec.CurrentApprover != "cfo@x" || rec.NextApprover != "" {
		t.Fatalf("after tier one: %+v", rec)
	}
	if !rec.StatusUpdateTime.After(t0) {
		t.Fatalf("clock did not advance: %v then %v", t0, rec.StatusUpdateTime)
	}
	t1 := rec.StatusUpdateTime

	f, err = eng.Decide(rec, Action{Type: ActionApprove, Actor: "cfo@x", Chain: foodServicesChain})
	if err != nil {
		t.Fatalf("final approve: %v", err)
	}
	rec.Apply(*f)
	if rec.StatusCode != vendor.StatusCreationApproved || rec.VendorSetupStatus != vendor.SetupActive {
		t.Fatalf("after final: %+v", rec)
	}
	if !rec.StatusUpdateTime.After(t1) {
		t.Fatalf("clock did not advance: %v then %v", t1, rec.StatusUpdateTime)
	}

	// Replay after advancement must reject, not silently no-op.
	if _, err := eng.Decide(rec, Action{Type: ActionApprove, Actor: "cfo@x", Chain: foodServicesChain}); !errors.Is(err, vendor.ErrInvalidTransition) {
		t.Fatalf("replay after approval: want ErrInvalidTransition, got %v", err)
	}
}

// Stored stamps carry microsecond precision at most, so the engine
// must keep transitions distinct at that granularity. A wall clock that
// advanced by only a few nanoseconds may not produce a stamp that
// collapses onto the previous one once sub-microsecond digits are gone.
func TestDecide_StampsStayDistinctAtMicrosecondGranularity(t *testing.T) {
	prev := time.Date(2026, 3, 2, 10, 0, 0, 5_000, time.UTC) // 5µs
	eng := fixedEngine(prev.Add(300 * time.Nanosecond))

	rec := pendingRecord(func(r *vendor.VendorOnboardingRecord) {
		r.StatusUpdateTime = prev
	})
	f, err := eng.Decide(rec, Action{Type: ActionApprove, Actor: "manager@x", Chain: foodServicesChain})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if rem := f.StatusUpdateTime.Nanosecond() % int(time.Microsecond); rem != 0 {
		t.Fatalf("stamp carries sub-microsecond digits: %v (rem=%dns)", f.StatusUpdateTime, rem)
	}
	if !f.StatusUpdateTime.Truncate(time.Microsecond).After(prev) {
		t.Fatalf("stamp %v collides with %v at microsecond granularity", f.StatusUpdateTime, prev)
	}
}

// A frozen wall clock must still yield strictly increasing stamps.
func TestDecide_MonotonicUnderFrozenClock(t *testing.T) {
	frozen := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	eng := fixedEngine(frozen)

	rec := pendingRecord(func(r *vendor.VendorOnboardingRecord) {
		r.StatusUpdateTime = frozen
	})
	f, err := eng.Decide(rec, Action{Type: ActionApprove, Actor: "manager@x", Chain: foodServicesChain})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !f.StatusUpdateTime.After(frozen) {
		t.Fatalf("stamp %v not after frozen %v", f.StatusUpdateTime, frozen)
	}
}

func TestDecide_ActorComparisonIsCaseInsensitive(t *testing.T) {
	eng := NewEngine()
	rec := pendingRecord(nil)

	f, err := eng.Decide(rec, Action{Type: ActionApprove, Actor: "Manager@X", Chain: foodServicesChain})
	if err != nil {
		t.Fatalf("mixed-case actor rejected: %v", err)
	}
	if f.CurrentApprover != "cfo@x" {
		t.Fatalf("unexpected advance: %q", f.CurrentApprover)
	}
}
