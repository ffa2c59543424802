package onboarding

import (
	"context"
	"errors"
	"fmt"

	"vendor-onboarding-service/internal/domain/directory"
	"vendor-onboarding-service/internal/domain/vendor"
	"vendor-onboarding-service/internal/workflow"
	"vendor-onboarding-service/pkg/id"

	"go.uber.org/zap"
)

// How many full read-resolve-decide-write cycles a lost compare-and-swap
// race is retried before ErrConflict reaches the caller.
const maxWriteAttempts = 3

type Usecase struct {
	store  vendor.RecordStore
	dir    directory.Directory
	engine *workflow.Engine
	log    *zap.Logger
}

func NewUsecase(store vendor.RecordStore, dir directory.Directory, engine *workflow.Engine, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{store: store, dir: dir, engine: engine, log: log}
}

// Submit creates the record and puts it in front of the first approver.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*RecordDTO, error) {
	if _, err := u.store.GetByEmail(ctx, in.Email); err == nil {
		return nil, vendor.ErrAlreadyExists
	} else if !errors.Is(err, vendor.ErrNotFound) {
		return nil, err
	}

	chain, err := u.dir.ResolveApprovers(ctx, in.PrimaryTradingBusinessUnit)
	if err != nil {
		return nil, fmt.Errorf("resolve approvers for %q: %w", in.PrimaryTradingBusinessUnit, err)
	}

	fields, err := u.engine.Decide(nil, workflow.Action{
		Type:  workflow.ActionSubmit,
		Actor: in.RequesterEmail,
		Chain: chain,
	})
	if err != nil {
		return nil, err
	}

	rec := &vendor.VendorOnboardingRecord{
		RecordID:                   id.NewRecordID(),
		Email:                      in.Email,
		RequesterEmail:             in.RequesterEmail,
		BusinessName:               in.BusinessName,
		PrimaryTradingBusinessUnit: in.PrimaryTradingBusinessUnit,
		TaxID:                      in.TaxID,
		ContactPhone:               in.ContactPhone,
		PostalAddress:              in.PostalAddress,
		BankAccountName:            in.BankAccountName,
		BankAccountNumber:          in.BankAccountNumber,
	}
	rec.Apply(*fields)

	if err := u.store.Create(ctx, rec); err != nil {
		return nil, err
	}

	u.log.Info("vendor onboarding submitted",
		zap.String("email", rec.Email),
		zap.String("business_unit", rec.PrimaryTradingBusinessUnit),
		zap.String("current_approver", rec.CurrentApprover))
	return toDTO(rec), nil
}

func (u *Usecase) Approve(ctx context.Context, in ActionInput) (*RecordDTO, error) {
	return u.apply(ctx, workflow.ActionApprove, in)
}

func (u *Usecase) Decline(ctx context.Context, in ActionInput) (*RecordDTO, error) {
	return u.apply(ctx, workflow.ActionDecline, in)
}

func (u *Usecase) Resubmit(ctx context.Context, in ActionInput) (*RecordDTO, error) {
	return u.apply(ctx, workflow.ActionResubmit, in)
}

func (u *Usecase) Get(ctx context.Context, email string) (*RecordDTO, error) {
	rec, err := u.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toDTO(rec), nil
}

func (u *Usecase) ListByStatus(ctx context.Context, raw string) ([]RecordDTO, error) {
	status, err := vendor.ParseStatus(raw)
	if err != nil {
		return nil, err
	}
	recs, err := u.store.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	out := make([]RecordDTO, 0, len(recs))
	for i := range recs {
		out = append(out, *toDTO(&recs[i]))
	}
	return out, nil
}

// apply runs one read-resolve-decide-write cycle, repeating the whole
// cycle when the optimistic write loses a race. The directory lookup
// sits inside the loop: record and chain are one staleness unit, so a
// conflicted retry recomputes the transition instead of patching it.
func (u *Usecase) apply(ctx context.Context, action workflow.ActionType, in ActionInput) (*RecordDTO, error) {
	var lastErr error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		rec, err := u.store.GetByEmail(ctx, in.Email)
		if err != nil {
			return nil, err
		}

		chain, err := u.dir.ResolveApprovers(ctx, rec.PrimaryTradingBusinessUnit)
		if err != nil {
			return nil, fmt.Errorf("resolve approvers for %q: %w", rec.PrimaryTradingBusinessUnit, err)
		}

		fields, err := u.engine.Decide(rec, workflow.Action{
			Type:    action,
			Actor:   in.Actor,
			Comment: in.Comment,
			Chain:   chain,
		})
		if err != nil {
			if errors.Is(err, vendor.ErrUnauthorizedActor) {
				// Security-relevant: logged apart from ordinary rejections.
				u.log.Warn("unauthorized workflow actor",
					zap.String("email", in.Email),
					zap.String("actor", in.Actor),
					zap.String("action", string(action)),
					zap.String("expected_approver", rec.CurrentApprover))
			} else {
				u.log.Info("workflow action rejected",
					zap.String("email", in.Email),
					zap.String("action", string(action)),
					zap.Error(err))
			}
			return nil, err
		}

		err = u.store.CompareAndSwap(ctx, in.Email, rec.StatusCode, rec.StatusUpdateTime, *fields)
		if errors.Is(err, vendor.ErrConflict) {
			lastErr = err
			u.log.Info("optimistic write lost a race, retrying",
				zap.String("email", in.Email),
				zap.String("action", string(action)),
				zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}

		rec.Apply(*fields)
		u.log.Info("workflow transition applied",
			zap.String("email", in.Email),
			zap.String("action", string(action)),
			zap.String("status", string(rec.StatusCode)),
			zap.String("current_approver", rec.CurrentApprover))
		return toDTO(rec), nil
	}
	return nil, lastErr
}
