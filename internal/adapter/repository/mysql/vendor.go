package mysql

import (
	"context"
	"errors"
	"time"

	vendorDomain "vendor-onboarding-service/internal/domain/vendor"

	"gorm.io/gorm"
)

type VendorRepository struct{ db *gorm.DB }

func NewVendorRepository(db *gorm.DB) *VendorRepository { return &VendorRepository{db: db} }

func (r *VendorRepository) Create(ctx context.Context, rec *vendorDomain.VendorOnboardingRecord) error {
	err := r.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return vendorDomain.ErrAlreadyExists
	}
	return err
}

func (r *VendorRepository) GetByEmail(ctx context.Context, email string) (*vendorDomain.VendorOnboardingRecord, error) {
	var out vendorDomain.VendorOnboardingRecord
	res := r.db.WithContext(ctx).Where("email = ?", email).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, vendorDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *VendorRepository) ListByStatus(ctx context.Context, status vendorDomain.Status) ([]vendorDomain.VendorOnboardingRecord, error) {
	var out []vendorDomain.VendorOnboardingRecord
	res := r.db.WithContext(ctx).
		Where("status_code = ?", status).
		Order("status_update_time DESC, id DESC").
		Find(&out)
	return out, res.Error
}

// CompareAndSwap applies one transition's field payload behind an
// optimistic guard: the UPDATE only matches while the row still holds
// the (status_code, status_update_time) the caller read. Everything,
// including the free-text comment, travels as bind parameters.
func (r *VendorRepository) CompareAndSwap(ctx context.Context, email string, expectedStatus vendorDomain.Status, expectedStatusTime time.Time, f vendorDomain.WorkflowFields) error {
	res := r.db.WithContext(ctx).
		Model(&vendorDomain.VendorOnboardingRecord{}).
		Where("email = ? AND status_code = ? AND status_update_time = ?", email, expectedStatus, expectedStatusTime).
		Updates(map[string]any{
			"status_code":           f.StatusCode,
			"current_approver":      f.CurrentApprover,
			"current_approver_name": f.CurrentApproverName,
			"next_approver":         f.NextApprover,
			"next_approver_name":    f.NextApproverName,
			"approval_comment":      f.ApprovalComment,
			"status_update_time":    f.StatusUpdateTime,
			"vendor_setup_status":   f.VendorSetupStatus,
			"last_transition":       f.LastTransition,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// Zero rows: either the guard failed or the record is gone.
	if _, err := r.GetByEmail(ctx, email); err != nil {
		return err
	}
	return vendorDomain.ErrConflict
}
