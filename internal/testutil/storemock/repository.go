package storemock

import (
	"context"
	"time"

	domain "vendor-onboarding-service/internal/domain/vendor"
)

// Store is a function-backed mock that satisfies domain.RecordStore.
// Only methods you need are included; add more as tests require.
type Store struct {
	CreateFn         func(ctx context.Context, r *domain.VendorOnboardingRecord) error
	GetByEmailFn     func(ctx context.Context, email string) (*domain.VendorOnboardingRecord, error)
	ListByStatusFn   func(ctx context.Context, status domain.Status) ([]domain.VendorOnboardingRecord, error)
	CompareAndSwapFn func(ctx context.Context, email string, expectedStatus domain.Status, expectedStatusTime time.Time, fields domain.WorkflowFields) error
}

func (m *Store) Create(ctx context.Context, r *domain.VendorOnboardingRecord) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Store) GetByEmail(ctx context.Context, email string) (*domain.VendorOnboardingRecord, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, domain.ErrNotFound
}

func (m *Store) ListByStatus(ctx context.Context, status domain.Status) ([]domain.VendorOnboardingRecord, error) {
	if m.ListByStatusFn != nil {
		return m.ListByStatusFn(ctx, status)
	}
	return nil, nil
}

func (m *Store) CompareAndSwap(ctx context.Context, email string, expectedStatus domain.Status, expectedStatusTime time.Time, fields domain.WorkflowFields) error {
	if m.CompareAndSwapFn != nil {
		return m.CompareAndSwapFn(ctx, email, expectedStatus, expectedStatusTime, fields)
	}
	return nil
}
