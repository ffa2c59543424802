package directorymock

import (
	"context"

	domain "vendor-onboarding-service/internal/domain/directory"
)

// Directory is a function-backed mock that satisfies domain.Directory.
type Directory struct {
	ResolveApproversFn func(ctx context.Context, businessUnit string) ([]domain.Approver, error)
}

func (m *Directory) ResolveApprovers(ctx context.Context, businessUnit string) ([]domain.Approver, error) {
	if m.ResolveApproversFn != nil {
		return m.ResolveApproversFn(ctx, businessUnit)
	}
	return nil, nil
}

// Fixed returns a directory that serves the same chain for every unit.
func Fixed(chain ...domain.Approver) *Directory {
	return &Directory{
		ResolveApproversFn: func(context.Context, string) ([]domain.Approver, error) {
			return chain, nil
		},
	}
}
