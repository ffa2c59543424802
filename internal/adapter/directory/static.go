package directory

import (
	"context"

	domain "vendor-onboarding-service/internal/domain/directory"
)

// StaticDirectory serves approver chains from an in-memory table,
// typically seeded from configuration. Useful for small deployments
// and tests; chains are copied on read so callers cannot mutate them.
type StaticDirectory struct {
	chains map[string][]domain.Approver
}

func NewStaticDirectory(chains map[string][]domain.Approver) *StaticDirectory {
	cp := make(map[string][]domain.Approver, len(chains))
	for unit, chain := range chains {
		cp[unit] = append([]domain.Approver(nil), chain...)
	}
	return &StaticDirectory{chains: cp}
}

func (d *StaticDirectory) ResolveApprovers(_ context.Context, businessUnit string) ([]domain.Approver, error) {
	chain, ok := d.chains[businessUnit]
	if !ok {
		return nil, nil
	}
	return append([]domain.Approver(nil), chain...), nil
}
