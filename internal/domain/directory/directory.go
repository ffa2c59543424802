package directory

import "context"

// Approver is one tier in a business unit's approval chain.
type Approver struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Directory resolves the ordered approver chain for a business unit.
// Order is deterministic: tier one first. An unconfigured unit yields
// an empty chain and a nil error; the workflow decides whether that is
// fatal for the action at hand. Implementations must never invent a
// fallback approver.
type Directory interface {
	ResolveApprovers(ctx context.Context, businessUnit string) ([]Approver, error)
}
