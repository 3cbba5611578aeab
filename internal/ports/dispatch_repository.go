package ports

import (
	"context"

	"logistics-service/internal/domain"
)

// DispatchRepository persists dispatches. Create and Update reject any
// candidate that fails domain.ValidateDispatch before writing.
type DispatchRepository interface {
	Store[domain.Dispatch]
	// ListNeedingReassignment returns open dispatches that lost a carrier.
	ListNeedingReassignment(ctx context.Context) ([]*domain.Dispatch, error)
}
