package repositories

import (
	"context"
	"fmt"

	"logistics-service/internal/domain"
	"logistics-service/internal/platform/db"
	"logistics-service/internal/platform/obs"
	"logistics-service/internal/ports"
)

// SQL implementation of the DispatchRepository port. Every create and
// update runs ValidateDispatch before anything is written.
type SQLDispatchRepository struct {
	*SQLStore[domain.Dispatch]
}

func NewSQLDispatchRepository(conn *db.DB) *SQLDispatchRepository {
	return &SQLDispatchRepository{SQLStore: NewSQLStore(conn, dispatchMapping)}
}

var _ ports.DispatchRepository = (*SQLDispatchRepository)(nil)

func (r *SQLDispatchRepository) Create(ctx context.Context, d *domain.Dispatch) error {
	if err := domain.ValidateDispatch(d); err != nil {
		return fmt.Errorf("create dispatch: %w", err)
	}
	d.NeedsReassignment = false
	return r.SQLStore.Create(ctx, d)
}

func (r *SQLDispatchRepository) Update(ctx context.Context, d *domain.Dispatch) error {
	if err := domain.ValidateDispatch(d); err != nil {
		return fmt.Errorf("update dispatch %d: %w", d.DispatchID, err)
	}
	d.NeedsReassignment = false
	return r.SQLStore.Update(ctx, d)
}

func (r *SQLDispatchRepository) ListNeedingReassignment(ctx context.Context) (out []*domain.Dispatch, err error) {
	defer obs.Time(ctx, "dispatches.list_needing_reassignment")(&err)

	query := r.rebind(`
	SELECT ` + r.selectList() + `
	FROM dispatches
	WHERE needs_reassignment = ? AND status IN (?, ?)
	ORDER BY dispatch_date, id;
	`)
	rows, err := r.DB.QueryContext(ctx, query, true, string(domain.StatusPending), string(domain.StatusInTransit))
	if err != nil {
		return nil, fmt.Errorf("list dispatches needing reassignment: query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		d, err := scanDispatch(rows)
		if err != nil {
			return nil, fmt.Errorf("list dispatches needing reassignment: scan row: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list dispatches needing reassignment: row iteration: %w", err)
	}
	return out, nil
}
