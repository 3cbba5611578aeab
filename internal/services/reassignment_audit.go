package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"logistics-service/internal/domain"
	"logistics-service/internal/platform/obs"
)

// ReassignmentLister lists open dispatches that lost a carrier.
type ReassignmentLister interface {
	ListNeedingReassignment(ctx context.Context) ([]*domain.Dispatch, error)
}

// ReassignmentAudit reports dispatches flagged for reassignment. It reads
// only; flagged dispatches are fixed by editing them.
type ReassignmentAudit struct {
	Dispatches ReassignmentLister
}

// Run logs one warning per flagged open dispatch and returns them.
func (a *ReassignmentAudit) Run(ctx context.Context) (flagged []*domain.Dispatch, err error) {
	defer obs.Time(ctx, "reassignment_audit.run")(&err)

	flagged, err = a.Dispatches.ListNeedingReassignment(ctx)
	if err != nil {
		return nil, fmt.Errorf("reassignment audit: %w", err)
	}

	log := obs.Logger(ctx)
	for _, d := range flagged {
		log.Warn("dispatch needs reassignment",
			zap.Int64("dispatch_id", d.DispatchID),
			zap.String("status", string(d.Status)),
			zap.String("dispatch_date", d.DispatchDate.Format(domain.DateLayout)),
			zap.String("missing", missingCarrier(d)),
		)
	}
	log.Info("reassignment audit finished", zap.Int("flagged", len(flagged)))
	return flagged, nil
}

// missingCarrier names what the dispatch lacks, using the validator's verdict.
func missingCarrier(d *domain.Dispatch) string {
	err := domain.ValidateDispatch(d)
	if err == nil {
		return "none"
	}
	return err.Error()
}
