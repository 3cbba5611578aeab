package workers

import (
	"context"

	"logistics-service/internal/services"
)

// ReassignmentWorker periodically reports dispatches left without a carrier.
type ReassignmentWorker struct {
	audit    *services.ReassignmentAudit
	schedule string
}

func NewReassignmentWorker(audit *services.ReassignmentAudit, schedule string) *ReassignmentWorker {
	return &ReassignmentWorker{audit: audit, schedule: schedule}
}

func (w *ReassignmentWorker) Name() string     { return "reassignment-audit" }
func (w *ReassignmentWorker) Schedule() string { return w.schedule }

func (w *ReassignmentWorker) Execute(ctx context.Context) error {
	_, err := w.audit.Run(ctx)
	return err
}
