package services

import (
	"context"
	"fmt"

	"github.com/qmuntal/stateless"

	"github.com/diewo77/invoice-wemaad/internal/models"
)

const triggerMarkPaid = "markPaid"

// newStatusMachine describes the invoice lifecycle: PENDING moves to PAID on
// markPaid and PAID is terminal. Firing markPaid on a paid invoice is a no-op.
func newStatusMachine(current models.InvoiceStatus) *stateless.StateMachine {
	sm := stateless.NewStateMachine(current)
	sm.Configure(models.InvoiceStatusPending).
		Permit(triggerMarkPaid, models.InvoiceStatusPaid)
	sm.Configure(models.InvoiceStatusPaid).
		Ignore(triggerMarkPaid)
	return sm
}

// nextStatus applies trigger to current and returns the resulting status.
func nextStatus(ctx context.Context, current models.InvoiceStatus, trigger string) (models.InvoiceStatus, error) {
	sm := newStatusMachine(current)
	if err := sm.FireCtx(ctx, trigger); err != nil {
		return current, fmt.Errorf("invoice status %s: %w", current, err)
	}
	state, err := sm.State(ctx)
	if err != nil {
		return current, err
	}
	next, ok := state.(models.InvoiceStatus)
	if !ok {
		return current, fmt.Errorf("invoice status: unexpected state %v", state)
	}
	return next, nil
}
