package actions

import (
	"context"
	"errors"
	"time"

	"github.com/carson-networks/recurring-server/internal/schedule"
	"github.com/carson-networks/recurring-server/internal/storage"
	"github.com/carson-networks/recurring-server/internal/storage/template"
	"github.com/carson-networks/recurring-server/internal/storage/transaction"
)

// recurringNotesSuffix marks ledger rows produced by the engine.
const recurringNotesSuffix = " (Recurring)"

// MaterializeStep writes one generated ledger entry and advances the
// template's watermark as a single atomic unit. The row ID is deterministic,
// so a retried step that finds the row already present only repairs the
// watermark instead of duplicating the entry.
type MaterializeStep struct {
	Template template.Template
	DueDate  time.Time

	// Created reports whether a new ledger row was written, as opposed to
	// an idempotent replay of an earlier step.
	Created bool
	IAction
}

func (a *MaterializeStep) Perform(ctx context.Context, writer *storage.Writer) error {
	dueDate := schedule.DateOnly(a.DueDate)
	create := &transaction.TransactionCreate{
		ID:              transaction.RecurringID(a.Template.ID, dueDate),
		TemplateID:      &a.Template.ID,
		Category:        a.Template.Category,
		Amount:          a.Template.Amount,
		Type:            a.Template.Type,
		TransactionDate: dueDate,
		Notes:           a.Template.Notes + recurringNotesSuffix,
		PaymentMethod:   a.Template.PaymentMethod,
		Tags:            a.Template.Tags,
	}

	_, err := writer.Transaction.Insert(ctx, create)
	switch {
	case errors.Is(err, transaction.ErrDuplicateKey):
		// An earlier attempt wrote the row but died before its watermark
		// became durable. Fall through and advance the watermark only.
		a.Created = false
	case errors.Is(err, transaction.ErrMissingTemplate):
		// Template deleted under us; same treatment as a missing row on
		// the watermark update.
		return template.ErrNotFound
	case err != nil:
		return err
	default:
		a.Created = true
	}

	return writer.Template.AdvanceWatermark(ctx, a.Template.ID, dueDate)
}
