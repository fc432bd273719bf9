package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/recurring-server/internal/operator/actions"
	"github.com/carson-networks/recurring-server/internal/schedule"
	"github.com/carson-networks/recurring-server/internal/storage"
	"github.com/carson-networks/recurring-server/internal/storage/template"
)

// StepRunner executes one action as an atomic unit of work. The operator
// satisfies this: each step runs inside its own database transaction.
type StepRunner interface {
	Process(ctx context.Context, action actions.IAction) error
}

// RunReport summarizes one engine invocation. The external trigger maps a
// non-empty FailedTemplateIDs to its own retry policy.
type RunReport struct {
	Created           int
	Deactivated       int
	FailedTemplateIDs []uuid.UUID
}

// Engine materializes the ledger entries that recurring templates say should
// exist as of a caller-supplied "now", catching up on any number of missed
// periods and retiring templates past their end date.
type Engine struct {
	templates template.ITemplateTable
	runner    StepRunner
	logger    *logrus.Logger
}

func New(store *storage.Storage, runner StepRunner, logger *logrus.Logger) *Engine {
	return &Engine{
		templates: store.Templates,
		runner:    runner,
		logger:    logger,
	}
}

// Run processes every active template once. now is supplied by the caller,
// never read from a system clock, so runs are deterministic and testable.
//
// Templates are processed sequentially from a snapshot fetched at the start
// of the run; concurrent user edits take effect on the next invocation.
// Per-template failures are isolated and reported, they never abort the run.
// Only a failure to list the templates at all fails the invocation.
func (e *Engine) Run(ctx context.Context, now time.Time) (*RunReport, error) {
	now = schedule.DateOnly(now)

	templates, err := e.templates.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active templates: %w", err)
	}

	report := &RunReport{}
	for i, tpl := range templates {
		if ctx.Err() != nil {
			// Cancelled: the remaining templates are reported failed so the
			// trigger retries. Already completed steps are safe; the next
			// run resumes from each template's watermark.
			for _, rest := range templates[i:] {
				report.FailedTemplateIDs = append(report.FailedTemplateIDs, rest.ID)
			}
			break
		}
		e.processTemplate(ctx, tpl, now, report)
	}
	return report, nil
}

// processTemplate runs the gate and catch-up loop for a single template,
// recording outcomes on the shared report.
func (e *Engine) processTemplate(ctx context.Context, tpl *template.Template, now time.Time, report *RunReport) {
	log := e.logger.WithField("templateID", tpl.ID)

	dec, err := gate(tpl, now)
	if err != nil {
		log.WithError(err).Error("Engine.processTemplate.InvalidTemplate")
		report.FailedTemplateIDs = append(report.FailedTemplateIDs, tpl.ID)
		return
	}

	for cursor := dec.firstDue; !cursor.After(dec.upperBound); cursor = schedule.NextDueDate(cursor, tpl.Frequency) {
		if ctx.Err() != nil {
			// Finish the current step, never abort mid-step; between steps a
			// cancelled template is reported failed and resumed next run.
			report.FailedTemplateIDs = append(report.FailedTemplateIDs, tpl.ID)
			return
		}

		step := &actions.MaterializeStep{Template: *tpl, DueDate: cursor}
		err := e.runner.Process(ctx, step)
		if errors.Is(err, template.ErrNotFound) {
			// Deleted by the user mid-run; not an error, just nothing left
			// to advance.
			log.Info("Engine.processTemplate.TemplateVanished")
			return
		}
		if err != nil {
			log.WithError(err).WithField("dueDate", cursor.Format(time.DateOnly)).
				Error("Engine.processTemplate.StepFailed")
			report.FailedTemplateIDs = append(report.FailedTemplateIDs, tpl.ID)
			return
		}
		if step.Created {
			report.Created++
		}
	}

	if dec.deactivate {
		err := e.runner.Process(ctx, &actions.DeactivateTemplate{ID: tpl.ID})
		if errors.Is(err, template.ErrNotFound) {
			log.Info("Engine.processTemplate.TemplateVanished")
			return
		}
		if err != nil {
			log.WithError(err).Error("Engine.processTemplate.DeactivateFailed")
			report.FailedTemplateIDs = append(report.FailedTemplateIDs, tpl.ID)
			return
		}
		report.Deactivated++
	}
}
