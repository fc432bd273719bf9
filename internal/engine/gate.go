package engine

import (
	"errors"
	"time"

	"github.com/carson-networks/recurring-server/internal/schedule"
	"github.com/carson-networks/recurring-server/internal/storage/template"
)

// errInvalidTemplate marks malformed templates (end date before start date).
// They are skipped and recorded in the run's failure set, never generated
// from and never retired.
var errInvalidTemplate = errors.New("engine: invalid template")

// decision is the lifecycle gate's verdict for one template at one instant.
type decision struct {
	// firstDue is the first candidate due date to materialize. For a
	// never-generated template this is the start date itself; otherwise one
	// period past the watermark.
	firstDue time.Time

	// upperBound is the last date eligible for generation:
	// min(now, end date).
	upperBound time.Time

	// deactivate is set when now has passed the end date. Generation up to
	// the end date still happens in the same pass; afterwards the template
	// is retired.
	deactivate bool
}

// gate decides what the driver should do with one template as of now. Both
// dates in the returned decision are normalized calendar dates.
func gate(tpl *template.Template, now time.Time) (decision, error) {
	if !tpl.Frequency.Valid() {
		return decision{}, errInvalidTemplate
	}

	startDate := schedule.DateOnly(tpl.StartDate)
	if tpl.EndDate != nil && schedule.DateOnly(*tpl.EndDate).Before(startDate) {
		return decision{}, errInvalidTemplate
	}

	dec := decision{
		firstDue:   startDate,
		upperBound: now,
	}
	if tpl.LastGeneratedDate != nil {
		dec.firstDue = schedule.NextDueDate(*tpl.LastGeneratedDate, tpl.Frequency)
	}
	if tpl.EndDate != nil {
		endDate := schedule.DateOnly(*tpl.EndDate)
		if endDate.Before(now) {
			dec.upperBound = endDate
			dec.deactivate = true
		}
	}
	return dec, nil
}
