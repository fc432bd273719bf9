package recurring

import (
	"time"

	"github.com/carson-networks/recurring-server/internal/service"
)

// RecurringTemplate is the API response model for a recurring template.
// It is used only for responses, not for request bodies.
type RecurringTemplate struct {
	ID                string   `json:"id" doc:"Template UUID"`
	Category          string   `json:"category" doc:"Category name"`
	Amount            string   `json:"amount" doc:"Signed decimal amount"`
	Type              string   `json:"type" doc:"Transaction type, income or expense"`
	Frequency         string   `json:"frequency" doc:"Recurrence frequency"`
	StartDate         string   `json:"startDate" doc:"First due date, YYYY-MM-DD"`
	EndDate           string   `json:"endDate,omitempty" doc:"Last eligible due date, inclusive, YYYY-MM-DD"`
	Notes             string   `json:"notes,omitempty" doc:"Free-form notes"`
	PaymentMethod     string   `json:"paymentMethod,omitempty" doc:"Payment method"`
	Tags              []string `json:"tags,omitempty" doc:"Ordered tags"`
	Active            bool     `json:"active" doc:"Whether the engine still generates from this template"`
	LastGeneratedDate string   `json:"lastGeneratedDate,omitempty" doc:"Most recent materialized due date, YYYY-MM-DD"`
}

func fromServiceTemplate(tpl service.RecurringTemplate) RecurringTemplate {
	converted := RecurringTemplate{
		ID:            tpl.ID.String(),
		Category:      tpl.Category,
		Amount:        tpl.Amount.String(),
		Type:          tpl.Type.String(),
		Frequency:     tpl.Frequency.String(),
		StartDate:     tpl.StartDate.Format(time.DateOnly),
		Notes:         tpl.Notes,
		PaymentMethod: tpl.PaymentMethod,
		Tags:          tpl.Tags,
		Active:        tpl.Active,
	}
	if tpl.EndDate != nil {
		converted.EndDate = tpl.EndDate.Format(time.DateOnly)
	}
	if tpl.LastGeneratedDate != nil {
		converted.LastGeneratedDate = tpl.LastGeneratedDate.Format(time.DateOnly)
	}
	return converted
}
