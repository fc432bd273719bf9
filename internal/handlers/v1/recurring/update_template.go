package recurring

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/recurring-server/internal/service"
)

// UpdateTemplateBody is the request body for editing a template. Absent
// fields are left untouched.
type UpdateTemplateBody struct {
	Category      *string `json:"category,omitempty" doc:"Category name"`
	Amount        *string `json:"amount,omitempty" doc:"Signed decimal amount"`
	Notes         *string `json:"notes,omitempty" doc:"Free-form notes"`
	PaymentMethod *string `json:"paymentMethod,omitempty" doc:"Payment method"`
	EndDate       *string `json:"endDate,omitempty" doc:"Last eligible due date, inclusive, YYYY-MM-DD"`
	Active        *bool   `json:"active,omitempty" doc:"Whether the engine still generates from this template"`
}

// UpdateTemplateInput is the Huma input for editing a template.
type UpdateTemplateInput struct {
	ID   string `path:"id" doc:"Template UUID"`
	Body UpdateTemplateBody
}

// UpdateTemplateOutput is the Huma output for editing a template.
type UpdateTemplateOutput struct {
	Status int
}

// templateUpdater is the interface for editing templates.
type templateUpdater interface {
	UpdateTemplate(ctx context.Context, id uuid.UUID, update service.RecurringTemplateUpdate) error
}

// UpdateTemplateHandler handles PUT /v1/recurring/{id}.
type UpdateTemplateHandler struct {
	RecurringService templateUpdater
}

// NewUpdateTemplateHandler creates a new UpdateTemplateHandler.
func NewUpdateTemplateHandler(svc templateUpdater) *UpdateTemplateHandler {
	return &UpdateTemplateHandler{RecurringService: svc}
}

// Register registers the update template endpoint with the Huma API.
func (h *UpdateTemplateHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "update-recurring-template",
		Method:      http.MethodPut,
		Path:        "/v1/recurring/{id}",
		Summary:     "Update recurring template",
		Description: "Applies a partial edit to a recurring template.",
		Tags:        []string{"Recurring"},
	}, h.handle)
}

func (h *UpdateTemplateHandler) handle(ctx context.Context, input *UpdateTemplateInput) (*UpdateTemplateOutput, error) {
	id, err := uuid.FromString(input.ID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid template id", err)
	}

	update := service.RecurringTemplateUpdate{
		Category:      input.Body.Category,
		Notes:         input.Body.Notes,
		PaymentMethod: input.Body.PaymentMethod,
		Active:        input.Body.Active,
	}

	if input.Body.Amount != nil {
		amount, parseErr := decimal.NewFromString(*input.Body.Amount)
		if parseErr != nil {
			return nil, huma.NewError(http.StatusBadRequest, "invalid amount", parseErr)
		}
		update.Amount = &amount
	}

	if input.Body.EndDate != nil {
		endDate, parseErr := time.Parse(time.DateOnly, *input.Body.EndDate)
		if parseErr != nil {
			return nil, huma.NewError(http.StatusBadRequest, "invalid endDate", parseErr)
		}
		update.EndDate = &endDate
	}

	err = h.RecurringService.UpdateTemplate(ctx, id, update)
	if errors.Is(err, service.ErrTemplateNotFound) {
		return nil, huma.NewError(http.StatusNotFound, "template not found")
	}
	if errors.Is(err, service.ErrEndBeforeStart) {
		return nil, huma.NewError(http.StatusBadRequest, "endDate precedes startDate", err)
	}
	if err != nil {
		return nil, huma.NewError(http.StatusInternalServerError, "failed to update template", err)
	}

	return &UpdateTemplateOutput{Status: http.StatusNoContent}, nil
}
