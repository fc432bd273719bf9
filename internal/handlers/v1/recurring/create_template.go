package recurring

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/recurring-server/internal/schedule"
	"github.com/carson-networks/recurring-server/internal/service"
	"github.com/carson-networks/recurring-server/internal/storage/transaction"
)

// CreateTemplateBody is the request body for creating a recurring template.
type CreateTemplateBody struct {
	Category      string   `json:"category" required:"true" doc:"Category name"`
	Amount        string   `json:"amount" required:"true" doc:"Signed decimal amount"`
	Type          string   `json:"type" required:"true" enum:"income,expense" doc:"Transaction type"`
	Frequency     string   `json:"frequency" required:"true" enum:"daily,weekly,monthly,yearly" doc:"Recurrence frequency"`
	StartDate     string   `json:"startDate" required:"true" doc:"First due date, YYYY-MM-DD"`
	EndDate       string   `json:"endDate" doc:"Last eligible due date, inclusive, YYYY-MM-DD"`
	Notes         string   `json:"notes" doc:"Free-form notes"`
	PaymentMethod string   `json:"paymentMethod" doc:"Payment method"`
	Tags          []string `json:"tags" doc:"Ordered tags"`
}

// CreateTemplateInput is the Huma input for creating a template.
type CreateTemplateInput struct {
	Body CreateTemplateBody
}

// CreateTemplateResponseBody is the response body for creating a template.
type CreateTemplateResponseBody struct {
	ID string `json:"id" doc:"Created template UUID"`
}

// CreateTemplateOutput is the Huma output for creating a template.
type CreateTemplateOutput struct {
	Status int
	Body   CreateTemplateResponseBody
}

// templateCreator is the interface for creating templates.
type templateCreator interface {
	CreateTemplate(ctx context.Context, create service.RecurringTemplateCreate) (uuid.UUID, error)
}

// CreateTemplateHandler handles POST /v1/recurring.
type CreateTemplateHandler struct {
	RecurringService templateCreator
}

// NewCreateTemplateHandler creates a new CreateTemplateHandler.
func NewCreateTemplateHandler(svc templateCreator) *CreateTemplateHandler {
	return &CreateTemplateHandler{RecurringService: svc}
}

// Register registers the create template endpoint with the Huma API.
func (h *CreateTemplateHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-recurring-template",
		Method:        http.MethodPost,
		Path:          "/v1/recurring",
		Summary:       "Create recurring template",
		Description:   "Creates a new recurring-transaction template.",
		Tags:          []string{"Recurring"},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

func (h *CreateTemplateHandler) handle(ctx context.Context, input *CreateTemplateInput) (*CreateTemplateOutput, error) {
	amount, err := decimal.NewFromString(input.Body.Amount)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid amount", err)
	}

	transactionType, err := transaction.ParseTransactionType(input.Body.Type)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid type", err)
	}

	frequency, err := schedule.ParseFrequency(input.Body.Frequency)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid frequency", err)
	}

	startDate, err := time.Parse(time.DateOnly, input.Body.StartDate)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid startDate", err)
	}

	var endDate *time.Time
	if input.Body.EndDate != "" {
		parsed, parseErr := time.Parse(time.DateOnly, input.Body.EndDate)
		if parseErr != nil {
			return nil, huma.NewError(http.StatusBadRequest, "invalid endDate", parseErr)
		}
		if parsed.Before(startDate) {
			return nil, huma.NewError(http.StatusBadRequest, "endDate must not precede startDate")
		}
		endDate = &parsed
	}

	id, err := h.RecurringService.CreateTemplate(ctx, service.RecurringTemplateCreate{
		Category:      input.Body.Category,
		Amount:        amount,
		Type:          transactionType,
		Frequency:     frequency,
		StartDate:     startDate,
		EndDate:       endDate,
		Notes:         input.Body.Notes,
		PaymentMethod: input.Body.PaymentMethod,
		Tags:          input.Body.Tags,
	})
	if err != nil {
		return nil, huma.NewError(http.StatusInternalServerError, "failed to create template", err)
	}

	return &CreateTemplateOutput{
		Status: http.StatusCreated,
		Body:   CreateTemplateResponseBody{ID: id.String()},
	}, nil
}
