package recurring

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/recurring-server/internal/logging"
	"github.com/carson-networks/recurring-server/internal/service"
)

// ListTemplatesCursor represents a pagination cursor in request and response bodies.
// It bundles position, limit, and maxCreationTime so subsequent pages use consistent parameters.
type ListTemplatesCursor struct {
	Position        int    `json:"position" minimum:"0" doc:"Numeric offset position for the next page"`
	Limit           int    `json:"limit" minimum:"1" maximum:"100" doc:"Page size used for this cursor"`
	MaxCreationTime string `json:"maxCreationTime" format:"date-time" doc:"Upper bound on created_at locked in from the first page"`
}

// ListTemplatesBody is the request body for listing templates.
type ListTemplatesBody struct {
	Cursor *ListTemplatesCursor `json:"cursor,omitempty" doc:"Cursor from a previous response to fetch the next page"`
}

// ListTemplatesInput is the Huma input for listing templates.
type ListTemplatesInput struct {
	Body ListTemplatesBody
}

// ListTemplatesResponseBody is the response body for listing templates.
type ListTemplatesResponseBody struct {
	Templates  []RecurringTemplate  `json:"templates" doc:"Page of templates"`
	NextCursor *ListTemplatesCursor `json:"nextCursor,omitempty" doc:"Cursor to fetch the next page, absent on the last page"`
}

// ListTemplatesOutput is the Huma output for listing templates.
type ListTemplatesOutput struct {
	Body ListTemplatesResponseBody
}

// templateLister is the interface for listing templates.
type templateLister interface {
	ListTemplates(ctx context.Context, cursor *service.TemplateCursor) ([]service.RecurringTemplate, *service.TemplateCursor, error)
}

// ListTemplatesHandler handles POST /v1/recurring/list.
type ListTemplatesHandler struct {
	RecurringService templateLister
}

// NewListTemplatesHandler creates a new ListTemplatesHandler.
func NewListTemplatesHandler(svc templateLister) *ListTemplatesHandler {
	return &ListTemplatesHandler{RecurringService: svc}
}

// Register registers the list templates endpoint with the Huma API.
func (h *ListTemplatesHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-recurring-templates",
		Method:      http.MethodPost,
		Path:        "/v1/recurring/list",
		Summary:     "List recurring templates",
		Description: "Returns a paginated list of recurring templates using cursor-based pagination.",
		Tags:        []string{"Recurring"},
	}, h.handle)
}

// parseListTemplatesInput parses and validates the API input. When a cursor
// is provided, limit and maxCreationTime come from it. Without a cursor, the
// service uses its default limit.
func parseListTemplatesInput(input *ListTemplatesInput) (cursor *service.TemplateCursor, err error) {
	if input.Body.Cursor == nil {
		return nil, nil
	}

	if input.Body.Cursor.Position < 0 {
		return nil, huma.NewError(http.StatusBadRequest, "cursor position must be non-negative")
	}

	maxCreationTime, parseErr := time.Parse(time.RFC3339, input.Body.Cursor.MaxCreationTime)
	if parseErr != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid cursor maxCreationTime", parseErr)
	}

	return &service.TemplateCursor{
		Position:        input.Body.Cursor.Position,
		Limit:           input.Body.Cursor.Limit,
		MaxCreationTime: maxCreationTime,
	}, nil
}

func (h *ListTemplatesHandler) handle(ctx context.Context, input *ListTemplatesInput) (*ListTemplatesOutput, error) {
	requestCursor, err := parseListTemplatesInput(input)
	if err != nil {
		return nil, err
	}

	templates, nextCursor, err := h.RecurringService.ListTemplates(ctx, requestCursor)
	if err != nil {
		return nil, huma.NewError(http.StatusInternalServerError, "failed to list templates", err)
	}

	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("templateCount", len(templates))
	}

	resp := ListTemplatesResponseBody{
		Templates: make([]RecurringTemplate, len(templates)),
	}
	for i, tpl := range templates {
		resp.Templates[i] = fromServiceTemplate(tpl)
	}
	if nextCursor != nil {
		resp.NextCursor = &ListTemplatesCursor{
			Position:        nextCursor.Position,
			Limit:           nextCursor.Limit,
			MaxCreationTime: nextCursor.MaxCreationTime.Format(time.RFC3339),
		}
	}

	return &ListTemplatesOutput{Body: resp}, nil
}
