package recurring

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/recurring-server/internal/engine"
	"github.com/carson-networks/recurring-server/internal/logging"
)

// RunBody is the request body for triggering a generation run.
type RunBody struct {
	Now string `json:"now,omitempty" doc:"Clock override for the run, YYYY-MM-DD; defaults to today UTC"`
}

// RunInput is the Huma input for triggering a generation run.
type RunInput struct {
	Body RunBody
}

// RunResponseBody reports what a generation run did.
type RunResponseBody struct {
	Created           int      `json:"created" doc:"Number of transactions materialized"`
	Deactivated       int      `json:"deactivated" doc:"Number of templates retired"`
	FailedTemplateIDs []string `json:"failedTemplateIds" doc:"Templates whose processing stopped early"`
}

// RunOutput is the Huma output for triggering a generation run.
type RunOutput struct {
	Body RunResponseBody
}

// recurringRunner is the interface for the generation engine.
type recurringRunner interface {
	Run(ctx context.Context, now time.Time) (*engine.RunReport, error)
}

// RunHandler handles POST /v1/recurring/run.
type RunHandler struct {
	Engine recurringRunner
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(eng recurringRunner) *RunHandler {
	return &RunHandler{Engine: eng}
}

// Register registers the run endpoint with the Huma API.
func (h *RunHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "run-recurring-generation",
		Method:      http.MethodPost,
		Path:        "/v1/recurring/run",
		Summary:     "Run recurring generation",
		Description: "Catches every active template up to the given date and reports the result.",
		Tags:        []string{"Recurring"},
	}, h.handle)
}

func (h *RunHandler) handle(ctx context.Context, input *RunInput) (*RunOutput, error) {
	now := time.Now().UTC()
	if input.Body.Now != "" {
		parsed, err := time.Parse(time.DateOnly, input.Body.Now)
		if err != nil {
			return nil, huma.NewError(http.StatusBadRequest, "invalid now", err)
		}
		now = parsed
	}

	logData := logging.GetLogData(ctx)
	stopTimer := func() {}
	if logData != nil {
		stopTimer = logData.AddTiming("recurringRunMs")
	}

	report, err := h.Engine.Run(ctx, now)
	stopTimer()
	if err != nil {
		// A run that never got going should look like a failure to the
		// external scheduler so it retries.
		return nil, huma.NewError(http.StatusInternalServerError, "generation run failed", err)
	}

	failed := make([]string, 0, len(report.FailedTemplateIDs))
	for _, id := range report.FailedTemplateIDs {
		failed = append(failed, id.String())
	}

	if logData != nil {
		logData.AddData("createdCount", report.Created)
		logData.AddData("deactivatedCount", report.Deactivated)
		logData.AddData("failedTemplateCount", len(failed))
	}

	return &RunOutput{Body: RunResponseBody{
		Created:           report.Created,
		Deactivated:       report.Deactivated,
		FailedTemplateIDs: failed,
	}}, nil
}
