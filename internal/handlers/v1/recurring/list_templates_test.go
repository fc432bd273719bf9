package recurring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/recurring-server/internal/schedule"
	"github.com/carson-networks/recurring-server/internal/service"
	"github.com/carson-networks/recurring-server/internal/storage/transaction"
)

type mockTemplateLister struct {
	mock.Mock
}

func (m *mockTemplateLister) ListTemplates(ctx context.Context, cursor *service.TemplateCursor) ([]service.RecurringTemplate, *service.TemplateCursor, error) {
	args := m.Called(ctx, cursor)
	templates, _ := args.Get(0).([]service.RecurringTemplate)
	next, _ := args.Get(1).(*service.TemplateCursor)
	return templates, next, args.Error(2)
}

func newListTestAPI(t *testing.T, svc templateLister) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewListTemplatesHandler(svc).Register(api)
	return api
}

func TestParseListTemplatesInput_NoCursor(t *testing.T) {
	input := &ListTemplatesInput{
		Body: ListTemplatesBody{},
	}

	cursor, err := parseListTemplatesInput(input)
	assert.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestParseListTemplatesInput_WithCursor(t *testing.T) {
	cursorMaxTime := "2026-06-15T08:00:00Z"

	input := &ListTemplatesInput{
		Body: ListTemplatesBody{
			Cursor: &ListTemplatesCursor{
				Position:        20,
				Limit:           10,
				MaxCreationTime: cursorMaxTime,
			},
		},
	}

	cursor, err := parseListTemplatesInput(input)
	assert.NoError(t, err)

	expectedMax, _ := time.Parse(time.RFC3339, cursorMaxTime)
	assert.NotNil(t, cursor)
	assert.Equal(t, 20, cursor.Position)
	assert.Equal(t, 10, cursor.Limit)
	assert.Equal(t, expectedMax, cursor.MaxCreationTime)
}

func TestParseListTemplatesInput_InvalidCursorMaxCreationTime(t *testing.T) {
	input := &ListTemplatesInput{
		Body: ListTemplatesBody{
			Cursor: &ListTemplatesCursor{
				Position:        0,
				Limit:           10,
				MaxCreationTime: "not-a-date",
			},
		},
	}

	cursor, err := parseListTemplatesInput(input)
	assert.Error(t, err)
	assert.Nil(t, cursor)
}

func TestHTTP_ListTemplates_FirstPage(t *testing.T) {
	lastGenerated := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	tpl := service.RecurringTemplate{
		ID:                uuid.Must(uuid.NewV4()),
		Category:          "rent",
		Amount:            decimal.RequireFromString("-1200.00"),
		Type:              transaction.TransactionTypeExpense,
		Frequency:         schedule.FrequencyMonthly,
		StartDate:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:            true,
		LastGeneratedDate: &lastGenerated,
	}

	nextMax := time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)

	mockSvc := new(mockTemplateLister)
	mockSvc.On("ListTemplates", mock.Anything, (*service.TemplateCursor)(nil)).
		Return([]service.RecurringTemplate{tpl}, &service.TemplateCursor{
			Position:        1,
			Limit:           20,
			MaxCreationTime: nextMax,
		}, nil)

	resp := newListTestAPI(t, mockSvc).Post("/v1/recurring/list", ListTemplatesBody{})

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ListTemplatesResponseBody
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Templates, 1)
	assert.Equal(t, tpl.ID.String(), body.Templates[0].ID)
	assert.Equal(t, "monthly", body.Templates[0].Frequency)
	assert.Equal(t, "2026-01-01", body.Templates[0].StartDate)
	assert.Equal(t, "2026-02-01", body.Templates[0].LastGeneratedDate)
	assert.True(t, body.Templates[0].Active)
	assert.NotNil(t, body.NextCursor)
	assert.Equal(t, 1, body.NextCursor.Position)
	assert.Equal(t, "2026-02-04T00:00:00Z", body.NextCursor.MaxCreationTime)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_ListTemplates_LastPage(t *testing.T) {
	mockSvc := new(mockTemplateLister)
	mockSvc.On("ListTemplates", mock.Anything, mock.MatchedBy(func(cursor *service.TemplateCursor) bool {
		return cursor != nil && cursor.Position == 20 && cursor.Limit == 20
	})).Return([]service.RecurringTemplate{}, nil, nil)

	resp := newListTestAPI(t, mockSvc).Post("/v1/recurring/list", ListTemplatesBody{
		Cursor: &ListTemplatesCursor{
			Position:        20,
			Limit:           20,
			MaxCreationTime: "2026-06-15T08:00:00Z",
		},
	})

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ListTemplatesResponseBody
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Templates)
	assert.Nil(t, body.NextCursor)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_ListTemplates_InvalidCursor(t *testing.T) {
	mockSvc := new(mockTemplateLister)

	// Huma's format:"date-time" schema validation rejects this before the
	// handler runs.
	resp := newListTestAPI(t, mockSvc).Post("/v1/recurring/list", ListTemplatesBody{
		Cursor: &ListTemplatesCursor{
			Position:        0,
			Limit:           10,
			MaxCreationTime: "not-a-date",
		},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	mockSvc.AssertNotCalled(t, "ListTemplates")
}

func TestHTTP_ListTemplates_ServiceError(t *testing.T) {
	mockSvc := new(mockTemplateLister)
	mockSvc.On("ListTemplates", mock.Anything, mock.Anything).
		Return(nil, nil, errors.New("database unavailable"))

	resp := newListTestAPI(t, mockSvc).Post("/v1/recurring/list", ListTemplatesBody{})

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	mockSvc.AssertExpectations(t)
}
