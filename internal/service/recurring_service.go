package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/recurring-server/internal/schedule"
	"github.com/carson-networks/recurring-server/internal/storage"
	"github.com/carson-networks/recurring-server/internal/storage/template"
)

const defaultTemplateLimit = 20

// ErrTemplateNotFound is returned when the target template does not exist.
var ErrTemplateNotFound = errors.New("service: template not found")

// ErrEndBeforeStart rejects templates whose end date precedes their start.
var ErrEndBeforeStart = errors.New("service: end date before start date")

// RecurringService handles recurring-template business logic. It covers the
// user-facing CRUD paths; generation itself lives in the engine.
type RecurringService struct {
	storage *storage.Storage
}

// NewRecurringService creates a new RecurringService.
func NewRecurringService(store *storage.Storage) *RecurringService {
	return &RecurringService{storage: store}
}

// CreateTemplate validates and creates a new template, returning its ID.
func (s *RecurringService) CreateTemplate(ctx context.Context, create RecurringTemplateCreate) (uuid.UUID, error) {
	if create.Category == "" {
		return uuid.Nil, errors.New("service: category is required")
	}
	if !create.Frequency.Valid() {
		return uuid.Nil, errors.New("service: invalid frequency")
	}
	startDate := schedule.DateOnly(create.StartDate)
	if create.EndDate != nil && schedule.DateOnly(*create.EndDate).Before(startDate) {
		return uuid.Nil, ErrEndBeforeStart
	}

	storageCreate := &template.TemplateCreate{
		Category:      create.Category,
		Amount:        create.Amount,
		Type:          create.Type,
		Frequency:     create.Frequency,
		StartDate:     startDate,
		EndDate:       create.EndDate,
		Notes:         create.Notes,
		PaymentMethod: create.PaymentMethod,
		Tags:          create.Tags,
	}

	return s.storage.Templates.Insert(ctx, storageCreate)
}

// UpdateTemplate applies a user edit. Moving the end date before the
// template's start date is rejected.
func (s *RecurringService) UpdateTemplate(ctx context.Context, id uuid.UUID, update RecurringTemplateUpdate) error {
	existing, err := s.storage.Templates.FindByID(ctx, id)
	if err != nil {
		// Readers map the no-row case to ErrNotFound; sql.ErrNoRows is
		// matched too so an unmapped store still yields a 404.
		if errors.Is(err, template.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
			return ErrTemplateNotFound
		}
		return err
	}

	if update.EndDate != nil && schedule.DateOnly(*update.EndDate).Before(schedule.DateOnly(existing.StartDate)) {
		return ErrEndBeforeStart
	}

	storageUpdate := &template.TemplateUpdate{
		Category:      update.Category,
		Amount:        update.Amount,
		Notes:         update.Notes,
		PaymentMethod: update.PaymentMethod,
		EndDate:       update.EndDate,
		Active:        update.Active,
	}

	err = s.storage.Templates.Update(ctx, id, storageUpdate)
	if errors.Is(err, template.ErrNotFound) {
		return ErrTemplateNotFound
	}
	return err
}

// ListTemplates returns a page of templates using cursor pagination.
func (s *RecurringService) ListTemplates(ctx context.Context, cursor *TemplateCursor) ([]RecurringTemplate, *TemplateCursor, error) {
	limit := defaultTemplateLimit
	offset := 0
	var maxCreationTime *time.Time
	if cursor != nil {
		limit = cursor.Limit
		offset = cursor.Position
		maxCreationTime = &cursor.MaxCreationTime
	}

	filter := &template.TemplateFilter{
		Limit:           limit,
		Offset:          offset,
		MaxCreationTime: maxCreationTime,
	}

	rows, err := s.storage.Templates.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	if len(rows) == 0 {
		return nil, nil, nil
	}

	var nextCursor *TemplateCursor
	if len(rows) > limit {
		rows = rows[:limit]

		cursorMaxCreationTime := rows[0].CreatedAt
		if maxCreationTime != nil {
			cursorMaxCreationTime = *maxCreationTime
		}

		nextCursor = &TemplateCursor{
			Position:        offset + limit,
			Limit:           limit,
			MaxCreationTime: cursorMaxCreationTime,
		}
	}

	converted := make([]RecurringTemplate, len(rows))
	for i, row := range rows {
		converted[i] = RecurringTemplate{
			ID:                row.ID,
			Category:          row.Category,
			Amount:            row.Amount,
			Type:              row.Type,
			Frequency:         row.Frequency,
			StartDate:         row.StartDate,
			EndDate:           row.EndDate,
			Notes:             row.Notes,
			PaymentMethod:     row.PaymentMethod,
			Tags:              row.Tags,
			Active:            row.Active,
			LastGeneratedDate: row.LastGeneratedDate,
			CreatedAt:         row.CreatedAt,
		}
	}

	return converted, nextCursor, nil
}
