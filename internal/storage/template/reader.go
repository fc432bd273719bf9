package template

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

var columns = []any{
	"id", "category", "amount", "type", "frequency", "start_date", "end_date",
	"notes", "payment_method", "tags", "active", "last_generated_date", "created_at",
}

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

// FindByID retrieves a template by primary key, mapping the no-row case to
// ErrNotFound.
func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Template, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From("recurring_templates"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	row, err := bob.One(ctx, r.exec, q, scan.StructMapper[*Template]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return row, err
}

// ListActive returns every active template, ordered by creation time so runs
// process templates in a stable order. No pagination: this is the engine's
// per-run working set.
func (r *Reader) ListActive(ctx context.Context) ([]*Template, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From("recurring_templates"),
		sm.Where(psql.Quote("active").EQ(psql.Arg(true))),
		sm.OrderBy("created_at").Asc(),
		sm.OrderBy("id").Asc(),
	)
	return bob.All(ctx, r.exec, q, scan.StructMapper[*Template]())
}

// List returns templates matching the filter. The query fetches limit+1 rows
// so callers can detect whether a next page exists.
func (r *Reader) List(ctx context.Context, filter *TemplateFilter) ([]*Template, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From("recurring_templates"),
	}
	if filter != nil {
		if filter.Active != nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("active").EQ(psql.Arg(*filter.Active))))
		}
		if filter.MaxCreationTime != nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("created_at").LTE(psql.Arg(*filter.MaxCreationTime))))
		}
		if filter.Limit > 0 {
			queryMods = append(queryMods, sm.Limit(filter.Limit+1))
		}
		if filter.Offset > 0 {
			queryMods = append(queryMods, sm.Offset(filter.Offset))
		}
	}
	queryMods = append(queryMods,
		sm.OrderBy("created_at").Desc(),
		sm.OrderBy("id").Desc(),
	)
	return bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[*Template]())
}
