package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/carson-networks/recurring-server/internal/logging"
	"github.com/carson-networks/recurring-server/internal/operator/actions"
	"github.com/carson-networks/recurring-server/internal/schedule"
	"github.com/carson-networks/recurring-server/internal/storage"
	"github.com/carson-networks/recurring-server/internal/storage/template"
	"github.com/carson-networks/recurring-server/internal/storage/transaction"
)

// errTxAborted mirrors Postgres 25P02: once a statement raises an error,
// every later statement in the same transaction fails until rollback.
var errTxAborted = errors.New("current transaction is aborted")

// memStore is an in-memory stand-in for the template and transaction tables.
// Its runner applies each action to a staged copy and keeps it only on
// success, mirroring the operator's per-step transaction semantics,
// including the aborted-transaction behavior after a raised error.
type memStore struct {
	templates map[uuid.UUID]*template.Template
	order     []uuid.UUID
	ledger    map[uuid.UUID]*transaction.Transaction

	// aborted is set on a staged clone when a statement raises, poisoning
	// the rest of the step.
	aborted bool

	listErr error
	// failFor injects a step failure for a template ID (store unavailable).
	failFor map[uuid.UUID]error
	// vanish deletes the template right before its first step lands,
	// simulating a concurrent user delete after the snapshot was taken.
	vanish map[uuid.UUID]bool

	steps int
}

func newMemStore(templates ...*template.Template) *memStore {
	s := &memStore{
		templates: make(map[uuid.UUID]*template.Template),
		ledger:    make(map[uuid.UUID]*transaction.Transaction),
		failFor:   make(map[uuid.UUID]error),
		vanish:    make(map[uuid.UUID]bool),
	}
	for _, tpl := range templates {
		s.templates[tpl.ID] = tpl
		s.order = append(s.order, tpl.ID)
	}
	return s
}

// -- template.ITemplateTable --

func (s *memStore) ListActive(ctx context.Context) ([]*template.Template, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var active []*template.Template
	for _, id := range s.order {
		if tpl, ok := s.templates[id]; ok && tpl.Active {
			snapshot := *tpl
			active = append(active, &snapshot)
		}
	}
	return active, nil
}

func (s *memStore) FindByID(ctx context.Context, id uuid.UUID) (*template.Template, error) {
	tpl, ok := s.templates[id]
	if !ok {
		return nil, template.ErrNotFound
	}
	snapshot := *tpl
	return &snapshot, nil
}

func (s *memStore) Insert(ctx context.Context, create *template.TemplateCreate) (uuid.UUID, error) {
	return uuid.Nil, errors.New("not used in engine tests")
}

func (s *memStore) List(ctx context.Context, filter *template.TemplateFilter) ([]*template.Template, error) {
	return nil, errors.New("not used in engine tests")
}

func (s *memStore) Update(ctx context.Context, id uuid.UUID, update *template.TemplateUpdate) error {
	return errors.New("not used in engine tests")
}

// -- StepRunner --

func (s *memStore) Process(ctx context.Context, action actions.IAction) error {
	s.steps++

	if step, ok := action.(*actions.MaterializeStep); ok {
		if err, failed := s.failFor[step.Template.ID]; failed {
			return err
		}
		if s.vanish[step.Template.ID] {
			delete(s.templates, step.Template.ID)
		}
	}

	staged := s.clone()
	writer := &storage.Writer{
		Template:    (*memTemplateWriter)(staged),
		Transaction: (*memTransactionWriter)(staged),
	}
	if err := action.Perform(ctx, writer); err != nil {
		return err
	}
	s.templates = staged.templates
	s.ledger = staged.ledger
	return nil
}

func (s *memStore) clone() *memStore {
	staged := &memStore{
		templates: make(map[uuid.UUID]*template.Template, len(s.templates)),
		ledger:    make(map[uuid.UUID]*transaction.Transaction, len(s.ledger)),
	}
	for id, tpl := range s.templates {
		snapshot := *tpl
		staged.templates[id] = &snapshot
	}
	for id, tx := range s.ledger {
		snapshot := *tx
		staged.ledger[id] = &snapshot
	}
	return staged
}

type memTemplateWriter memStore

func (w *memTemplateWriter) AdvanceWatermark(ctx context.Context, id uuid.UUID, lastGenerated time.Time) error {
	if w.aborted {
		return errTxAborted
	}
	tpl, ok := w.templates[id]
	if !ok {
		// A zero-row UPDATE is not a raised error; the transaction
		// stays usable.
		return template.ErrNotFound
	}
	tpl.LastGeneratedDate = &lastGenerated
	return nil
}

func (w *memTemplateWriter) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if w.aborted {
		return errTxAborted
	}
	tpl, ok := w.templates[id]
	if !ok {
		return template.ErrNotFound
	}
	tpl.Active = active
	return nil
}

type memTransactionWriter memStore

func (w *memTransactionWriter) Insert(ctx context.Context, create *transaction.TransactionCreate) (uuid.UUID, error) {
	if w.aborted {
		return uuid.Nil, errTxAborted
	}
	if create.TemplateID != nil {
		if _, ok := w.templates[*create.TemplateID]; !ok {
			// The foreign key raises, aborting the transaction.
			w.aborted = true
			return uuid.Nil, transaction.ErrMissingTemplate
		}
	}
	if _, exists := w.ledger[create.ID]; exists {
		// ON CONFLICT DO NOTHING: the statement succeeds with zero rows
		// affected, so later statements in the step still run.
		return create.ID, transaction.ErrDuplicateKey
	}
	w.ledger[create.ID] = &transaction.Transaction{
		ID:              create.ID,
		TemplateID:      create.TemplateID,
		Category:        create.Category,
		Amount:          create.Amount,
		Type:            create.Type,
		TransactionDate: create.TransactionDate,
		Notes:           create.Notes,
		PaymentMethod:   create.PaymentMethod,
		Tags:            create.Tags,
	}
	return create.ID, nil
}

// -- helpers --

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthlyTemplate(start time.Time) *template.Template {
	return &template.Template{
		ID:        uuid.Must(uuid.NewV4()),
		Category:  "Rent",
		Amount:    decimal.RequireFromString("-450.00"),
		Type:      transaction.TransactionTypeExpense,
		Frequency: schedule.FrequencyMonthly,
		StartDate: start,
		Active:    true,
	}
}

func newTestEngine(store *memStore) *Engine {
	return New(&storage.Storage{Templates: store}, store, logging.SetupLogging())
}

func ledgerDates(store *memStore) []time.Time {
	var dates []time.Time
	for _, tx := range store.ledger {
		dates = append(dates, tx.TransactionDate)
	}
	return dates
}

// -- tests --

func TestRun_CatchUpCompleteness(t *testing.T) {
	tpl := monthlyTemplate(date(2024, 1, 1))
	store := newMemStore(tpl)

	report, err := newTestEngine(store).Run(context.Background(), date(2024, 4, 15))

	assert.NoError(t, err)
	assert.Equal(t, 4, report.Created)
	assert.Equal(t, 0, report.Deactivated)
	assert.Empty(t, report.FailedTemplateIDs)

	expected := []time.Time{
		date(2024, 1, 1), date(2024, 2, 1), date(2024, 3, 1), date(2024, 4, 1),
	}
	assert.ElementsMatch(t, expected, ledgerDates(store))

	watermark := store.templates[tpl.ID].LastGeneratedDate
	assert.NotNil(t, watermark)
	assert.Equal(t, date(2024, 4, 1), *watermark)
}

func TestRun_RepeatRunCreatesNoDuplicates(t *testing.T) {
	tpl := monthlyTemplate(date(2024, 1, 1))
	store := newMemStore(tpl)
	eng := newTestEngine(store)
	now := date(2024, 4, 15)

	first, err := eng.Run(context.Background(), now)
	assert.NoError(t, err)
	assert.Equal(t, 4, first.Created)

	second, err := eng.Run(context.Background(), now)
	assert.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Empty(t, second.FailedTemplateIDs)
	assert.Len(t, store.ledger, 4)
}

func TestRun_EndDateClampAndDeactivate(t *testing.T) {
	tpl := monthlyTemplate(date(2024, 1, 1))
	endDate := date(2024, 2, 15)
	tpl.EndDate = &endDate
	store := newMemStore(tpl)

	report, err := newTestEngine(store).Run(context.Background(), date(2024, 6, 1))

	assert.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Deactivated)
	assert.ElementsMatch(t, []time.Time{date(2024, 1, 1), date(2024, 2, 1)}, ledgerDates(store))
	assert.False(t, store.templates[tpl.ID].Active)
}

func TestRun_EndDateTodayIsInclusive(t *testing.T) {
	tpl := monthlyTemplate(date(2024, 1, 1))
	endDate := date(2024, 2, 1)
	tpl.EndDate = &endDate
	store := newMemStore(tpl)

	// now == endDate: Feb 1 still generates, but the template is not yet
	// retired.
	report, err := newTestEngine(store).Run(context.Background(), date(2024, 2, 1))

	assert.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Deactivated)
	assert.True(t, store.templates[tpl.ID].Active)
}

func TestRun_IdleSteadyStateIsFree(t *testing.T) {
	tpl := monthlyTemplate(date(2024, 1, 1))
	watermark := date(2024, 4, 1)
	tpl.LastGeneratedDate = &watermark
	store := newMemStore(tpl)

	report, err := newTestEngine(store).Run(context.Background(), date(2024, 4, 15))

	assert.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Empty(t, report.FailedTemplateIDs)
	assert.Zero(t, store.steps, "steady state must issue no writes")
}

func TestRun_FutureStartDateProducesNothing(t *testing.T) {
	tpl := monthlyTemplate(date(2024, 8, 1))
	store := newMemStore(tpl)

	report, err := newTestEngine(store).Run(context.Background(), date(2024, 4, 15))

	assert.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Empty(t, store.ledger)
	assert.Zero(t, store.steps)
}

func TestRun_DuplicateRowRepairsStaleWatermark(t *testing.T) {
	tpl := monthlyTemplate(date(2024, 1, 1))
	store := newMemStore(tpl)

	// Simulate a prior attempt that wrote the January row but whose
	// watermark never became durable.
	janID := transaction.RecurringID(tpl.ID, date(2024, 1, 1))
	store.ledger[janID] = &transaction.Transaction{
		ID:              janID,
		TemplateID:      &tpl.ID,
		TransactionDate: date(2024, 1, 1),
	}

	report, err := newTestEngine(store).Run(context.Background(), date(2024, 2, 10))

	assert.NoError(t, err)
	assert.Equal(t, 1, report.Created, "only February is new")
	assert.Len(t, store.ledger, 2)

	watermark := store.templates[tpl.ID].LastGeneratedDate
	assert.NotNil(t, watermark)
	assert.Equal(t, date(2024, 2, 1), *watermark)
}

func TestRun_PerTemplateFailureIsolation(t *testing.T) {
	broken := monthlyTemplate(date(2024, 1, 1))
	healthy := monthlyTemplate(date(2024, 1, 1))
	store := newMemStore(broken, healthy)
	store.failFor[broken.ID] = errors.New("store unavailable")

	report, err := newTestEngine(store).Run(context.Background(), date(2024, 3, 1))

	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{broken.ID}, report.FailedTemplateIDs)
	assert.Equal(t, 3, report.Created, "healthy template fully caught up")
	assert.Nil(t, store.templates[broken.ID].LastGeneratedDate)
}

func TestRun_VanishedTemplateIsIdleNotFailed(t *testing.T) {
	tpl := monthlyTemplate(date(2024, 1, 1))
	store := newMemStore(tpl)
	store.vanish[tpl.ID] = true

	report, err := newTestEngine(store).Run(context.Background(), date(2024, 2, 10))

	assert.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Empty(t, report.FailedTemplateIDs)
	assert.Empty(t, store.ledger, "step rolled back when the watermark had no row")
}

func TestRun_InvalidTemplateIsSkippedAndReported(t *testing.T) {
	tpl := monthlyTemplate(date(2024, 5, 1))
	endDate := date(2024, 2, 1) // before start
	tpl.EndDate = &endDate
	store := newMemStore(tpl)

	report, err := newTestEngine(store).Run(context.Background(), date(2024, 6, 1))

	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{tpl.ID}, report.FailedTemplateIDs)
	assert.Empty(t, store.ledger)
	assert.True(t, store.templates[tpl.ID].Active, "invalid templates are not retired")
}

func TestRun_ListFailureFailsTheInvocation(t *testing.T) {
	store := newMemStore(monthlyTemplate(date(2024, 1, 1)))
	store.listErr = errors.New("connection refused")

	report, err := newTestEngine(store).Run(context.Background(), date(2024, 2, 1))

	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestRun_CancelledContextSkipsRemainingTemplates(t *testing.T) {
	first := monthlyTemplate(date(2024, 1, 1))
	second := monthlyTemplate(date(2024, 1, 1))
	store := newMemStore(first, second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newTestEngine(store).Run(ctx, date(2024, 3, 1))

	assert.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, report.FailedTemplateIDs)
	assert.Empty(t, store.ledger)
}

func TestRun_DailyCatchUp(t *testing.T) {
	tpl := monthlyTemplate(date(2024, 1, 1))
	tpl.Frequency = schedule.FrequencyDaily
	store := newMemStore(tpl)

	report, err := newTestEngine(store).Run(context.Background(), date(2024, 1, 3))

	assert.NoError(t, err)
	assert.Equal(t, 3, report.Created)
	assert.ElementsMatch(t,
		[]time.Time{date(2024, 1, 1), date(2024, 1, 2), date(2024, 1, 3)},
		ledgerDates(store))
}

func TestRun_MonthEndAnchorStaysClamped(t *testing.T) {
	tpl := monthlyTemplate(date(2025, 1, 31))
	store := newMemStore(tpl)

	report, err := newTestEngine(store).Run(context.Background(), date(2025, 4, 1))

	assert.NoError(t, err)
	assert.Equal(t, 3, report.Created)
	assert.ElementsMatch(t,
		[]time.Time{date(2025, 1, 31), date(2025, 2, 28), date(2025, 3, 28)},
		ledgerDates(store))
}

func TestRun_GeneratedRowsCarryProvenance(t *testing.T) {
	tpl := monthlyTemplate(date(2024, 1, 1))
	tpl.Notes = "Monthly rent"
	tpl.PaymentMethod = "Bank transfer"
	tpl.Tags = []string{"home", "fixed"}
	store := newMemStore(tpl)

	_, err := newTestEngine(store).Run(context.Background(), date(2024, 1, 1))
	assert.NoError(t, err)

	row := store.ledger[transaction.RecurringID(tpl.ID, date(2024, 1, 1))]
	assert.NotNil(t, row)
	assert.Equal(t, "Monthly rent (Recurring)", row.Notes)
	assert.Equal(t, "Bank transfer", row.PaymentMethod)
	assert.Equal(t, []string{"home", "fixed"}, []string(row.Tags))
	assert.NotNil(t, row.TemplateID)
	assert.Equal(t, tpl.ID, *row.TemplateID)
	assert.True(t, tpl.Amount.Equal(row.Amount))
}
