package transaction

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/scan"
	"github.com/stretchr/testify/assert"
)

// capturingExec is a bob.Executor that records the rendered statement and
// its arguments instead of touching a database.
type capturingExec struct {
	query  string
	args   []any
	result sql.Result
	err    error
}

func (e *capturingExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	e.query = query
	e.args = args
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

func (e *capturingExec) QueryContext(ctx context.Context, query string, args ...any) (scan.Rows, error) {
	panic("unexpected QueryContext")
}

type execResult struct {
	rowsAffected int64
}

func (r execResult) LastInsertId() (int64, error) { return 0, nil }
func (r execResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

func testTransactionCreate() *TransactionCreate {
	return &TransactionCreate{
		Category:        "Rent",
		Amount:          decimal.RequireFromString("-450.00"),
		Type:            TransactionTypeExpense,
		TransactionDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Notes:           "Rent (Recurring)",
		PaymentMethod:   "Bank transfer",
		Tags:            []string{"home"},
	}
}

func TestInsertTransaction_Success(t *testing.T) {
	exec := &capturingExec{result: execResult{rowsAffected: 1}}

	create := testTransactionCreate()
	create.ID = uuid.Must(uuid.NewV4())

	id, err := insertTransaction(context.Background(), exec, create)

	assert.NoError(t, err)
	assert.Equal(t, create.ID, id)
	assert.Contains(t, exec.query, `"id"`, "primary key is supplied client-side")
	assert.Equal(t, create.ID, exec.args[0])
}

func TestInsertTransaction_GeneratesIDWhenUnset(t *testing.T) {
	exec := &capturingExec{result: execResult{rowsAffected: 1}}

	id, err := insertTransaction(context.Background(), exec, testTransactionCreate())

	assert.NoError(t, err)
	assert.False(t, id.IsNil())
	assert.Equal(t, id, exec.args[0])
}

// A replayed insert must not raise a database error: inside the operator
// transaction a raised 23505 would abort the whole transaction and block
// the watermark repair that follows. The statement carries ON CONFLICT DO
// NOTHING and the collision surfaces as a zero row count instead.
func TestInsertTransaction_DuplicateKeySignaledWithoutError(t *testing.T) {
	exec := &capturingExec{result: execResult{rowsAffected: 0}}

	create := testTransactionCreate()
	create.ID = uuid.Must(uuid.NewV4())

	id, err := insertTransaction(context.Background(), exec, create)

	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Equal(t, create.ID, id, "existing row's ID is still reported")

	normalized := strings.Join(strings.Fields(exec.query), " ")
	assert.Contains(t, normalized, "ON CONFLICT (id) DO NOTHING")
}

func TestInsertTransaction_MissingTemplate(t *testing.T) {
	exec := &capturingExec{err: &pq.Error{Code: "23503"}}

	id, err := insertTransaction(context.Background(), exec, testTransactionCreate())

	assert.ErrorIs(t, err, ErrMissingTemplate)
	assert.Equal(t, uuid.Nil, id)
}

func TestInsertTransaction_OtherErrorPassesThrough(t *testing.T) {
	exec := &capturingExec{err: &pq.Error{Code: "53300", Message: "too many connections"}}

	_, err := insertTransaction(context.Background(), exec, testTransactionCreate())

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingTemplate)
	assert.NotErrorIs(t, err, ErrDuplicateKey)
}
