package postgres_test

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Hand-rolled stubs for the PgxPool surface the repos use.

// rowStub implements pgx.Row.
type rowStub struct{ scan func(dest ...any) error }

func (r rowStub) Scan(dest ...any) error { return r.scan(dest...) }

// rowsStub implements pgx.Rows over scripted per-row scan funcs.
type rowsStub struct {
	rows   []func(dest ...any) error
	pos    int
	err    error
	closed bool
}

func (r *rowsStub) Close()                        { r.closed = true }
func (r *rowsStub) Err() error                    { return r.err }
func (r *rowsStub) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *rowsStub) FieldDescriptions() []pgconn.FieldDescription {
	return nil
}
func (r *rowsStub) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}
func (r *rowsStub) Scan(dest ...any) error { return r.rows[r.pos-1](dest...) }
func (r *rowsStub) Values() ([]any, error) { return nil, nil }
func (r *rowsStub) RawValues() [][]byte    { return nil }
func (r *rowsStub) Conn() *pgx.Conn        { return nil }

// txStub implements pgx.Tx with scripted Exec and QueryRow responses
// consumed in call order.
type txStub struct {
	execResults []execResult
	execSQL     []string
	queryRows   []rowStub
	querySQL    []string
	commitErr   error
	committed   bool
	rolledBack  bool
}

type execResult struct {
	tag pgconn.CommandTag
	err error
}

func (t *txStub) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.execSQL = append(t.execSQL, sql)
	if len(t.execResults) == 0 {
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	res := t.execResults[0]
	t.execResults = t.execResults[1:]
	return res.tag, res.err
}

func (t *txStub) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	t.querySQL = append(t.querySQL, sql)
	if len(t.queryRows) == 0 {
		return rowStub{scan: func(_ ...any) error { return errors.New("no row configured") }}
	}
	row := t.queryRows[0]
	t.queryRows = t.queryRows[1:]
	return row
}

func (t *txStub) Commit(context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *txStub) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (t *txStub) Begin(context.Context) (pgx.Tx, error) { return t, nil }
func (t *txStub) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *txStub) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (t *txStub) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (t *txStub) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *txStub) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (t *txStub) Conn() *pgx.Conn                                         { return nil }

// poolStub implements postgres.PgxPool.
type poolStub struct {
	execErr  error
	row      rowStub
	rows     *rowsStub
	queryErr error
	tx       *txStub
	beginErr error
}

func (p *poolStub) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, p.execErr
}

func (p *poolStub) QueryRow(context.Context, string, ...any) pgx.Row {
	if p.row.scan == nil {
		return rowStub{scan: func(_ ...any) error { return errors.New("no row configured") }}
	}
	return p.row
}

func (p *poolStub) Query(context.Context, string, ...any) (pgx.Rows, error) {
	if p.queryErr != nil {
		return nil, p.queryErr
	}
	if p.rows == nil {
		return &rowsStub{}, nil
	}
	return p.rows, nil
}

func (p *poolStub) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	if p.beginErr != nil {
		return nil, p.beginErr
	}
	if p.tx == nil {
		p.tx = &txStub{}
	}
	return p.tx, nil
}
