package core

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func ptr[T any](v T) *T { return &v }

// recorder captures call events from fakes that may run on several
// goroutines.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeStore struct {
	rec         *recorder
	truncateErr error
	tx          pgx.Tx

	// Scripted query results, keyed by the table the statement reads.
	entityRows [][]any
	txnRows    map[int64][][]any
	seriesRows map[int64][][]any
	queryErr   map[string]error
	gotPattern string
}

func (f *fakeStore) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeStore) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	switch {
	case strings.Contains(sql, "FROM entities"):
		if err := f.queryErr["entities"]; err != nil {
			return nil, err
		}
		f.gotPattern, _ = args[0].(string)
		return &fakeRows{rows: f.entityRows}, nil
	case strings.Contains(sql, "FROM transactions"):
		if err := f.queryErr["transactions"]; err != nil {
			return nil, err
		}
		return &fakeRows{rows: f.txnRows[args[0].(int64)]}, nil
	case strings.Contains(sql, "FROM timeseries"):
		if err := f.queryErr["timeseries"]; err != nil {
			return nil, err
		}
		return &fakeRows{rows: f.seriesRows[args[0].(int64)]}, nil
	}
	return nil, fmt.Errorf("unexpected query: %s", sql)
}

func (f *fakeStore) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (f *fakeStore) TruncateAll(context.Context) error {
	f.rec.add("truncate")
	return f.truncateErr
}

func (f *fakeStore) WithTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	return fn(f.tx)
}

// fakeTx satisfies pgx.Tx for mutation tests; only Exec is meaningful.
type fakeTx struct {
	execTag pgconn.CommandTag
	execErr error
	gotSQL  string
	gotArgs []any
}

func (f *fakeTx) Begin(context.Context) (pgx.Tx, error) { return nil, errors.New("not implemented") }
func (f *fakeTx) Commit(context.Context) error          { return nil }
func (f *fakeTx) Rollback(context.Context) error        { return nil }

func (f *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (f *fakeTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }

func (f *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.gotSQL = sql
	f.gotArgs = args
	return f.execTag, f.execErr
}

func (f *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row { return nil }
func (f *fakeTx) Conn() *pgx.Conn                                  { return nil }

type fakeLoader struct {
	rec   *recorder
	rows  map[string]int64
	errOn map[string]error
}

func (f *fakeLoader) Load(_ context.Context, _ []byte, table string, _ []string) (int64, error) {
	f.rec.add("load " + table)
	if err := f.errOn[table]; err != nil {
		return 0, err
	}
	return f.rows[table], nil
}

type fakeArchiver struct {
	mu        sync.Mutex
	ensured   int
	puts      []string
	ensureErr error
	putErr    error
	deleted   []string
	deleteErr error
	objects   []string
	listErr   error
}

func (f *fakeArchiver) EnsureBucket(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured++
	return f.ensureErr
}

func (f *fakeArchiver) Put(_ context.Context, name string, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.puts = append(f.puts, name)
	return nil
}

func (f *fakeArchiver) Delete(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakeArchiver) List(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.objects...), f.listErr
}

func (f *fakeArchiver) putNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.puts...)
}

// fakeRows serves a fixed result set through pgx.Rows. A nil cell scans as
// the destination's zero value, matching how NULL lands in a pointer field.
type fakeRows struct {
	rows    [][]any
	idx     int
	rowsErr error
	scanErr error
}

func (r *fakeRows) Next() bool {
	if r.idx < len(r.rows) {
		r.idx++
		return true
	}
	return false
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.rows[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d).Elem()
		if row[i] == nil {
			dv.Set(reflect.Zero(dv.Type()))
			continue
		}
		dv.Set(reflect.ValueOf(row[i]))
	}
	return nil
}

func (r *fakeRows) Close()                        {}
func (r *fakeRows) Err() error                    { return r.rowsErr }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *fakeRows) RawValues() [][]byte           { return nil }
func (r *fakeRows) Conn() *pgx.Conn               { return nil }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (r *fakeRows) Values() ([]any, error) {
	return nil, errors.New("not implemented")
}
