package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/footy-data/internal/footy"
	"github.com/albapepper/footy-data/internal/frame"
)

type execCall struct {
	sql  string
	args []any
}

type fakeQuerier struct {
	execs   []execCall
	tag     pgconn.CommandTag
	execErr error
	row     fakeRow
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return f.tag, f.execErr
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.row.sql = sql
	f.row.args = args
	return &f.row
}

type fakeRow struct {
	sql    string
	args   []any
	values []any
	err    error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *[]byte:
			*p = r.values[i].([]byte)
		case *time.Time:
			*p = r.values[i].(time.Time)
		case *int64:
			*p = r.values[i].(int64)
		case **time.Time:
			*p = r.values[i].(*time.Time)
		default:
			return errors.New("unexpected scan target")
		}
	}
	return nil
}

func ladderQuery() footy.Query {
	r := 3
	return footy.Query{Dataset: footy.Ladder, Season: 2024, Round: &r, Source: footy.SourceAFL, Competition: footy.CompMen}
}

func TestSave(t *testing.T) {
	fq := &fakeQuerier{}
	f := frame.New()
	require.NoError(t, f.AddColumn("team", []any{"Sydney", "Carlton"}))

	require.NoError(t, NewStore(fq).Save(context.Background(), ladderQuery(), f))
	require.Len(t, fq.execs, 1)

	call := fq.execs[0]
	assert.Equal(t, "snapshot_insert", call.sql)
	assert.Equal(t, "ladder:AFL:AFLM:2024:3", call.args[0])
	assert.Equal(t, "ladder", call.args[1])
	assert.Equal(t, "AFL", call.args[2])
	assert.Equal(t, 2, call.args[4])
	assert.JSONEq(t, `{"columns":["team"],"data":{"team":["Sydney","Carlton"]}}`, string(call.args[5].([]byte)))
}

func TestLatest(t *testing.T) {
	fetched := time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)
	fq := &fakeQuerier{row: fakeRow{values: []any{
		[]byte(`{"columns":["team","pts"],"data":{"pts":[12,8],"team":["Sydney","Carlton"]}}`),
		fetched,
	}}}

	snap, err := NewStore(fq).Latest(context.Background(), ladderQuery())
	require.NoError(t, err)
	assert.Equal(t, "snapshot_latest", fq.row.sql)
	assert.Equal(t, []any{"ladder:AFL:AFLM:2024:3"}, fq.row.args)
	assert.Equal(t, fetched, snap.FetchedAt)
	assert.Equal(t, []string{"team", "pts"}, snap.Frame.Names())
	assert.Equal(t, map[string]any{"team": "Carlton", "pts": int64(8)}, snap.Frame.Row(1))
}

func TestLatestNotFound(t *testing.T) {
	fq := &fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}
	_, err := NewStore(fq).Latest(context.Background(), ladderQuery())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPrune(t *testing.T) {
	fq := &fakeQuerier{tag: pgconn.NewCommandTag("DELETE 7")}
	n, err := NewStore(fq).Prune(context.Background(), 30)
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
	assert.Equal(t, "snapshot_prune", fq.execs[0].sql)
	assert.Equal(t, []any{30}, fq.execs[0].args)
}

func TestStats(t *testing.T) {
	newest := time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)
	fq := &fakeQuerier{row: fakeRow{values: []any{int64(10), int64(4), &newest}}}
	st, err := NewStore(fq).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Rows: 10, Keys: 4, NewestAt: &newest}, st)
}
