package dimension

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// Querier narrows Resolver's dependency to the two methods
// select/insert actually use, satisfied by *pgxpool.Pool in production
// and by a fake in tests. Grounded on the teacher's
// types.StagingQuerier, which abstracted over pgxpool.Pool/Conn/Tx and
// pgx.Conn/Tx the same way so applier code could be exercised without
// a live database.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Resolver implements select-or-insert: look a dimension row up by its
// identifying columns, inserting it on a miss, returning its surrogate
// PK either way. The source held one multiprocessing.Lock per table
// for the lifetime of this operation; Resolver does the same with a
// *sync.Mutex drawn from a shared Locks value, so two workers racing to
// insert the same new row serialize instead of colliding.
type Resolver struct {
	Pool  Querier
	Locks *Locks
}

// Fetch resolves d against the database, returning its pk column.
func (r *Resolver) Fetch(ctx context.Context, d Descriptor) (int64, error) {
	start := time.Now()
	pk, err := r.fetch(ctx, d)
	resolveDurations.WithLabelValues(d.Tag).Observe(time.Since(start).Seconds())
	if err != nil {
		resolveErrors.WithLabelValues(d.Tag).Inc()
	}
	return pk, err
}

func (r *Resolver) fetch(ctx context.Context, d Descriptor) (int64, error) {
	lock := r.Locks.For(d.Tag)
	lock.Lock()
	defer lock.Unlock()

	pk, err := r.selectPK(ctx, d)
	if err == nil {
		return pk, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	pk, err = r.insertPK(ctx, d)
	if err != nil {
		return 0, err
	}
	resolveInserts.WithLabelValues(d.Tag).Inc()
	return pk, nil
}

func (r *Resolver) selectPK(ctx context.Context, d Descriptor) (int64, error) {
	where := make([]string, len(d.IdentifyingColumns))
	for i, col := range d.IdentifyingColumns {
		where[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	query := fmt.Sprintf("SELECT pk FROM %s WHERE %s", d.Table, strings.Join(where, " AND "))

	rows, err := r.Pool.Query(ctx, query, d.IdentifyingValues...)
	if err != nil {
		return 0, errors.Wrapf(err, "selecting %s", d.Tag)
	}
	defer rows.Close()

	var pk int64
	found := false
	for rows.Next() {
		if found {
			return 0, errors.Wrapf(ErrAmbiguous, "%s %v", d.Tag, d.IdentifyingValues)
		}
		if err := rows.Scan(&pk); err != nil {
			return 0, errors.Wrapf(err, "scanning %s pk", d.Tag)
		}
		found = true
	}
	if err := rows.Err(); err != nil {
		return 0, errors.Wrapf(err, "iterating %s", d.Tag)
	}
	if !found {
		return 0, pgx.ErrNoRows
	}
	return pk, nil
}

// insertPK inserts d's row, falling back to a re-SELECT if another
// process won the race and inserted the identifying tuple first. The
// per-tag mutex in fetch only serializes this process's own workers;
// a second instance of the engine (or longitudinal-staticdata load
// running concurrently) can still hit the table's unique constraint,
// and that's treated as "row pre-existed", not an error.
func (r *Resolver) insertPK(ctx context.Context, d Descriptor) (int64, error) {
	placeholders := make([]string, len(d.InsertColumns))
	for i := range d.InsertColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING RETURNING pk",
		d.Table, strings.Join(d.InsertColumns, ", "), strings.Join(placeholders, ", "),
		strings.Join(d.IdentifyingColumns, ", "),
	)

	var pk int64
	err := r.Pool.QueryRow(ctx, query, d.InsertValues...).Scan(&pk)
	if err == nil {
		return pk, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, errors.Wrapf(err, "inserting %s", d.Tag)
	}

	pk, err = r.selectPK(ctx, d)
	return pk, errors.Wrapf(err, "re-selecting %s after insert conflict", d.Tag)
}
