package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/echoflow/internal/array"
	"github.com/banshee-data/echoflow/internal/fieldio"
	"github.com/banshee-data/echoflow/internal/opticalflow"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// Run is one DetermineVelocities result together with its inputs.
type Run struct {
	ID        string
	CreatedAt time.Time
	Lag1Path  string
	Lag0Path  string
	// Params is the tuning configuration the run used, as JSON.
	Params  json.RawMessage
	Summary opticalflow.Summary
	Elapsed time.Duration

	// U and V are nil in ListRuns results.
	U, V *array.Array2[float32]
}

// InsertRun stores r, assigning an ID and creation time when unset.
func (db *DB) InsertRun(ctx context.Context, r *Run) error {
	if r.U == nil || r.V == nil {
		return errors.New("insert run: missing velocity grids")
	}
	if !array.SameShape(r.U, r.V) {
		return fmt.Errorf("insert run: u is %dx%d, v is %dx%d", r.U.Rows(), r.U.Cols(), r.V.Rows(), r.V.Cols())
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = db.clock.Now()
	}
	params := r.Params
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}

	s := r.Summary
	_, err := db.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, created_unix_nanos, lag1_path, lag0_path, grid_rows, grid_cols, params_json,
			valid_vectors, mean_u, mean_v, mean_speed, max_speed, speed_stddev,
			elapsed_nanos, u, v
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt.UnixNano(), r.Lag1Path, r.Lag0Path, r.U.Rows(), r.U.Cols(), string(params),
		s.Valid, nullFloat(s.MeanU), nullFloat(s.MeanV), nullFloat(s.MeanSpeed), nullFloat(s.MaxSpeed), nullFloat(s.SpeedStdDev),
		r.Elapsed.Nanoseconds(), fieldio.Marshal(r.U), fieldio.Marshal(r.V),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.ID, err)
	}
	return nil
}

const runColumns = `run_id, created_unix_nanos, lag1_path, lag0_path, grid_rows, grid_cols, params_json,
	valid_vectors, mean_u, mean_v, mean_speed, max_speed, speed_stddev, elapsed_nanos`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(sc rowScanner, extra ...any) (*Run, error) {
	var (
		r                   Run
		created, elapsed    int64
		params              string
		meanU, meanV        sql.NullFloat64
		meanSpeed, maxSpeed sql.NullFloat64
		stddev              sql.NullFloat64
	)
	dest := []any{
		&r.ID, &created, &r.Lag1Path, &r.Lag0Path, &r.Summary.Rows, &r.Summary.Cols, &params,
		&r.Summary.Valid, &meanU, &meanV, &meanSpeed, &maxSpeed, &stddev, &elapsed,
	}
	if err := sc.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	r.Elapsed = time.Duration(elapsed)
	r.Params = json.RawMessage(params)
	r.Summary.MeanU = floatOrNaN(meanU)
	r.Summary.MeanV = floatOrNaN(meanV)
	r.Summary.MeanSpeed = floatOrNaN(meanSpeed)
	r.Summary.MaxSpeed = floatOrNaN(maxSpeed)
	r.Summary.SpeedStdDev = floatOrNaN(stddev)
	return &r, nil
}

// GetRun loads a run including its velocity grids.
func (db *DB) GetRun(ctx context.Context, id string) (*Run, error) {
	var ublob, vblob []byte
	row := db.QueryRowContext(ctx, `SELECT `+runColumns+`, u, v FROM runs WHERE run_id = ?`, id)
	r, err := scanRun(row, &ublob, &vblob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	if r.U, err = decodeGrid(ublob, r.Summary.Rows, r.Summary.Cols); err != nil {
		return nil, fmt.Errorf("get run %s: u: %w", id, err)
	}
	if r.V, err = decodeGrid(vblob, r.Summary.Rows, r.Summary.Cols); err != nil {
		return nil, fmt.Errorf("get run %s: v: %w", id, err)
	}
	return r, nil
}

// ListRuns returns the most recent runs first, without their grids.
// A non-positive limit returns every run.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_unix_nanos DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// DeleteRun removes a run.
func (db *DB) DeleteRun(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

func decodeGrid(blob []byte, rows, cols int) (*array.Array2[float32], error) {
	f, err := fieldio.Unmarshal(blob)
	if err != nil {
		return nil, err
	}
	if f.Rows() != rows || f.Cols() != cols {
		return nil, fmt.Errorf("grid is %dx%d, run records %dx%d", f.Rows(), f.Cols(), rows, cols)
	}
	return f, nil
}

// SQLite has no NaN; store it as NULL.
func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
