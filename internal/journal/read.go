package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/morninglang/mornc/internal/config"
	"github.com/morninglang/mornc/internal/pipeline"
)

// Run is one recorded pipeline run.
type Run struct {
	ID          string `json:"id"`
	Fingerprint string `json:"fingerprint"`
	StartedAt   string `json:"started_at"`

	// State is SUCCEEDED or FAILED; empty for a run that never finished.
	State string `json:"state,omitempty"`

	// ProgramExited reports whether the exec stage ran the program.
	// ProgramExit is meaningful only when ProgramExited is true; zero is
	// a legitimate exit status and is always emitted.
	ProgramExited bool `json:"program_exited"`
	ProgramExit   int  `json:"program_exit"`
}

// ListRuns returns all runs, newest first. Run IDs are UUIDv7 and
// time-sortable, so ordering by id descending is chronological.
func (j *Journal) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, fingerprint, started_at, state, program_exit
		FROM runs
		ORDER BY id COLLATE BINARY DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	if runs == nil {
		runs = []Run{}
	}
	return runs, nil
}

// GetRun returns one run by ID. Returns sql.ErrNoRows if absent.
func (j *Journal) GetRun(ctx context.Context, runID string) (Run, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, fingerprint, started_at, state, program_exit
		FROM runs
		WHERE id = ?
	`, runID)

	var (
		r     Run
		state sql.NullString
		exit  sql.NullInt64
	)
	if err := row.Scan(&r.ID, &r.Fingerprint, &r.StartedAt, &state, &exit); err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	r.State = state.String
	r.ProgramExited = exit.Valid
	r.ProgramExit = int(exit.Int64)
	return r, nil
}

// StageRecords returns a run's stage attempts ordered by logical seq.
func (j *Journal) StageRecords(ctx context.Context, runID string) ([]pipeline.StageResult, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, stage, state, exit_code, duration_ns, detail
		FROM stage_records
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query stage records: %w", err)
	}
	defer rows.Close()

	var records []pipeline.StageResult
	for rows.Next() {
		var (
			res        pipeline.StageResult
			stage      string
			state      string
			durationNS int64
		)
		if err := rows.Scan(&res.Seq, &stage, &state, &res.ExitCode, &durationNS, &res.Detail); err != nil {
			return nil, fmt.Errorf("scan stage record: %w", err)
		}
		res.Stage = config.StageName(stage)
		res.State = pipeline.StageState(state)
		res.Duration = time.Duration(durationNS)
		records = append(records, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stage records: %w", err)
	}

	if records == nil {
		records = []pipeline.StageResult{}
	}
	return records, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		r     Run
		state sql.NullString
		exit  sql.NullInt64
	)
	if err := rows.Scan(&r.ID, &r.Fingerprint, &r.StartedAt, &state, &exit); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	r.State = state.String
	r.ProgramExited = exit.Valid
	r.ProgramExit = int(exit.Int64)
	return r, nil
}
