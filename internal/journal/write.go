package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/morninglang/mornc/internal/pipeline"
)

// BeginRun inserts the run row at pipeline start. The run's state and
// program exit stay NULL until FinishRun; a row that keeps NULL state
// forever marks a run that crashed or was killed mid-flight.
func (j *Journal) BeginRun(ctx context.Context, runID, fingerprint string, startedAt time.Time) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, fingerprint, started_at)
		VALUES (?, ?, ?)
	`, runID, fingerprint, startedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// RecordStage appends one stage attempt to the run's record.
// Uses ON CONFLICT DO NOTHING so a replayed write is silently ignored.
func (j *Journal) RecordStage(ctx context.Context, runID string, res pipeline.StageResult) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO stage_records (run_id, seq, stage, state, exit_code, duration_ns, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		runID,
		res.Seq,
		string(res.Stage),
		string(res.State),
		res.ExitCode,
		res.Duration.Nanoseconds(),
		res.Detail,
	)
	if err != nil {
		return fmt.Errorf("record stage: %w", err)
	}
	return nil
}

// FinishRun stamps the run row with its terminal state. programExit is
// stored only when the exec stage actually ran the program.
func (j *Journal) FinishRun(ctx context.Context, runID, state string, programExit int, programExited bool) error {
	var exit any
	if programExited {
		exit = programExit
	}
	_, err := j.db.ExecContext(ctx, `
		UPDATE runs SET state = ?, program_exit = ? WHERE id = ?
	`, state, exit, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}
