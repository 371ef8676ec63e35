package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morninglang/mornc/internal/config"
	"github.com/morninglang/mornc/internal/pipeline"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j1.Close())

	j2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j2.Close())
}

func TestRunRoundTrip(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	require.NoError(t, j.BeginRun(ctx, "run-1", "fp-1", started))

	stages := []pipeline.StageResult{
		{Stage: config.StageBuild, Seq: 1, State: pipeline.StateSucceeded, ExitCode: 0, Duration: 2 * time.Second},
		{Stage: config.StageLower, Seq: 2, State: pipeline.StateSucceeded, ExitCode: 0, Duration: 150 * time.Millisecond},
		{Stage: config.StageNative, Seq: 3, State: pipeline.StateSucceeded, ExitCode: 0, Duration: time.Second},
		{Stage: config.StageExec, Seq: 4, State: pipeline.StateSucceeded, ExitCode: 42, Duration: 10 * time.Millisecond},
	}
	for _, s := range stages {
		require.NoError(t, j.RecordStage(ctx, "run-1", s))
	}
	require.NoError(t, j.FinishRun(ctx, "run-1", pipeline.RunSucceeded, 42, true))

	run, err := j.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "fp-1", run.Fingerprint)
	assert.Equal(t, "2026-03-14T09:26:53Z", run.StartedAt)
	assert.Equal(t, pipeline.RunSucceeded, run.State)
	assert.True(t, run.ProgramExited)
	assert.Equal(t, 42, run.ProgramExit)

	got, err := j.StageRecords(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, stages, got)
}

func TestFinishRunWithoutProgramExit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.BeginRun(ctx, "run-1", "fp-1", time.Now()))
	require.NoError(t, j.FinishRun(ctx, "run-1", pipeline.RunFailed, 0, false))

	run, err := j.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, pipeline.RunFailed, run.State)
	assert.False(t, run.ProgramExited)
}

func TestIncompleteRunHasEmptyState(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.BeginRun(ctx, "run-1", "fp-1", time.Now()))

	run, err := j.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, run.State)
	assert.False(t, run.ProgramExited)
}

func TestRecordStageReplayIgnored(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.BeginRun(ctx, "run-1", "fp-1", time.Now()))
	res := pipeline.StageResult{Stage: config.StageBuild, Seq: 1, State: pipeline.StateSucceeded}
	require.NoError(t, j.RecordStage(ctx, "run-1", res))
	require.NoError(t, j.RecordStage(ctx, "run-1", res))

	records, err := j.StageRecords(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestListRunsNewestFirst(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	// UUIDv7-style IDs sort lexically by creation time.
	require.NoError(t, j.BeginRun(ctx, "0190-aaaa", "fp-1", time.Now()))
	require.NoError(t, j.BeginRun(ctx, "0190-bbbb", "fp-2", time.Now()))
	require.NoError(t, j.BeginRun(ctx, "0190-cccc", "fp-3", time.Now()))

	runs, err := j.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "0190-cccc", runs[0].ID)
	assert.Equal(t, "0190-bbbb", runs[1].ID)
	assert.Equal(t, "0190-aaaa", runs[2].ID)
}

func TestListRunsEmpty(t *testing.T) {
	j := openTestJournal(t)

	runs, err := j.ListRuns(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestGetRunAbsent(t *testing.T) {
	j := openTestJournal(t)

	_, err := j.GetRun(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStageRecordsAbsentRun(t *testing.T) {
	j := openTestJournal(t)

	records, err := j.StageRecords(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBeginRunDuplicateID(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.BeginRun(ctx, "run-1", "fp-1", time.Now()))
	assert.Error(t, j.BeginRun(ctx, "run-1", "fp-1", time.Now()))
}
