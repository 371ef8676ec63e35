package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Transcript is the deterministic projection of a scenario run used for
// golden comparison. Durations and wall times are excluded.
type Transcript struct {
	Scenario    string            `json:"scenario"`
	RunID       string            `json:"run_id"`
	Fingerprint string            `json:"fingerprint"`
	Stages      []TranscriptStage `json:"stages"`
	Calls       []string          `json:"calls"`
	ProgramExit *int              `json:"program_exit,omitempty"`
	Failure     string            `json:"failure,omitempty"`
}

// TranscriptStage is one stage's deterministic record.
type TranscriptStage struct {
	Stage    string `json:"stage"`
	Seq      int64  `json:"seq"`
	State    string `json:"state"`
	ExitCode int    `json:"exit_code"`
	Detail   string `json:"detail,omitempty"`
}

// NewTranscript projects a scenario result into its golden form.
func NewTranscript(s *Scenario, res *Result) *Transcript {
	t := &Transcript{
		Scenario:    s.Name,
		RunID:       res.Run.RunID,
		Fingerprint: res.Run.Fingerprint,
		Calls:       res.Calls,
	}
	for _, sr := range res.Run.Stages {
		t.Stages = append(t.Stages, TranscriptStage{
			Stage:    string(sr.Stage),
			Seq:      sr.Seq,
			State:    string(sr.State),
			ExitCode: sr.ExitCode,
			Detail:   sr.Detail,
		})
	}
	if res.Run.ProgramExited {
		exit := res.Run.ProgramExit
		t.ProgramExit = &exit
	}
	if res.Err != nil {
		t.Failure = res.Err.Error()
	}
	return t
}

// RunWithGolden executes a scenario in a scratch directory and compares
// its transcript against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Expectation mismatches are reported as test errors before the golden
// comparison, so a drifting scenario fails loudly on both fronts.
func RunWithGolden(t *testing.T, s *Scenario, dir string) {
	t.Helper()

	res, err := Run(s, dir)
	if err != nil {
		t.Fatalf("scenario %s: %v", s.Name, err)
	}

	for _, verr := range Verify(s, res) {
		t.Error(verr)
	}

	data, err := json.MarshalIndent(NewTranscript(s, res), "", "  ")
	if err != nil {
		t.Fatalf("marshal transcript: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, data)
}
