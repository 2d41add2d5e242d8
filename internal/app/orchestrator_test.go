package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/verijob/verijob/internal/app"
	"github.com/verijob/verijob/internal/model"
	"github.com/verijob/verijob/internal/testutil"
)

// blockingDetector holds every Analyze call until released, so tests can
// observe jobs while they are still in flight.
type blockingDetector struct {
	release chan struct{}
	result  *model.AnalysisResponse
	err     error
}

func newBlockingDetector() *blockingDetector {
	return &blockingDetector{
		release: make(chan struct{}),
		result:  &model.AnalysisResponse{RiskScore: 42, RiskLevel: model.RiskMedium},
	}
}

func (d *blockingDetector) Analyze(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisResponse, error) {
	select {
	case <-d.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if d.err != nil {
		return nil, d.err
	}
	return d.result, nil
}

func (d *blockingDetector) Close() error { return nil }

func drain(t *testing.T, job *app.Job) (last app.JobEvent) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-job.Events:
			if !ok {
				return last
			}
			last = ev
		case <-timeout:
			t.Fatal("timed out draining job events")
		}
	}
}

func TestStartAnalysis_RunsToResult(t *testing.T) {
	t.Parallel()

	det := newBlockingDetector()
	o := app.NewOrchestrator(det, &testutil.DummyLogger{})

	job, started := o.StartAnalysis(context.Background(), "sess-1", &model.AnalysisRequest{JobText: "x"})
	if !started {
		t.Fatal("first StartAnalysis should start a job")
	}
	close(det.release)

	last := drain(t, job)
	if last.Type != app.JobEventResult {
		t.Fatalf("last event type = %q, want result", last.Type)
	}
	if last.Result == nil || last.Result.RiskScore != 42 {
		t.Errorf("result = %+v", last.Result)
	}

	got := o.GetJob(job.ID)
	if got.Status != app.JobDone {
		t.Errorf("status = %q, want done", got.Status)
	}
	if got.EndedAt.IsZero() {
		t.Error("EndedAt not set")
	}
}

func TestStartAnalysis_SecondSubmitIsNoop(t *testing.T) {
	t.Parallel()

	det := newBlockingDetector()
	o := app.NewOrchestrator(det, &testutil.DummyLogger{})

	first, started := o.StartAnalysis(context.Background(), "sess-2", &model.AnalysisRequest{JobText: "x"})
	if !started {
		t.Fatal("first submit should start")
	}
	if !o.InFlight("sess-2") {
		t.Error("InFlight should report the running job")
	}

	second, started := o.StartAnalysis(context.Background(), "sess-2", &model.AnalysisRequest{JobText: "y"})
	if started {
		t.Error("second submit should be a no-op while the first runs")
	}
	if second.ID != first.ID {
		t.Errorf("second submit returned job %s, want the in-flight %s", second.ID, first.ID)
	}

	// A different session is unaffected.
	_, started = o.StartAnalysis(context.Background(), "sess-other", &model.AnalysisRequest{JobText: "z"})
	if !started {
		t.Error("other sessions should not be blocked")
	}

	close(det.release)
	drain(t, first)

	if o.InFlight("sess-2") {
		t.Error("InFlight should clear once the job settles")
	}
	if _, started := o.StartAnalysis(context.Background(), "sess-2", &model.AnalysisRequest{JobText: "again"}); !started {
		t.Error("settled session should accept a new job")
	}
}

func TestStartAnalysis_FailurePropagates(t *testing.T) {
	t.Parallel()

	det := newBlockingDetector()
	det.err = errors.New("database offline")
	o := app.NewOrchestrator(det, &testutil.DummyLogger{})

	job, _ := o.StartAnalysis(context.Background(), "sess-3", &model.AnalysisRequest{JobText: "x"})
	close(det.release)

	last := drain(t, job)
	if last.Status != app.JobFailed {
		t.Errorf("status = %q, want failed", last.Status)
	}
	if last.Error != "database offline" {
		t.Errorf("error = %q", last.Error)
	}
}

func TestCancelJob(t *testing.T) {
	t.Parallel()

	det := newBlockingDetector()
	o := app.NewOrchestrator(det, &testutil.DummyLogger{})

	job, _ := o.StartAnalysis(context.Background(), "sess-4", &model.AnalysisRequest{JobText: "x"})
	o.CancelJob(job.ID)

	last := drain(t, job)
	if last.Status != app.JobCanceled {
		t.Errorf("status = %q, want canceled", last.Status)
	}
	if o.InFlight("sess-4") {
		t.Error("canceled job should not stay in flight")
	}
}

func TestPrune(t *testing.T) {
	t.Parallel()

	det := newBlockingDetector()
	close(det.release)
	o := app.NewOrchestrator(det, &testutil.DummyLogger{})

	job, _ := o.StartAnalysis(context.Background(), "sess-5", &model.AnalysisRequest{JobText: "x"})
	drain(t, job)

	if removed := o.Prune(time.Now()); removed != 0 {
		t.Errorf("fresh job pruned: removed = %d", removed)
	}
	if removed := o.Prune(time.Now().Add(time.Hour)); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if o.GetJob(job.ID) != nil {
		t.Error("pruned job still retrievable")
	}
}
