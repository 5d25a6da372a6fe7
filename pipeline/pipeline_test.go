package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"ewintr.nl/councilbrief/model"
	"ewintr.nl/councilbrief/pipeline"
	"ewintr.nl/councilbrief/storage"
	"ewintr.nl/councilbrief/summarize"
	"golang.org/x/exp/slog"
)

type fakeFeed struct {
	meetings []model.MeetingRecord
	err      error
}

func (f *fakeFeed) Meetings(_ context.Context) ([]model.MeetingRecord, error) {
	return f.meetings, f.err
}

type fakeLocator struct {
	failDates map[string]bool
	missing   map[string]bool
}

func (f *fakeLocator) Locate(_ context.Context, meeting model.MeetingRecord) (model.TranscriptResult, error) {
	if f.failDates[meeting.ISODate()] {
		return model.TranscriptResult{}, errors.New("index exploded")
	}
	if f.missing[meeting.ISODate()] {
		return model.TranscriptResult{}, nil
	}
	return model.TranscriptResult{Found: true, Text: "call to order", VideoID: "vid-" + meeting.ISODate()}, nil
}

type memRepo struct {
	reports map[string]*model.SummaryReport
	saveErr error
	saves   int
}

func newMemRepo() *memRepo {
	return &memRepo{reports: map[string]*model.SummaryReport{}}
}

func (r *memRepo) Save(report *model.SummaryReport) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	stored := *report
	stored.CreatedAt = time.Now()
	r.reports[report.MeetingDate] = &stored
	return nil
}

func (r *memRepo) FindByDate(meetingDate string) (*model.SummaryReport, error) {
	report, ok := r.reports[meetingDate]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return report, nil
}

func (r *memRepo) FindAll() ([]*model.SummaryReport, error) {
	all := make([]*model.SummaryReport, 0, len(r.reports))
	for _, report := range r.reports {
		all = append(all, report)
	}
	return all, nil
}

type okBackend struct {
	name string
}

func (b *okBackend) Spec() model.BackendSpec {
	return model.BackendSpec{Name: b.name, MaxInputChars: 1000}
}

func (b *okBackend) Summarize(_ context.Context, _ string) (string, error) {
	return "## Executive Summary", nil
}

func testMeetings(n int) []model.MeetingRecord {
	meetings := make([]model.MeetingRecord, 0, n)
	for i := 0; i < n; i++ {
		meetings = append(meetings, model.MeetingRecord{
			Date:      time.Date(2026, 3, 10+i, 0, 0, 0, 0, time.UTC),
			Title:     "City Council",
			AgendaURL: fmt.Sprintf("http://portal.example/agenda/%d", i),
		})
	}
	return meetings
}

func newTestPipeline(t *testing.T, reader *fakeFeed, repo *memRepo, locator *fakeLocator, overwrite bool) *pipeline.Pipeline {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard))
	engine, err := summarize.NewEngine([]summarize.Backend{&okBackend{name: "A"}}, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return pipeline.NewPipeline(reader, repo, nil, locator, engine, nil, overwrite, time.Minute, logger)
}

func TestPipelineRun(t *testing.T) {
	repo := newMemRepo()
	pl := newTestPipeline(t, &fakeFeed{meetings: testMeetings(3)}, repo, &fakeLocator{}, false)

	outcomes := pl.Run(context.Background())
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	for _, outcome := range outcomes {
		if outcome.Status != pipeline.StatusDone {
			t.Errorf("expected done for %s, got %s", outcome.Meeting.ISODate(), outcome.Status)
		}
		if outcome.Report == nil {
			t.Errorf("expected a report for %s", outcome.Meeting.ISODate())
		}
	}
	if len(repo.reports) != 3 {
		t.Errorf("expected 3 archived reports, got %d", len(repo.reports))
	}
}

func TestPipelineIdempotence(t *testing.T) {
	repo := newMemRepo()
	reader := &fakeFeed{meetings: testMeetings(2)}
	pl := newTestPipeline(t, reader, repo, &fakeLocator{}, false)

	pl.Run(context.Background())
	outcomes := pl.Run(context.Background())

	for _, outcome := range outcomes {
		if outcome.Status != pipeline.StatusSkipped {
			t.Errorf("expected skipped on second run, got %s", outcome.Status)
		}
	}
	if repo.saves != 2 {
		t.Errorf("expected 2 saves total, got %d", repo.saves)
	}
	if len(repo.reports) != 2 {
		t.Errorf("expected 2 archived reports, got %d", len(repo.reports))
	}
}

func TestPipelineBatchIsolation(t *testing.T) {
	repo := newMemRepo()
	locator := &fakeLocator{failDates: map[string]bool{"2026-03-11": true}}
	pl := newTestPipeline(t, &fakeFeed{meetings: testMeetings(3)}, repo, locator, false)

	outcomes := pl.Run(context.Background())
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if outcomes[1].Status != pipeline.StatusFailed || outcomes[1].Reason != pipeline.ReasonTranscript {
		t.Errorf("expected meeting 2 to fail on transcript lookup, got %+v", outcomes[1])
	}
	for _, i := range []int{0, 2} {
		if outcomes[i].Status != pipeline.StatusDone {
			t.Errorf("expected meeting %d to be persisted, got %s", i+1, outcomes[i].Status)
		}
	}
	if len(repo.reports) != 2 {
		t.Errorf("expected 2 archived reports, got %d", len(repo.reports))
	}
}

func TestPipelineDegradedTranscript(t *testing.T) {
	repo := newMemRepo()
	locator := &fakeLocator{missing: map[string]bool{"2026-03-10": true}}
	pl := newTestPipeline(t, &fakeFeed{meetings: testMeetings(1)}, repo, locator, false)

	outcomes := pl.Run(context.Background())
	if outcomes[0].Status != pipeline.StatusDone {
		t.Fatalf("expected a degraded report, got %+v", outcomes[0])
	}
	if _, ok := repo.reports["2026-03-10"]; !ok {
		t.Error("expected the degraded report to be archived")
	}
}

func TestPipelineStoreUnavailable(t *testing.T) {
	repo := newMemRepo()
	repo.saveErr = fmt.Errorf("%w: connection refused", storage.ErrStoreUnavailable)
	pl := newTestPipeline(t, &fakeFeed{meetings: testMeetings(1)}, repo, &fakeLocator{}, false)

	outcomes := pl.Run(context.Background())
	outcome := outcomes[0]
	if outcome.Status != pipeline.StatusFailed || outcome.Reason != pipeline.ReasonArchive {
		t.Fatalf("expected archive failure, got %+v", outcome)
	}
	if outcome.Report == nil {
		t.Error("expected the computed report to survive the failed save")
	}
	if !errors.Is(outcome.Err, storage.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", outcome.Err)
	}
}

func TestPipelineOverwrite(t *testing.T) {
	repo := newMemRepo()
	reader := &fakeFeed{meetings: testMeetings(1)}
	pl := newTestPipeline(t, reader, repo, &fakeLocator{}, true)

	pl.Run(context.Background())
	outcomes := pl.Run(context.Background())

	if outcomes[0].Status != pipeline.StatusDone {
		t.Errorf("expected overwrite run to re-summarize, got %s", outcomes[0].Status)
	}
	if repo.saves != 2 {
		t.Errorf("expected 2 saves, got %d", repo.saves)
	}
	if len(repo.reports) != 1 {
		t.Errorf("expected a single archived report, got %d", len(repo.reports))
	}
}

func TestPipelineFeedUnavailable(t *testing.T) {
	repo := newMemRepo()
	pl := newTestPipeline(t, &fakeFeed{err: errors.New("feed unavailable")}, repo, &fakeLocator{}, false)

	outcomes := pl.Run(context.Background())
	if len(outcomes) != 0 {
		t.Errorf("expected zero outcomes, got %d", len(outcomes))
	}
}
