package pipeline

import (
	"context"
	"errors"
	"time"

	"ewintr.nl/councilbrief/feed"
	"ewintr.nl/councilbrief/model"
	"ewintr.nl/councilbrief/storage"
	"golang.org/x/exp/slog"
)

type Status string

const (
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Reason is the user-visible failure category. Raw error detail stays in
// Outcome.Err and the logs.
type Reason string

const (
	ReasonTranscript Reason = "transcript lookup failed"
	ReasonSummarize  Reason = "summarization failed"
	ReasonArchive    Reason = "archive unavailable"
)

// Outcome is the terminal state of one meeting's run. Report is set on
// done, and also on a failed archive save so the computed summary is not
// lost with it.
type Outcome struct {
	Meeting model.MeetingRecord
	Status  Status
	Reason  Reason
	Report  *model.SummaryReport
	Err     error
}

type TranscriptLocator interface {
	Locate(ctx context.Context, meeting model.MeetingRecord) (model.TranscriptResult, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, meeting model.MeetingRecord, transcript model.TranscriptResult) (*model.SummaryReport, error)
}

type Evaluator interface {
	Score(ctx context.Context, transcript, summary string) (string, error)
}

type Pipeline struct {
	feedReader feed.Reader
	archive    storage.ReportRelRepository
	vecArchive storage.ReportVecRepository
	locator    TranscriptLocator
	engine     Summarizer
	evaluator  Evaluator
	overwrite  bool
	timeout    time.Duration
	logger     *slog.Logger
}

// NewPipeline wires the per-meeting chain. vecArchive and evaluator may be
// nil. With overwrite false an archived meeting is skipped without any
// external calls, which keeps repeated runs idempotent and cheap.
func NewPipeline(feedReader feed.Reader, archive storage.ReportRelRepository, vecArchive storage.ReportVecRepository,
	locator TranscriptLocator, engine Summarizer, evaluator Evaluator,
	overwrite bool, timeout time.Duration, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		feedReader: feedReader,
		archive:    archive,
		vecArchive: vecArchive,
		locator:    locator,
		engine:     engine,
		evaluator:  evaluator,
		overwrite:  overwrite,
		timeout:    timeout,
		logger:     logger,
	}
}

// Run processes every meeting the feed currently advertises. A failing
// meeting never aborts the rest of the batch, and an unavailable feed
// reports zero meetings instead of an error.
func (p *Pipeline) Run(ctx context.Context) []Outcome {
	meetings, err := p.feedReader.Meetings(ctx)
	if err != nil {
		p.logger.Error("feed unavailable", slog.String("error", err.Error()))
		return []Outcome{}
	}
	p.logger.Info("fetched meetings", slog.Int("count", len(meetings)))

	outcomes := make([]Outcome, 0, len(meetings))
	for _, meeting := range meetings {
		outcome := p.Process(ctx, meeting)
		switch outcome.Status {
		case StatusDone:
			p.logger.Info("meeting processed", slog.String("date", meeting.ISODate()), slog.String("backend", outcome.Report.BackendUsed))
		case StatusSkipped:
			p.logger.Info("meeting already archived", slog.String("date", meeting.ISODate()))
		case StatusFailed:
			p.logger.Error("meeting failed", slog.String("date", meeting.ISODate()), slog.String("reason", string(outcome.Reason)), slog.String("error", outcome.Err.Error()))
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// Process runs the chain for one meeting:
// check archive -> locate transcript -> summarize -> persist.
func (p *Pipeline) Process(ctx context.Context, meeting model.MeetingRecord) Outcome {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	existing, err := p.archive.FindByDate(meeting.ISODate())
	switch {
	case err == nil && !p.overwrite:
		return Outcome{Meeting: meeting, Status: StatusSkipped, Report: existing}
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		return Outcome{Meeting: meeting, Status: StatusFailed, Reason: ReasonArchive, Err: err}
	}

	transcript, err := p.locator.Locate(ctx, meeting)
	if err != nil {
		return Outcome{Meeting: meeting, Status: StatusFailed, Reason: ReasonTranscript, Err: err}
	}
	if !transcript.Found {
		p.logger.Info("no transcript, summarizing from agenda only", slog.String("date", meeting.ISODate()))
	}

	report, err := p.engine.Summarize(ctx, meeting, transcript)
	if err != nil {
		return Outcome{Meeting: meeting, Status: StatusFailed, Reason: ReasonSummarize, Err: err}
	}

	if p.evaluator != nil && transcript.Found {
		score, err := p.evaluator.Score(ctx, transcript.Text, report.Summary)
		if err != nil {
			p.logger.Error("failed to score summary", slog.String("date", meeting.ISODate()), slog.String("error", err.Error()))
		} else {
			p.logger.Info("summary scored", slog.String("date", meeting.ISODate()), slog.String("score", score))
		}
	}

	if err := p.archive.Save(report); err != nil {
		// hand the summary back anyway so the computed work is not lost
		return Outcome{Meeting: meeting, Status: StatusFailed, Reason: ReasonArchive, Report: report, Err: err}
	}
	if p.vecArchive != nil {
		if err := p.vecArchive.Save(ctx, report); err != nil {
			p.logger.Error("failed to save report in vec db", slog.String("date", meeting.ISODate()), slog.String("error", err.Error()))
		}
	}

	return Outcome{Meeting: meeting, Status: StatusDone, Report: report}
}

// Watch runs the batch once immediately and then on every tick until the
// context is done.
func (p *Pipeline) Watch(ctx context.Context, interval time.Duration) {
	p.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Run(ctx)
		}
	}
}
