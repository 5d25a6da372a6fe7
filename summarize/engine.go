package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ewintr.nl/councilbrief/model"
	"golang.org/x/exp/slog"
)

const reportPrompt = `You are a senior municipal reporter covering a %s meeting on %s.
%s
Produce a structured civic intelligence report with EXACTLY these sections:

## Executive Summary
2-3 sentences on the meeting's most significant outcomes.

## Key Votes & Decisions
Bullet list of every formal vote. Include vote counts if mentioned.

## Fiscal Impact
Spending, contracts, or budget commitments. Write 'None discussed' if absent.

## Public Commentary
Notable themes from public comment. Who spoke and on what topics.

## Next Steps & Deadlines
Follow-up actions or future agenda items mentioned.

RULES: Start immediately with ## Executive Summary. Facts only. No preamble.

%s`

// Engine runs the ordered fallback chain over the configured backends. One
// attempt per backend, a failed backend is never retried before falling
// through to the next one, which bounds latency per meeting.
type Engine struct {
	backends []Backend
	logger   *slog.Logger
}

func NewEngine(backends []Backend, logger *slog.Logger) (*Engine, error) {
	if len(backends) == 0 {
		return nil, errors.New("no backends configured")
	}

	return &Engine{
		backends: backends,
		logger:   logger,
	}, nil
}

// Summarize produces a report for the meeting, transcript permitting. A
// transcript that was never found still yields a report built from the
// agenda metadata alone. When every backend fails the returned error is an
// *ExhaustedError carrying one failure per backend.
func (e *Engine) Summarize(ctx context.Context, meeting model.MeetingRecord, transcript model.TranscriptResult) (*model.SummaryReport, error) {
	failures := make([]*BackendError, 0, len(e.backends))
	for _, backend := range e.backends {
		spec := backend.Spec()
		prompt := BuildPrompt(meeting, transcript, spec.MaxInputChars)

		summary, err := backend.Summarize(ctx, prompt)
		if err != nil {
			e.logger.Error("backend failed",
				slog.String("backend", spec.Name),
				slog.String("date", meeting.ISODate()),
				slog.String("error", err.Error()))
			failures = append(failures, &BackendError{Backend: spec.Name, Err: err})
			continue
		}

		return &model.SummaryReport{
			ID:          model.ReportID(meeting.ISODate()),
			MeetingDate: meeting.ISODate(),
			Title:       meeting.Title,
			Summary:     summary,
			BackendUsed: spec.Name,
			AgendaURL:   meeting.AgendaURL,
			MinutesURL:  meeting.MinutesURL,
			WebcastURL:  meeting.WebcastURL,
		}, nil
	}

	return nil, &ExhaustedError{Failures: failures}
}

// Truncate caps transcript text to a backend's input budget. Meeting
// business runs chronologically, so the tail is dropped and the earliest
// content kept. Deliberately lossy.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}

	return text[:maxChars]
}

// BuildPrompt assembles the fixed structured-report instruction around the
// transcript, truncated to the given budget.
func BuildPrompt(meeting model.MeetingRecord, transcript model.TranscriptResult, maxChars int) string {
	var refs strings.Builder
	if meeting.AgendaURL != "" {
		fmt.Fprintf(&refs, "Official agenda: %s\n", meeting.AgendaURL)
	}
	if meeting.MinutesURL != "" {
		fmt.Fprintf(&refs, "Official minutes: %s\n", meeting.MinutesURL)
	}

	body := "TRANSCRIPT:\n" + Truncate(transcript.Text, maxChars)
	if !transcript.Found {
		body = "NOTE: No webcast transcript was available for this meeting. Base the report on the meeting metadata and linked documents above, and state clearly that it is an agenda-only preview."
	}

	return fmt.Sprintf(reportPrompt, meeting.Title, meeting.DisplayDate(), refs.String(), body)
}
