package model

import (
	"time"

	"github.com/google/uuid"
)

// TranscriptResult is the outcome of locating captions for a meeting's
// webcast. Never persisted, produced fresh on every pipeline run.
type TranscriptResult struct {
	Found   bool
	Text    string
	VideoID string
}

// BackendSpec describes one interchangeable summarization backend. The
// position in the configured backend list determines fallback priority.
// MaxInputChars is used purely to cap the transcript passed in.
type BackendSpec struct {
	Name          string
	Model         string
	MaxInputChars int
}

// SummaryReport is the durable artifact of the pipeline, at most one per
// meeting date. CreatedAt is assigned by the archive on insert.
type SummaryReport struct {
	ID          uuid.UUID
	MeetingDate string
	Title       string
	Summary     string
	BackendUsed string
	AgendaURL   string
	MinutesURL  string
	WebcastURL  string
	CreatedAt   time.Time
}

// ReportID derives a stable identifier from the meeting date, so saving
// the same meeting again addresses the same record in every store.
func ReportID(meetingDate string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("council-report-"+meetingDate))
}
