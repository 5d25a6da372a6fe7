package storage

import (
	"context"
	"errors"

	"ewintr.nl/councilbrief/model"
)

var (
	// ErrNotFound means no report exists for the requested meeting date.
	ErrNotFound = errors.New("report not found")
	// ErrStoreUnavailable wraps connectivity failures. Losing a summary
	// silently would erode trust in the archive, so it always surfaces.
	ErrStoreUnavailable = errors.New("store unavailable")
)

type ReportRelRepository interface {
	Save(report *model.SummaryReport) error
	FindByDate(meetingDate string) (*model.SummaryReport, error)
	FindAll() ([]*model.SummaryReport, error)
}

type ReportVecRepository interface {
	Save(ctx context.Context, report *model.SummaryReport) error
}
