package feed

import (
	"context"
	"errors"

	"ewintr.nl/councilbrief/model"
)

// ErrFeedUnavailable signals that the calendar feed could not be retrieved
// or parsed. Callers treat this as "no meetings available", not as fatal.
var ErrFeedUnavailable = errors.New("feed unavailable")

type Reader interface {
	Meetings(ctx context.Context) ([]model.MeetingRecord, error)
}
