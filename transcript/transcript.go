package transcript

import (
	"context"
	"fmt"

	"ewintr.nl/councilbrief/model"
	"golang.org/x/exp/slog"
)

// VideoIndex finds candidate video IDs for a search query, in the index's
// own relevance order.
type VideoIndex interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// CaptionSource retrieves the caption transcript for one video.
type CaptionSource interface {
	Captions(ctx context.Context, videoID string) (string, error)
}

// Locator joins a meeting to its webcast captions. The feed carries no
// stable cross-reference to the video index, so the only join key is the
// meeting date formatted into a search query, and the first hit wins. When
// several videos share a date this can pick the wrong one; swapping in an
// index keyed on a stable identifier fixes that without touching callers.
type Locator struct {
	index       VideoIndex
	captions    CaptionSource
	queryPrefix string
	logger      *slog.Logger
}

func NewLocator(index VideoIndex, captions CaptionSource, queryPrefix string, logger *slog.Logger) *Locator {
	return &Locator{
		index:       index,
		captions:    captions,
		queryPrefix: queryPrefix,
		logger:      logger,
	}
}

// Locate returns a zero-value result when no video matches or the video has
// no usable captions. Both are recoverable, the caller degrades to an
// agenda-only summary. Only index failures surface as an error.
func (l *Locator) Locate(ctx context.Context, meeting model.MeetingRecord) (model.TranscriptResult, error) {
	query := fmt.Sprintf("%s %s", l.queryPrefix, meeting.DisplayDate())
	ids, err := l.index.Search(ctx, query)
	if err != nil {
		return model.TranscriptResult{}, fmt.Errorf("search video index: %w", err)
	}
	if len(ids) == 0 {
		l.logger.Info("no video found for meeting", slog.String("date", meeting.ISODate()))
		return model.TranscriptResult{}, nil
	}

	videoID := ids[0]
	text, err := l.captions.Captions(ctx, videoID)
	if err != nil {
		l.logger.Error("failed to fetch captions", slog.String("video", videoID), slog.String("error", err.Error()))
		return model.TranscriptResult{VideoID: videoID}, nil
	}
	if text == "" {
		l.logger.Info("video has no captions", slog.String("video", videoID))
		return model.TranscriptResult{VideoID: videoID}, nil
	}

	return model.TranscriptResult{
		Found:   true,
		Text:    text,
		VideoID: videoID,
	}, nil
}
