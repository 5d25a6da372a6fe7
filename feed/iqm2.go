package feed

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"ewintr.nl/councilbrief/model"
	backoff "github.com/cenkalti/backoff/v4"
	"github.com/mmcdole/gofeed"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	kindAgenda  = "- Agenda -"
	kindMinutes = "- Minutes -"
	kindWebcast = "- Webcast -"
)

// IQM2 headings carry the meeting date inline, e.g.
// "City Council - Agenda - Mar 10, 2026 7:00 PM".
var reHeadingDate = regexp.MustCompile(
	`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},\s+\d{4}(?:\s+\d{1,2}:\d{2}\s*(?:AM|PM))?`)

var headingFormats = []string{
	"Jan 2, 2006 3:04 PM",
	"January 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"January 2, 2006",
}

type IQM2Info struct {
	FeedURL string
	// Body filters the feed down to one legislative body, e.g. "City Council".
	Body          string
	RetryInterval time.Duration
	MaxRetries    uint64
}

// IQM2 reads a municipal IQM2 RSS calendar feed. The feed publishes one
// item per document (agenda, minutes, webcast); items belonging to the same
// meeting date are folded into a single MeetingRecord. Only meetings with a
// filed agenda appear in the feed at all, that guarantee is the feed's.
type IQM2 struct {
	info   IQM2Info
	client *http.Client
	parser *gofeed.Parser
}

func NewIQM2(info IQM2Info) *IQM2 {
	if info.RetryInterval == 0 {
		info.RetryInterval = 2 * time.Second
	}
	if info.MaxRetries == 0 {
		info.MaxRetries = 2
	}
	return &IQM2{
		info:   info,
		client: &http.Client{Timeout: 15 * time.Second},
		parser: gofeed.NewParser(),
	}
}

// Meetings returns the feed's records in publication order. Cancelled
// meetings and other bodies are dropped. A record without minutes is kept,
// its MinutesURL stays empty.
func (f *IQM2) Meetings(ctx context.Context) ([]model.MeetingRecord, error) {
	doc, err := f.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	byDate := map[string]*model.MeetingRecord{}
	order := []string{}
	for _, item := range doc.Items {
		heading := strings.TrimSpace(item.Title)
		if !strings.Contains(heading, f.info.Body) || strings.Contains(heading, "Cancelled") {
			continue
		}
		date, ok := parseHeadingDate(heading)
		if !ok {
			continue
		}

		iso := date.Format("2006-01-02")
		record, ok := byDate[iso]
		if !ok {
			record = &model.MeetingRecord{
				Date:  date,
				Title: f.info.Body,
			}
			byDate[iso] = record
			order = append(order, iso)
		}

		link := strings.TrimSpace(item.Link)
		switch {
		case strings.Contains(heading, kindAgenda):
			if record.AgendaURL == "" {
				record.AgendaURL = link
			}
		case strings.Contains(heading, kindMinutes):
			if record.MinutesURL == "" {
				record.MinutesURL = link
			}
		case strings.Contains(heading, kindWebcast):
			if record.WebcastURL == "" {
				record.WebcastURL = link
			}
		}
	}

	meetings := make([]model.MeetingRecord, 0, len(order))
	for _, iso := range order {
		meetings = append(meetings, *byDate[iso])
	}

	return meetings, nil
}

// MeetingsInRange returns meetings between start and end inclusive, newest
// first.
func (f *IQM2) MeetingsInRange(ctx context.Context, start, end time.Time) ([]model.MeetingRecord, error) {
	all, err := f.Meetings(ctx)
	if err != nil {
		return nil, err
	}

	meetings := make([]model.MeetingRecord, 0, len(all))
	for _, m := range all {
		day := m.Date.Truncate(24 * time.Hour)
		if day.Before(start) || day.After(end) {
			continue
		}
		meetings = append(meetings, m)
	}
	sort.Slice(meetings, func(i, j int) bool {
		return meetings[i].Date.After(meetings[j].Date)
	})

	return meetings, nil
}

// Latest returns the most recent meeting in the past 90 days, or nil when
// there is none.
func (f *IQM2) Latest(ctx context.Context) (*model.MeetingRecord, error) {
	now := time.Now()
	meetings, err := f.MeetingsInRange(ctx, now.AddDate(0, 0, -90), now)
	if err != nil {
		return nil, err
	}
	if len(meetings) == 0 {
		return nil, nil
	}
	latest := meetings[0]

	return &latest, nil
}

func (f *IQM2) fetch(ctx context.Context) (*gofeed.Feed, error) {
	var doc *gofeed.Feed
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.info.FeedURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("feed returned status %d", resp.StatusCode)
		}

		parsed, err := f.parser.Parse(resp.Body)
		if err != nil {
			return backoff.Permanent(err)
		}
		doc = parsed

		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(f.info.RetryInterval), f.info.MaxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}

	return doc, nil
}

func parseHeadingDate(heading string) (time.Time, bool) {
	s := reHeadingDate.FindString(heading)
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range headingFormats {
		if date, err := time.Parse(format, s); err == nil {
			return date, true
		}
	}

	return time.Time{}, false
}
