package feed_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ewintr.nl/councilbrief/feed"
)

const calendarRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Meeting Calendar</title>
<link>http://portal.example/Citizens</link>
<item><title>City Council - Agenda - Mar 10, 2026 7:00 PM</title><link>http://portal.example/agenda/101</link><guid>101</guid></item>
<item><title>City Council - Minutes - Mar 10, 2026 7:00 PM</title><link>http://portal.example/minutes/101</link><guid>102</guid></item>
<item><title>City Council - Webcast - Mar 10, 2026 7:00 PM</title><link>http://portal.example/webcast/101</link><guid>103</guid></item>
<item><title>Planning Commission - Agenda - Mar 12, 2026 6:00 PM</title><link>http://portal.example/agenda/200</link><guid>104</guid></item>
<item><title>City Council - Agenda - Mar 24, 2026 7:00 PM</title><link>http://portal.example/agenda/110</link><guid>105</guid></item>
<item><title>City Council - Webcast - Mar 24, 2026 7:00 PM</title><link>http://portal.example/webcast/110</link><guid>106</guid></item>
<item><title>City Council - Agenda - Apr 7, 2026 7:00 PM (Cancelled)</title><link>http://portal.example/agenda/120</link><guid>107</guid></item>
</channel>
</rss>`

func TestIQM2Meetings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, calendarRSS)
	}))
	defer server.Close()

	reader := feed.NewIQM2(feed.IQM2Info{
		FeedURL: server.URL,
		Body:    "City Council",
	})

	meetings, err := reader.Meetings(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meetings) != 2 {
		t.Fatalf("expected 2 meetings, got %d", len(meetings))
	}

	first := meetings[0]
	if first.ISODate() != "2026-03-10" {
		t.Errorf("expected date 2026-03-10, got %s", first.ISODate())
	}
	if first.Title != "City Council" {
		t.Errorf("expected title City Council, got %s", first.Title)
	}
	if first.AgendaURL != "http://portal.example/agenda/101" {
		t.Errorf("unexpected agenda url %s", first.AgendaURL)
	}
	if first.MinutesURL != "http://portal.example/minutes/101" {
		t.Errorf("unexpected minutes url %s", first.MinutesURL)
	}
	if first.WebcastURL != "http://portal.example/webcast/101" {
		t.Errorf("unexpected webcast url %s", first.WebcastURL)
	}

	second := meetings[1]
	if second.ISODate() != "2026-03-24" {
		t.Errorf("expected date 2026-03-24, got %s", second.ISODate())
	}
	if second.MinutesURL != "" {
		t.Errorf("expected absent minutes url, got %s", second.MinutesURL)
	}
	if second.WebcastURL != "http://portal.example/webcast/110" {
		t.Errorf("unexpected webcast url %s", second.WebcastURL)
	}
}

func TestIQM2FeedUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	reader := feed.NewIQM2(feed.IQM2Info{
		FeedURL:       server.URL,
		Body:          "City Council",
		RetryInterval: time.Millisecond,
		MaxRetries:    1,
	})

	if _, err := reader.Meetings(context.Background()); !errors.Is(err, feed.ErrFeedUnavailable) {
		t.Errorf("expected ErrFeedUnavailable, got %v", err)
	}
}

func TestIQM2MeetingsInRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, calendarRSS)
	}))
	defer server.Close()

	reader := feed.NewIQM2(feed.IQM2Info{
		FeedURL: server.URL,
		Body:    "City Council",
	})

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	meetings, err := reader.MeetingsInRange(context.Background(), start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meetings) != 1 {
		t.Fatalf("expected 1 meeting, got %d", len(meetings))
	}
	if meetings[0].ISODate() != "2026-03-10" {
		t.Errorf("expected date 2026-03-10, got %s", meetings[0].ISODate())
	}
}
