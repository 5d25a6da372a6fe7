package model

import "time"

// MeetingRecord is one council meeting as advertised by the calendar feed.
// A record is identified by its (date, title) pair within a feed snapshot.
// MinutesURL is empty until the clerk publishes minutes, which lags the
// agenda by days or weeks.
type MeetingRecord struct {
	Date       time.Time
	Title      string
	AgendaURL  string
	MinutesURL string
	WebcastURL string
}

func (m MeetingRecord) ISODate() string {
	return m.Date.Format("2006-01-02")
}

func (m MeetingRecord) DisplayDate() string {
	return m.Date.Format("01/02/2006")
}
