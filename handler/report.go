package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ewintr.nl/councilbrief/storage"
	"golang.org/x/exp/slog"
)

type ReportAPI struct {
	reportRepo storage.ReportRelRepository
	logger     *slog.Logger
}

func NewReportAPI(reportRepo storage.ReportRelRepository, logger *slog.Logger) *ReportAPI {
	return &ReportAPI{
		reportRepo: reportRepo,
		logger:     logger,
	}
}

func (a *ReportAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reportDate, _ := ShiftPath(r.URL.Path)

	switch {
	case r.Method == http.MethodGet && reportDate == "":
		a.List(w, r)
	case r.Method == http.MethodGet:
		a.Get(w, r, reportDate)
	default:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s with subpath %q was not registered in the report api", r.Method, reportDate))
	}
}

type respReport struct {
	MeetingDate string    `json:"meeting_date"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	BackendUsed string    `json:"backend_used"`
	AgendaURL   string    `json:"agenda_url"`
	MinutesURL  string    `json:"minutes_url,omitempty"`
	WebcastURL  string    `json:"webcast_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// List returns all archived reports, newest meeting first.
func (a *ReportAPI) List(w http.ResponseWriter, r *http.Request) {
	reports, err := a.reportRepo.FindAll()
	if err != nil {
		a.returnErr(r.Context(), w, http.StatusInternalServerError, "could not list reports", err)
		return
	}

	resp := make([]respReport, 0, len(reports))
	for _, report := range reports {
		resp = append(resp, respReport{
			MeetingDate: report.MeetingDate,
			Title:       report.Title,
			Summary:     report.Summary,
			BackendUsed: report.BackendUsed,
			AgendaURL:   report.AgendaURL,
			MinutesURL:  report.MinutesURL,
			WebcastURL:  report.WebcastURL,
			CreatedAt:   report.CreatedAt,
		})
	}

	jsonBody, err := json.Marshal(resp)
	if err != nil {
		a.returnErr(r.Context(), w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, string(jsonBody))
}

// Get returns the report for one meeting date (path: /report/2026-03-10).
func (a *ReportAPI) Get(w http.ResponseWriter, r *http.Request, meetingDate string) {
	report, err := a.reportRepo.FindByDate(meetingDate)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		Error(w, http.StatusNotFound, "not found", err)
		return
	case err != nil:
		a.returnErr(r.Context(), w, http.StatusInternalServerError, "could not fetch report", err)
		return
	}

	resp := respReport{
		MeetingDate: report.MeetingDate,
		Title:       report.Title,
		Summary:     report.Summary,
		BackendUsed: report.BackendUsed,
		AgendaURL:   report.AgendaURL,
		MinutesURL:  report.MinutesURL,
		WebcastURL:  report.WebcastURL,
		CreatedAt:   report.CreatedAt,
	}
	jsonBody, err := json.Marshal(resp)
	if err != nil {
		a.returnErr(r.Context(), w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, string(jsonBody))
}

func (a *ReportAPI) returnErr(_ context.Context, w http.ResponseWriter, status int, message string, err error, details ...any) {
	a.logger.Error(message, slog.String("err", err.Error()), slog.String("details", fmt.Sprintf("%+v", details)))
	Error(w, status, message, err, details...)
}
