package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"ewintr.nl/councilbrief/model"
	_ "github.com/lib/pq"
)

type PostgresInfo struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

type Postgres struct {
	db *sql.DB
}

func NewPostgres(info PostgresInfo) (*Postgres, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		info.Host, info.Port, info.User, info.Password, info.Database)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return &Postgres{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := db.Ping(); err != nil {
		return &Postgres{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	p := &Postgres{db: db}
	if err := p.migrate(pgMigration); err != nil {
		return &Postgres{}, err
	}

	return p, nil
}

var pgMigration = []string{
	`CREATE TABLE council_report (
id SERIAL PRIMARY KEY,
created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
meeting_date VARCHAR(10) NOT NULL UNIQUE,
title VARCHAR(255) NOT NULL,
summary TEXT NOT NULL,
backend_used VARCHAR(255) NOT NULL,
agenda_url TEXT NOT NULL DEFAULT '',
minutes_url TEXT,
webcast_url TEXT NOT NULL DEFAULT ''
)`,
}

func (p *Postgres) migrate(wanted []string) error {
	query := `CREATE TABLE IF NOT EXISTS migration
("id" SERIAL PRIMARY KEY, "query" TEXT)`
	_, err := p.db.Exec(query)
	if err != nil {
		return err
	}

	// find existing
	rows, err := p.db.Query(`SELECT query FROM migration ORDER BY id`)
	if err != nil {
		return err
	}

	existing := []string{}
	for rows.Next() {
		var query string
		if err := rows.Scan(&query); err != nil {
			return err
		}
		existing = append(existing, query)
	}
	rows.Close()

	// compare
	missing, err := compareMigrations(wanted, existing)
	if err != nil {
		return err
	}

	// execute missing
	for _, query := range missing {
		if _, err := p.db.Exec(query); err != nil {
			return err
		}

		// register
		if _, err := p.db.Exec(`
INSERT INTO migration
(query) VALUES ($1)
`, query); err != nil {
			return err
		}
	}

	return nil
}

func compareMigrations(wanted, existing []string) ([]string, error) {
	needed := []string{}
	if len(wanted) < len(existing) {
		return []string{}, fmt.Errorf("not enough migrations")
	}

	for i, want := range wanted {
		switch {
		case i >= len(existing):
			needed = append(needed, want)
		case want == existing[i]:
			// do nothing
		case want != existing[i]:
			return []string{}, fmt.Errorf("incompatible migration: %v", want)
		}
	}

	return needed, nil
}

type PostgresReportRepository struct {
	db *sql.DB
}

func NewPostgresReportRepository(postgres *Postgres) *PostgresReportRepository {
	return &PostgresReportRepository{db: postgres.db}
}

// Save upserts on meeting_date, so a meeting can never end up with two live
// reports no matter how often it is re-summarized.
func (r *PostgresReportRepository) Save(report *model.SummaryReport) error {
	_, err := r.db.Exec(`
INSERT INTO council_report
(meeting_date, title, summary, backend_used, agenda_url, minutes_url, webcast_url)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
ON CONFLICT (meeting_date) DO UPDATE SET
title = EXCLUDED.title,
summary = EXCLUDED.summary,
backend_used = EXCLUDED.backend_used,
agenda_url = EXCLUDED.agenda_url,
minutes_url = EXCLUDED.minutes_url,
webcast_url = EXCLUDED.webcast_url`,
		report.MeetingDate, report.Title, report.Summary, report.BackendUsed,
		report.AgendaURL, report.MinutesURL, report.WebcastURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

func (r *PostgresReportRepository) FindByDate(meetingDate string) (*model.SummaryReport, error) {
	row := r.db.QueryRow(`
SELECT created_at, meeting_date, title, summary, backend_used, agenda_url, COALESCE(minutes_url, ''), webcast_url
FROM council_report
WHERE meeting_date = $1`, meetingDate)

	report, err := scanReport(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return report, nil
}

func (r *PostgresReportRepository) FindAll() ([]*model.SummaryReport, error) {
	rows, err := r.db.Query(`
SELECT created_at, meeting_date, title, summary, backend_used, agenda_url, COALESCE(minutes_url, ''), webcast_url
FROM council_report
ORDER BY meeting_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	reports := []*model.SummaryReport{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return reports, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*model.SummaryReport, error) {
	report := &model.SummaryReport{}
	if err := row.Scan(&report.CreatedAt, &report.MeetingDate, &report.Title, &report.Summary,
		&report.BackendUsed, &report.AgendaURL, &report.MinutesURL, &report.WebcastURL); err != nil {
		return nil, err
	}
	report.ID = model.ReportID(report.MeetingDate)

	return report, nil
}
