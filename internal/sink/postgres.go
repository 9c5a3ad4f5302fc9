package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/project-tktt/job-harvester/internal/domain"
)

// Postgres appends records to a PostgreSQL table. Appends are insert-only:
// a conflicting job URL leaves the existing row untouched.
type Postgres struct {
	db        *sql.DB
	tableName string
}

// NewPostgres opens the connection and ensures the table exists.
func NewPostgres(connStr, tableName string) (*Postgres, error) {
	if tableName == "" {
		tableName = "harvested_jobs"
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Postgres{db: db, tableName: tableName}
	if err := s.ensureTable(); err != nil {
		return nil, fmt.Errorf("ensure table: %w", err)
	}
	return s, nil
}

func (s *Postgres) ensureTable() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			job_url TEXT PRIMARY KEY,
			job_id TEXT,
			title TEXT NOT NULL,
			company TEXT,
			location TEXT,
			location_city TEXT,
			location_region TEXT,
			location_country TEXT,
			location_postal_code TEXT,
			job_type TEXT,
			job_category TEXT,
			posted_at TEXT,
			salary TEXT,
			salary_min DOUBLE PRECISION,
			salary_max DOUBLE PRECISION,
			salary_currency TEXT,
			salary_interval TEXT,
			snippet TEXT,
			reference_number TEXT,
			employment_type TEXT,
			valid_through TEXT,
			description_html TEXT,
			description_text TEXT,
			requirements TEXT,
			benefits TEXT,
			tags TEXT[],
			seniority TEXT,
			work_hours TEXT,
			remote_type TEXT,
			breadcrumbs JSONB,
			data_source TEXT NOT NULL,
			scraped_at TIMESTAMP WITH TIME ZONE NOT NULL
		)
	`, s.tableName)

	_, err := s.db.Exec(query)
	return err
}

// Append inserts the records, skipping URLs that already exist.
func (s *Postgres) Append(ctx context.Context, records ...*domain.JobRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			job_url, job_id, title, company,
			location, location_city, location_region, location_country, location_postal_code,
			job_type, job_category, posted_at,
			salary, salary_min, salary_max, salary_currency, salary_interval,
			snippet, reference_number, employment_type, valid_through,
			description_html, description_text, requirements, benefits,
			tags, seniority, work_hours, remote_type, breadcrumbs,
			data_source, scraped_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11, $12,
			$13, $14, $15, $16, $17,
			$18, $19, $20, $21,
			$22, $23, $24, $25,
			$26, $27, $28, $29, $30,
			$31, $32
		)
		ON CONFLICT (job_url) DO NOTHING
	`, s.tableName)

	for _, rec := range records {
		breadcrumbs, err := json.Marshal(rec.Breadcrumbs)
		if err != nil {
			return fmt.Errorf("marshal breadcrumbs for %s: %w", rec.JobURL, err)
		}
		if _, err := s.db.ExecContext(ctx, query,
			rec.JobURL, rec.JobID, rec.Title, rec.Company,
			rec.Location, rec.LocationCity, rec.LocationRegion, rec.LocationCountry, rec.LocationPostalCode,
			rec.JobType, rec.JobCategory, rec.PostedAt,
			rec.Salary, rec.SalaryMin, rec.SalaryMax, rec.SalaryCurrency, rec.SalaryInterval,
			rec.Snippet, rec.ReferenceNumber, rec.EmploymentType, rec.ValidThrough,
			rec.DescriptionHTML, rec.DescriptionText, rec.Requirements, rec.Benefits,
			pq.Array(rec.Tags), rec.Seniority, rec.WorkHours, rec.RemoteType, breadcrumbs,
			string(rec.DataSource), rec.ScrapedAt,
		); err != nil {
			return fmt.Errorf("insert %s: %w", rec.JobURL, err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (s *Postgres) Close() error {
	return s.db.Close()
}
