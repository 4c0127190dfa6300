package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"onlyremote-engine/internal/domain"
)

type jobRow struct {
	ID          int64   `db:"id"`
	ExternalID  string  `db:"external_id"`
	Title       string  `db:"title"`
	CompanyName string  `db:"company_name"`
	Location    string  `db:"location"`
	JobType     *string `db:"job_type"`
	Description string  `db:"description"`
	ApplyURL    string  `db:"apply_url"`
	SourceURL   string  `db:"source_url"`
	Tags        string  `db:"tags"`
	Source      string  `db:"source"`
	CompanyLogo *string `db:"company_logo"`
	SalaryRange *string `db:"salary_range"`
	PublishedAt string  `db:"published_at"`
}

func toRow(j domain.Job) jobRow {
	tags, _ := json.Marshal(j.Tags)
	if j.Tags == nil {
		tags = []byte("[]")
	}
	return jobRow{
		ExternalID:  j.ID,
		Title:       j.Title,
		CompanyName: j.Company,
		Location:    j.Location,
		JobType:     j.JobType,
		Description: j.DescriptionSnippet,
		ApplyURL:    j.ApplyURL,
		SourceURL:   j.SourceURL,
		Tags:        string(tags),
		Source:      j.Source,
		CompanyLogo: j.CompanyLogo,
		SalaryRange: j.Salary,
		PublishedAt: j.PublishedAt,
	}
}

func (r jobRow) job() domain.Job {
	var tags []string
	_ = json.Unmarshal([]byte(r.Tags), &tags)
	return domain.Job{
		ID:                 r.ExternalID,
		Title:              r.Title,
		Company:            r.CompanyName,
		Location:           r.Location,
		Category:           domain.ListCategory(nil),
		JobType:            r.JobType,
		Salary:             r.SalaryRange,
		Tags:               tags,
		DescriptionSnippet: r.Description,
		Source:             r.Source,
		ApplyURL:           r.ApplyURL,
		SourceURL:          r.SourceURL,
		PublishedAt:        r.PublishedAt,
		CompanyLogo:        r.CompanyLogo,
	}
}

// upsertJob returns the row id for j, inserting it on first sight. Existing
// rows are left as first saved.
func upsertJob(ctx context.Context, tx *sqlx.Tx, j domain.Job) (int64, error) {
	var id int64
	err := tx.GetContext(ctx, &id, `SELECT id FROM jobs WHERE external_id = ?;`, j.ID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	res, err := tx.NamedExecContext(ctx, `
INSERT INTO jobs(external_id, title, company_name, location, job_type, description, apply_url, source_url, tags, source, company_logo, salary_range, published_at)
VALUES(:external_id, :title, :company_name, :location, :job_type, :description, :apply_url, :source_url, :tags, :source, :company_logo, :salary_range, :published_at);`,
		toRow(j))
	if err != nil {
		return 0, fmt.Errorf("insert job %s: %w", j.ID, err)
	}
	return res.LastInsertId()
}

// ToggleSavedJob bookmarks j for userID, or removes the bookmark if it
// already exists. It reports the state after the toggle.
func (d *DB) ToggleSavedJob(ctx context.Context, userID string, j domain.Job) (saved bool, err error) {
	if strings.TrimSpace(userID) == "" {
		return false, errors.New("user id is empty")
	}
	if strings.TrimSpace(j.ID) == "" || strings.TrimSpace(j.Title) == "" {
		return false, errors.New("job id and title are required")
	}

	tx, err := d.Pool.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	jobID, err := upsertJob(ctx, tx, j)
	if err != nil {
		return false, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM saved_jobs WHERE user_id = ? AND job_id = ?;`, userID, jobID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO saved_jobs(user_id, job_id, created_at) VALUES(?, ?, ?);`,
			userID, jobID, d.now().Format(time.RFC3339Nano)); err != nil {
			return false, err
		}
		saved = true
	}

	return saved, tx.Commit()
}

// ListSavedJobs returns userID's bookmarks, most recently saved first.
func (d *DB) ListSavedJobs(ctx context.Context, userID string) ([]domain.Job, error) {
	var rows []jobRow
	err := d.Pool.SelectContext(ctx, &rows, `
SELECT j.id, j.external_id, j.title, j.company_name, j.location, j.job_type, j.description,
       j.apply_url, j.source_url, j.tags, j.source, j.company_logo, j.salary_range, j.published_at
FROM saved_jobs s
JOIN jobs j ON j.id = s.job_id
WHERE s.user_id = ?
ORDER BY s.created_at DESC, s.id DESC;`, userID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Job, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.job())
	}
	return out, nil
}
