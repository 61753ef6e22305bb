package leads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type pgRepo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &pgRepo{db: db}
}

// EnsureSchema creates the tables if they are missing. Messages cascade with
// their lead.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS leads (
			id           BIGSERIAL PRIMARY KEY,
			name         TEXT NOT NULL,
			email        TEXT NOT NULL UNIQUE,
			phone        TEXT NOT NULL,
			status       TEXT NOT NULL DEFAULT 'new',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			company      TEXT,
			job_title    TEXT,
			location     TEXT,
			linkedin_url TEXT,
			company_size TEXT,
			industry     TEXT,
			enriched     TEXT NOT NULL DEFAULT 'pending',
			enriched_at  TIMESTAMPTZ
		);
		CREATE TABLE IF NOT EXISTS messages (
			id           BIGSERIAL PRIMARY KEY,
			lead_id      BIGINT NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
			direction    TEXT NOT NULL,
			channel      TEXT NOT NULL,
			subject      TEXT,
			body         TEXT NOT NULL,
			provider_sid TEXT,
			status       TEXT NOT NULL DEFAULT 'queued',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_messages_lead_created
			ON messages (lead_id, created_at);
	`)
	return err
}

func (r *pgRepo) CreateLead(ctx context.Context, l *Lead) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO leads (name, email, phone, status, company, job_title,
			location, linkedin_url, company_size, industry, enriched, enriched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`,
		l.Name, l.Email, l.Phone, l.Status,
		l.Company, l.JobTitle, l.Location, l.LinkedinURL, l.CompanySize,
		l.Industry, l.Enriched, l.EnrichedAt,
	).Scan(&l.ID, &l.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("lead with email %s: %w", l.Email, ErrConflict)
	}
	return err
}

const leadCols = `id, name, email, phone, status, created_at, company,
	job_title, location, linkedin_url, company_size, industry, enriched, enriched_at`

func (r *pgRepo) scanLead(row *sql.Row) (*Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.Name, &l.Email, &l.Phone, &l.Status, &l.CreatedAt,
		&l.Company, &l.JobTitle, &l.Location, &l.LinkedinURL,
		&l.CompanySize, &l.Industry, &l.Enriched, &l.EnrichedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *pgRepo) GetLead(ctx context.Context, id int64) (*Lead, error) {
	return r.scanLead(r.db.QueryRowContext(ctx,
		`SELECT `+leadCols+` FROM leads WHERE id = $1`, id))
}

func (r *pgRepo) GetLeadByEmail(ctx context.Context, email string) (*Lead, error) {
	return r.scanLead(r.db.QueryRowContext(ctx,
		`SELECT `+leadCols+` FROM leads WHERE email = $1`, email))
}

func (r *pgRepo) GetLeadByPhone(ctx context.Context, phone string) (*Lead, error) {
	return r.scanLead(r.db.QueryRowContext(ctx,
		`SELECT `+leadCols+` FROM leads WHERE phone = $1`, phone))
}

func (r *pgRepo) ListLeads(ctx context.Context) ([]Lead, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+leadCols+` FROM leads ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		var l Lead
		if err := rows.Scan(
			&l.ID, &l.Name, &l.Email, &l.Phone, &l.Status, &l.CreatedAt,
			&l.Company, &l.JobTitle, &l.Location, &l.LinkedinURL,
			&l.CompanySize, &l.Industry, &l.Enriched, &l.EnrichedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *pgRepo) SaveMessage(ctx context.Context, m *Message) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO messages (lead_id, direction, channel, subject, body, provider_sid, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`,
		m.LeadID, m.Direction, m.Channel, m.Subject, m.Body, m.ProviderSID, m.Status,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *pgRepo) queryMessages(ctx context.Context, q string, args ...any) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.ID, &m.LeadID, &m.Direction, &m.Channel, &m.Subject,
			&m.Body, &m.ProviderSID, &m.Status, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

const msgCols = `id, lead_id, direction, channel, subject, body, provider_sid, status, created_at`

func (r *pgRepo) Thread(ctx context.Context, leadID int64) ([]Message, error) {
	return r.queryMessages(ctx, `
		SELECT `+msgCols+` FROM messages
		WHERE lead_id = $1
		ORDER BY created_at ASC, id ASC
	`, leadID)
}

func (r *pgRepo) RecentMessages(ctx context.Context, leadID int64, limit int) ([]Message, error) {
	return r.queryMessages(ctx, `
		SELECT `+msgCols+` FROM messages
		WHERE lead_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, leadID, limit)
}
