package report

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	dErrors "cybercell/pkg/domain-errors"
)

const reportColumns = "id, report_number, complaint_id, station_code, sections, remarks, filed_by, filed_at"

// PostgresStore persists incident reports in the incident_reports table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, r *IncidentReport) error {
	const q = `
		INSERT INTO incident_reports (id, report_number, complaint_id, station_code, sections, remarks, filed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING filed_at`
	err := s.db.QueryRowContext(ctx, q,
		r.ID, r.ReportNumber, r.ComplaintID, r.StationCode,
		pq.Array(r.Sections), r.Remarks, r.FiledBy,
	).Scan(&r.FiledAt)
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		// Two unique constraints share the error code; the constraint name
		// tells them apart.
		if strings.Contains(pqErr.Constraint, "complaint") {
			return ErrAlreadyFiled
		}
		return ErrDuplicateNumber
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to insert incident report")
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM incident_reports WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete incident report")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByNumber(ctx context.Context, number string) (*IncidentReport, error) {
	const q = `SELECT ` + reportColumns + ` FROM incident_reports WHERE report_number = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, q, number))
}

func (s *PostgresStore) FindByComplaint(ctx context.Context, complaintID uuid.UUID) (*IncidentReport, error) {
	const q = `SELECT ` + reportColumns + ` FROM incident_reports WHERE complaint_id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, q, complaintID))
}

func (s *PostgresStore) scanOne(row *sql.Row) (*IncidentReport, error) {
	var r IncidentReport
	err := row.Scan(
		&r.ID, &r.ReportNumber, &r.ComplaintID, &r.StationCode,
		pq.Array(&r.Sections), &r.Remarks, &r.FiledBy, &r.FiledAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to scan incident report")
	}
	return &r, nil
}
