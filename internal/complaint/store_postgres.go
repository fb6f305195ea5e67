package complaint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore persists complaints in PostgreSQL. The complaints table's
// unique constraint on complaint_number is the collision backstop for
// generated numbers.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const complaintColumns = `id, complaint_number, reporter_id, category, description, amount,
	location, status, severity_score, evidence_address, public_tx_ref,
	consortium_ref, assigned_to, report_number, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, c *Complaint) error {
	location, err := c.Location.Value()
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO complaints (
			id, complaint_number, reporter_id, category, description, amount,
			location, status, severity_score, evidence_address
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		c.ID, c.ComplaintNumber, c.ReporterID, string(c.Category), c.Description,
		c.Amount, location, string(c.Status), c.SeverityScore, c.EvidenceAddress,
	)
	if err := row.Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateNumber
		}
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Complaint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id)
	return scanComplaint(row)
}

func (s *PostgresStore) FindByNumber(ctx context.Context, number string) (*Complaint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+complaintColumns+` FROM complaints WHERE complaint_number = $1`, number)
	return scanComplaint(row)
}

func (s *PostgresStore) ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]*Complaint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+complaintColumns+` FROM complaints WHERE reporter_id = $1 ORDER BY created_at DESC`,
		reporterID)
	if err != nil {
		return nil, fmt.Errorf("list complaints by reporter: %w", err)
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]*Complaint, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.MinSeverity != nil {
		args = append(args, *filter.MinSeverity)
		where = append(where, "severity_score >= $"+strconv.Itoa(len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		where = append(where, "assigned_to = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + complaintColumns + ` FROM complaints`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE complaints SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`,
		id, string(from), string(to))
	if err != nil {
		return fmt.Errorf("update complaint status: %w", err)
	}
	return s.casOutcome(ctx, res, id)
}

func (s *PostgresStore) MarkReportFiled(ctx context.Context, id uuid.UUID, from Status, reportNumber string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE complaints SET status = $3, report_number = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2`,
		id, string(from), string(StatusReportFiled), reportNumber)
	if err != nil {
		return fmt.Errorf("mark report filed: %w", err)
	}
	return s.casOutcome(ctx, res, id)
}

func (s *PostgresStore) SetPublicTxRef(ctx context.Context, id uuid.UUID, txRef string) error {
	return s.setColumn(ctx, id, "public_tx_ref", txRef)
}

func (s *PostgresStore) SetConsortiumRef(ctx context.Context, id uuid.UUID, ref string) error {
	return s.setColumn(ctx, id, "consortium_ref", ref)
}

func (s *PostgresStore) Assign(ctx context.Context, id uuid.UUID, officerID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE complaints SET assigned_to = $2, updated_at = NOW() WHERE id = $1`,
		id, officerID)
	if err != nil {
		return fmt.Errorf("assign complaint: %w", err)
	}
	return noneUpdatedIsNotFound(res)
}

func (s *PostgresStore) setColumn(ctx context.Context, id uuid.UUID, column, value string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE complaints SET `+column+` = $2, updated_at = NOW() WHERE id = $1`,
		id, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	return noneUpdatedIsNotFound(res)
}

// casOutcome distinguishes "row missing" from "status moved underneath us"
// after a compare-and-swap update touched zero rows.
func (s *PostgresStore) casOutcome(ctx context.Context, res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	return ErrStaleStatus
}

func noneUpdatedIsNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaint(row rowScanner) (*Complaint, error) {
	var (
		c        Complaint
		category string
		status   string
		location []byte
	)
	err := row.Scan(
		&c.ID, &c.ComplaintNumber, &c.ReporterID, &category, &c.Description,
		&c.Amount, &location, &status, &c.SeverityScore, &c.EvidenceAddress,
		&c.PublicTxRef, &c.ConsortiumRef, &c.AssignedTo, &c.ReportNumber,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan complaint: %w", err)
	}
	c.Category = Category(category)
	c.Status = Status(status)
	if len(location) > 0 {
		if err := json.Unmarshal(location, &c.Location); err != nil {
			return nil, fmt.Errorf("decode location: %w", err)
		}
	}
	return &c, nil
}

func scanComplaints(rows *sql.Rows) ([]*Complaint, error) {
	var out []*Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
