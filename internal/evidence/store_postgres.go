package evidence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore persists evidence records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, e *Evidence) error {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO evidence (id, complaint_id, file_name, media_type, byte_size, address, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING uploaded_at`,
		e.ID, e.ComplaintID, e.FileName, e.MediaType, e.ByteSize, e.Address, e.Verified,
	)
	if err := row.Scan(&e.UploadedAt); err != nil {
		return fmt.Errorf("insert evidence: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByComplaint(ctx context.Context, complaintID uuid.UUID) ([]*Evidence, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, complaint_id, file_name, media_type, byte_size, address, verified, uploaded_at
		FROM evidence WHERE complaint_id = $1 ORDER BY uploaded_at DESC`,
		complaintID)
	if err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}
	defer rows.Close()

	var out []*Evidence
	for rows.Next() {
		var e Evidence
		if err := rows.Scan(&e.ID, &e.ComplaintID, &e.FileName, &e.MediaType,
			&e.ByteSize, &e.Address, &e.Verified, &e.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan evidence: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkVerified(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE evidence SET verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark evidence verified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
