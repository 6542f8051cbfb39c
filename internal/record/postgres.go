package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres constraint names used to translate unique violations into
// domain errors. The partial index is what makes concurrent check-ins for
// one student safe across stations.
const (
	constraintOpenStudent = "records_open_student_idx"
	constraintRecordID    = "records_record_id_key"
)

// PostgresStore persists records in Postgres.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an open connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, rec Record) (Record, error) {
	photos, err := json.Marshal(rec.DevicePhotos)
	if err != nil {
		return Record{}, fmt.Errorf("encode device photos: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records
			(record_id, student_id, student_name, class_name, student_photo,
			 device_photos, device_description, check_in_time, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, rec.RecordID, rec.StudentID, rec.StudentName, rec.ClassName, rec.StudentPhoto,
		photos, rec.DeviceDescription, rec.CheckInTime, rec.Status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case constraintOpenStudent:
				return Record{}, ErrDuplicateStudentID
			case constraintRecordID:
				return Record{}, ErrDuplicateRecordID
			}
		}
		return Record{}, err
	}
	return rec, nil
}

const recordColumns = `record_id, student_id, student_name, class_name, student_photo,
	device_photos, device_description, check_in_time, check_out_time, status`

func (s *PostgresStore) FindByStudentID(ctx context.Context, studentID string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM records
		WHERE student_id = $1
		ORDER BY id DESC
		LIMIT 1
	`, studentID)
	return scanRecord(row)
}

func (s *PostgresStore) FindByRecordID(ctx context.Context, recordID string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM records
		WHERE record_id = $1
	`, recordID)
	return scanRecord(row)
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records`
	args := []any{}
	clauses := []string{}
	if f.Status != "" {
		args = append(args, f.Status)
		clauses = append(clauses, "status = $"+strconv.Itoa(len(args)))
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := strconv.Itoa(len(args))
		clauses = append(clauses,
			"(student_name ILIKE $"+n+" OR student_id ILIKE $"+n+" OR class_name ILIKE $"+n+")")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

func (s *PostgresStore) Checkout(ctx context.Context, recordID string, at time.Time) (Record, error) {
	// The status guard serializes a checkout racing another checkout.
	row := s.db.QueryRowContext(ctx, `
		UPDATE records
		SET status = $2, check_out_time = $3
		WHERE record_id = $1 AND status = $4
		RETURNING `+recordColumns+`
	`, recordID, StatusCheckedOut, at, StatusCheckedIn)
	rec, err := scanRecord(row)
	if errors.Is(err, ErrNotFound) {
		// Distinguish a missing record from one already closed.
		if _, ferr := s.FindByRecordID(ctx, recordID); ferr == nil {
			return Record{}, ErrAlreadyCheckedOut
		}
		return Record{}, ErrNotFound
	}
	return rec, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var photos []byte
	var checkOut sql.NullTime
	err := row.Scan(&rec.RecordID, &rec.StudentID, &rec.StudentName, &rec.ClassName,
		&rec.StudentPhoto, &photos, &rec.DeviceDescription, &rec.CheckInTime,
		&checkOut, &rec.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	if err := json.Unmarshal(photos, &rec.DevicePhotos); err != nil {
		return Record{}, fmt.Errorf("decode device photos: %w", err)
	}
	if checkOut.Valid {
		t := checkOut.Time
		rec.CheckOutTime = &t
	}
	return rec, nil
}
