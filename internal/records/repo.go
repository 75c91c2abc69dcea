package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"mangashelf/internal/apperr"
	"mangashelf/pkg/models"
)

// Repo is the record store. Every method runs as one transaction or one
// statement and commits before returning.
type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const recordColumns = `
	id, external_id, name, cover_url, chapters, chapters_read, type, status,
	score, rank, popularity, start_date, finish_date, created_at, updated_at`

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// List returns all records ordered by name.
func (r *Repo) List(ctx context.Context) ([]models.MangaRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+recordColumns+`
		FROM mangas
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.MangaRecord, 0)
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (*models.MangaRecord, error) {
	return getByID(ctx, r.DB, id)
}

// Create inserts a record unless one with the same external id exists.
func (r *Repo) Create(ctx context.Context, in models.MangaRecord) (*models.MangaRecord, error) {
	in.Name = strings.TrimSpace(in.Name)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM mangas WHERE external_id = ?
	`, in.ExternalID).Scan(&existing); err != nil {
		return nil, fmt.Errorf("check external id: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("external id %d: %w", in.ExternalID, apperr.ErrConflict)
	}

	if err := ValidateRecord(in); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO mangas (
			external_id, name, cover_url, chapters, chapters_read, type, status,
			score, rank, popularity, start_date, finish_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		in.ExternalID, in.Name, in.CoverURL, nullInt(in.ChaptersTotal), in.ChaptersRead,
		in.Type, in.Status, nullFloat(in.Score), nullInt(in.Rank), nullInt(in.Popularity),
		in.StartDate, in.FinishDate,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("external id %d: %w", in.ExternalID, apperr.ErrConflict)
		}
		return nil, fmt.Errorf("insert record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert record id: %w", err)
	}

	saved, err := getByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}
	return saved, nil
}

// UpdateProgress overwrites the chapter counts of one record. Nothing is
// written when validation fails.
func (r *Repo) UpdateProgress(ctx context.Context, id int64, upd models.ProgressUpdate) (*models.MangaRecord, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update progress: %w", err)
	}
	defer tx.Rollback()

	var stored sql.NullInt64
	err = tx.QueryRowContext(ctx, `SELECT chapters FROM mangas WHERE id = ?`, id).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load record %d: %w", id, err)
	}

	total := upd.ChaptersTotal
	if !upd.TotalSet {
		total = nil
		if stored.Valid {
			total = models.IntPtr(int(stored.Int64))
		}
	}

	if err := Validate(total, upd.ChaptersRead); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE mangas
		SET chapters = ?, chapters_read = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, nullInt(total), upd.ChaptersRead, id); err != nil {
		return nil, fmt.Errorf("update progress: %w", err)
	}

	saved, err := getByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update progress: %w", err)
	}
	return saved, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM mangas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("record %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func getByID(ctx context.Context, q queryRower, id int64) (*models.MangaRecord, error) {
	row := q.QueryRowContext(ctx, `SELECT `+recordColumns+`
		FROM mangas
		WHERE id = ?
	`, id)

	m, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get record %d: %w", id, err)
	}
	return m, nil
}

func scanRecord(row rowScanner) (*models.MangaRecord, error) {
	var (
		m          models.MangaRecord
		chapters   sql.NullInt64
		score      sql.NullFloat64
		rank       sql.NullInt64
		popularity sql.NullInt64
	)

	if err := row.Scan(
		&m.ID, &m.ExternalID, &m.Name, &m.CoverURL, &chapters, &m.ChaptersRead, &m.Type, &m.Status,
		&score, &rank, &popularity, &m.StartDate, &m.FinishDate, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if chapters.Valid {
		m.ChaptersTotal = models.IntPtr(int(chapters.Int64))
	}
	if score.Valid {
		v := score.Float64
		m.Score = &v
	}
	if rank.Valid {
		m.Rank = models.IntPtr(int(rank.Int64))
	}
	if popularity.Valid {
		m.Popularity = models.IntPtr(int(popularity.Int64))
	}
	return &m, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == sqlite3.ErrConstraint && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
