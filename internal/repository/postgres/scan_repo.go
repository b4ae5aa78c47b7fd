package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"reportingest/internal/domain"
	"reportingest/internal/port"
)

// scanRow mirrors the scans table; raw_response is read as bytes.
type scanRow struct {
	ID          uuid.UUID `db:"id"`
	Type        string    `db:"type"`
	ImagePath   string    `db:"image_path"`
	ImageURL    string    `db:"image_url"`
	RawResponse []byte    `db:"raw_response"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r scanRow) toDomain() domain.ScanDocument {
	return domain.ScanDocument{
		ID:          r.ID,
		Type:        r.Type,
		ImagePath:   r.ImagePath,
		ImageURL:    r.ImageURL,
		RawResponse: json.RawMessage(r.RawResponse),
		CreatedAt:   r.CreatedAt,
	}
}

type scanRepo struct {
	db *sqlx.DB
}

// NewScanRepo creates a new PostgreSQL-backed ScanRepository.
func NewScanRepo(db *sqlx.DB) port.ScanRepository {
	return &scanRepo{db: db}
}

func (r *scanRepo) Create(ctx context.Context, scan *domain.ScanDocument) error {
	if scan.ID == uuid.Nil {
		scan.ID = uuid.New()
	}
	raw := []byte(scan.RawResponse)
	if len(raw) == 0 {
		raw = []byte("null")
	}

	query := `INSERT INTO scans (id, type, image_path, image_url, raw_response)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query,
		scan.ID, scan.Type, scan.ImagePath, scan.ImageURL, raw).Scan(&scan.CreatedAt)
	if err != nil {
		return fmt.Errorf("scanRepo.Create: %w", err)
	}
	return nil
}

func (r *scanRepo) List(ctx context.Context, offset, limit int) ([]domain.ScanDocument, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM scans"); err != nil {
		return nil, 0, fmt.Errorf("scanRepo.List count: %w", err)
	}

	var rows []scanRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, type, image_path, image_url, raw_response, created_at
		 FROM scans ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("scanRepo.List: %w", err)
	}

	scans := make([]domain.ScanDocument, 0, len(rows))
	for _, row := range rows {
		scans = append(scans, row.toDomain())
	}
	return scans, total, nil
}
