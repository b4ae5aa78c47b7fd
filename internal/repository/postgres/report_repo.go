package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"reportingest/internal/domain"
	"reportingest/internal/port"
)

// reportRow is the table layout of a report; type-specific fields live in the
// JSONB fields column.
type reportRow struct {
	ID             uuid.UUID `db:"id"`
	Type           string    `db:"type"`
	ImagePath      string    `db:"image_path"`
	ImageURL       string    `db:"image_url"`
	ConversationID *string   `db:"conversation_id"`
	CallID         *string   `db:"call_id"`
	Fields         []byte    `db:"fields"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r reportRow) toDomain() (domain.ReportDocument, error) {
	t := domain.ReportType(r.Type)
	fields, err := domain.DecodeReportFields(t, r.Fields)
	if err != nil {
		return domain.ReportDocument{}, err
	}
	return domain.ReportDocument{
		ID:             r.ID,
		Type:           t,
		ImagePath:      r.ImagePath,
		ImageURL:       r.ImageURL,
		ConversationID: r.ConversationID,
		CallID:         r.CallID,
		Fields:         fields,
		CreatedAt:      r.CreatedAt,
	}, nil
}

// encodeFields marshals the type-specific fields; nil fields are stored as {}.
func encodeFields(f domain.ReportFields) ([]byte, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return []byte("{}"), nil
	}
	return b, nil
}

const reportColumns = "id, type, image_path, image_url, conversation_id, call_id, fields, created_at"

type reportRepo struct {
	db *sqlx.DB
}

// NewReportRepo creates a new PostgreSQL-backed ReportRepository.
func NewReportRepo(db *sqlx.DB) port.ReportRepository {
	return &reportRepo{db: db}
}

// Create inserts doc and fills in its id and the server-assigned created_at.
func (r *reportRepo) Create(ctx context.Context, doc *domain.ReportDocument) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	fields, err := encodeFields(doc.Fields)
	if err != nil {
		return fmt.Errorf("reportRepo.Create marshal fields: %w", err)
	}

	query := `INSERT INTO reports
		(id, type, image_path, image_url, conversation_id, call_id, fields)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err = r.db.QueryRowxContext(ctx, query,
		doc.ID, string(doc.Type), doc.ImagePath, doc.ImageURL,
		doc.ConversationID, doc.CallID, fields).Scan(&doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("reportRepo.Create: %w", err)
	}
	return nil
}

func (r *reportRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReportDocument, error) {
	var row reportRow
	err := r.db.GetContext(ctx, &row,
		"SELECT "+reportColumns+" FROM reports WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reportRepo.GetByID: %w", err)
	}
	doc, err := row.toDomain()
	if err != nil {
		return nil, fmt.Errorf("reportRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *reportRepo) List(ctx context.Context, filters domain.ReportFilters) ([]domain.ReportDocument, int, error) {
	where, args := listWhere(filters)

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM reports"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("reportRepo.List count: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM reports%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d",
		reportColumns, where, len(args)+1, len(args)+2)
	args = append(args, filters.Limit, filters.Offset)

	var rows []reportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("reportRepo.List: %w", err)
	}

	docs := make([]domain.ReportDocument, 0, len(rows))
	for _, row := range rows {
		doc, err := row.toDomain()
		if err != nil {
			return nil, 0, fmt.Errorf("reportRepo.List: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, total, nil
}

func listWhere(filters domain.ReportFilters) (string, []interface{}) {
	if filters.Type == "" {
		return "", nil
	}
	return " WHERE type = $1", []interface{}{string(filters.Type)}
}
