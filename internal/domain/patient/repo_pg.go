package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oncology/clinic/internal/platform/db"
	"github.com/oncology/clinic/pkg/date"
	"github.com/oncology/clinic/pkg/pagination"
)

type repoPG struct {
	conn db.Querier
}

func NewRepoPG(conn db.Querier) Repository {
	return &repoPG{conn: conn}
}

const patientCols = `id, first_name, last_name, birth_date, gender, status`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var birth time.Time
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &birth, &p.Gender, &p.Status); err != nil {
		return nil, err
	}
	p.BirthDate = date.FromTime(birth)
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO patients (id, first_name, last_name, birth_date, gender, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.FirstName, p.LastName, p.BirthDate.Time, p.Gender, p.Status,
	)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get patient %s: %w", id, err)
	}
	return p, nil
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn.Exec(ctx, `
		UPDATE patients
		SET first_name = $2, last_name = $3, birth_date = $4, gender = $5, status = $6, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.BirthDate.Time, p.Gender, p.Status,
	)
	if err != nil {
		return fmt.Errorf("update patient %s: %w", p.ID, err)
	}
	return nil
}

func (r *repoPG) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE patients SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set patient %s status: %w", id, err)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilters) (*pagination.Page[*Patient], error) {
	statuses := f.Statuses()
	args := make([]interface{}, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}

	q := db.NewListQuery("patients", patientCols).
		In("status", args...).
		OrderBy("last_name, first_name, id")
	if f.Search != "" {
		pattern := db.ContainsPattern(f.Search)
		q.Where("(first_name ILIKE ? OR last_name ILIKE ?)", pattern, pattern)
	}
	if f.Gender != "" {
		q.Where("gender = ?", string(f.Gender))
	}

	var total int
	if err := r.conn.QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count patients: %w", err)
	}

	rows, err := r.conn.Query(ctx, q.DataSQL(), q.DataArgs(f.Limit, f.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", err)
	}
	return pagination.NewPage(items, f.Params, total), nil
}
