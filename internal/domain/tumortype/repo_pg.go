package tumortype

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oncology/clinic/internal/platform/db"
	"github.com/oncology/clinic/pkg/pagination"
)

type repoPG struct {
	conn db.Querier
}

func NewRepoPG(conn db.Querier) Repository {
	return &repoPG{conn: conn}
}

const tumorTypeCols = `id, name, system_affected`

func scanTumorType(row pgx.Row) (*TumorType, error) {
	var t TumorType
	if err := row.Scan(&t.ID, &t.Name, &t.SystemAffected); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repoPG) Create(ctx context.Context, t *TumorType) error {
	err := r.conn.QueryRow(ctx, `
		INSERT INTO tumor_types (name, system_affected)
		VALUES ($1, $2)
		RETURNING id`,
		t.Name, t.SystemAffected,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert tumor type: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int) (*TumorType, error) {
	t, err := scanTumorType(r.conn.QueryRow(ctx,
		`SELECT `+tumorTypeCols+` FROM tumor_types WHERE id = $1 AND NOT is_deleted`, id))
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tumor type %d: %w", id, err)
	}
	return t, nil
}

func (r *repoPG) GetByIDIncludingDeleted(ctx context.Context, id int) (*Stored, error) {
	var s Stored
	err := r.conn.QueryRow(ctx,
		`SELECT `+tumorTypeCols+`, is_deleted FROM tumor_types WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.SystemAffected, &s.IsDeleted)
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tumor type %d: %w", id, err)
	}
	return &s, nil
}

func (r *repoPG) Update(ctx context.Context, t *TumorType) error {
	_, err := r.conn.Exec(ctx, `
		UPDATE tumor_types
		SET name = $2, system_affected = $3, updated_at = NOW()
		WHERE id = $1`,
		t.ID, t.Name, t.SystemAffected,
	)
	if err != nil {
		return fmt.Errorf("update tumor type %d: %w", t.ID, err)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE tumor_types SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tumor type %d: %w", id, err)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilters) (*pagination.Page[*TumorType], error) {
	q := db.NewListQuery("tumor_types", tumorTypeCols).
		Where("NOT is_deleted").
		OrderBy("name, id")
	if f.Search != "" {
		q.Where("name ILIKE ?", db.ContainsPattern(f.Search))
	}
	if f.SystemAffected != "" {
		q.Where("system_affected ILIKE ?", db.PrefixPattern(f.SystemAffected))
	}

	var total int
	if err := r.conn.QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count tumor types: %w", err)
	}

	rows, err := r.conn.Query(ctx, q.DataSQL(), q.DataArgs(f.Limit, f.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("list tumor types: %w", err)
	}
	defer rows.Close()

	var items []*TumorType
	for rows.Next() {
		t, err := scanTumorType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tumor type: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tumor types: %w", err)
	}
	return pagination.NewPage(items, f.Params, total), nil
}
