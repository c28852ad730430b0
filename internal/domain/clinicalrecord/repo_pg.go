package clinicalrecord

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

const recordCols = `id, patient_id, tumor_type_id, diagnosis_date, stage, treatment_protocol`

func scanRecord(row pgx.Row, extra ...any) (*ClinicalRecord, error) {
	var rec ClinicalRecord
	var diagnosed time.Time
	dest := append([]any{&rec.ID, &rec.PatientID, &rec.TumorTypeID, &diagnosed, &rec.Stage, &rec.TreatmentProtocol}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	rec.DiagnosisDate = date.FromTime(diagnosed)
	return &rec, nil
}

func (r *repoPG) Create(ctx context.Context, rec *ClinicalRecord) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO clinical_records (id, patient_id, tumor_type_id, diagnosis_date, stage, treatment_protocol)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.PatientID, rec.TumorTypeID, rec.DiagnosisDate.Time, rec.Stage, rec.TreatmentProtocol,
	)
	if err != nil {
		return fmt.Errorf("insert clinical record: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ClinicalRecord, error) {
	rec, err := scanRecord(r.conn.QueryRow(ctx,
		`SELECT `+recordCols+` FROM clinical_records WHERE id = $1 AND NOT is_deleted`, id))
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get clinical record %s: %w", id, err)
	}
	return rec, nil
}

func (r *repoPG) GetByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*Stored, error) {
	var deleted bool
	rec, err := scanRecord(r.conn.QueryRow(ctx,
		`SELECT `+recordCols+`, is_deleted FROM clinical_records WHERE id = $1`, id), &deleted)
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get clinical record %s: %w", id, err)
	}
	return &Stored{ClinicalRecord: *rec, IsDeleted: deleted}, nil
}

func (r *repoPG) Update(ctx context.Context, rec *ClinicalRecord) error {
	_, err := r.conn.Exec(ctx, `
		UPDATE clinical_records
		SET patient_id = $2, tumor_type_id = $3, diagnosis_date = $4, stage = $5,
		    treatment_protocol = $6, updated_at = NOW()
		WHERE id = $1`,
		rec.ID, rec.PatientID, rec.TumorTypeID, rec.DiagnosisDate.Time, rec.Stage, rec.TreatmentProtocol,
	)
	if err != nil {
		return fmt.Errorf("update clinical record %s: %w", rec.ID, err)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE clinical_records SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete clinical record %s: %w", id, err)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilters) (*pagination.Page[*ClinicalRecord], error) {
	q := db.NewListQuery("clinical_records", recordCols).
		Where("NOT is_deleted").
		OrderBy("diagnosis_date, id")
	if f.PatientID != uuid.Nil {
		q.Where("patient_id = ?", f.PatientID)
	}
	if f.TumorTypeID != 0 {
		q.Where("tumor_type_id = ?", f.TumorTypeID)
	}
	if f.Stage != "" {
		q.Where("stage LIKE ?", f.Stage)
	}
	if f.DiagnosisFrom != nil {
		q.Where("diagnosis_date >= ?", f.DiagnosisFrom.Time)
	}
	if f.DiagnosisTo != nil {
		q.Where("diagnosis_date <= ?", f.DiagnosisTo.Time)
	}

	var total int
	if err := r.conn.QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count clinical records: %w", err)
	}

	rows, err := r.conn.Query(ctx, q.DataSQL(), q.DataArgs(f.Limit, f.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("list clinical records: %w", err)
	}
	defer rows.Close()

	var items []*ClinicalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clinical record: %w", err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clinical records: %w", err)
	}
	return pagination.NewPage(items, f.Params, total), nil
}
