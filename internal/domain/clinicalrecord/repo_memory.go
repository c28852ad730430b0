package clinicalrecord

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/oncology/clinic/pkg/pagination"
)

// MemoryRepo is a Repository held in process memory.
type MemoryRepo struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]Stored
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[uuid.UUID]Stored)}
}

func (r *MemoryRepo) Create(_ context.Context, rec *ClinicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[rec.ID] = Stored{ClinicalRecord: *rec}
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*ClinicalRecord, error) {
	s, _ := r.GetByIDIncludingDeleted(ctx, id)
	if s == nil || s.IsDeleted {
		return nil, nil
	}
	rec := s.ClinicalRecord
	return &rec, nil
}

func (r *MemoryRepo) GetByIDIncludingDeleted(_ context.Context, id uuid.UUID) (*Stored, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *MemoryRepo) Update(_ context.Context, rec *ClinicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.rows[rec.ID]; ok {
		s.ClinicalRecord = *rec
		r.rows[rec.ID] = s
	}
	return nil
}

func (r *MemoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.rows[id]; ok {
		s.IsDeleted = true
		r.rows[id] = s
	}
	return nil
}

func (r *MemoryRepo) List(_ context.Context, f ListFilters) (*pagination.Page[*ClinicalRecord], error) {
	var stage *regexp.Regexp
	if f.Stage != "" {
		stage = likePattern(f.Stage)
	}

	r.mu.RLock()
	var matched []*ClinicalRecord
	for _, s := range r.rows {
		rec := s.ClinicalRecord
		switch {
		case s.IsDeleted,
			f.PatientID != uuid.Nil && rec.PatientID != f.PatientID,
			f.TumorTypeID != 0 && rec.TumorTypeID != f.TumorTypeID,
			stage != nil && !stage.MatchString(rec.Stage),
			f.DiagnosisFrom != nil && rec.DiagnosisDate.Before(f.DiagnosisFrom.Time),
			f.DiagnosisTo != nil && rec.DiagnosisDate.After(f.DiagnosisTo.Time):
			continue
		}
		matched = append(matched, &rec)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.DiagnosisDate.Equal(b.DiagnosisDate) {
			return a.DiagnosisDate.Before(b.DiagnosisDate.Time)
		}
		return a.ID.String() < b.ID.String()
	})

	total := len(matched)
	start := f.Offset()
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return pagination.NewPage(matched[start:end], f.Params, total), nil
}

// likePattern compiles a SQL LIKE pattern: % matches any run, _ one character.
func likePattern(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile("(?s)" + b.String())
}
