package patient

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/oncology/clinic/pkg/pagination"
)

// MemoryRepo is a Repository held in process memory.
type MemoryRepo struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]Patient
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[uuid.UUID]Patient)}
}

func (r *MemoryRepo) Create(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[p.ID] = *p
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *MemoryRepo) Update(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[p.ID]; ok {
		r.rows[p.ID] = *p
	}
	return nil
}

func (r *MemoryRepo) SetStatus(_ context.Context, id uuid.UUID, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.rows[id]; ok {
		p.Status = status
		r.rows[id] = p
	}
	return nil
}

func (r *MemoryRepo) List(_ context.Context, f ListFilters) (*pagination.Page[*Patient], error) {
	allowed := make(map[Status]bool)
	for _, s := range f.Statuses() {
		allowed[s] = true
	}
	search := strings.ToLower(f.Search)

	r.mu.RLock()
	var matched []*Patient
	for _, p := range r.rows {
		if !allowed[p.Status] {
			continue
		}
		if f.Gender != "" && p.Gender != f.Gender {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.FirstName), search) &&
			!strings.Contains(strings.ToLower(p.LastName), search) {
			continue
		}
		p := p
		matched = append(matched, &p)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
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
