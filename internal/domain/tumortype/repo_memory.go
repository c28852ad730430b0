package tumortype

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/oncology/clinic/pkg/pagination"
)

// MemoryRepo is a Repository held in process memory. IDs are assigned
// from a counter, like a serial column.
type MemoryRepo struct {
	mu     sync.RWMutex
	rows   map[int]Stored
	nextID int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[int]Stored), nextID: 1}
}

func (r *MemoryRepo) Create(_ context.Context, t *TumorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++
	r.rows[t.ID] = Stored{TumorType: *t}
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id int) (*TumorType, error) {
	s, _ := r.GetByIDIncludingDeleted(ctx, id)
	if s == nil || s.IsDeleted {
		return nil, nil
	}
	t := s.TumorType
	return &t, nil
}

func (r *MemoryRepo) GetByIDIncludingDeleted(_ context.Context, id int) (*Stored, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *MemoryRepo) Update(_ context.Context, t *TumorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.rows[t.ID]; ok {
		s.TumorType = *t
		r.rows[t.ID] = s
	}
	return nil
}

func (r *MemoryRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.rows[id]; ok {
		s.IsDeleted = true
		r.rows[id] = s
	}
	return nil
}

func (r *MemoryRepo) List(_ context.Context, f ListFilters) (*pagination.Page[*TumorType], error) {
	search := strings.ToLower(f.Search)
	system := strings.ToLower(f.SystemAffected)

	r.mu.RLock()
	var matched []*TumorType
	for _, s := range r.rows {
		if s.IsDeleted {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(s.Name), search) {
			continue
		}
		if system != "" && !strings.HasPrefix(strings.ToLower(s.SystemAffected), system) {
			continue
		}
		t := s.TumorType
		matched = append(matched, &t)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
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
