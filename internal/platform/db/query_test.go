package db

import (
	"reflect"
	"testing"
)

func TestListQuery_NoFilters(t *testing.T) {
	q := NewListQuery("tumor_types", "id, name").OrderBy("name")

	if got := q.CountSQL(); got != "SELECT COUNT(*) FROM tumor_types" {
		t.Errorf("unexpected count SQL: %s", got)
	}
	if got := q.DataSQL(); got != "SELECT id, name FROM tumor_types ORDER BY name LIMIT $1 OFFSET $2" {
		t.Errorf("unexpected data SQL: %s", got)
	}
	if got := q.DataArgs(10, 20); !reflect.DeepEqual(got, []interface{}{10, 20}) {
		t.Errorf("unexpected data args: %v", got)
	}
}

func TestListQuery_Placeholders(t *testing.T) {
	q := NewListQuery("patients", "*").
		In("status", "Activo", "Seguimiento").
		Where("(first_name ILIKE ? OR last_name ILIKE ?)", "%ana%", "%ana%").
		Where("gender = ?", "FEMENINO")

	wantWhere := " WHERE status IN ($1, $2) AND (first_name ILIKE $3 OR last_name ILIKE $4) AND gender = $5"
	if got := q.CountSQL(); got != "SELECT COUNT(*) FROM patients"+wantWhere {
		t.Errorf("unexpected count SQL: %s", got)
	}
	if got := q.DataSQL(); got != "SELECT * FROM patients"+wantWhere+" LIMIT $6 OFFSET $7" {
		t.Errorf("unexpected data SQL: %s", got)
	}
	if len(q.CountArgs()) != 5 {
		t.Errorf("expected 5 count args, got %d", len(q.CountArgs()))
	}
	args := q.DataArgs(10, 0)
	if len(args) != 7 || args[4] != "FEMENINO" || args[5] != 10 || args[6] != 0 {
		t.Errorf("unexpected data args: %v", args)
	}
	if q.Next() != "$6" {
		t.Errorf("expected next placeholder $6, got %s", q.Next())
	}
}

func TestListQuery_EmptyIn(t *testing.T) {
	q := NewListQuery("patients", "*").In("status")
	if got := q.CountSQL(); got != "SELECT COUNT(*) FROM patients WHERE FALSE" {
		t.Errorf("unexpected SQL: %s", got)
	}
}

func TestDataArgs_DoesNotAlias(t *testing.T) {
	q := NewListQuery("t", "*").Where("a = ?", 1)
	_ = q.DataArgs(10, 0)
	if len(q.CountArgs()) != 1 {
		t.Errorf("count args mutated: %v", q.CountArgs())
	}
}

func TestLikePatterns(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"contains", ContainsPattern("ana"), "%ana%"},
		{"contains escapes", ContainsPattern("50%_off"), `%50\%\_off%`},
		{"prefix", PrefixPattern("Resp"), "Resp%"},
		{"backslash", EscapeLike(`a\b`), `a\\b`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, tt.got)
			}
		})
	}
}
