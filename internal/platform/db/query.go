package db

import (
	"fmt"
	"strings"
)

// ListQuery accumulates WHERE fragments with positional arguments and renders
// a matching COUNT query and paged data query over the same predicate.
type ListQuery struct {
	table   string
	cols    string
	where   []string
	args    []interface{}
	orderBy string
}

func NewListQuery(table, cols string) *ListQuery {
	return &ListQuery{table: table, cols: cols}
}

// Next returns the placeholder for the next argument, e.g. "$3".
func (q *ListQuery) Next() string {
	return fmt.Sprintf("$%d", len(q.args)+1)
}

// Where appends a clause. Each "?" in clause is replaced by the next
// positional placeholder, in order.
func (q *ListQuery) Where(clause string, args ...interface{}) *ListQuery {
	for _, arg := range args {
		clause = strings.Replace(clause, "?", q.Next(), 1)
		q.args = append(q.args, arg)
	}
	q.where = append(q.where, clause)
	return q
}

// In appends "column IN (...)" for the given values. An empty list matches nothing.
func (q *ListQuery) In(column string, values ...interface{}) *ListQuery {
	if len(values) == 0 {
		q.where = append(q.where, "FALSE")
		return q
	}
	marks := make([]string, len(values))
	for i := range values {
		marks[i] = "?"
	}
	return q.Where(column+" IN ("+strings.Join(marks, ", ")+")", values...)
}

// OrderBy sets the ORDER BY list (without the keyword).
func (q *ListQuery) OrderBy(orderBy string) *ListQuery {
	q.orderBy = orderBy
	return q
}

func (q *ListQuery) whereSQL() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

func (q *ListQuery) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", q.table, q.whereSQL())
}

func (q *ListQuery) CountArgs() []interface{} {
	return q.args
}

// DataSQL renders the data query with LIMIT and OFFSET bound after the filter args.
func (q *ListQuery) DataSQL() string {
	sql := fmt.Sprintf("SELECT %s FROM %s%s", q.cols, q.table, q.whereSQL())
	if q.orderBy != "" {
		sql += " ORDER BY " + q.orderBy
	}
	n := len(q.args)
	return sql + fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
}

func (q *ListQuery) DataArgs(limit, offset int) []interface{} {
	out := make([]interface{}, len(q.args), len(q.args)+2)
	copy(out, q.args)
	return append(out, limit, offset)
}

// ContainsPattern wraps s for a substring ILIKE match, escaping LIKE metacharacters.
func ContainsPattern(s string) string {
	return "%" + EscapeLike(s) + "%"
}

// PrefixPattern wraps s for a prefix ILIKE match, escaping LIKE metacharacters.
func PrefixPattern(s string) string {
	return EscapeLike(s) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so s matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
