package pagination

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params holds the page/limit pair requested by a client.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Default returns the parameters used when a request carries none.
func Default() Params {
	return Params{Page: DefaultPage, Limit: DefaultLimit}
}

// ParamError reports a page or limit query parameter outside its bounds.
type ParamError struct {
	Param  string
	Value  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Param, e.Value, e.Reason)
}

// FromContext extracts pagination parameters from the echo context. Missing
// values fall back to the defaults; present values outside the allowed range
// are rejected rather than clamped.
func FromContext(c echo.Context) (Params, error) {
	return Parse(c.QueryParam("page"), c.QueryParam("limit"))
}

// Parse validates raw page and limit strings.
func Parse(rawPage, rawLimit string) (Params, error) {
	p := Default()

	if s := strings.TrimSpace(rawPage); s != "" {
		page, err := strconv.Atoi(s)
		if err != nil || page < 1 {
			return Params{}, &ParamError{Param: "page", Value: rawPage, Reason: "must be a positive integer"}
		}
		p.Page = page
	}

	if s := strings.TrimSpace(rawLimit); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 {
			return Params{}, &ParamError{Param: "limit", Value: rawLimit, Reason: "must be a positive integer"}
		}
		if limit > MaxLimit {
			return Params{}, &ParamError{Param: "limit", Value: rawLimit, Reason: fmt.Sprintf("must not exceed %d", MaxLimit)}
		}
		p.Limit = limit
	}

	return p, nil
}

// Offset returns the number of rows to skip for the requested page.
func (p Params) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// SQL returns the LIMIT and OFFSET clause for SQL queries.
func (p Params) SQL() string {
	return fmt.Sprintf("LIMIT %d OFFSET %d", p.Limit, p.Offset())
}

// Page is one page of a filtered listing. Page and Limit echo the request;
// Total is the row count under the same filter as Data.
type Page[T any] struct {
	Data  []T `json:"data"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// NewPage builds a Page, normalising a nil slice to an empty one.
func NewPage[T any](data []T, p Params, total int) *Page[T] {
	if data == nil {
		data = []T{}
	}
	return &Page[T]{Data: data, Page: p.Page, Limit: p.Limit, Total: total}
}

// Meta returns the pagination metadata for the page.
func (pg *Page[T]) Meta() Meta {
	return NewMeta(Params{Page: pg.Page, Limit: pg.Limit}, pg.Total)
}

// Meta is the pagination block of a list response.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func NewMeta(p Params, total int) Meta {
	return Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: TotalPages(total, p.Limit),
	}
}

// TotalPages returns ceil(total/limit), never less than 1.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		return 1
	}
	return pages
}

// Response wraps a paginated API response.
type Response struct {
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Pagination Meta        `json:"pagination"`
}

func NewResponse[T any](message string, pg *Page[T]) *Response {
	return &Response{
		Message:    message,
		Data:       pg.Data,
		Pagination: pg.Meta(),
	}
}

// OptionalParam returns the trimmed query parameter, or nil when it is absent.
// A present but blank parameter yields a pointer to "" so validation can
// reject it.
func OptionalParam(c echo.Context, name string) *string {
	values := c.QueryParams()
	if _, ok := values[name]; !ok {
		return nil
	}
	s := strings.TrimSpace(values.Get(name))
	return &s
}
