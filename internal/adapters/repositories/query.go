package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"logistics-service/internal/catalog"
	"logistics-service/internal/domain"
	"logistics-service/internal/ports"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

const likeEscape = `ESCAPE '\'`

// whereClause turns filters and a search term into a WHERE clause with ?
// placeholders. Malformed filter values are reported as field errors.
func whereClause(e *catalog.Entity, filters map[string]string, search string) (string, []any, error) {
	var conds []string
	var args []any
	fe := domain.FieldErrors{}

	for _, flt := range e.Filters {
		raw := strings.TrimSpace(filters[flt.Param])
		if raw == "" {
			continue
		}
		v, err := e.ParseFilter(flt, raw)
		if err != nil {
			fe.Add(flt.Param, err.Error())
			continue
		}

		f, _ := e.Field(flt.Field)
		col := f.Column()
		switch flt.Op {
		case catalog.Contains:
			conds = append(conds, fmt.Sprintf("LOWER(%s) LIKE ? %s", col, likeEscape))
			args = append(args, likePattern(raw))
		case catalog.Equal:
			conds = append(conds, col+" = ?")
			args = append(args, v)
		case catalog.Min:
			conds = append(conds, col+" >= ?")
			args = append(args, v)
		case catalog.Max:
			conds = append(conds, col+" <= ?")
			args = append(args, v)
		}
	}
	if err := fe.Err(); err != nil {
		return "", nil, err
	}

	if term := strings.TrimSpace(search); term != "" && len(e.Search) > 0 {
		ors := make([]string, 0, len(e.Search))
		for _, name := range e.Search {
			f, _ := e.Field(name)
			ors = append(ors, fmt.Sprintf("LOWER(%s) LIKE ? %s", f.Column(), likeEscape))
			args = append(args, likePattern(term))
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

// orderClause resolves an ordering parameter into ORDER BY, always ending
// with id so pagination is stable.
func orderClause(e *catalog.Entity, ordering string) (string, error) {
	terms, ok := e.OrderBy(ordering)
	if !ok {
		return "", domain.FieldErrors{"ordering": fmt.Sprintf("cannot order by %q", ordering)}
	}

	parts := make([]string, 0, len(terms)+1)
	hasID := false
	for _, term := range terms {
		dir := "ASC"
		name := term
		if strings.HasPrefix(term, "-") {
			dir, name = "DESC", term[1:]
		}
		col := "id"
		if name == "id" {
			hasID = true
		} else {
			f, _ := e.Field(name)
			col = f.Column()
		}
		parts = append(parts, col+" "+dir)
	}
	if !hasID {
		parts = append(parts, "id ASC")
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// paginate resolves the page number against the total count.
func paginate(q ports.ListQuery, count int) (page, size int, err error) {
	size = q.PageSize
	if size <= 0 {
		size = 10
	}
	page = q.Page
	if page < 1 {
		page = 1
	}

	last := 1
	if count > 0 {
		last = (count + size - 1) / size
	}
	if page > last {
		if !q.Clamp {
			return 0, 0, ports.ErrInvalidPage
		}
		page = last
	}
	return page, size, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}

func nullableFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func nullableInt(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// deref unwraps optional values so they can be inspected before binding.
func deref(v any) any {
	switch p := v.(type) {
	case *int64:
		if p == nil {
			return nil
		}
		return *p
	case *float64:
		if p == nil {
			return nil
		}
		return *p
	}
	return v
}
