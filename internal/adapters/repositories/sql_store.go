package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"logistics-service/internal/catalog"
	"logistics-service/internal/domain"
	"logistics-service/internal/platform/db"
	"logistics-service/internal/platform/obs"
	"logistics-service/internal/ports"
)

// Mapping binds a domain type to its catalog entity and table row.
// Values and Scan follow the order of Entity.Fields; Scan additionally
// reads the id column first.
type Mapping[T any] struct {
	Entity   *catalog.Entity
	Values   func(*T) []any
	Scan     func(rowScanner) (*T, error)
	ID       func(*T) int64
	SetID    func(*T, int64)
	Validate func(*T) error
}

// database/sql implementation of ports.Store for SQLite and PostgreSQL.
type SQLStore[T any] struct {
	DB      *db.DB
	Mapping Mapping[T]
}

func NewSQLStore[T any](conn *db.DB, m Mapping[T]) *SQLStore[T] {
	return &SQLStore[T]{DB: conn, Mapping: m}
}

func (s *SQLStore[T]) entity() *catalog.Entity { return s.Mapping.Entity }

func (s *SQLStore[T]) op(name string) string { return s.entity().Table + "." + name }

func (s *SQLStore[T]) columns() []string {
	fields := s.entity().Fields
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Column()
	}
	return cols
}

func (s *SQLStore[T]) selectList() string {
	return "id, " + strings.Join(s.columns(), ", ")
}

func (s *SQLStore[T]) rebind(q string) string { return s.DB.Dialect.Rebind(q) }

func (s *SQLStore[T]) List(ctx context.Context, q ports.ListQuery) (page ports.Page[T], err error) {
	defer obs.Time(ctx, s.op("list"))(&err)

	e := s.entity()
	where, args, err := whereClause(e, q.Filters, q.Search)
	if err != nil {
		return page, err
	}
	order, err := orderClause(e, q.Ordering)
	if err != nil {
		return page, err
	}

	var count int
	countQuery := s.rebind("SELECT COUNT(*) FROM " + e.Table + where)
	if err := s.DB.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return page, fmt.Errorf("list %s: count rows: %w", e.Table, err)
	}

	n, size, err := paginate(q, count)
	if err != nil {
		return page, err
	}

	query := s.rebind("SELECT " + s.selectList() + " FROM " + e.Table + where + order + " LIMIT ? OFFSET ?")
	rows, err := s.DB.QueryContext(ctx, query, append(args, size, (n-1)*size)...)
	if err != nil {
		return page, fmt.Errorf("list %s: query rows: %w", e.Table, err)
	}
	defer rows.Close()

	items := make([]*T, 0, size)
	for rows.Next() {
		v, err := s.Mapping.Scan(rows)
		if err != nil {
			return page, fmt.Errorf("list %s: scan row: %w", e.Table, err)
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("list %s: row iteration: %w", e.Table, err)
	}

	return ports.Page[T]{Items: items, Count: count, Page: n, PageSize: size}, nil
}

func (s *SQLStore[T]) Count(ctx context.Context, filters map[string]string) (n int, err error) {
	defer obs.Time(ctx, s.op("count"))(&err)

	e := s.entity()
	where, args, err := whereClause(e, filters, "")
	if err != nil {
		return 0, err
	}
	query := s.rebind("SELECT COUNT(*) FROM " + e.Table + where)
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", e.Table, err)
	}
	return n, nil
}

func (s *SQLStore[T]) Get(ctx context.Context, id int64) (v *T, err error) {
	defer obs.Time(ctx, s.op("get"))(&err)
	return s.get(ctx, s.DB, id)
}

func (s *SQLStore[T]) get(ctx context.Context, q querier, id int64) (*T, error) {
	e := s.entity()
	query := s.rebind("SELECT " + s.selectList() + " FROM " + e.Table + " WHERE id = ?")
	v, err := s.Mapping.Scan(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s %d: %w", e.Name, id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", e.Name, id, err)
	}
	return v, nil
}

func (s *SQLStore[T]) Create(ctx context.Context, v *T) (err error) {
	defer obs.Time(ctx, s.op("create"))(&err)

	if err := s.Mapping.Validate(v); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.insert(ctx, tx, v)
	})
}

func (s *SQLStore[T]) Update(ctx context.Context, v *T) (err error) {
	defer obs.Time(ctx, s.op("update"))(&err)

	if err := s.Mapping.Validate(v); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.update(ctx, tx, v)
	})
}

func (s *SQLStore[T]) Delete(ctx context.Context, id int64) (err error) {
	defer obs.Time(ctx, s.op("delete"))(&err)

	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.delete(ctx, tx, id)
	})
}

func (s *SQLStore[T]) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", s.entity().Table, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit tx: %w", s.entity().Table, err)
	}
	return nil
}

func (s *SQLStore[T]) insert(ctx context.Context, tx *sql.Tx, v *T) error {
	e := s.entity()
	if err := s.checkConstraints(ctx, tx, v, 0); err != nil {
		return err
	}

	cols := s.columns()
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := s.rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id", e.Table, strings.Join(cols, ", "), marks))

	var id int64
	if err := tx.QueryRowContext(ctx, query, s.Mapping.Values(v)...).Scan(&id); err != nil {
		return s.writeError("insert", err)
	}
	s.Mapping.SetID(v, id)
	return nil
}

func (s *SQLStore[T]) update(ctx context.Context, tx *sql.Tx, v *T) error {
	e := s.entity()
	id := s.Mapping.ID(v)

	var exists int
	existsQuery := s.rebind("SELECT COUNT(*) FROM " + e.Table + " WHERE id = ?")
	if err := tx.QueryRowContext(ctx, existsQuery, id).Scan(&exists); err != nil {
		return fmt.Errorf("update %s %d: lookup: %w", e.Name, id, err)
	}
	if exists == 0 {
		return fmt.Errorf("update %s %d: %w", e.Name, id, domain.ErrNotFound)
	}

	if err := s.checkConstraints(ctx, tx, v, id); err != nil {
		return err
	}

	cols := s.columns()
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
	}
	query := s.rebind(fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", e.Table, strings.Join(sets, ", ")))
	if _, err := tx.ExecContext(ctx, query, append(s.Mapping.Values(v), id)...); err != nil {
		return s.writeError("update", err)
	}
	return nil
}

// checkConstraints reports duplicate natural keys and references to missing
// records as field errors before the write reaches the database.
func (s *SQLStore[T]) checkConstraints(ctx context.Context, tx *sql.Tx, v *T, id int64) error {
	e := s.entity()
	values := s.Mapping.Values(v)
	fe := domain.FieldErrors{}

	for i, f := range e.Fields {
		val := deref(values[i])
		switch {
		case f.Unique:
			var n int
			query := s.rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ? AND id <> ?", e.Table, f.Column()))
			if err := tx.QueryRowContext(ctx, query, val, id).Scan(&n); err != nil {
				return fmt.Errorf("%s: check unique %s: %w", e.Table, f.Name, err)
			}
			if n > 0 {
				fe.Add(f.Name, fmt.Sprintf("%s with this %s already exists", strings.ToLower(e.Label), strings.ToLower(f.Label)))
			}

		case f.Kind == catalog.Reference && val != nil:
			ref, ok := catalog.Lookup(f.Ref)
			if !ok {
				return fmt.Errorf("%s: field %s references unknown entity %q", e.Table, f.Name, f.Ref)
			}
			var n int
			query := s.rebind("SELECT COUNT(*) FROM " + ref.Table + " WHERE id = ?")
			if err := tx.QueryRowContext(ctx, query, val).Scan(&n); err != nil {
				return fmt.Errorf("%s: check reference %s: %w", e.Table, f.Name, err)
			}
			if n == 0 {
				fe.Add(f.Name, "unknown "+strings.ToLower(ref.Label))
			}
		}
	}
	return fe.Err()
}

func (s *SQLStore[T]) delete(ctx context.Context, tx *sql.Tx, id int64) error {
	e := s.entity()

	for _, ref := range e.ReferencedBy {
		if ref.Action != catalog.Protect {
			continue
		}
		var n int
		query := s.rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", ref.Table, ref.Column))
		if err := tx.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
			return fmt.Errorf("delete %s %d: count %s: %w", e.Name, id, ref.Label, err)
		}
		if n > 0 {
			return &domain.ReferencedError{Entity: strings.ToLower(e.Label), ReferencedBy: ref.Label, Count: n}
		}
	}

	for _, ref := range e.ReferencedBy {
		var query string
		var args []any
		switch ref.Action {
		case catalog.SetNull:
			query = fmt.Sprintf("UPDATE %s SET %s = NULL WHERE %s = ?", ref.Table, ref.Column, ref.Column)
			args = []any{id}
		case catalog.Detach:
			query = fmt.Sprintf("UPDATE %s SET %s = NULL, %s = ? WHERE %s = ?", ref.Table, ref.Column, catalog.FlagColumn, ref.Column)
			args = []any{true, id}
		default:
			continue
		}
		res, err := tx.ExecContext(ctx, s.rebind(query), args...)
		if err != nil {
			return fmt.Errorf("delete %s %d: detach %s: %w", e.Name, id, ref.Label, err)
		}
		if n, _ := res.RowsAffected(); n > 0 && ref.Action == catalog.Detach {
			obs.Logger(ctx).Sugar().Infow("flagged records for reassignment",
				"entity", e.Name, "id", id, "table", ref.Table, "count", n)
		}
	}

	res, err := tx.ExecContext(ctx, s.rebind("DELETE FROM "+e.Table+" WHERE id = ?"), id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.ReferencedError{Entity: strings.ToLower(e.Label), ReferencedBy: "other records"}
		}
		return fmt.Errorf("delete %s %d: %w", e.Name, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %d: rows affected: %w", e.Name, id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s %d: %w", e.Name, id, domain.ErrNotFound)
	}
	return nil
}

// writeError maps constraint violations that slipped past the pre-checks.
func (s *SQLStore[T]) writeError(step string, err error) error {
	e := s.entity()
	switch {
	case isUniqueViolation(err):
		fe := domain.FieldErrors{}
		for _, f := range e.Fields {
			if f.Unique {
				fe.Add(f.Name, fmt.Sprintf("%s with this %s already exists", strings.ToLower(e.Label), strings.ToLower(f.Label)))
			}
		}
		return fe
	case isForeignKeyViolation(err):
		return domain.FieldErrors{"non_field_errors": "a referenced record no longer exists"}
	}
	return fmt.Errorf("%s %s: %w", step, e.Name, err)
}
