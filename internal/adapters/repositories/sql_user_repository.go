package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"logistics-service/internal/domain"
	"logistics-service/internal/platform/db"
	"logistics-service/internal/platform/obs"
	"logistics-service/internal/ports"
)

// SQL implementation of the UserRepository port.
type SQLUserRepository struct{ DB *db.DB }

func NewSQLUserRepository(conn *db.DB) *SQLUserRepository {
	return &SQLUserRepository{DB: conn}
}

var _ ports.UserRepository = (*SQLUserRepository)(nil)

const userColumns = "id, username, email, first_name, last_name, password_hash, is_staff, created_at"

func (r *SQLUserRepository) Create(ctx context.Context, u *domain.User) (err error) {
	defer obs.Time(ctx, "users.create")(&err)

	if err := u.Validate(); err != nil {
		return err
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create user: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	fe := domain.FieldErrors{}
	for field, value := range map[string]string{"username": u.Username, "email": u.Email} {
		var n int
		query := r.DB.Dialect.Rebind("SELECT COUNT(*) FROM users WHERE LOWER(" + field + ") = LOWER(?)")
		if err := tx.QueryRowContext(ctx, query, value).Scan(&n); err != nil {
			return fmt.Errorf("create user: check %s: %w", field, err)
		}
		if n > 0 {
			fe.Add(field, "a user with that "+field+" already exists")
		}
	}
	if err := fe.Err(); err != nil {
		return err
	}

	query := r.DB.Dialect.Rebind(`
	INSERT INTO users (username, email, first_name, last_name, password_hash, is_staff, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	RETURNING id;
	`)
	err = tx.QueryRowContext(ctx, query, u.Username, u.Email, u.FirstName, u.LastName,
		u.PasswordHash, u.IsStaff, u.CreatedAt.Format(time.RFC3339Nano)).Scan(&u.UserID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.FieldErrors{"username": "a user with that username already exists"}
		}
		return fmt.Errorf("create user: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create user: commit tx: %w", err)
	}
	return nil
}

func (r *SQLUserRepository) GetByID(ctx context.Context, id int64) (u *domain.User, err error) {
	defer obs.Time(ctx, "users.get")(&err)

	query := r.DB.Dialect.Rebind("SELECT " + userColumns + " FROM users WHERE id = ?")
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id), fmt.Sprintf("id %d", id))
}

func (r *SQLUserRepository) GetByUsername(ctx context.Context, username string) (u *domain.User, err error) {
	defer obs.Time(ctx, "users.get_by_username")(&err)

	query := r.DB.Dialect.Rebind("SELECT " + userColumns + " FROM users WHERE username = ?")
	return r.scanOne(r.DB.QueryRowContext(ctx, query, username), "username "+username)
}

func (r *SQLUserRepository) scanOne(row *sql.Row, key string) (*domain.User, error) {
	var u domain.User
	var created string
	err := row.Scan(&u.UserID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.IsStaff, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: scan: %w", key, err)
	}

	if u.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("get user %s: parse created_at: %w", key, err)
	}
	return &u, nil
}
