package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrations embed.FS

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// PGStore persists entities in PostgreSQL. Each public operation is a single
// statement or a single transaction.
type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Close() {
	s.db.Close()
}

// Migrate applies the embedded schema files in name order.
func (s *PGStore) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		script, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(ctx, string(script)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}

func (s *PGStore) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func mapErr(err error, entity string, key any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(entity, key)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s %v: %w", entity, key, domain.ErrConflict)
	}
	return err
}

func collect[T any](rows pgx.Rows, scan func(scanner) (*T, error)) ([]T, error) {
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

// Users

const userColumns = `id, username, email, password, COALESCE(first_name, ''), COALESCE(last_name, ''),
	COALESCE(phone, ''), COALESCE(address, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(zip_code, ''),
	COALESCE(country, ''), created_at, updated_at, last_login, is_verified, COALESCE(reset_token, ''), reset_token_expiry`

func scanUser(row scanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.FirstName, &u.LastName,
		&u.Phone, &u.Address, &u.City, &u.State, &u.ZipCode,
		&u.Country, &u.CreatedAt, &u.UpdatedAt, &u.LastLogin, &u.IsVerified, &u.ResetToken, &u.ResetTokenExpiry); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PGStore) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := s.db.QueryRow(ctx, `INSERT INTO users (username, email, password, first_name, last_name, phone, address, city, state,
		zip_code, country, created_at, updated_at, last_login, is_verified, reset_token, reset_token_expiry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NULLIF($16, ''), $17)
		RETURNING `+userColumns,
		user.Username, user.Email, user.Password, user.FirstName, user.LastName, user.Phone, user.Address, user.City, user.State,
		user.ZipCode, user.Country, user.CreatedAt, user.UpdatedAt, user.LastLogin, user.IsVerified, user.ResetToken, user.ResetTokenExpiry)
	created, err := scanUser(row)
	return created, mapErr(err, "user", user.Username)
}

func (s *PGStore) getUserBy(ctx context.Context, where string, key any) (*domain.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, key)
	user, err := scanUser(row)
	return user, mapErr(err, "user", key)
}

func (s *PGStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.getUserBy(ctx, "id=$1", id)
}

func (s *PGStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUserBy(ctx, "lower(username)=lower($1)", username)
}

func (s *PGStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUserBy(ctx, "lower(email)=lower($1)", email)
}

func (s *PGStore) GetUserByResetToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, notFound("reset token", "")
	}
	return s.getUserBy(ctx, "reset_token=$1", token)
}

func (s *PGStore) UpdateUser(ctx context.Context, id int64, fn func(*domain.User) error) (*domain.User, error) {
	var updated *domain.User
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		user, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1 FOR UPDATE`, id))
		if err != nil {
			return mapErr(err, "user", id)
		}
		if err := fn(user); err != nil {
			return err
		}
		row := tx.QueryRow(ctx, `UPDATE users SET username=$2, email=$3, password=$4, first_name=$5, last_name=$6, phone=$7,
			address=$8, city=$9, state=$10, zip_code=$11, country=$12, updated_at=$13, last_login=$14, is_verified=$15,
			reset_token=NULLIF($16, ''), reset_token_expiry=$17
			WHERE id=$1 RETURNING `+userColumns,
			id, user.Username, user.Email, user.Password, user.FirstName, user.LastName, user.Phone,
			user.Address, user.City, user.State, user.ZipCode, user.Country, user.UpdatedAt, user.LastLogin, user.IsVerified,
			user.ResetToken, user.ResetTokenExpiry)
		updated, err = scanUser(row)
		return mapErr(err, "user", id)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

var _ Store = (*PGStore)(nil)
