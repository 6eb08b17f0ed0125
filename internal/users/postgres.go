package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/yourusername/blog-api/internal/users/migrations"
)

// pgUniqueViolation は PostgreSQL の一意制約違反のエラーコードです。
const pgUniqueViolation = "23505"

// PostgresStore はユーザーを PostgreSQL に保存します。
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres はDSNから接続を開き、PostgresStore を作成します。
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStore は既存の接続から PostgresStore を作成します。
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// RunMigrations は埋め込みマイグレーションを適用します。
func (s *PostgresStore) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.UpContext(ctx, s.db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

// Close は接続を閉じます。
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Create は新規ユーザーを保存します。
func (s *PostgresStore) Create(ctx context.Context, user *User) (*User, error) {
	stored := *user
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	query := `INSERT INTO users (id, email, real_name, password_hash)
	          VALUES ($1, lower($2), $3, $4)`

	if _, err := s.db.ExecContext(ctx, query,
		stored.ID, stored.Email, stored.RealName, stored.PasswordHash); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &stored, nil
}

// GetByEmail はメールアドレスでユーザーを検索します。
func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT id, email, real_name, password_hash, refresh_token
	          FROM users WHERE email = lower($1)`
	return s.scanOne(s.db.QueryRowContext(ctx, query, email))
}

// GetByID はIDでユーザーを検索します。
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT id, email, real_name, password_hash, refresh_token
	          FROM users WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

// UpdateRefreshToken はユーザーの RefreshToken スロットを上書きします。
func (s *PostgresStore) UpdateRefreshToken(ctx context.Context, userID string, token *string) error {
	query := `UPDATE users SET refresh_token = $2 WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, userID, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// PruneRefreshTokens は期限切れと判定された RefreshToken を削除します。
// 判定と削除の間に新しいログインで上書きされた行はそのまま残します。
func (s *PostgresStore) PruneRefreshTokens(ctx context.Context, expired func(token string) bool) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, refresh_token FROM users WHERE refresh_token IS NOT NULL`)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	type slot struct {
		id    string
		token string
	}
	var stale []slot
	for rows.Next() {
		var cur slot
		if err := rows.Scan(&cur.id, &cur.token); err != nil {
			return 0, fmt.Errorf("db error: %w", err)
		}
		if expired(cur.token) {
			stale = append(stale, cur)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	pruned := 0
	for _, cur := range stale {
		result, err := s.db.ExecContext(ctx,
			`UPDATE users SET refresh_token = NULL WHERE id = $1 AND refresh_token = $2`,
			cur.id, cur.token)
		if err != nil {
			return pruned, fmt.Errorf("db error: %w", err)
		}
		if affected, err := result.RowsAffected(); err == nil && affected > 0 {
			pruned++
		}
	}
	return pruned, nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (*User, error) {
	user := &User{}
	var token sql.NullString
	err := row.Scan(&user.ID, &user.Email, &user.RealName, &user.PasswordHash, &token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if token.Valid {
		user.RefreshToken = &token.String
	}
	return user, nil
}
