package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUserNotFound reports a lookup for a user id with no row.
var ErrUserNotFound = errors.New("user not found")

// Store reads synced GitHub content from PostgreSQL. It is the data
// source for the embedding sync pipeline; writes happen upstream in the
// integration layer.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a Store over the given connection pool.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// GetUser fetches a user by id. Returns ErrUserNotFound when absent.
func (s *Store) GetUser(ctx context.Context, userID int64) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, display_name
		FROM users
		WHERE id = $1`, userID,
	).Scan(&u.ID, &u.Email, &u.DisplayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("fetching user %d: %w", userID, err)
	}
	return u, nil
}

// ListIssues returns all of a user's synced issues, oldest first.
func (s *Store) ListIssues(ctx context.Context, userID int64) ([]Issue, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, title, body, repository_name, state, url, created_at
		FROM issues
		WHERE user_id = $1
		ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing issues for user %d: %w", userID, err)
	}
	defer rows.Close()

	var issues []Issue
	for rows.Next() {
		var issue Issue
		if err := rows.Scan(
			&issue.ID, &issue.UserID, &issue.Title, &issue.Body,
			&issue.RepositoryName, &issue.State, &issue.URL, &issue.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning issue row: %w", err)
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading issue rows: %w", err)
	}
	return issues, nil
}

// ListRepositories returns all of a user's synced repositories, oldest
// first.
func (s *Store) ListRepositories(ctx context.Context, userID int64) ([]Repository, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, name, description, language, stars, url, created_at
		FROM repositories
		WHERE user_id = $1
		ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing repositories for user %d: %w", userID, err)
	}
	defer rows.Close()

	var repos []Repository
	for rows.Next() {
		var repo Repository
		if err := rows.Scan(
			&repo.ID, &repo.UserID, &repo.Name, &repo.Description,
			&repo.Language, &repo.Stars, &repo.URL, &repo.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning repository row: %w", err)
		}
		repos = append(repos, repo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading repository rows: %w", err)
	}
	return repos, nil
}
