package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"roamly/api/models"
)

const postColumns = `id, kind, slug, title, summary, body, category, cover_image, video_url, location,
	published, published_at, created_at, updated_at`

// PostStore holds blog posts and adventures.
type PostStore struct {
	db *sql.DB
}

func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

func (s *PostStore) ListPosts(ctx context.Context, f models.PostFilter) ([]models.Post, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.Kind != "" {
		args = append(args, f.Kind)
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.PublishedOnly {
		where = append(where, "published")
	}

	query := "SELECT " + postColumns + " FROM posts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY COALESCE(published_at, created_at) DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return posts, nil
}

func (s *PostStore) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE slug = $1", slug)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %q: %w", slug, ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

// HasSlug reports whether a published post or adventure uses slug.
func (s *PostStore) HasSlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND published)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

func (s *PostStore) CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error) {
	query := `
		INSERT INTO posts (id, kind, slug, title, summary, body, category, cover_image, video_url, location, published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + postColumns
	row := s.db.QueryRowContext(ctx, query,
		uuid.NewString(), in.Kind, in.Slug, in.Title, in.Summary, in.Body, in.Category,
		in.CoverImage, in.VideoURL, in.Location, in.Published, in.PublishedAt,
	)
	p, err := scanPost(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("post slug %q: %w", in.Slug, ErrConflict)
		}
		return nil, err
	}
	return p, nil
}

// UpsertPost creates or replaces the post with in.Slug. Used by seeding.
func (s *PostStore) UpsertPost(ctx context.Context, in models.PostInput) (*models.Post, error) {
	query := `
		INSERT INTO posts (id, kind, slug, title, summary, body, category, cover_image, video_url, location, published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (slug) DO UPDATE SET
			kind = EXCLUDED.kind, title = EXCLUDED.title, summary = EXCLUDED.summary, body = EXCLUDED.body,
			category = EXCLUDED.category, cover_image = EXCLUDED.cover_image, video_url = EXCLUDED.video_url,
			location = EXCLUDED.location, published = EXCLUDED.published, published_at = EXCLUDED.published_at,
			updated_at = now()
		RETURNING ` + postColumns
	row := s.db.QueryRowContext(ctx, query,
		uuid.NewString(), in.Kind, in.Slug, in.Title, in.Summary, in.Body, in.Category,
		in.CoverImage, in.VideoURL, in.Location, in.Published, in.PublishedAt,
	)
	return scanPost(row)
}

func (s *PostStore) UpdatePost(ctx context.Context, id string, in models.PostInput) (*models.Post, error) {
	query := `
		UPDATE posts SET kind = $2, slug = $3, title = $4, summary = $5, body = $6, category = $7,
			cover_image = $8, video_url = $9, location = $10, published = $11, published_at = $12, updated_at = now()
		WHERE id = $1
		RETURNING ` + postColumns
	row := s.db.QueryRowContext(ctx, query,
		id, in.Kind, in.Slug, in.Title, in.Summary, in.Body, in.Category,
		in.CoverImage, in.VideoURL, in.Location, in.Published, in.PublishedAt,
	)
	p, err := scanPost(row)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("post %s: %w", id, ErrNotFound)
		case isUniqueViolation(err):
			return nil, fmt.Errorf("post slug %q: %w", in.Slug, ErrConflict)
		}
		return nil, err
	}
	return p, nil
}

func (s *PostStore) DeletePost(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return expectRow(res, "post "+id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	p := &models.Post{}
	var publishedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.Kind, &p.Slug, &p.Title, &p.Summary, &p.Body, &p.Category, &p.CoverImage,
		&p.VideoURL, &p.Location, &p.Published, &publishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan post: %w", err)
	}
	if publishedAt.Valid {
		ts := publishedAt.Time
		p.PublishedAt = &ts
	}
	return p, nil
}
