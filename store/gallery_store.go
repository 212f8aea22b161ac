package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"roamly/api/models"
)

type GalleryStore struct {
	db *sql.DB
}

func NewGalleryStore(db *sql.DB) *GalleryStore {
	return &GalleryStore{db: db}
}

func (s *GalleryStore) ListImages(ctx context.Context) ([]models.GalleryImage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, caption, location, sort_order, created_at
		FROM gallery_images
		ORDER BY sort_order ASC, created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list gallery images: %w", err)
	}
	defer rows.Close()

	images := []models.GalleryImage{}
	for rows.Next() {
		var img models.GalleryImage
		if err := rows.Scan(&img.ID, &img.URL, &img.Caption, &img.Location, &img.SortOrder, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan gallery image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gallery images: %w", err)
	}
	return images, nil
}

func (s *GalleryStore) AddImage(ctx context.Context, in models.GalleryImageInput) (*models.GalleryImage, error) {
	img := &models.GalleryImage{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO gallery_images (id, url, caption, location, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, url, caption, location, sort_order, created_at
	`, uuid.NewString(), in.URL, in.Caption, in.Location, in.SortOrder).Scan(
		&img.ID, &img.URL, &img.Caption, &img.Location, &img.SortOrder, &img.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add gallery image: %w", err)
	}
	return img, nil
}

func (s *GalleryStore) DeleteImage(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM gallery_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete gallery image: %w", err)
	}
	return expectRow(res, "gallery image "+id)
}
