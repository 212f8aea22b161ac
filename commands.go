package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"roamly/api/content"
	"roamly/api/database"
	"roamly/api/models"
	"roamly/api/store"
)

const minPasswordLen = 10

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the PostgreSQL tables (and the ClickHouse events table when configured)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pg, err := database.NewPostgresDB(ctx, a.cfg.DatabaseURL, a.logger)
			if err != nil {
				return err
			}
			defer pg.Close()
			if err := pg.MigratePostgres(ctx); err != nil {
				return err
			}

			if a.cfg.ClickHouse.Enabled() {
				ch, err := database.NewClickHouseDB(ctx, a.cfg.ClickHouse, a.logger)
				if err != nil {
					return err
				}
				defer ch.Close()
				if err := ch.Migrate(ctx); err != nil {
					return err
				}
			}
			a.logger.Info("migrations applied")
			return nil
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <dir>",
		Short: "Import markdown posts with YAML front matter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pg, err := database.NewPostgresDB(ctx, a.cfg.DatabaseURL, a.logger)
			if err != nil {
				return err
			}
			defer pg.Close()

			n, err := seedPosts(ctx, store.NewPostStore(pg.DB), os.DirFS(args[0]), a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d posts\n", n)
			return nil
		},
	}
}

type postUpserter interface {
	UpsertPost(ctx context.Context, in models.PostInput) (*models.Post, error)
}

// seedPosts upserts every .md file under fsys by slug. It stops at the first
// file that fails to parse so a broken import is never half applied silently.
func seedPosts(ctx context.Context, posts postUpserter, fsys fs.FS, logger *zap.Logger) (int, error) {
	var docs []content.Document
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		doc, err := content.ParseDocument(path, raw)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("read posts: %w", err)
	}

	for i, doc := range docs {
		if _, err := posts.UpsertPost(ctx, postInput(doc)); err != nil {
			return i, fmt.Errorf("import %s: %w", doc.Slug, err)
		}
		logger.Info("post imported", zap.String("slug", doc.Slug), zap.String("kind", doc.Kind))
	}
	return len(docs), nil
}

func postInput(doc content.Document) models.PostInput {
	in := models.PostInput{
		Kind:       doc.Kind,
		Slug:       doc.Slug,
		Title:      doc.Title,
		Summary:    doc.Summary,
		Body:       doc.Body,
		Category:   doc.Category,
		CoverImage: doc.CoverImage,
		VideoURL:   doc.VideoURL,
		Location:   doc.Location,
		Published:  doc.Published,
	}
	if !doc.PublishedAt.IsZero() {
		ts := doc.PublishedAt
		in.PublishedAt = &ts
	}
	return in
}

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}
	cmd.AddCommand(newAdminPasswordCmd(a, "create", "Create an admin account"))
	cmd.AddCommand(newAdminPasswordCmd(a, "passwd", "Reset an admin password"))
	return cmd
}

func newAdminPasswordCmd(a *app, use, short string) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hashed, err := hashPassword(password)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pg, err := database.NewPostgresDB(ctx, a.cfg.DatabaseURL, a.logger)
			if err != nil {
				return err
			}
			defer pg.Close()
			admins := store.NewAdminStore(pg.DB)

			if use == "passwd" {
				if err := admins.UpdatePassword(ctx, email, hashed); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", email)
				return nil
			}

			admin, err := admins.CreateAdmin(ctx, email, hashed)
			if err != nil {
				if errors.Is(err, store.ErrConflict) {
					return fmt.Errorf("admin %s already exists", email)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %d created for %s\n", admin.ID, admin.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func hashPassword(password string) ([]byte, error) {
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return hashed, nil
}
