package content

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var frontMatterDelim = []byte("---")

// ErrNoFrontMatter is returned for files that do not start with a --- block.
var ErrNoFrontMatter = errors.New("content: missing front matter")

// Document is a post read from a markdown file.
type Document struct {
	Kind        string
	Slug        string
	Title       string
	Summary     string
	Category    string
	CoverImage  string
	VideoURL    string
	Location    string
	Published   bool
	PublishedAt time.Time
	Body        string
}

type frontMatter struct {
	Kind        string `yaml:"kind"`
	Slug        string `yaml:"slug"`
	Title       string `yaml:"title"`
	Summary     string `yaml:"summary"`
	Category    string `yaml:"category"`
	CoverImage  string `yaml:"cover_image"`
	VideoURL    string `yaml:"video_url"`
	Location    string `yaml:"location"`
	Draft       bool   `yaml:"draft"`
	PublishedAt string `yaml:"published_at"`
}

// ParseDocument splits YAML front matter from the markdown body. name is the
// file name; its base becomes the slug when front matter does not set one.
func ParseDocument(name string, raw []byte) (Document, error) {
	raw = bytes.TrimLeft(raw, "\ufeff \t\r\n")
	if !bytes.HasPrefix(raw, frontMatterDelim) {
		return Document{}, fmt.Errorf("%s: %w", name, ErrNoFrontMatter)
	}
	rest := raw[len(frontMatterDelim):]
	end := bytes.Index(rest, append([]byte("\n"), frontMatterDelim...))
	if end < 0 {
		return Document{}, fmt.Errorf("%s: unterminated front matter", name)
	}

	var fm frontMatter
	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return Document{}, fmt.Errorf("%s: parse front matter: %w", name, err)
	}
	body := rest[end+1+len(frontMatterDelim):]

	doc := Document{
		Kind:       strings.ToLower(strings.TrimSpace(fm.Kind)),
		Slug:       strings.TrimSpace(fm.Slug),
		Title:      strings.TrimSpace(fm.Title),
		Summary:    strings.TrimSpace(fm.Summary),
		Category:   strings.TrimSpace(fm.Category),
		CoverImage: strings.TrimSpace(fm.CoverImage),
		VideoURL:   strings.TrimSpace(fm.VideoURL),
		Location:   strings.TrimSpace(fm.Location),
		Published:  !fm.Draft,
		Body:       strings.TrimSpace(string(body)),
	}
	if doc.Kind == "" {
		doc.Kind = "blog"
	}
	if doc.Kind != "blog" && doc.Kind != "adventure" {
		return Document{}, fmt.Errorf("%s: unknown kind %q", name, doc.Kind)
	}
	if doc.Slug == "" {
		doc.Slug = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	if doc.Title == "" {
		return Document{}, fmt.Errorf("%s: title is required", name)
	}
	if fm.PublishedAt != "" {
		ts, err := parseDate(fm.PublishedAt)
		if err != nil {
			return Document{}, fmt.Errorf("%s: published_at: %w", name, err)
		}
		doc.PublishedAt = ts
	}
	return doc, nil
}

func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if ts, err := time.Parse(time.RFC3339, v); err == nil {
		return ts.UTC(), nil
	}
	return time.Parse("2006-01-02", v)
}
