package db

import (
	"context"
	"time"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/models"
)

const pageByURLSQL = `
    SELECT id, url, content, date_download
    FROM blume.pages
    WHERE url = $1
`

// GetPageByURL returns the stored page for url, or nil if none exists.
func (s *Store) GetPageByURL(ctx context.Context, url string) (*models.Page, error) {
	var p models.Page
	err := s.pool.QueryRow(ctx, pageByURLSQL, url).Scan(&p.ID, &p.URL, &p.Content, &p.DateDownload)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const upsertPageSQL = `
INSERT INTO blume.pages (url, content, date_download)
VALUES ($1, $2, $3)
ON CONFLICT (url) DO UPDATE
SET content = EXCLUDED.content,
    date_download = EXCLUDED.date_download
RETURNING id, url, content, date_download`

// UpsertPage creates the page for url or overwrites its content and download time.
func (s *Store) UpsertPage(ctx context.Context, url, content string, downloadedAt time.Time) (models.Page, error) {
	var p models.Page
	err := s.pool.QueryRow(ctx, upsertPageSQL, url, content, downloadedAt.UTC()).
		Scan(&p.ID, &p.URL, &p.Content, &p.DateDownload)
	return p, err
}

// ListPageURLs returns the URLs of all stored pages in download order.
func (s *Store) ListPageURLs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT url FROM blume.pages ORDER BY date_download, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	urls := make([]string, 0)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}
