package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopmate/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// Repository handles the optional Postgres analytics and product store.
// Everything here is best-effort from the orchestrator's point of view:
// turns complete whether or not logging succeeds.
type Repository struct {
	db *sqlx.DB
}

// NewRepository connects to PostgreSQL
func NewRepository(dsn string, maxConn, maxIdleConn int) (*Repository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// SearchLog is one logged catalog search
type SearchLog struct {
	SearchID       string
	SessionID      string
	Query          string
	SortBy         string
	ResultCount    int
	ProductIDs     []string
	ResponseTimeMs int
}

// LogSearch records a search that fired for a turn
func (r *Repository) LogSearch(ctx context.Context, entry SearchLog) error {
	query := `
		INSERT INTO search_logs (search_id, session_id, query, sort_by, result_count, returned_product_ids, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.SearchID, entry.SessionID, entry.Query, entry.SortBy,
		entry.ResultCount, pq.StringArray(entry.ProductIDs), entry.ResponseTimeMs)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}

// LogFeedback records a user action against a logged search
func (r *Repository) LogFeedback(ctx context.Context, searchID, productID, action string) error {
	query := `
		UPDATE search_logs
		SET clicked_product_id = $2, action = $3
		WHERE search_id = $1
	`
	_, err := r.db.ExecContext(ctx, query, searchID, productID, action)
	if err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	return nil
}

// SaveProducts persists returned products with their embedding vectors so
// later turns can fall back to semantic recall. products and embeddings
// are parallel slices.
func (r *Repository) SaveProducts(ctx context.Context, searchID string, products []model.Product, embeddings [][]float32) (int, []string) {
	success := 0
	var errors []string

	if len(products) != len(embeddings) {
		errors = append(errors, fmt.Sprintf("got %d products but %d embeddings", len(products), len(embeddings)))
		return success, errors
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errors
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO products (search_id, product_id, title, price, display_price, link, image_url, rating, rating_count, source, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errors
	}
	defer stmt.Close()

	for i, p := range products {
		vec := pgvector.NewVector(embeddings[i])
		_, err := stmt.ExecContext(ctx, searchID, p.ID, p.Title, p.Price, p.DisplayPrice,
			p.Link, p.ImageURL, p.Rating, p.RatingCount, p.Source, vec)
		if err != nil {
			errors = append(errors, fmt.Sprintf("product %s: %v", p.ID, err))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errors = append(errors, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errors
	}

	return success, errors
}

// productRow is the stored subset of a product
type productRow struct {
	ProductID    string   `db:"product_id"`
	Title        string   `db:"title"`
	Price        float64  `db:"price"`
	DisplayPrice string   `db:"display_price"`
	Link         string   `db:"link"`
	ImageURL     string   `db:"image_url"`
	Rating       *float64 `db:"rating"`
	RatingCount  int      `db:"rating_count"`
	Source       string   `db:"source"`
}

// SimilarProducts performs a nearest-neighbor lookup over previously
// stored products, ordered by cosine distance to the query embedding.
func (r *Repository) SimilarProducts(ctx context.Context, embedding []float32, limit int) ([]model.Product, error) {
	query := `
		SELECT product_id, title, price, display_price, link, image_url, rating, rating_count, source
		FROM products
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	var rows []productRow
	err := r.db.SelectContext(ctx, &rows, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch similar products: %w", err)
	}

	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, model.Product{
			ID:           row.ProductID,
			Title:        row.Title,
			Price:        row.Price,
			DisplayPrice: row.DisplayPrice,
			Link:         row.Link,
			ImageURL:     row.ImageURL,
			Rating:       row.Rating,
			RatingCount:  row.RatingCount,
			Source:       row.Source,
		})
	}

	return products, nil
}
