package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/kailas-cloud/shopsearch/internal/db"
)

const productColumns = `id, name, description, image_url, (price * 100)::bigint, created_at`

// uniqueViolation is the SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

// InsertProduct inserts a product. A nil embedding is stored as NULL.
func (s *Store) InsertProduct(ctx context.Context, row *db.ProductRow) error {
	stmt := `
		INSERT INTO products (id, name, description, image_url, price, embedding, created_at)
		VALUES ($1, $2, $3, $4, ($5::bigint)::numeric / 100, $6, $7)`

	_, err := s.db.ExecContext(ctx, stmt,
		row.ID,
		row.Name,
		row.Description,
		nullString(row.ImageURL),
		row.PriceCents,
		vectorParam(row.Embedding),
		row.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return &db.Error{Op: db.OpInsert, Err: db.ErrRowExists}
		}
		return &db.Error{Op: db.OpInsert, Err: err}
	}
	return nil
}

// SetEmbedding stores a vector for an existing product.
func (s *Store) SetEmbedding(ctx context.Context, id string, embedding []float32) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET embedding = $2 WHERE id = $1`,
		id, vectorParam(embedding),
	)
	if err != nil {
		return &db.Error{Op: db.OpUpdate, Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &db.Error{Op: db.OpUpdate, Err: db.ErrRowNotFound}
	}
	return nil
}

// GetProduct returns a product with its embedding.
func (s *Store) GetProduct(ctx context.Context, id string) (*db.ProductRow, error) {
	query := `SELECT ` + productColumns + `, embedding FROM products WHERE id = $1`

	var (
		row   db.ProductRow
		image sql.NullString
		vec   *pgvector.Vector
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&row.ID, &row.Name, &row.Description, &image, &row.PriceCents, &row.CreatedAt, &vec,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &db.Error{Op: db.OpSelect, Err: db.ErrRowNotFound}
		}
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	row.ImageURL = image.String
	if vec != nil {
		row.Embedding = vec.Slice()
	}
	return &row, nil
}

// ListRecent returns the newest products.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]db.ProductRow, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC, id DESC
		LIMIT $1`
	return s.queryRows(ctx, db.OpSelect, query, limit)
}

// ListMissingEmbedding returns products without a vector, oldest first.
func (s *Store) ListMissingEmbedding(ctx context.Context, limit int) ([]db.ProductRow, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE embedding IS NULL
		ORDER BY created_at ASC, id ASC
		LIMIT $1`
	return s.queryRows(ctx, db.OpSelect, query, limit)
}

// LexicalFilter matches every term against name OR description with ILIKE.
func (s *Store) LexicalFilter(ctx context.Context, q *db.LexicalQuery) ([]db.ProductRow, error) {
	if len(q.Terms) == 0 {
		return nil, nil
	}
	query, args := buildLexicalQuery(q)
	return s.queryRows(ctx, db.OpLexical, query, args...)
}

// VectorNearest returns products with cosine distance (<=>) strictly below the threshold.
// Rows whose stored dimension differs from the query are skipped so <=> never errors.
func (s *Store) VectorNearest(ctx context.Context, q *db.VectorQuery) ([]db.VectorHit, error) {
	if len(q.Vector) == 0 {
		return nil, &db.Error{Op: db.OpNearest, Err: errors.New("vector is required")}
	}
	if q.Limit <= 0 {
		return nil, nil
	}

	// AND operands have no guaranteed order, so the dimension guard sits inside CASE:
	// <=> is only evaluated for rows of the query's dimension.
	query := `SELECT ` + productColumns + `, distance
		FROM (
			SELECT id, name, description, image_url, price, created_at,
				CASE WHEN vector_dims(embedding) = $2 THEN embedding <=> $1 END AS distance
			FROM products
			WHERE embedding IS NOT NULL
		) AS candidates
		WHERE distance < $3
		ORDER BY distance ASC, created_at DESC, id ASC
		LIMIT $4`

	rows, err := s.db.QueryContext(ctx, query,
		pgvector.NewVector(q.Vector), len(q.Vector), q.Threshold, q.Limit,
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpNearest, Err: err}
	}
	defer rows.Close()

	hits := []db.VectorHit{}
	for rows.Next() {
		var (
			hit   db.VectorHit
			image sql.NullString
		)
		if err := rows.Scan(
			&hit.Row.ID, &hit.Row.Name, &hit.Row.Description, &image,
			&hit.Row.PriceCents, &hit.Row.CreatedAt, &hit.Distance,
		); err != nil {
			return nil, &db.Error{Op: db.OpNearest, Err: err}
		}
		hit.Row.ImageURL = image.String
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpNearest, Err: err}
	}
	return hits, nil
}

func (s *Store) queryRows(ctx context.Context, op, query string, args ...any) ([]db.ProductRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &db.Error{Op: op, Err: err}
	}
	defer rows.Close()

	list := []db.ProductRow{}
	for rows.Next() {
		var (
			row   db.ProductRow
			image sql.NullString
		)
		if err := rows.Scan(
			&row.ID, &row.Name, &row.Description, &image, &row.PriceCents, &row.CreatedAt,
		); err != nil {
			return nil, &db.Error{Op: op, Err: err}
		}
		row.ImageURL = image.String
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: op, Err: err}
	}
	return list, nil
}

// buildLexicalQuery renders one ILIKE pair per term; every term is a bound parameter.
func buildLexicalQuery(q *db.LexicalQuery) (string, []any) {
	where := make([]string, 0, len(q.Terms))
	args := make([]any, 0, len(q.Terms)+1)

	for _, term := range q.Terms {
		args = append(args, "%"+escapeLike(term)+"%")
		p := placeholder(len(args))
		where = append(where,
			"(name ILIKE "+p+` ESCAPE '\' OR description ILIKE `+p+` ESCAPE '\')`)
	}
	args = append(args, q.Limit)

	query := `SELECT ` + productColumns + `
		FROM products
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC, id DESC
		LIMIT ` + placeholder(len(args))
	return query, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards literal.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// vectorParam returns nil for an empty vector so the column stays NULL.
func vectorParam(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	return pgvector.NewVector(v)
}
