package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kailas-cloud/shopsearch/internal/db"
)

func startPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "shop",
			"POSTGRES_PASSWORD": "shop",
			"POSTGRES_DB":       "shop",
		},
		// postgres logs "ready" twice: once for the init server, once for the real one
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second),
	}
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "start postgres")
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://shop:shop@%s:%s/shop?sslmode=disable", host, port.Port())
}

func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	dsn := startPostgres(ctx, t)

	s, err := NewStore(Config{DSN: dsn, MaxOpenConns: 4})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	require.NoError(t, s.WaitForReady(ctx, 30*time.Second))
	require.NoError(t, s.Migrate(DirectionUp, 0))
	return s
}

func insert(t *testing.T, s *Store, id, name, desc string, age time.Duration, emb []float32) {
	t.Helper()
	err := s.InsertProduct(context.Background(), &db.ProductRow{
		ID:          id,
		Name:        name,
		Description: desc,
		PriceCents:  1999,
		Embedding:   emb,
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(-age),
	})
	require.NoError(t, err)
}

func TestIntegration_Catalog(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	const (
		lamp  = "00000000-0000-0000-0000-000000000001"
		shoe  = "00000000-0000-0000-0000-000000000002"
		pct   = "00000000-0000-0000-0000-000000000003"
		ortho = "00000000-0000-0000-0000-000000000004"
		short = "00000000-0000-0000-0000-000000000005"
	)
	insert(t, s, lamp, "Lamp", "blue lamp", 3*time.Minute, nil)
	insert(t, s, shoe, "Red Shoe", "running shoe", 2*time.Minute, []float32{1, 0, 0})
	insert(t, s, pct, "100% cotton tee", "shirt", time.Minute, []float32{0.9, 0.1, 0})
	insert(t, s, ortho, "Plain tee", "shirt", 0, []float32{0, 1, 0})
	// stored by an older model with a different dimension
	insert(t, s, short, "Old mug", "ceramic", 4*time.Minute, []float32{1, 0})

	t.Run("duplicate insert", func(t *testing.T) {
		err := s.InsertProduct(ctx, &db.ProductRow{ID: lamp, Name: "x", Description: "y", CreatedAt: time.Now()})
		assert.ErrorIs(t, err, db.ErrRowExists)
	})

	t.Run("get", func(t *testing.T) {
		row, err := s.GetProduct(ctx, shoe)
		require.NoError(t, err)
		assert.Equal(t, int64(1999), row.PriceCents)
		assert.Equal(t, []float32{1, 0, 0}, row.Embedding)

		_, err = s.GetProduct(ctx, "00000000-0000-0000-0000-0000000000ff")
		assert.ErrorIs(t, err, db.ErrRowNotFound)
	})

	t.Run("recent", func(t *testing.T) {
		rows, err := s.ListRecent(ctx, 3)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, ortho, rows[0].ID)
		assert.Equal(t, shoe, rows[2].ID)
	})

	t.Run("lexical", func(t *testing.T) {
		rows, err := s.LexicalFilter(ctx, &db.LexicalQuery{Terms: []string{"blue"}, Limit: 20})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, lamp, rows[0].ID)

		rows, err = s.LexicalFilter(ctx, &db.LexicalQuery{Terms: []string{"red", "running"}, Limit: 20})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, shoe, rows[0].ID)

		// % is a literal, not a wildcard
		rows, err = s.LexicalFilter(ctx, &db.LexicalQuery{Terms: []string{"100%"}, Limit: 20})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, pct, rows[0].ID)
	})

	t.Run("vector", func(t *testing.T) {
		hits, err := s.VectorNearest(ctx, &db.VectorQuery{Vector: []float32{1, 0, 0}, Threshold: 0.75, Limit: 10})
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, shoe, hits[0].Row.ID)
		assert.Equal(t, pct, hits[1].Row.ID)
		assert.Less(t, hits[0].Distance, hits[1].Distance)
		assert.Less(t, hits[1].Distance, 0.75)
	})

	t.Run("vector skips other dimensions", func(t *testing.T) {
		hits, err := s.VectorNearest(ctx, &db.VectorQuery{Vector: []float32{1, 0}, Threshold: 2, Limit: 10})
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, short, hits[0].Row.ID)

		hits, err = s.VectorNearest(ctx, &db.VectorQuery{Vector: []float32{1, 0, 0}, Threshold: 2, Limit: 10})
		require.NoError(t, err)
		for _, h := range hits {
			assert.NotEqual(t, short, h.Row.ID)
		}
	})

	t.Run("vector zero query never matches", func(t *testing.T) {
		hits, err := s.VectorNearest(ctx, &db.VectorQuery{Vector: []float32{0, 0, 0}, Threshold: 2, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("backfill", func(t *testing.T) {
		rows, err := s.ListMissingEmbedding(ctx, 10)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, lamp, rows[0].ID)

		require.NoError(t, s.SetEmbedding(ctx, lamp, []float32{0, 0, 1}))
		rows, err = s.ListMissingEmbedding(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestIntegration_MigrateDownUp(t *testing.T) {
	s := newIntegrationStore(t)

	version, dirty, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	require.NoError(t, s.Migrate(DirectionDown, 1))
	version, _, err = s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	// up with nothing left after this is a no-op, not an error
	require.NoError(t, s.Migrate(DirectionUp, 0))
	require.NoError(t, s.Migrate(DirectionUp, 0))
}
