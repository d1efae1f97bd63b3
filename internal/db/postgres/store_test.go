package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/shopsearch/internal/db"
)

func TestNewStore_RequiresDSN(t *testing.T) {
	_, err := NewStore(Config{})
	require.Error(t, err)
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"shoe":     "shoe",
		"100%":     `100\%`,
		"a_b":      `a\_b`,
		`back\sl`:  `back\\sl`,
		`%_\`:      `\%\_\\`,
		"'; drop": "'; drop",
	}
	for in, want := range tests {
		assert.Equal(t, want, escapeLike(in), "escapeLike(%q)", in)
	}
}

func TestBuildLexicalQuery_SingleTerm(t *testing.T) {
	query, args := buildLexicalQuery(&db.LexicalQuery{Terms: []string{"blue"}, Limit: 20})

	assert.Contains(t, query, `(name ILIKE $1 ESCAPE '\' OR description ILIKE $1 ESCAPE '\')`)
	assert.Contains(t, query, "ORDER BY created_at DESC, id DESC")
	assert.Contains(t, query, "LIMIT $2")
	assert.Equal(t, []any{"%blue%", 20}, args)
}

func TestBuildLexicalQuery_MultiTermIsAnd(t *testing.T) {
	query, args := buildLexicalQuery(&db.LexicalQuery{Terms: []string{"red", "50%"}, Limit: 5})

	assert.Contains(t, query, "ILIKE $1 ESCAPE '\\' OR description ILIKE $1 ESCAPE '\\') AND (name ILIKE $2")
	assert.Contains(t, query, "LIMIT $3")
	require.Len(t, args, 3)
	assert.Equal(t, `%50\%%`, args[1])
	assert.Equal(t, 5, args[2])
}

func TestBuildLexicalQuery_NoInterpolation(t *testing.T) {
	evil := "x' OR 1=1 --"
	query, args := buildLexicalQuery(&db.LexicalQuery{Terms: []string{evil}, Limit: 1})

	assert.NotContains(t, query, evil)
	assert.Equal(t, "%"+evil+"%", args[0])
}

func TestVectorParam(t *testing.T) {
	assert.Nil(t, vectorParam(nil))
	assert.NotNil(t, vectorParam([]float32{1, 2}))
}

func TestNullString(t *testing.T) {
	assert.False(t, nullString("").Valid)
	assert.True(t, nullString("https://img").Valid)
}
