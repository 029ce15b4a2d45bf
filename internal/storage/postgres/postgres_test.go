package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/domain"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/idempotency"
)

func TestInsertStatement(t *testing.T) {
	posts := []domain.Post{
		{AuthorID: "7", AuthorUsername: "bob", CreatedAt: 1, Content: "a"},
		{AuthorID: "8", CreatedAt: 2, Content: "b"},
	}

	sql, args := insertStatement(posts)

	assert.True(t, strings.HasPrefix(sql, "INSERT INTO posts (post_key,author_id,author_username,author_location,created_at_ms,content) VALUES "))
	assert.Contains(t, sql, "($1,$2,$3,$4,$5,$6),($7,$8,$9,$10,$11,$12)")
	assert.True(t, strings.HasSuffix(sql, " ON CONFLICT (post_key) DO NOTHING"))
	require.Len(t, args, 12)
	assert.Equal(t, idempotency.PostKey(&posts[0]), args[0])
	assert.Equal(t, "bob", args[2])
	assert.Equal(t, int64(2), args[10])
}

func TestFilterWhere(t *testing.T) {
	cond, args := Filter{From: 10, To: 20}.where()
	assert.Equal(t, "WHERE created_at_ms >= $1 AND created_at_ms <= $2", cond)
	assert.Equal(t, []any{int64(10), int64(20)}, args)

	cond, args = Filter{AuthorID: "7", From: 10, To: 20}.where()
	assert.Contains(t, cond, "author_id = $3")
	assert.Len(t, args, 3)
}

func TestMigrationsEmbedded(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "migrations/0001_init.sql", names[0])

	b, err := migrations.ReadFile(names[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), "CREATE TABLE IF NOT EXISTS posts")
}
