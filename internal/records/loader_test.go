package records

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/domain"
)

func TestLoad_FlattensAuthor(t *testing.T) {
	in := `{"author": {"id": 5, "username": "bob"}, "created_at": 0, "content": "hi"}`

	recs, err := Load(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, json.Number("5"), rec["author_id"])
	assert.Equal(t, "bob", rec["author_username"])
	assert.NotContains(t, rec, "author")
	assert.Equal(t, "hi", rec["content"])
}

func TestLoad_KeepsAuthorPrefixedKeys(t *testing.T) {
	in := `{"author": {"author_rank": "mod", "authority": 3, "location": "TX"}, "created_at": 1}`

	recs, err := Load(strings.NewReader(in))
	require.NoError(t, err)

	rec := recs[0]
	assert.Equal(t, "mod", rec["author_rank"])
	assert.Equal(t, json.Number("3"), rec["authority"])
	assert.Equal(t, "TX", rec["author_location"])
	assert.NotContains(t, rec, "author_author_rank")
}

func TestLoad_SkipsBlankLines(t *testing.T) {
	in := "\n" + `{"author": {"id": 1}, "created_at": 1}` + "\n\n" + `{"author": {"id": 2}, "created_at": 2}` + "\n"

	recs, err := Load(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		line   int
		reason string
	}{
		{"bad json", `{"author": {"id": 1}, "created_at": 1}` + "\n{nope", 2, "invalid json"},
		{"no author", `{"created_at": 1}`, 1, "missing author field"},
		{"author not object", `{"author": "bob"}`, 1, "author is not an object"},
		{"null line", `null`, 1, "not a json object"},
		{"trailing garbage", `{"author":{"id":1},"created_at":0,"content":"x"} trailing-garbage`, 1, "invalid json"},
		{"two objects", `{"author":{"id":1},"created_at":0}{"author":{"id":2}}`, 1, "invalid json"},
		{"trailing after blank", "\n" + `{"author":{"id":1}} {}`, 2, "invalid json"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.in))
			var mre *MalformedRecordError
			require.True(t, errors.As(err, &mre), "got %v", err)
			assert.Equal(t, tc.line, mre.Line)
			assert.Equal(t, tc.reason, mre.Reason)
		})
	}
}

func TestPosts(t *testing.T) {
	in := `{"author": {"id": 5, "username": "bob", "location": "TX"}, "created_at": 1458000000000, "content": "hi"}
{"author": {"id": "abc"}, "created_at": "1458000000001"}`

	recs, err := Load(strings.NewReader(in))
	require.NoError(t, err)

	posts, err := Posts(recs)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "5", posts[0].AuthorID)
	assert.Equal(t, "bob", posts[0].AuthorUsername)
	assert.Equal(t, "TX", posts[0].AuthorLocation)
	assert.Equal(t, int64(1458000000000), posts[0].CreatedAt)
	assert.Equal(t, "hi", posts[0].Content)

	assert.Equal(t, "abc", posts[1].AuthorID)
	assert.Equal(t, int64(1458000000001), posts[1].CreatedAt)
	assert.Equal(t, "", posts[1].Content)
}

func TestPosts_NullAuthorID(t *testing.T) {
	recs, err := Load(strings.NewReader(`{"author": {"id": null}, "created_at": 1}`))
	require.NoError(t, err)

	_, err = Posts(recs)
	var mre *MalformedRecordError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, 1, mre.Record)
	assert.Zero(t, mre.Line)
}

func TestPosts_ReportsRecordNotLine(t *testing.T) {
	in := `{"author": {"id": 1}, "created_at": 1}

{"author": {"id": null}, "created_at": 2}`
	recs, err := Load(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	_, err = Posts(recs)
	var mre *MalformedRecordError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, 2, mre.Record)
	assert.Equal(t, "record 2", mre.Position())
	assert.Contains(t, err.Error(), "record 2: invalid post")
}

func TestMalformedRecordError_Position(t *testing.T) {
	assert.Equal(t, "line 3", (&MalformedRecordError{Line: 3}).Position())
	assert.Equal(t, "line 3: invalid json", (&MalformedRecordError{Line: 3, Reason: "invalid json"}).Error())
}

func TestReadPosts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forum.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"author": {"id": 7}, "created_at": 86400000, "content": "x"}`+"\n"), 0o644))

	recs, posts, err := ReadPosts(path)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, "7", posts[0].AuthorID)

	_, _, err = ReadPosts(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFromPost_RoundTrip(t *testing.T) {
	p := domain.Post{AuthorID: "7", AuthorLocation: "TX", CreatedAt: 1458000000000, Content: "hi"}

	rec := FromPost(p)
	_, hasUser := rec.String("author_username")
	assert.False(t, hasUser)

	back, err := ToPost(rec)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}
