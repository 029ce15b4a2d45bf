package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePost(t *testing.T) {
	now := time.Date(2016, 5, 1, 0, 0, 0, 0, time.UTC)
	skew := 5 * time.Minute

	tests := []struct {
		name   string
		post   Post
		fields []string
	}{
		{"valid", Post{AuthorID: "5", CreatedAt: now.UnixMilli(), Content: "hi"}, nil},
		{"epoch zero is fine", Post{AuthorID: "5", CreatedAt: 0}, nil},
		{"missing author", Post{CreatedAt: 1}, []string{"author_id"}},
		{"negative time", Post{AuthorID: "5", CreatedAt: -1}, []string{"created_at"}},
		{"future", Post{AuthorID: "5", CreatedAt: now.Add(time.Hour).UnixMilli()}, []string{"created_at"}},
		{"long author", Post{AuthorID: strings.Repeat("x", MaxAuthorIDLen+1)}, []string{"author_id"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidatePost(&tc.post, now, skew)
			var fields []string
			for _, fe := range errs {
				fields = append(fields, fe.Field)
			}
			assert.Equal(t, tc.fields, fields)
		})
	}
}

func TestValidateBatch(t *testing.T) {
	now := time.Now()

	_, err := ValidateBatch(nil, 10, now, 0)
	assert.Error(t, err)

	_, err = ValidateBatch(make([]Post, 3), 2, now, 0)
	assert.Error(t, err)

	all, err := ValidateBatch([]Post{{AuthorID: "1"}, {}}, 10, now, 0)
	require.Error(t, err)
	assert.Empty(t, all[0])
	assert.Equal(t, "author_id", all[1][0].Field)

	all, err = ValidateBatch([]Post{{AuthorID: "1"}}, 10, now, 0)
	assert.NoError(t, err)
	assert.Nil(t, all)
}
