package idempotency

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/domain"
)

func TestPostKey(t *testing.T) {
	a := domain.Post{AuthorID: "7", AuthorUsername: "bob", CreatedAt: 1451606400000, Content: "hi"}
	b := a
	b.AuthorUsername = "robert"

	assert.Len(t, PostKey(&a), 64)
	assert.Equal(t, PostKey(&a), PostKey(&b), "username is not part of the key")

	b.Content = "hi!"
	assert.NotEqual(t, PostKey(&a), PostKey(&b))

	c := a
	c.CreatedAt++
	assert.NotEqual(t, PostKey(&a), PostKey(&c))
}
