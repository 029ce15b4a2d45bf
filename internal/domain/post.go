package domain

// Post is one forum post after the author sub-object has been flattened.
// CreatedAt is epoch milliseconds as found in the crawl.
type Post struct {
	AuthorID       string `json:"author_id"`
	AuthorUsername string `json:"author_username,omitempty"`
	AuthorLocation string `json:"author_location,omitempty"`
	CreatedAt      int64  `json:"created_at"`
	Content        string `json:"content"`
}

// Validation constraints for posts accepted over HTTP.
const (
	MaxAuthorIDLen  = 128
	MaxUsernameLen  = 256
	MaxContentBytes = 1 << 20
)
