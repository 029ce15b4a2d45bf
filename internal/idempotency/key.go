package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/domain"
)

// PostKey returns a stable dedupe key for a post. The crawl carries no post
// id, so the key is a hex SHA-256 over (author_id, created_at, content).
// Re-importing the same file or re-posting the same line yields the same key.
func PostKey(p *domain.Post) string {
	composite := fmt.Sprintf("%s|%d|%s", p.AuthorID, p.CreatedAt, p.Content)
	sum := sha256.Sum256([]byte(composite))
	return hex.EncodeToString(sum[:])
}
